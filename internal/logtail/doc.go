// Package logtail reads the tail of Pinterval's JSON runtime log.
//
// Read keeps a ring buffer of the last N lines, so memory stays bounded by
// N regardless of file size. Parse and Filter decode the slog JSON records
// and Format renders them for the `pinterval logs` command.
//
//	lines, err := logtail.Read(cfg.LogPath(), 200)
//	for _, e := range logtail.Filter(lines, slog.LevelWarn) {
//		fmt.Println(logtail.Format(e))
//	}
package logtail
