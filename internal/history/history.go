// Package history records the URLs shown during playback.
//
// The log is append-only and keeps repeats; View derives the display list by
// keeping the most recent occurrence of each URL, newest first, truncated to a
// window. Persisted returns the tail that is written to storage.
package history

import "sync"

const (
	// DisplayWindow bounds the number of unique entries shown.
	DisplayWindow = 200
	// PersistCap bounds the number of entries kept in storage.
	PersistCap = 500
)

// Log is safe for concurrent use.
type Log struct {
	mu   sync.RWMutex
	urls []string
}

// NewLog returns a log seeded with earlier entries, oldest first.
func NewLog(seed []string) *Log {
	l := &Log{}
	for _, u := range seed {
		if u != "" {
			l.urls = append(l.urls, u)
		}
	}
	return l
}

// Append records one shown URL. Empty URLs are ignored.
func (l *Log) Append(url string) bool {
	if url == "" {
		return false
	}
	l.mu.Lock()
	l.urls = append(l.urls, url)
	l.mu.Unlock()
	return true
}

// Len returns the number of appends, repeats included.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.urls)
}

// Entries returns a copy of the full log, oldest first.
func (l *Log) Entries() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]string, len(l.urls))
	copy(out, l.urls)
	return out
}

// View returns up to limit unique URLs, most recent first. A non-positive
// limit uses DisplayWindow.
func (l *Log) View(limit int) []string {
	if limit <= 0 {
		limit = DisplayWindow
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	seen := make(map[string]struct{}, min(len(l.urls), limit))
	out := make([]string, 0, min(len(l.urls), limit))
	for i := len(l.urls) - 1; i >= 0 && len(out) < limit; i-- {
		u := l.urls[i]
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

// Persisted returns the most recent PersistCap entries, oldest first.
func (l *Log) Persisted() []string {
	return Tail(l.Entries(), PersistCap)
}

// Clear drops every entry.
func (l *Log) Clear() {
	l.mu.Lock()
	l.urls = nil
	l.mu.Unlock()
}

// Tail returns the last n entries of urls.
func Tail(urls []string, n int) []string {
	if n <= 0 || len(urls) <= n {
		return urls
	}
	return urls[len(urls)-n:]
}
