// Package config handles loading and parsing the Pinterval configuration file.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/pinterval/config.toml (default)
//  3. If the config file doesn't exist, fall back to Default()
//  4. If the file exists but fields are missing, empty, or non-positive, use defaults
//
// # Default Values
//
//   - api_base: http://127.0.0.1:3000 (the pin provider)
//   - proxy_path: /api/image-proxy (same-origin image proxy used by grayscale transforms)
//   - fetch_limit: 500 (also the upper bound)
//   - request_timeout_seconds: 10
//   - log_dir: ~/.local/state/pinterval, log_level: info
//   - history_db: <log_dir>/history.db, persist_history: true
//   - cache_capacity: 120, viewer_max_dim: 4096, thumb_max_dim: 240
//   - board_poll_seconds: 300
//
// Transform size caps never exceed 4096 pixels regardless of what the file says.
//
// # Example config.toml
//
//	api_base = "https://pinterval.example.com"
//	log_level = "debug"
//	persist_history = false
//
// # Error Handling
//
// Missing files are not errors. Unreadable files and TOML syntax errors are
// returned wrapped ("open config", "read config", "parse config").
package config
