package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures the runtime settings Pinterval reads from its config file.
type Config struct {
	APIBase        string
	ProxyPath      string
	FetchLimit     int
	RequestTimeout time.Duration
	LogDir         string
	LogLevel       string
	HistoryDB      string
	PersistHistory bool
	CacheCapacity  int
	ViewerMaxDim   int
	ThumbMaxDim    int
	BoardPollEvery time.Duration
	ResourceDir    string
}

const (
	defaultConfigPath     = "~/.config/pinterval/config.toml"
	defaultAPIBase        = "http://127.0.0.1:3000"
	defaultProxyPath      = "/api/image-proxy"
	defaultLogDir         = "~/.local/state/pinterval"
	defaultLogLevel       = "info"
	defaultFetchLimit     = 500
	maxFetchLimit         = 500
	defaultTimeoutSeconds = 10
	defaultCacheCapacity  = 120
	defaultViewerMaxDim   = 4096
	defaultThumbMaxDim    = 240
	defaultBoardPollSecs  = 300
)

// Default returns the configuration used when no file exists.
func Default() Config {
	logDir := mustExpand(defaultLogDir)
	return Config{
		APIBase:        defaultAPIBase,
		ProxyPath:      defaultProxyPath,
		FetchLimit:     defaultFetchLimit,
		RequestTimeout: defaultTimeoutSeconds * time.Second,
		LogDir:         logDir,
		LogLevel:       defaultLogLevel,
		HistoryDB:      filepath.Join(logDir, "history.db"),
		PersistHistory: true,
		CacheCapacity:  defaultCacheCapacity,
		ViewerMaxDim:   defaultViewerMaxDim,
		ThumbMaxDim:    defaultThumbMaxDim,
		BoardPollEvery: defaultBoardPollSecs * time.Second,
		ResourceDir:    filepath.Join(logDir, "gray"),
	}
}

// Load locates and parses the config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIBase        string `toml:"api_base"`
		ProxyPath      string `toml:"proxy_path"`
		FetchLimit     int    `toml:"fetch_limit"`
		TimeoutSeconds int    `toml:"request_timeout_seconds"`
		LogDir         string `toml:"log_dir"`
		LogLevel       string `toml:"log_level"`
		HistoryDB      string `toml:"history_db"`
		PersistHistory *bool  `toml:"persist_history"`
		CacheCapacity  int    `toml:"cache_capacity"`
		ViewerMaxDim   int    `toml:"viewer_max_dim"`
		ThumbMaxDim    int    `toml:"thumb_max_dim"`
		BoardPollSecs  int    `toml:"board_poll_seconds"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg := Default()
	if v := strings.TrimSpace(raw.APIBase); v != "" {
		cfg.APIBase = v
	}
	if v := strings.TrimSpace(raw.ProxyPath); v != "" {
		if !strings.HasPrefix(v, "/") {
			v = "/" + v
		}
		cfg.ProxyPath = v
	}
	if raw.FetchLimit > 0 {
		cfg.FetchLimit = min(raw.FetchLimit, maxFetchLimit)
	}
	if raw.TimeoutSeconds > 0 {
		cfg.RequestTimeout = time.Duration(raw.TimeoutSeconds) * time.Second
	}
	if v := strings.TrimSpace(raw.LogDir); v != "" {
		cfg.LogDir = mustExpand(v)
		cfg.HistoryDB = filepath.Join(cfg.LogDir, "history.db")
		cfg.ResourceDir = filepath.Join(cfg.LogDir, "gray")
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := strings.TrimSpace(raw.HistoryDB); v != "" {
		cfg.HistoryDB = mustExpand(v)
	}
	if raw.PersistHistory != nil {
		cfg.PersistHistory = *raw.PersistHistory
	}
	if raw.CacheCapacity > 0 {
		cfg.CacheCapacity = raw.CacheCapacity
	}
	if raw.ViewerMaxDim > 0 {
		cfg.ViewerMaxDim = min(raw.ViewerMaxDim, defaultViewerMaxDim)
	}
	if raw.ThumbMaxDim > 0 {
		cfg.ThumbMaxDim = min(raw.ThumbMaxDim, defaultViewerMaxDim)
	}
	if raw.BoardPollSecs > 0 {
		cfg.BoardPollEvery = time.Duration(raw.BoardPollSecs) * time.Second
	}
	return cfg, nil
}

// LogPath returns the path of the runtime log file.
func (c Config) LogPath() string {
	if strings.TrimSpace(c.LogDir) == "" {
		return mustExpand(defaultLogDir + "/pinterval.log")
	}
	return filepath.Join(c.LogDir, "pinterval.log")
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return defaultConfigPath
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
