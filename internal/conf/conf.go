package conf

import (
	"net"
	"os"
	"path/filepath"
	"strconv"
)

const (
	defaultHomeName = ".msg-mirror"
	defaultAPIAddr  = "127.0.0.1:9876"
)

// Config represents application configuration
type Config struct {
	// Storage locations
	Storage StorageConfig

	// Admin and host-adapter API
	API APIConfig

	// Out-of-process broadcast spool
	Broadcast BroadcastConfig

	// Host capabilities
	Host HostConfig

	// Feishu mirror sink (optional)
	Feishu FeishuConfig

	// PrefsSeedPath points to the YAML preference seed file
	PrefsSeedPath string

	// Debug mode echoes the diagnostic log to stdout
	Debug bool
}

// StorageConfig contains storage locations
type StorageConfig struct {
	HomeDir string
	DBPath  string
	LogDir  string
}

// APIConfig contains API server configuration
type APIConfig struct {
	Addr string
}

// BroadcastConfig contains broadcast spool configuration
type BroadcastConfig struct {
	Dir     string // empty disables broadcasting
	Receive bool   // run the in-process NotifEventReceiver
}

// HostConfig describes what the host grants the relay
type HostConfig struct {
	SmsReadPermission bool
}

// FeishuConfig contains Feishu configuration
type FeishuConfig struct {
	AppID     string
	AppSecret string
	ChatID    string
}

// Enabled reports whether the Feishu sink is configured
func (c FeishuConfig) Enabled() bool {
	return c.AppID != "" && c.AppSecret != "" && c.ChatID != ""
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	homeDir := os.Getenv("MIRROR_HOME")
	if homeDir == "" {
		userHome, _ := os.UserHomeDir()
		homeDir = filepath.Join(userHome, defaultHomeName)
	}

	dbPath := os.Getenv("MIRROR_DB_PATH")
	if dbPath == "" {
		dbPath = filepath.Join(homeDir, "mirror.db")
	}

	logDir := os.Getenv("MIRROR_LOG_DIR")
	if logDir == "" {
		logDir = homeDir
	}

	apiAddr := os.Getenv("API_ADDR")
	if apiAddr == "" {
		apiAddr = defaultAPIAddr
	}

	// The host grants SMS read access unless told otherwise
	smsPerm := true
	if val := os.Getenv("SMS_READ_PERMISSION"); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			smsPerm = parsed
		}
	}

	receive := false
	if val := os.Getenv("BROADCAST_RECEIVER"); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			receive = parsed
		}
	}

	return &Config{
		Storage: StorageConfig{
			HomeDir: homeDir,
			DBPath:  dbPath,
			LogDir:  logDir,
		},
		API: APIConfig{
			Addr: apiAddr,
		},
		Broadcast: BroadcastConfig{
			Dir:     os.Getenv("BROADCAST_DIR"),
			Receive: receive,
		},
		Host: HostConfig{
			SmsReadPermission: smsPerm,
		},
		Feishu: FeishuConfig{
			AppID:     os.Getenv("FEISHU_APP_ID"),
			AppSecret: os.Getenv("FEISHU_APP_SECRET"),
			ChatID:    os.Getenv("FEISHU_CHAT_ID"),
		},
		PrefsSeedPath: os.Getenv("PREFS_SEED_PATH"),
		Debug:         os.Getenv("DEBUG") == "true",
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Storage.DBPath == "" {
		return &ConfigError{Field: "MIRROR_DB_PATH", Message: "required"}
	}
	if c.Storage.LogDir == "" {
		return &ConfigError{Field: "MIRROR_LOG_DIR", Message: "required"}
	}
	if _, _, err := net.SplitHostPort(c.API.Addr); err != nil {
		return &ConfigError{Field: "API_ADDR", Message: "must be host:port"}
	}
	if c.Broadcast.Receive && c.Broadcast.Dir == "" {
		return &ConfigError{Field: "BROADCAST_RECEIVER", Message: "requires BROADCAST_DIR"}
	}

	// Feishu credentials come as a set
	f := c.Feishu
	if (f.AppID != "" || f.AppSecret != "" || f.ChatID != "") && !f.Enabled() {
		return &ConfigError{Field: "FEISHU_APP_ID/FEISHU_APP_SECRET/FEISHU_CHAT_ID", Message: "all three required together"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
