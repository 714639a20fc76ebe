package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"

	"github.com/NgigiN/walletwatcher/internal/expense"
	"github.com/NgigiN/walletwatcher/internal/log"
	"github.com/NgigiN/walletwatcher/internal/storage"
)

const (
	AppDirName      = "wallet-watcher"
	DefaultDataFile = "finances.csv"
	EnvPrefix       = "WALLET"
	EnvConfigFile   = "WALLET_CONFIG"
)

type Config struct {
	Data     DataConfig
	Defaults DefaultsConfig
	History  HistoryConfig
	UI       UIConfig
	Log      LogConfig
	Discord  DiscordConfig
}

type DataConfig struct {
	Dir        string
	File       string
	Backend    string
	SQLiteFile string `mapstructure:"sqlite_file"`
}

// DefaultsConfig fills fields left empty by `wallet add`.
type DefaultsConfig struct {
	Category    string
	Description string
}

type HistoryConfig struct {
	Limit int
}

type UIConfig struct {
	Currency string
	Color    bool
}

type LogConfig struct {
	Level string
}

type DiscordConfig struct {
	Token      string
	ChannelID  string `mapstructure:"channel_id"`
	HealthAddr string `mapstructure:"health_addr"`
}

// Load reads defaults, the optional config file and WALLET_* environment
// overrides, in increasing order of precedence.
func Load() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("user home dir: %w", err)
	}
	dataDir, err := DefaultDataDir(runtime.GOOS, os.Getenv, home)
	if err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetDefault("data.dir", dataDir)
	v.SetDefault("data.file", DefaultDataFile)
	v.SetDefault("data.backend", storage.BackendCSV)
	v.SetDefault("data.sqlite_file", "finances.db")
	v.SetDefault("defaults.category", expense.DefaultCategory)
	v.SetDefault("defaults.description", expense.DefaultDescription)
	v.SetDefault("history.limit", 20)
	v.SetDefault("ui.currency", "$")
	v.SetDefault("ui.color", true)
	v.SetDefault("log.level", "warn")
	v.SetDefault("discord.token", "")
	v.SetDefault("discord.channel_id", "")
	v.SetDefault("discord.health_addr", ":8080")

	v.SetConfigType("toml")
	if path := os.Getenv(EnvConfigFile); path != "" {
		v.SetConfigFile(path)
	} else if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, AppDirName))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// DefaultDataDir resolves the per-user data directory for goos. Unknown
// systems fall back to the XDG layout.
func DefaultDataDir(goos string, getenv func(string) string, home string) (string, error) {
	var base string
	switch {
	case goos == "darwin":
		base = filepath.Join(home, "Library", "Application Support")
	case goos == "windows":
		base = getenv("LOCALAPPDATA")
		if base == "" {
			base = filepath.Join(home, "AppData", "Local")
		}
	default:
		base = getenv("XDG_DATA_HOME")
		if base == "" {
			base = filepath.Join(home, ".local", "share")
		}
	}
	if base == "" {
		return "", fmt.Errorf("cannot resolve data directory on %s", goos)
	}
	return filepath.Join(base, AppDirName), nil
}

// DataPath is the file backing the configured storage backend.
func (c Config) DataPath() string {
	if c.Data.Backend == storage.BackendSQLite {
		return filepath.Join(c.Data.Dir, c.Data.SQLiteFile)
	}
	return filepath.Join(c.Data.Dir, c.Data.File)
}

func (c Config) HistoryDir() string {
	return filepath.Join(c.Data.Dir, "history")
}

// Validate reports every problem with the configuration at once.
func (c Config) Validate() error {
	var problems []string

	switch c.Data.Backend {
	case storage.BackendCSV, storage.BackendSQLite:
	default:
		problems = append(problems, fmt.Sprintf("invalid data backend '%s': must be one of [%s %s]", c.Data.Backend, storage.BackendCSV, storage.BackendSQLite))
	}
	if strings.TrimSpace(c.Data.Dir) == "" {
		problems = append(problems, "data directory cannot be empty")
	}
	if c.Data.Backend == storage.BackendCSV && strings.TrimSpace(c.Data.File) == "" {
		problems = append(problems, "data file cannot be empty when using csv backend")
	}
	if c.Data.Backend == storage.BackendSQLite && strings.TrimSpace(c.Data.SQLiteFile) == "" {
		problems = append(problems, "sqlite file cannot be empty when using sqlite backend")
	}
	if c.History.Limit < 0 {
		problems = append(problems, fmt.Sprintf("invalid history limit %d: must be at least 0", c.History.Limit))
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// ValidateDiscord checks the settings the chat front end needs.
func (c Config) ValidateDiscord() error {
	if c.Discord.Token == "" {
		return fmt.Errorf("discord token is not set (WALLET_DISCORD_TOKEN)")
	}
	if c.Discord.ChannelID == "" {
		return fmt.Errorf("discord channel id is not set (WALLET_DISCORD_CHANNEL_ID)")
	}
	return nil
}
