package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/pkg/errors"
)

const envPrefix = "HLDUP_"

type Configuration struct {
	// Mode is one of prompt, yes or no.
	Mode          string              `koanf:"mode"`
	DryRun        bool                `koanf:"dry_run"`
	BackupSuffix  string              `koanf:"backup_suffix"`
	CompareBuffer string              `koanf:"compare_buffer"`
	Workers       int                 `koanf:"workers"`
	Filters       FilterConfiguration `koanf:"filters"`
	Notifications NotificationsConfig `koanf:"notifications"`
	Log           LogConfiguration    `koanf:"log"`
}

type LogConfiguration struct {
	MaxSize    int `koanf:"max_size"`
	MaxBackups int `koanf:"max_backups"`
	MaxAge     int `koanf:"max_age"`
}

var (
	Config *Configuration
	K      = koanf.New(".")
)

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"mode":            "prompt",
		"dry_run":         false,
		"backup_suffix":   ".bak",
		"compare_buffer":  "32 MiB",
		"workers":         0,
		"log.max_size":    5,
		"log.max_backups": 10,
		"log.max_age":     30,
	}
}

// Init loads defaults, the optional yaml file at configFilePath, HLDUP_*
// environment variables and finally overrides (command-line flags keyed by
// config key), in that order, into Config.
func Init(configFilePath string, overrides map[string]interface{}) error {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return errors.Wrap(err, "load defaults")
	}

	if configFilePath != "" {
		if _, err := os.Stat(configFilePath); err == nil {
			if err := k.Load(file.Provider(configFilePath), yaml.Parser()); err != nil {
				return errors.Wrapf(err, "load config file %q", configFilePath)
			}
		} else if !os.IsNotExist(err) {
			return errors.Wrapf(err, "stat config file %q", configFilePath)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return errors.Wrap(err, "load environment")
	}

	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
			return errors.Wrap(err, "load flag overrides")
		}
	}

	cfg := &Configuration{}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return errors.Wrap(err, "unmarshal config")
	}

	K = k
	Config = cfg
	return nil
}

// envKey maps HLDUP_NOTIFICATIONS__SERVICE__DISCORD to notifications.service.discord.
// Single underscores are kept so keys such as dry_run stay addressable.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// CompareBufferBytes parses the humanized compare_buffer setting.
func (c *Configuration) CompareBufferBytes() (int, error) {
	n, err := humanize.ParseBytes(c.CompareBuffer)
	if err != nil {
		return 0, errors.Wrapf(err, "parse compare_buffer %q", c.CompareBuffer)
	}
	if n == 0 {
		return 0, errors.Errorf("compare_buffer must be greater than zero")
	}
	return int(n), nil
}

// GetDefaultConfigDirectory returns the directory holding filename: the
// current directory when the file exists there, otherwise the user config
// directory for app.
func GetDefaultConfigDirectory(app string, filename string) string {
	if _, err := os.Stat(filename); err == nil {
		if wd, err := os.Getwd(); err == nil {
			return wd
		}
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, app)
}
