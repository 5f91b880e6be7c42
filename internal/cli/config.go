package cli

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/sysmlexport/pkg/errors"
)

const configFile = "config.toml"

// Config is the TOML configuration file.
//
//	[export]
//	root = "/1"
//	formats = ["json", "svg"]
//	concurrency = 8
//	out = "diagrams"
//
//	[cache]
//	dir = "/tmp/sysmlexport"
//	redis_addr = "localhost:6379"
//	ttl = "24h"
//
//	[meta.types]
//	Sensor = "Block"
type Config struct {
	Export ExportConfig `toml:"export"`
	Cache  CacheConfig  `toml:"cache"`
	Meta   MetaConfig   `toml:"meta"`
}

// ExportConfig holds defaults for the export command.
type ExportConfig struct {
	Root        string   `toml:"root"`
	Formats     []string `toml:"formats"`
	Concurrency int      `toml:"concurrency"`
	Out         string   `toml:"out"`
}

// CacheConfig selects and tunes the artifact cache.
type CacheConfig struct {
	Dir       string        `toml:"dir"`
	RedisAddr string        `toml:"redis_addr"`
	TTL       time.Duration `toml:"ttl"`
}

// dir returns the configured cache directory or the XDG default.
func (c CacheConfig) dir() (string, error) {
	if c.Dir != "" {
		return c.Dir, nil
	}
	return cacheDir()
}

// MetaConfig extends the meta-type hierarchy.
type MetaConfig struct {
	Types map[string]string `toml:"types"`
}

// defaultConfigPath returns the XDG config file path, or "" if the home
// directory is unknown.
func defaultConfigPath() string {
	dir, err := configDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, configFile)
}

// loadConfig reads path. A missing file yields the zero Config unless the
// path was given explicitly. Unknown keys are logged and ignored.
func loadConfig(path string, explicit bool, logger *log.Logger) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "config %s", path)
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 && logger != nil {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		logger.Warn("unknown config keys", "file", path, "keys", strings.Join(keys, ", "))
	}
	if cfg.Export.Concurrency < 0 {
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "export.concurrency must not be negative")
	}
	return cfg, nil
}
