package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name used for config files and directories
	AppName = "go-dex"

	// EnvPrefix is the prefix for environment variables
	EnvPrefix = "GODEX"
)

// Config holds the application configuration
type Config struct {
	Log struct {
		Debug  bool   `mapstructure:"debug"`
		Format string `mapstructure:"format"` // human or json
		File   string `mapstructure:"file"`
	} `mapstructure:"log"`

	Output struct {
		Format string `mapstructure:"format"` // text, json or yaml
	} `mapstructure:"output"`

	Decode struct {
		VerifyChecksum        bool  `mapstructure:"verify_checksum"`
		FixVirtualMethodCount bool  `mapstructure:"fix_virtual_method_count"`
		MaxFileSize           int64 `mapstructure:"max_file_size"`
	} `mapstructure:"decode"`

	Source struct {
		AllowCompressed bool   `mapstructure:"allow_compressed"`
		APKEntry        string `mapstructure:"apk_entry"`
	} `mapstructure:"source"`

	// File is the config file that was read, empty when none was found
	File string `mapstructure:"-"`
}

// Validate checks enumerated values
func (c *Config) Validate() error {
	switch c.Output.Format {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("invalid output.format %q (must be text, json, or yaml)", c.Output.Format)
	}
	switch c.Log.Format {
	case "human", "json":
	default:
		return fmt.Errorf("invalid log.format %q (must be human or json)", c.Log.Format)
	}
	if c.Decode.MaxFileSize <= 0 {
		return errors.New("decode.max_file_size must be positive")
	}
	if c.Source.APKEntry == "" {
		return errors.New("source.apk_entry must not be empty")
	}
	return nil
}

// SetDefaults registers default values on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.debug", false)
	v.SetDefault("log.format", "human")
	v.SetDefault("log.file", "")
	v.SetDefault("output.format", "text")
	v.SetDefault("decode.verify_checksum", true)
	v.SetDefault("decode.fix_virtual_method_count", true)
	v.SetDefault("decode.max_file_size", int64(256<<20))
	v.SetDefault("source.allow_compressed", true)
	v.SetDefault("source.apk_entry", "classes.dex")
}

// New returns a viper instance with defaults, search paths and environment
// bindings in place. cfgFile, when set, replaces the search.
func New(cfgFile string) *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(AppName)
		v.SetConfigType("yaml")
		addSearchPaths(v)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// Read loads the config file, if any, into v and unmarshals the result. A
// missing file in the search paths is not an error; an explicit cfgFile
// that cannot be read is.
func Read(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func addSearchPaths(v *viper.Viper) {
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, "."+AppName))
	}
	v.AddConfigPath(filepath.Join("/etc", AppName))
}
