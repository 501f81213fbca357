package config

import (
	"errors"
	"fmt"
	"io/fs"
	"reflect"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. CHIDATA_STORAGE_DSN.
const EnvPrefix = "CHIDATA"

// FlagKeys maps command-line flag names to config keys.
var FlagKeys = map[string]string{
	"log-level":    "log_level",
	"data-dir":     "data_dir",
	"storage-kind": "storage.kind",
	"dsn":          "storage.dsn",
	"metrics":      "metrics.backend",
}

// Options controls where Load looks.
type Options struct {
	File   string         // explicit config file; empty searches ./chidata.*
	DotEnv string         // .env path; empty means ".env" (missing is fine)
	Flags  *pflag.FlagSet // flags named in FlagKeys override everything else
}

// Load assembles a Config from defaults, file, environment and flags.
func Load(opts Options) (*Config, error) {
	dotenv := opts.DotEnv
	if dotenv == "" {
		dotenv = ".env"
	}
	if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load %s: %w", dotenv, err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, "", reflect.ValueOf(*Default()))

	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		v.SetConfigName("chidata")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.File != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	if opts.Flags != nil {
		for name, key := range FlagKeys {
			f := opts.Flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("config: bind --%s: %w", name, err)
			}
		}
		if f := opts.Flags.Lookup("no-vacuum"); f != nil && f.Changed {
			v.Set("load.vacuum", false)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	return cfg, nil
}

// setDefaults registers every leaf of def so environment overrides resolve
// for nested keys.
func setDefaults(v *viper.Viper, prefix string, def reflect.Value) {
	t := def.Type()
	for i := 0; i < t.NumField(); i++ {
		key := t.Field(i).Tag.Get("mapstructure")
		if prefix != "" {
			key = prefix + "." + key
		}
		fv := def.Field(i)
		if fv.Kind() == reflect.Struct {
			setDefaults(v, key, fv)
			continue
		}
		v.SetDefault(key, fv.Interface())
	}
}
