package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// configEnv names an explicit config file; a missing file is then an error.
const configEnv = "USAGE_REPORT_CONFIG"

// configKeys maps flags onto their config.yaml keys where the file groups
// them into sections. Env vars follow the key: storage.type reads
// USAGE_REPORT_STORAGE_TYPE.
var configKeys = map[string]string{
	"store":          "storage.type",
	"database-url":   "storage.url",
	"sqlite-path":    "storage.path",
	"prometheus-url": "prometheus.url",
	"window":         "prometheus.window",
	"step":           "prometheus.step",
}

func configKey(flag string) string {
	if key, ok := configKeys[flag]; ok {
		return key
	}
	return flag
}

// configLoader fills flags the user left unset from USAGE_REPORT_* env vars
// and config.yaml.
type configLoader struct {
	v      *viper.Viper
	strict bool

	once sync.Once
	err  error
}

func newConfigLoader(path string) *configLoader {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.SetEnvPrefix("USAGE_REPORT")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".usage-report"))
		}
	}
	return &configLoader{v: v, strict: path != ""}
}

func (l *configLoader) read() error {
	l.once.Do(func() {
		if err := l.v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) && !l.strict {
				return
			}
			l.err = fmt.Errorf("read config: %w", err)
		}
	})
	return l.err
}

// apply sets every unchanged flag in fs that has a config or env value.
// Values the flag rejects are reported together.
func (l *configLoader) apply(fs *pflag.FlagSet) error {
	if err := l.read(); err != nil {
		return err
	}

	var errs []error
	fs.VisitAll(func(f *pflag.Flag) {
		key := configKey(f.Name)
		if f.Changed || !l.v.IsSet(key) {
			return
		}

		var val string
		switch f.Value.Type() {
		case "stringSlice":
			val = strings.Join(l.v.GetStringSlice(key), ",")
		case "duration":
			val = l.v.GetDuration(key).String()
		default:
			val = l.v.GetString(key)
		}
		if val == "" {
			return
		}
		if err := f.Value.Set(val); err != nil {
			errs = append(errs, fmt.Errorf("config %s: %w", key, err))
		}
	})
	return errors.Join(errs...)
}
