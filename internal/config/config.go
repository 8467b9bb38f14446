package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds one invocation's settings, resolved from CLI flags,
// environment variables, and an optional server profile. Immutable after Load.
type Config struct {
	Server    string `mapstructure:"server"`
	Resource  string `mapstructure:"resource"`
	Method    string `mapstructure:"request"`
	Insecure  bool   `mapstructure:"insecure"`
	CACert    string `mapstructure:"ca-cert"`
	Data      string `mapstructure:"data"`
	File      string `mapstructure:"file"`
	Traceback bool   `mapstructure:"traceback"`
	Debug     bool   `mapstructure:"debug"`
	Comment   string `mapstructure:"comment"`
	Profile   string `mapstructure:"profile"`
}

// Keys that participate in flag/env/profile resolution.
var settingKeys = []string{
	"server", "resource", "request", "insecure", "ca-cert",
	"data", "file", "traceback", "debug", "comment", "profile",
}

// Load resolves configuration with precedence flag > profile > environment.
// Environment variables use the CATCTL_ prefix (dashes become underscores,
// e.g. CATCTL_CA_CERT); a .env file in the working directory is honored.
func Load(flags *pflag.FlagSet) (*Config, error) {
	_ = godotenv.Load(".env")

	v := viper.New()
	v.SetEnvPrefix("catctl")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("request", "GET")

	for _, key := range settingKeys {
		if f := flags.Lookup(key); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %q: %w", key, err)
			}
		}
	}

	if name := v.GetString("profile"); name != "" {
		profile, err := lookupProfile(name)
		if err != nil {
			return nil, err
		}
		applyProfile(v, flags, profile)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyProfile fills in profile values for every setting the user did not
// pass as an explicit flag. viper.Set outranks bound flags, so flags that
// were changed are skipped to keep flag > profile precedence. The insecure
// and ca-cert settings exclude each other, so an explicit flag for either
// one also suppresses the profile's value for the other.
func applyProfile(v *viper.Viper, flags *pflag.FlagSet, p Profile) {
	changed := func(key string) bool {
		f := flags.Lookup(key)
		return f != nil && f.Changed
	}
	if p.Server != "" && !changed("server") {
		v.Set("server", p.Server)
	}
	if p.CACert != "" && !changed("ca-cert") && !changed("insecure") {
		v.Set("ca-cert", p.CACert)
	}
	if p.Insecure && !changed("insecure") && !changed("ca-cert") {
		v.Set("insecure", true)
	}
	if p.Comment != "" && !changed("comment") {
		v.Set("comment", p.Comment)
	}
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Server) == "" {
		return fmt.Errorf("no server specified (use --server or CATCTL_SERVER)")
	}
	if c.Insecure && c.CACert != "" {
		return fmt.Errorf("--insecure and --ca-cert are mutually exclusive")
	}
	if c.Data != "" && c.File != "" {
		return fmt.Errorf("--data and --file are mutually exclusive")
	}
	return nil
}

// LogLevel maps the debug flag onto the logger's level.
func (c *Config) LogLevel() string {
	if c.Debug {
		return "debug"
	}
	return "warn"
}
