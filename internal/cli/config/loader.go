package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// ConfigFileName is the default config file name.
const ConfigFileName = "sqlsheet.yaml"

// ConfigFileNameAlt is the alternate config file name.
const ConfigFileNameAlt = "sqlsheet.yml"

// findConfigFile finds the config file to use.
// Priority: explicit path > ./sqlsheet.yaml > ./sqlsheet.yml > ~/.sqlsheet/...
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	candidates := []string{ConfigFileName, ConfigFileNameAlt}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(home, ".sqlsheet", ConfigFileName),
			filepath.Join(home, ".sqlsheet", ConfigFileNameAlt),
		)
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

// Load loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"format":   "text",
		"headings": true,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file, if one exists
	if path := findConfigFile(cfgFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	} else if cfgFile != "" {
		return nil, fmt.Errorf("config file not found: %s", cfgFile)
	}

	// 3. Environment variables: SQLSHEET_TARGET_DRIVER -> target.driver
	if err := k.Load(env.Provider("SQLSHEET_", ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, "SQLSHEET_"))
		if rest, ok := strings.CutPrefix(s, "target_"); ok {
			return "target." + rest
		}
		return s
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags, explicitly set ones only
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			switch key {
			case "driver":
				return "target.driver", posflag.FlagVal(flags, f)
			case "user":
				return "target.user", posflag.FlagVal(flags, f)
			case "password":
				return "target.password", posflag.FlagVal(flags, f)
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Credentials and DSNs may reference ${VAR} placeholders.
	cfg.Target.DSN = expandEnvVars(cfg.Target.DSN)
	cfg.Target.User = expandEnvVars(cfg.Target.User)
	cfg.Target.Password = expandEnvVars(cfg.Target.Password)

	// Bare titles get the default heading style.
	cfg.Title = StyledTitle(cfg.Title)

	return &cfg, nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars expands ${VAR} patterns with environment variable values.
// Unset variables are left as-is.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if val := os.Getenv(match[2 : len(match)-1]); val != "" {
			return val
		}
		return match
	})
}
