package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

// isFlagSet reports whether name was given on the command line.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// isFlagSetAny reports whether any alias of a flag was given.
func isFlagSetAny(fs *flag.FlagSet, names ...string) bool {
	for _, name := range names {
		if isFlagSet(fs, name) {
			return true
		}
	}
	return false
}

// envSetting binds one AppConfig field to its FIBSEQ_ variable and to the
// flags that take precedence over it. set reports false for values it could
// not parse, which leave the field untouched.
type envSetting struct {
	key   string
	flags []string
	set   func(c *AppConfig, raw string) bool
}

func intSetting(key string, field func(*AppConfig) *int, flags ...string) envSetting {
	return envSetting{key, flags, func(c *AppConfig, raw string) bool {
		v, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return false
		}
		*field(c) = v
		return true
	}}
}

func nameSetting(key string, field func(*AppConfig) *string, flags ...string) envSetting {
	return envSetting{key, flags, func(c *AppConfig, raw string) bool {
		*field(c) = strings.ToLower(strings.TrimSpace(raw))
		return true
	}}
}

func boolSetting(key string, field func(*AppConfig) *bool, flags ...string) envSetting {
	return envSetting{key, flags, func(c *AppConfig, raw string) bool {
		v, ok := parseBool(raw)
		if ok {
			*field(c) = v
		}
		return ok
	}}
}

func durationSetting(key string, field func(*AppConfig) *time.Duration, flags ...string) envSetting {
	return envSetting{key, flags, func(c *AppConfig, raw string) bool {
		v, err := time.ParseDuration(strings.TrimSpace(raw))
		if err != nil {
			return false
		}
		*field(c) = v
		return true
	}}
}

// envSettings lists every FIBSEQ_ variable except CONFIG and ENV_FILE,
// which ParseConfig resolves first because they locate other sources.
var envSettings = []envSetting{
	intSetting("N", func(c *AppConfig) *int { return &c.N }, "n"),
	intSetting("WORKERS", func(c *AppConfig) *int { return &c.Workers }, "workers", "w"),
	intSetting("MAX_ATTEMPTS", func(c *AppConfig) *int { return &c.MaxAttempts }, "max-attempts"),
	durationSetting("TIMEOUT", func(c *AppConfig) *time.Duration { return &c.Timeout }, "timeout"),
	nameSetting("POOL", func(c *AppConfig) *string { return &c.Pool }, "pool"),
	nameSetting("ALGO", func(c *AppConfig) *string { return &c.Algo }, "algo"),
	nameSetting("PROGRESS", func(c *AppConfig) *string { return &c.Progress }, "progress"),
	nameSetting("FORMAT", func(c *AppConfig) *string { return &c.Format }, "format"),
	boolSetting("NO_PAUSE", func(c *AppConfig) *bool { return &c.NoPause }, "no-pause"),
	boolSetting("QUIET", func(c *AppConfig) *bool { return &c.Quiet }, "quiet", "q"),
	boolSetting("VERBOSE", func(c *AppConfig) *bool { return &c.Verbose }, "verbose", "v"),
	boolSetting("NO_COLOR", func(c *AppConfig) *bool { return &c.NoColor }, "no-color"),
	boolSetting("TUI", func(c *AppConfig) *bool { return &c.TUI }, "tui"),
	boolSetting("METRICS", func(c *AppConfig) *bool { return &c.Metrics }, "metrics"),
}

// parseBool accepts true/1/yes and false/0/no in any case.
func parseBool(raw string) (value, ok bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes":
		return true, true
	case "false", "0", "no":
		return false, true
	}
	return false, false
}

// applyEnvOverrides copies non-empty FIBSEQ_ variables into config for the
// fields whose flag was not given. It returns the keys whose value could not
// be parsed.
func applyEnvOverrides(config *AppConfig, fs *flag.FlagSet) (ignored []string) {
	for _, s := range envSettings {
		if isFlagSetAny(fs, s.flags...) {
			continue
		}
		raw := os.Getenv(EnvPrefix + s.key)
		if raw == "" {
			continue
		}
		if !s.set(config, raw) {
			ignored = append(ignored, EnvPrefix+s.key)
		}
	}
	return ignored
}
