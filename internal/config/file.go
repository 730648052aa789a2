package config

import (
	"flag"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	apperrors "github.com/agbru/fibseq/internal/errors"
)

// FileConfig is the decoded form of an HCL configuration file. Every
// attribute is optional; absent attributes stay nil and leave the default
// in place.
//
//	n        = 20
//	workers  = 4
//	pool     = "pond"
//	timeout  = "30s"
//	no_pause = true
type FileConfig struct {
	N           *int    `hcl:"n,optional"`
	Workers     *int    `hcl:"workers,optional"`
	Pool        *string `hcl:"pool,optional"`
	Algo        *string `hcl:"algo,optional"`
	Progress    *string `hcl:"progress,optional"`
	Format      *string `hcl:"format,optional"`
	Timeout     *string `hcl:"timeout,optional"`
	MaxAttempts *int    `hcl:"max_attempts,optional"`
	NoPause     *bool   `hcl:"no_pause,optional"`
	Quiet       *bool   `hcl:"quiet,optional"`
	Verbose     *bool   `hcl:"verbose,optional"`
	NoColor     *bool   `hcl:"no_color,optional"`
	TUI         *bool   `hcl:"tui,optional"`
	Metrics     *bool   `hcl:"metrics,optional"`
}

// LoadFile parses and decodes the HCL file at path.
func LoadFile(path string) (FileConfig, error) {
	var fc FileConfig
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return fc, apperrors.NewConfigError("parsing config file %s: %v", path, diags)
	}
	if diags := gohcl.DecodeBody(file.Body, nil, &fc); diags.HasErrors() {
		return fc, apperrors.NewConfigError("decoding config file %s: %v", path, diags)
	}
	if fc.Timeout != nil {
		if _, err := time.ParseDuration(*fc.Timeout); err != nil {
			return fc, apperrors.NewConfigError("config file %s: invalid timeout %q", path, *fc.Timeout)
		}
	}
	return fc, nil
}

// applyFileOverrides copies the attributes present in fc into config,
// skipping fields whose flag was set on the command line.
func applyFileOverrides(config *AppConfig, fc FileConfig, fs *flag.FlagSet) {
	setInt := func(dst *int, src *int, flags ...string) {
		if src != nil && !isFlagSetAny(fs, flags...) {
			*dst = *src
		}
	}
	setString := func(dst *string, src *string, flags ...string) {
		if src != nil && !isFlagSetAny(fs, flags...) {
			*dst = strings.ToLower(*src)
		}
	}
	setBool := func(dst *bool, src *bool, flags ...string) {
		if src != nil && !isFlagSetAny(fs, flags...) {
			*dst = *src
		}
	}

	setInt(&config.N, fc.N, "n")
	setInt(&config.Workers, fc.Workers, "workers", "w")
	setInt(&config.MaxAttempts, fc.MaxAttempts, "max-attempts")
	setString(&config.Pool, fc.Pool, "pool")
	setString(&config.Algo, fc.Algo, "algo")
	setString(&config.Progress, fc.Progress, "progress")
	setString(&config.Format, fc.Format, "format")
	if fc.Timeout != nil && !isFlagSet(fs, "timeout") {
		if d, err := time.ParseDuration(*fc.Timeout); err == nil {
			config.Timeout = d
		}
	}
	setBool(&config.NoPause, fc.NoPause, "no-pause")
	setBool(&config.Quiet, fc.Quiet, "quiet", "q")
	setBool(&config.Verbose, fc.Verbose, "verbose", "v")
	setBool(&config.NoColor, fc.NoColor, "no-color")
	setBool(&config.TUI, fc.TUI, "tui")
	setBool(&config.Metrics, fc.Metrics, "metrics")
}
