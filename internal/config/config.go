// Package config loads the optional kaleidoscope.toml file spec.md §5
// names: a log level, extra seeded binary-operator precedences, and a
// flag to print generated LLVM IR before executing it. Grounded on
// src/mods/load.go's tomlModuleFile pattern -- an unexported TOML
// shape unmarshaled with github.com/pelletier/go-toml, then copied
// field-by-field into the struct the rest of the compiler consumes.
package config

import (
	"fmt"
	"io/ioutil"
	"os"

	"github.com/pelletier/go-toml"

	"github.com/frederikgramkortegaard/rust-kaleidoscope/internal/report"
)

// Config is the resolved compiler configuration, independent of the
// TOML encoding used to load it.
type Config struct {
	LogLevel   report.Level
	Precedence map[byte]int
	PrintIR    bool
}

// Default returns the configuration used when no kaleidoscope.toml is
// present: verbose logging, no extra operator precedences, IR not
// printed.
func Default() *Config {
	return &Config{
		LogLevel:   report.LevelVerbose,
		Precedence: map[byte]int{},
		PrintIR:    false,
	}
}

// tomlConfig is the on-disk shape of kaleidoscope.toml.
type tomlConfig struct {
	LogLevel   string         `toml:"log-level"`
	Precedence map[string]int `toml:"precedence,omitempty"`
	PrintIR    bool           `toml:"print-ir"`
}

var logLevelNames = map[string]report.Level{
	"silent":  report.LevelSilent,
	"error":   report.LevelError,
	"warn":    report.LevelWarn,
	"verbose": report.LevelVerbose,
}

// Load reads and validates path, returning Default() unmodified if the
// file does not exist. A malformed file, an unknown log level, or a
// multi-character precedence key is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return cfg, nil
	} else if err != nil {
		return nil, err
	}
	defer f.Close()

	buf, err := ioutil.ReadAll(f)
	if err != nil {
		return nil, err
	}

	tc := &tomlConfig{}
	if err := toml.Unmarshal(buf, tc); err != nil {
		return nil, fmt.Errorf("malformed config at %s: %w", path, err)
	}

	if tc.LogLevel != "" {
		lvl, ok := logLevelNames[tc.LogLevel]
		if !ok {
			return nil, fmt.Errorf("%s: unknown log level %q", path, tc.LogLevel)
		}
		cfg.LogLevel = lvl
	}

	for op, prec := range tc.Precedence {
		if len(op) != 1 {
			return nil, fmt.Errorf("%s: precedence key %q must name a single operator character", path, op)
		}
		cfg.Precedence[op[0]] = prec
	}

	cfg.PrintIR = tc.PrintIR

	return cfg, nil
}
