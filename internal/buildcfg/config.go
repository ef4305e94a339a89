// Package buildcfg holds builder options and their rill.toml manifest form.
package buildcfg

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"rill/internal/trace"
)

// Options tunes one builder. The zero value is not valid; start from
// Default().
type Options struct {
	// LocalPrefix seeds fresh names for dataflow-local vars.
	LocalPrefix string `toml:"local_prefix"`
	// GlobalPrefix seeds fresh names for block outputs and global vars.
	GlobalPrefix string `toml:"global_prefix"`
	// DiagLimit caps diagnostics per inference call-site.
	DiagLimit int `toml:"diag_limit"`
	// TraceLevel is the textual trace level ("off", "session", "block",
	// "emit").
	TraceLevel string `toml:"trace_level"`
}

func Default() Options {
	return Options{
		LocalPrefix:  "lv",
		GlobalPrefix: "gv",
		DiagLimit:    64,
		TraceLevel:   "off",
	}
}

// Validate normalizes opts and rejects unusable values.
func (o *Options) Validate() error {
	if o.LocalPrefix == "" || o.GlobalPrefix == "" {
		return fmt.Errorf("buildcfg: name prefixes must be non-empty")
	}
	if o.LocalPrefix == o.GlobalPrefix {
		return fmt.Errorf("buildcfg: local and global prefixes must differ (%q)", o.LocalPrefix)
	}
	if o.DiagLimit <= 0 {
		return fmt.Errorf("buildcfg: diag_limit must be positive, got %d", o.DiagLimit)
	}
	if _, err := trace.ParseLevel(o.TraceLevel); err != nil {
		return fmt.Errorf("buildcfg: %w", err)
	}
	return nil
}

// Level returns the parsed trace level. Call Validate first; an invalid
// string degrades to off here.
func (o Options) Level() trace.Level {
	lvl, err := trace.ParseLevel(o.TraceLevel)
	if err != nil {
		return trace.LevelOff
	}
	return lvl
}

type manifest struct {
	Builder Options `toml:"builder"`
}

// Load reads the [builder] section of a rill.toml manifest, layering it over
// defaults. Keys absent from the file keep their default values.
func Load(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("buildcfg: %w", err)
	}
	return Parse(string(data))
}

// Parse decodes manifest text. Unknown keys are rejected so typos surface
// instead of silently keeping defaults.
func Parse(text string) (Options, error) {
	m := manifest{Builder: Default()}
	meta, err := toml.Decode(text, &m)
	if err != nil {
		return Options{}, fmt.Errorf("buildcfg: failed to parse TOML: %w", err)
	}
	if undec := meta.Undecoded(); len(undec) > 0 {
		return Options{}, fmt.Errorf("buildcfg: unknown manifest key %q", undec[0].String())
	}
	if err := m.Builder.Validate(); err != nil {
		return Options{}, err
	}
	return m.Builder, nil
}
