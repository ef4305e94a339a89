package buildcfg

import (
	"strings"
	"testing"

	"rill/internal/trace"
)

func TestDefaultValidates(t *testing.T) {
	opts := Default()
	if err := opts.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
	if opts.LocalPrefix != "lv" || opts.GlobalPrefix != "gv" {
		t.Fatalf("unexpected default prefixes: %q/%q", opts.LocalPrefix, opts.GlobalPrefix)
	}
}

func TestParseOverridesDefaults(t *testing.T) {
	opts, err := Parse(`
[builder]
local_prefix = "t"
trace_level = "block"
`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if opts.LocalPrefix != "t" {
		t.Fatalf("local_prefix = %q, want t", opts.LocalPrefix)
	}
	if opts.GlobalPrefix != "gv" {
		t.Fatalf("unset keys must keep defaults, got %q", opts.GlobalPrefix)
	}
	if opts.Level() != trace.LevelBlock {
		t.Fatalf("trace level = %v, want block", opts.Level())
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse(`
[builder]
local_prefx = "t"
`)
	if err == nil || !strings.Contains(err.Error(), "unknown manifest key") {
		t.Fatalf("typoed keys must be rejected, got %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []Options{
		{LocalPrefix: "", GlobalPrefix: "gv", DiagLimit: 8, TraceLevel: "off"},
		{LocalPrefix: "v", GlobalPrefix: "v", DiagLimit: 8, TraceLevel: "off"},
		{LocalPrefix: "lv", GlobalPrefix: "gv", DiagLimit: 0, TraceLevel: "off"},
		{LocalPrefix: "lv", GlobalPrefix: "gv", DiagLimit: 8, TraceLevel: "loud"},
	}
	for i, opts := range cases {
		if err := opts.Validate(); err == nil {
			t.Fatalf("case %d must fail validation", i)
		}
	}
}
