package commands

import (
	"testing"

	"github.com/talevault/talevault/pkg/vars"
)

// TestParseValueInference tests kind inference from raw CLI values
func TestParseValueInference(t *testing.T) {
	cases := []struct {
		raw  string
		kind vars.Kind
	}{
		{"Avery", vars.KindText},
		{"true", vars.KindBoolean},
		{"false", vars.KindBoolean},
		{"100", vars.KindNumber},
		{"0.5", vars.KindNumber},
		{"-3", vars.KindNumber},
		{"1e3", vars.KindNumber},
		{"TRUE", vars.KindText},
		{"yes", vars.KindText},
	}

	for _, tc := range cases {
		value, err := parseValue(tc.raw, "")
		if err != nil {
			t.Errorf("parseValue(%q) failed: %v", tc.raw, err)
			continue
		}
		if value.Kind() != tc.kind {
			t.Errorf("parseValue(%q) inferred %s, want %s", tc.raw, value.Kind(), tc.kind)
		}
	}
}

// TestParseValueForced tests explicit --type handling
func TestParseValueForced(t *testing.T) {
	value, err := parseValue("42", "text")
	if err != nil {
		t.Fatalf("parseValue failed: %v", err)
	}
	if s, ok := value.AsText(); !ok || s != "42" {
		t.Errorf("expected literal text 42, got %v", value)
	}

	if _, err := parseValue("notanumber", "number"); err == nil {
		t.Error("expected error for unparseable number")
	}
	if _, err := parseValue("maybe", "boolean"); err == nil {
		t.Error("expected error for unparseable boolean")
	}
	if _, err := parseValue("x", "blob"); err == nil {
		t.Error("expected error for unknown type")
	}
}

// TestParseKindFlag tests the --type flag on get
func TestParseKindFlag(t *testing.T) {
	cases := map[string]vars.Kind{
		"":        vars.KindAny,
		"any":     vars.KindAny,
		"text":    vars.KindText,
		"string":  vars.KindText,
		"number":  vars.KindNumber,
		"boolean": vars.KindBoolean,
		"bool":    vars.KindBoolean,
	}
	for in, want := range cases {
		got, err := parseKindFlag(in)
		if err != nil {
			t.Errorf("parseKindFlag(%q) failed: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("parseKindFlag(%q) = %v, want %v", in, got, want)
		}
	}

	if _, err := parseKindFlag("blob"); err == nil {
		t.Error("expected error for unknown kind")
	}
}
