package vars

import (
	"fmt"
	"time"
)

// Kind identifies the storage type of a variable.
type Kind string

const (
	// KindText stores string values.
	KindText Kind = "text"

	// KindNumber stores floating point values.
	KindNumber Kind = "number"

	// KindBoolean stores boolean values.
	KindBoolean Kind = "boolean"

	// KindAny is accepted by reads only: the store probes text, then
	// number, then boolean and returns the first hit.
	KindAny Kind = "any"
)

// Valid reports whether k names a storable kind. KindAny is a read
// selector, not a storable kind.
func (k Kind) Valid() bool {
	switch k {
	case KindText, KindNumber, KindBoolean:
		return true
	}
	return false
}

// table returns the table backing this kind.
func (k Kind) table() string {
	switch k {
	case KindText:
		return "text_variables"
	case KindNumber:
		return "number_variables"
	case KindBoolean:
		return "boolean_variables"
	}
	return ""
}

// probeOrder is the fixed order used by KindAny reads and by Contains.
var probeOrder = []Kind{KindText, KindNumber, KindBoolean}

// Value is a tagged variant over the three storable kinds. The zero
// Value has no kind and is returned by failed reads.
type Value struct {
	kind    Kind
	text    string
	number  float64
	boolean bool
}

// Text creates a text-kinded value.
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// Number creates a number-kinded value.
func Number(f float64) Value {
	return Value{kind: KindNumber, number: f}
}

// Boolean creates a boolean-kinded value.
func Boolean(b bool) Value {
	return Value{kind: KindBoolean, boolean: b}
}

// Kind returns the kind tag of the value, or "" for the zero Value.
func (v Value) Kind() Kind {
	return v.kind
}

// AsText returns the string payload and whether the value is text-kinded.
func (v Value) AsText() (string, bool) {
	return v.text, v.kind == KindText
}

// AsNumber returns the float payload and whether the value is number-kinded.
func (v Value) AsNumber() (float64, bool) {
	return v.number, v.kind == KindNumber
}

// AsBoolean returns the bool payload and whether the value is boolean-kinded.
func (v Value) AsBoolean() (bool, bool) {
	return v.boolean, v.kind == KindBoolean
}

// Interface returns the payload as an untyped value, for callers that
// only need to render it (CLI output, script conversion).
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		return v.number
	case KindBoolean:
		return v.boolean
	}
	return nil
}

// String renders the payload for human output.
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		return fmt.Sprintf("%g", v.number)
	case KindBoolean:
		return fmt.Sprintf("%t", v.boolean)
	}
	return "<unset>"
}

// Snapshot is the result of GetAllVariables: one map per kind.
type Snapshot struct {
	Numbers  map[string]float64 `json:"numbers" yaml:"numbers"`
	Strings  map[string]string  `json:"strings" yaml:"strings"`
	Booleans map[string]bool    `json:"booleans" yaml:"booleans"`
}

// Len returns the total number of variables in the snapshot.
func (s Snapshot) Len() int {
	return len(s.Numbers) + len(s.Strings) + len(s.Booleans)
}

// Config holds SQLite store configuration.
type Config struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}
