package dialogue

import (
	"fmt"

	"go.starlark.net/starlark"

	"github.com/talevault/talevault/pkg/vars"
)

// toStarlark converts a store value to a Starlark value. The zero
// Value converts to None.
func toStarlark(v vars.Value) starlark.Value {
	switch v.Kind() {
	case vars.KindText:
		s, _ := v.AsText()
		return starlark.String(s)
	case vars.KindNumber:
		n, _ := v.AsNumber()
		return starlark.Float(n)
	case vars.KindBoolean:
		b, _ := v.AsBoolean()
		return starlark.Bool(b)
	}
	return starlark.None
}

// fromStarlark converts a Starlark value to a store value. Ints and
// floats both map to the number kind; anything beyond the three
// storable kinds is rejected.
func fromStarlark(v starlark.Value) (vars.Value, error) {
	switch val := v.(type) {
	case starlark.String:
		return vars.Text(string(val)), nil
	case starlark.Bool:
		return vars.Boolean(bool(val)), nil
	case starlark.Int:
		i, ok := val.Int64()
		if !ok {
			return vars.Value{}, fmt.Errorf("integer too large to store as a number variable")
		}
		return vars.Number(float64(i)), nil
	case starlark.Float:
		return vars.Number(float64(val)), nil
	default:
		return vars.Value{}, fmt.Errorf("cannot store a %s as a variable (want string, int, float, or bool)", v.Type())
	}
}

// parseKind maps a script-facing kind string to a store kind.
func parseKind(s string) (vars.Kind, error) {
	switch s {
	case "", "any":
		return vars.KindAny, nil
	case "text", "string":
		return vars.KindText, nil
	case "number":
		return vars.KindNumber, nil
	case "boolean", "bool":
		return vars.KindBoolean, nil
	}
	return "", fmt.Errorf("unknown variable kind %q", s)
}

// snapshotToDict converts a full store snapshot into a Starlark dict.
func snapshotToDict(snap vars.Snapshot) (*starlark.Dict, error) {
	dict := starlark.NewDict(snap.Len())
	for name, v := range snap.Numbers {
		if err := dict.SetKey(starlark.String(name), starlark.Float(v)); err != nil {
			return nil, err
		}
	}
	for name, v := range snap.Strings {
		if err := dict.SetKey(starlark.String(name), starlark.String(v)); err != nil {
			return nil, err
		}
	}
	for name, v := range snap.Booleans {
		if err := dict.SetKey(starlark.String(name), starlark.Bool(v)); err != nil {
			return nil, err
		}
	}
	return dict, nil
}

// fromStarlarkGlobal converts an exported script global to a plain Go
// value for the run result. Values that are not storable kinds are
// rendered with String().
func fromStarlarkGlobal(v starlark.Value) interface{} {
	switch val := v.(type) {
	case starlark.NoneType:
		return nil
	case starlark.Bool:
		return bool(val)
	case starlark.Int:
		if i, ok := val.Int64(); ok {
			return i
		}
		return val.String()
	case starlark.Float:
		return float64(val)
	case starlark.String:
		return string(val)
	default:
		return val.String()
	}
}
