package flex

import (
	"testing"

	lua "github.com/yuin/gopher-lua"
)

func eval(t *testing.T, L *lua.LState, code string) lua.LValue {
	t.Helper()
	if err := L.DoString("result = " + code); err != nil {
		t.Fatalf("%s: %v", code, err)
	}
	return L.GetGlobal("result")
}

func TestTransformStrings(t *testing.T) {
	L := lua.NewState()
	defer L.Close()
	RegisterTransforms(L)

	tests := []struct {
		code string
		want string
	}{
		{`trim("  hello  ")`, "hello"},
		{`trim("")`, ""},
		{`lower("GRASS")`, "grass"},
		{`upper("grass")`, "GRASS"},
		{`clean_spaces("  a   b  c ")`, "a b c"},
		{`osm2mt.transforms.trim(" x ")`, "x"},
	}
	for _, tt := range tests {
		if got := eval(t, L, tt.code).String(); got != tt.want {
			t.Errorf("%s = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestTransformParseInt(t *testing.T) {
	L := lua.NewState()
	defer L.Close()
	RegisterTransforms(L)

	tests := []struct {
		input    string
		expected int64
	}{
		{"123", 123},
		{"-456", -456},
		{"  789  ", 789},
		{"3.14", 3},
		{"abc", 0},
		{"", 0},
	}
	for _, tt := range tests {
		result := int64(eval(t, L, `parse_int("`+tt.input+`")`).(lua.LNumber))
		if result != tt.expected {
			t.Errorf("parse_int(%q) = %d, want %d", tt.input, result, tt.expected)
		}
	}

	if got := int64(eval(t, L, `parse_int("invalid", 42)`).(lua.LNumber)); got != 42 {
		t.Errorf("parse_int with default = %d, want 42", got)
	}
}

func TestTransformParseLayer(t *testing.T) {
	L := lua.NewState()
	defer L.Close()
	RegisterTransforms(L)

	tests := []struct {
		input string
		want  int64
	}{
		{"1", 1},
		{" -2 ", -2},
		{"12", 12},
		{"1.5", 0},
		{"x", 0},
	}
	for _, tt := range tests {
		if got := int64(eval(t, L, `parse_layer("`+tt.input+`")`).(lua.LNumber)); got != tt.want {
			t.Errorf("parse_layer(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestTransformParseBoolAndReal(t *testing.T) {
	L := lua.NewState()
	defer L.Close()
	RegisterTransforms(L)

	for _, s := range []string{"yes", "TRUE", "1", "on"} {
		if eval(t, L, `parse_bool("`+s+`")`) != lua.LTrue {
			t.Errorf("parse_bool(%q) should be true", s)
		}
	}
	for _, s := range []string{"no", "0", "", "maybe"} {
		if eval(t, L, `parse_bool("`+s+`")`) != lua.LFalse {
			t.Errorf("parse_bool(%q) should be false", s)
		}
	}
	if got := float64(eval(t, L, `parse_real("2.5")`).(lua.LNumber)); got != 2.5 {
		t.Errorf("parse_real = %v, want 2.5", got)
	}
}

func TestTransformHasTag(t *testing.T) {
	L := lua.NewState()
	defer L.Close()
	RegisterTransforms(L)

	if err := L.DoString(`t = {landuse = "forest", name = ""}`); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		code string
		want lua.LValue
	}{
		{`has_tag(t, "landuse")`, lua.LTrue},
		{`has_tag(t, "name")`, lua.LTrue},
		{`has_tag(t, "natural")`, lua.LFalse},
		{`has_tag(t, "landuse", "forest")`, lua.LTrue},
		{`has_tag(t, "landuse", "meadow")`, lua.LFalse},
	}
	for _, tt := range tests {
		if got := eval(t, L, tt.code); got != tt.want {
			t.Errorf("%s = %v, want %v", tt.code, got, tt.want)
		}
	}
}
