package flex

import (
	"regexp"
	"strconv"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// Tag helper functions for rules scripts

var whitespaceRegex = regexp.MustCompile(`\s+`)

// RegisterTransforms registers the helper functions in the Lua state,
// under osm2mt.transforms and as globals.
func RegisterTransforms(L *lua.LState) {
	helpers := map[string]lua.LGFunction{
		"trim":         luaTrim,
		"lower":        luaLower,
		"upper":        luaUpper,
		"clean_spaces": luaCleanSpaces,
		"parse_int":    luaParseInt,
		"parse_real":   luaParseReal,
		"parse_bool":   luaParseBool,
		"parse_layer":  luaParseLayer,
		"has_tag":      luaHasTag,
	}

	transforms := L.NewTable()
	for name, fn := range helpers {
		L.SetField(transforms, name, L.NewFunction(fn))
		L.SetGlobal(name, L.NewFunction(fn))
	}

	osm2mt := L.GetGlobal("osm2mt")
	if osm2mt == lua.LNil {
		osm2mt = L.NewTable()
		L.SetGlobal("osm2mt", osm2mt)
	}
	L.SetField(osm2mt.(*lua.LTable), "transforms", transforms)
}

func luaTrim(L *lua.LState) int {
	L.Push(lua.LString(strings.TrimSpace(L.CheckString(1))))
	return 1
}

func luaLower(L *lua.LState) int {
	L.Push(lua.LString(strings.ToLower(L.CheckString(1))))
	return 1
}

func luaUpper(L *lua.LState) int {
	L.Push(lua.LString(strings.ToUpper(L.CheckString(1))))
	return 1
}

// luaCleanSpaces collapses runs of whitespace and trims
func luaCleanSpaces(L *lua.LState) int {
	s := whitespaceRegex.ReplaceAllString(L.CheckString(1), " ")
	L.Push(lua.LString(strings.TrimSpace(s)))
	return 1
}

// luaParseInt parses an integer with an optional default; floats truncate
func luaParseInt(L *lua.LState) int {
	s := strings.TrimSpace(L.CheckString(1))
	def := int64(0)
	if L.GetTop() >= 2 {
		def = L.CheckInt64(2)
	}

	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		L.Push(lua.LNumber(v))
	} else if f, err := strconv.ParseFloat(s, 64); err == nil {
		L.Push(lua.LNumber(int64(f)))
	} else {
		L.Push(lua.LNumber(def))
	}
	return 1
}

func luaParseReal(L *lua.LState) int {
	s := strings.TrimSpace(L.CheckString(1))
	def := float64(0)
	if L.GetTop() >= 2 {
		def = float64(L.CheckNumber(2))
	}

	if v, err := strconv.ParseFloat(s, 64); err == nil {
		L.Push(lua.LNumber(v))
	} else {
		L.Push(lua.LNumber(def))
	}
	return 1
}

// luaParseBool treats yes/true/1/on as true and everything else as false
func luaParseBool(L *lua.LState) int {
	switch strings.ToLower(strings.TrimSpace(L.CheckString(1))) {
	case "yes", "true", "1", "on":
		L.Push(lua.LTrue)
	default:
		L.Push(lua.LFalse)
	}
	return 1
}

// luaParseLayer parses a layer value the way the deriver does: integer or 0
func luaParseLayer(L *lua.LState) int {
	layer, err := strconv.Atoi(strings.TrimSpace(L.CheckString(1)))
	if err != nil {
		layer = 0
	}
	L.Push(lua.LNumber(layer))
	return 1
}

// luaHasTag reports whether tags[key] is set, optionally equal to value
// Usage: has_tag(tags, "landuse") or has_tag(tags, "landuse", "forest")
func luaHasTag(L *lua.LState) int {
	t := L.CheckTable(1)
	key := L.CheckString(2)

	v := t.RawGetString(key)
	if v == lua.LNil {
		L.Push(lua.LFalse)
		return 1
	}
	if L.GetTop() >= 3 {
		L.Push(lua.LBool(lua.LVAsString(v) == L.CheckString(3)))
		return 1
	}
	L.Push(lua.LTrue)
	return 1
}
