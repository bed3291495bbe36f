// Package flex runs user Lua scripts that override area surface rules.
package flex

import (
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/wegman-software/osm2mt-go/internal/logger"
	"github.com/wegman-software/osm2mt-go/internal/style"
	"github.com/wegman-software/osm2mt-go/internal/tags"
)

// SurfaceCallback is the global function a rules script may define
const SurfaceCallback = "classify_surface"

// Rules wraps a Lua state holding a rules script.
// A single LState is not goroutine safe, so calls are serialized.
type Rules struct {
	L        *lua.LState
	mu       sync.Mutex
	classify lua.LValue
	errors   int
}

// NewRules creates a Lua state with the osm2mt helper API registered
func NewRules() *Rules {
	L := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	r := &Rules{L: L, classify: lua.LNil}
	r.registerAPI()
	return r
}

// LoadRules creates a Rules and runs the script at path
func LoadRules(path string) (*Rules, error) {
	r := NewRules()
	if err := r.LoadFile(path); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

// Close releases Lua resources
func (r *Rules) Close() {
	r.L.Close()
}

func (r *Rules) registerAPI() {
	osm2mt := r.L.NewTable()
	osm2mt.RawSetString("version", lua.LString("1.0.0"))

	levels := r.L.NewTable()
	for _, l := range style.Levels {
		levels.RawSetString(string(l), lua.LString(l))
	}
	osm2mt.RawSetString("levels", levels)

	r.L.SetGlobal("osm2mt", osm2mt)
	RegisterTransforms(r.L)
	r.L.SetGlobal("print", r.L.NewFunction(r.luaPrint))
}

// LoadFile loads and executes a Lua rules file
func (r *Rules) LoadFile(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.L.DoFile(path); err != nil {
		return fmt.Errorf("failed to load Lua file: %w", err)
	}
	r.classify = r.L.GetGlobal(SurfaceCallback)
	return nil
}

// LoadString loads and executes Lua code from a string
func (r *Rules) LoadString(code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.L.DoString(code); err != nil {
		return fmt.Errorf("failed to load Lua code: %w", err)
	}
	r.classify = r.L.GetGlobal(SurfaceCallback)
	return nil
}

// HasSurface reports whether the script defines classify_surface
func (r *Rules) HasSurface() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.classify.Type() == lua.LTFunction
}

// Errors returns how many callback invocations raised a Lua error
func (r *Rules) Errors() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.errors
}

// Surface calls classify_surface(tags). ok is false when the script has no
// callback, returns nil, or fails; the caller then keeps its own result.
func (r *Rules) Surface(t tags.Tags) (style.Assignment, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.classify.Type() != lua.LTFunction {
		return style.Assignment{}, false
	}

	err := r.L.CallByParam(lua.P{
		Fn:      r.classify,
		NRet:    2,
		Protect: true,
	}, r.tagsToLua(t))
	if err != nil {
		r.errors++
		logger.Get().Warn("Lua classify_surface failed", zap.String("tags", t.String()), zap.Error(err))
		return style.Assignment{}, false
	}

	surface := r.L.Get(-2)
	level := r.L.Get(-1)
	r.L.Pop(2)

	if surface.Type() != lua.LTString {
		return style.Assignment{}, false
	}
	a := style.Assignment{Surface: surface.String(), Level: style.LevelLow}
	if level.Type() == lua.LTString {
		a.Level = style.Level(level.String())
	}
	return a, true
}

func (r *Rules) tagsToLua(t tags.Tags) *lua.LTable {
	tbl := r.L.CreateTable(0, len(t))
	for k, v := range t {
		tbl.RawSetString(k, lua.LString(v))
	}
	return tbl
}

func (r *Rules) luaPrint(L *lua.LState) int {
	top := L.GetTop()
	args := make([]string, 0, top)
	for i := 1; i <= top; i++ {
		args = append(args, L.ToStringMeta(L.Get(i)).String())
	}
	logger.Get().Info("lua", zap.Strings("args", args))
	return 0
}
