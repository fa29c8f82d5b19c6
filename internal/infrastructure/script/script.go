// Package script produces character inputs from tengo programs.
//
// A program runs once per frame. It reads the character state from
// read-only globals and writes its intent to output globals, which are
// reset to zero before every run. The map global memory survives between
// runs.
package script

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"github.com/ertsnom99/plateformer-sub000/internal/domain/movement"
)

// Ext is the file extension of input scripts
const Ext = ".tengo"

// State is what a script sees of its character.
type State struct {
	Frame    int
	Grounded bool
	Sliding  bool
	Dashing  bool
	X, Y     float64
	VX, VY   float64
	Facing   float64
}

var inputGlobals = map[string]any{
	"frame":    0,
	"grounded": false,
	"sliding":  false,
	"dashing":  false,
	"x":        0.0,
	"y":        0.0,
	"vx":       0.0,
	"vy":       0.0,
	"facing":   0.0,
}

var outputGlobals = map[string]any{
	"horizontal":   0.0,
	"jump":         false,
	"jumpPressed":  false,
	"jumpReleased": false,
	"dash":         false,
}

// Script is a compiled input program. It is not safe for concurrent use;
// give every character its own Clone.
type Script struct {
	name     string
	compiled *tengo.Compiled
	memory   *tengo.Map
}

// Compile compiles src. name is used in error messages.
func Compile(name string, src []byte) (*Script, error) {
	s := tengo.NewScript(src)
	for k, v := range inputGlobals {
		if err := s.Add(k, v); err != nil {
			return nil, fmt.Errorf("failed to declare %s in %s: %w", k, name, err)
		}
	}
	for k, v := range outputGlobals {
		if err := s.Add(k, v); err != nil {
			return nil, fmt.Errorf("failed to declare %s in %s: %w", k, name, err)
		}
	}
	if err := s.Add("memory", map[string]any{}); err != nil {
		return nil, fmt.Errorf("failed to declare memory in %s: %w", name, err)
	}
	s.SetImports(stdlib.GetModuleMap("math", "rand"))

	compiled, err := s.Compile()
	if err != nil {
		return nil, fmt.Errorf("failed to compile %s: %w", name, err)
	}
	return &Script{
		name:     name,
		compiled: compiled,
		memory:   &tengo.Map{Value: map[string]tengo.Object{}},
	}, nil
}

// Load reads and compiles scripts/<name>.tengo from fsys.
func Load(fsys fs.FS, name string) (*Script, error) {
	p := path.Join("scripts", name+Ext)
	data, err := fs.ReadFile(fsys, p)
	if err != nil {
		return nil, fmt.Errorf("failed to read script %s: %w", p, err)
	}
	return Compile(name, data)
}

// Name returns the name the script was compiled with
func (s *Script) Name() string {
	return s.name
}

// Clone returns a copy with its own globals and an empty memory.
func (s *Script) Clone() *Script {
	return &Script{
		name:     s.name,
		compiled: s.compiled.Clone(),
		memory:   &tengo.Map{Value: map[string]tengo.Object{}},
	}
}

// Run evaluates the script for one frame.
func (s *Script) Run(ctx context.Context, st State) (movement.Inputs, error) {
	values := map[string]any{
		"frame":    st.Frame,
		"grounded": st.Grounded,
		"sliding":  st.Sliding,
		"dashing":  st.Dashing,
		"x":        st.X,
		"y":        st.Y,
		"vx":       st.VX,
		"vy":       st.VY,
		"facing":   st.Facing,
		"memory":   s.memory,
	}
	for k, v := range outputGlobals {
		values[k] = v
	}
	for k, v := range values {
		if err := s.compiled.Set(k, v); err != nil {
			return movement.Inputs{}, fmt.Errorf("failed to set %s in %s: %w", k, s.name, err)
		}
	}

	if err := s.compiled.RunContext(ctx); err != nil {
		return movement.Inputs{}, fmt.Errorf("failed to run %s: %w", s.name, err)
	}

	in := movement.Inputs{
		Horizontal:   s.compiled.Get("horizontal").Float(),
		Jump:         s.compiled.Get("jump").Bool(),
		JumpPressed:  s.compiled.Get("jumpPressed").Bool(),
		JumpReleased: s.compiled.Get("jumpReleased").Bool(),
		DashPressed:  s.compiled.Get("dash").Bool(),
	}
	return in.Clamped(), nil
}

// IsScriptFile reports whether p names an input script
func IsScriptFile(p string) bool {
	return strings.EqualFold(filepath.Ext(p), Ext)
}

// NameOf returns the script name for a script file path.
func NameOf(p string) string {
	base := path.Base(strings.ReplaceAll(p, `\`, "/"))
	return strings.TrimSuffix(base, path.Ext(base))
}
