// SPDX-License-Identifier: MIT
package ir

import (
	"fmt"
	"time"

	"golang.org/x/mod/module"

	"github.com/chigraph/chigraph/backend"
	"github.com/chigraph/chigraph/nodetype"
	"github.com/chigraph/chigraph/nodetype/lang"
)

// Module is anything Context can hold by path: LangModule, a
// GraphModule, or a CModule (spec C5).
type Module interface {
	Path() string
	// Dependencies lists the module paths this module imports, in
	// declaration order (spec §4.6's forward-declaration/link order).
	Dependencies() []string
	// Types returns every NodeType this module contributes to its own
	// namespace, for registry lookups during compilation. ctx resolves
	// any backend types the synthesis needs (GraphStruct's make/break).
	Types(ctx *Context) []nodetype.NodeType
}

// LangModule is the always-present, always-imported built-in module
// (spec §3's "LangModule"). Its node types never change across a
// Context's lifetime, so they are computed once at construction.
type LangModule struct {
	types []nodetype.NodeType
}

// NewLangModule constructs the singleton LangModule value. A Context
// holds exactly one.
func NewLangModule() *LangModule {
	types := append([]nodetype.NodeType(nil), lang.Builtins()...)
	types = append(types, lang.Arithmetic()...)
	return &LangModule{types: types}
}

func (m *LangModule) Path() string                        { return lang.ModulePath }
func (m *LangModule) Dependencies() []string               { return nil }
func (m *LangModule) Types(ctx *Context) []nodetype.NodeType { return m.types }

// GraphOption configures a GraphModule at construction time, following
// the teacher's functional-option builder idiom (lvlath/builder).
type GraphOption func(*GraphModule)

// WithDependency declares a module path this GraphModule imports (spec
// §4.6's per-module dependency list).
func WithDependency(path string) GraphOption {
	return func(m *GraphModule) { m.dependencies = append(m.dependencies, path) }
}

// GraphModule is a user-authored module: a set of GraphFunctions and
// GraphStructs plus the module paths it depends on (spec C5).
type GraphModule struct {
	path         string
	dependencies []string
	functions    map[string]*GraphFunction
	funcOrder    []string
	structs      map[string]*GraphStruct
	structOrder  []string
	lastEdit     time.Time
}

// NewGraphModule creates an empty GraphModule at path, applying opts in
// order.
func NewGraphModule(path string, opts ...GraphOption) *GraphModule {
	m := &GraphModule{
		path:      path,
		functions: make(map[string]*GraphFunction),
		structs:   make(map[string]*GraphStruct),
		lastEdit:  time.Time{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *GraphModule) Path() string          { return m.path }
func (m *GraphModule) Dependencies() []string { return append([]string(nil), m.dependencies...) }
func (m *GraphModule) LastEditTime() time.Time { return m.lastEdit }
func (m *GraphModule) Touch(t time.Time)        { m.lastEdit = t }

// Types returns every make/break node type synthesized from this
// module's structs, plus each function's synthesized entry node type
// (spec §3). Exit and local get/set node types are synthesized later,
// per-compile, by funccompile — they need concrete backend values (out
// parameters, stack cells) that exist only while a function is compiled.
func (m *GraphModule) Types(ctx *Context) []nodetype.NodeType {
	var out []nodetype.NodeType
	for _, name := range m.structOrder {
		s := m.structs[name]
		s.DataType(ctx)
		out = append(out, s.NodeTypes()...)
	}
	for _, name := range m.funcOrder {
		f := m.functions[name]
		out = append(out, f.SynthesizedTypes()...)
	}
	return out
}

// AddStruct registers s, keyed by its Name.
func (m *GraphModule) AddStruct(s *GraphStruct) {
	if _, exists := m.structs[s.Name]; !exists {
		m.structOrder = append(m.structOrder, s.Name)
	}
	m.structs[s.Name] = s
}

// Struct looks up a previously added GraphStruct by name.
func (m *GraphModule) Struct(name string) (*GraphStruct, bool) {
	s, ok := m.structs[name]
	return s, ok
}

// Structs returns every struct this module declares, in declaration
// order.
func (m *GraphModule) Structs() []*GraphStruct {
	out := make([]*GraphStruct, 0, len(m.structOrder))
	for _, name := range m.structOrder {
		out = append(out, m.structs[name])
	}
	return out
}

// AddFunction registers f, keyed by its Name.
func (m *GraphModule) AddFunction(f *GraphFunction) {
	if _, exists := m.functions[f.Name]; !exists {
		m.funcOrder = append(m.funcOrder, f.Name)
	}
	m.functions[f.Name] = f
}

// Function looks up a previously added GraphFunction by name.
func (m *GraphModule) Function(name string) (*GraphFunction, bool) {
	f, ok := m.functions[name]
	return f, ok
}

// Functions returns every function this module declares, in
// declaration order.
func (m *GraphModule) Functions() []*GraphFunction {
	out := make([]*GraphFunction, 0, len(m.funcOrder))
	for _, name := range m.funcOrder {
		out = append(out, m.functions[name])
	}
	return out
}

// CModule is a foreign-language module compiled externally and linked
// in as bitcode (spec C5's "CModule"): Chigraph never parses its
// source, only runs the configured compiler against it and links the
// resulting object (spec §4.6 step 5, §5's subprocess boundary).
type CModule struct {
	path        string
	sourceFiles []string
	compiler    string
	bitcode     []byte
}

// NewCModule declares a CModule at path, compiled from sourceFiles with
// the named external compiler (e.g. "cc", "clang").
func NewCModule(path, compiler string, sourceFiles ...string) *CModule {
	return &CModule{path: path, compiler: compiler, sourceFiles: append([]string(nil), sourceFiles...)}
}

func (m *CModule) Path() string                        { return m.path }
func (m *CModule) Dependencies() []string               { return nil }
func (m *CModule) Types(ctx *Context) []nodetype.NodeType { return nil }
func (m *CModule) SourceFiles() []string      { return append([]string(nil), m.sourceFiles...) }
func (m *CModule) Compiler() string           { return m.compiler }

// SetBitcode records the compiled bitcode blob procutil produced.
func (m *CModule) SetBitcode(b []byte) { m.bitcode = b }

// Bitcode returns the most recently compiled bitcode, or nil if this
// CModule has not been compiled yet this session.
func (m *CModule) Bitcode() []byte { return m.bitcode }

// Context owns every Module in a compilation, keyed by path, plus the
// single backend.Context all of them compile against (spec §3: "a
// Context owns its Modules and a single Backend handle for their
// shared lifetime").
type Context struct {
	backend backend.Context
	lang    *LangModule
	modules map[string]Module
	order   []string
}

// NewContext creates a Context backed by bk, pre-registering LangModule.
func NewContext(bk backend.Context) *Context {
	c := &Context{backend: bk, lang: NewLangModule(), modules: make(map[string]Module)}
	c.modules[c.lang.Path()] = c.lang
	return c
}

// Backend returns the backend.Context every Module in this Context
// compiles against.
func (c *Context) Backend() backend.Context { return c.backend }

// Lang returns the Context's single LangModule.
func (c *Context) Lang() *LangModule { return c.lang }

// AddModule registers m at its own Path, failing if that path is
// already taken (LangModule's empty path is reserved and can never be
// overwritten this way) or if Path is not a syntactically valid Go
// module path (spec §4.6's module paths are import-path-shaped, e.g.
// "github.com/user/proj/util").
func (c *Context) AddModule(m Module) error {
	if err := module.CheckPath(m.Path()); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidModulePath, m.Path(), err)
	}
	if _, exists := c.modules[m.Path()]; exists {
		return fmt.Errorf("%w: %s", ErrModuleExists, m.Path())
	}
	c.modules[m.Path()] = m
	c.order = append(c.order, m.Path())
	return nil
}

// Module looks up a registered Module by path.
func (c *Context) Module(path string) (Module, error) {
	m, ok := c.modules[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrModuleNotFound, path)
	}
	return m, nil
}

// Modules returns every GraphModule/CModule registered, in registration
// order (LangModule is excluded; it is always implicitly available).
func (c *Context) Modules() []Module {
	out := make([]Module, 0, len(c.order))
	for _, path := range c.order {
		out = append(out, c.modules[path])
	}
	return out
}
