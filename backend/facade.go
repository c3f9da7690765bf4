// SPDX-License-Identifier: MIT
package backend

// Type is an opaque backend type handle (spec C3's "backend type handle").
type Type any

// Value is an opaque backend SSA/constant/pointer value handle.
type Value any

// Block is an opaque backend basic-block handle.
type Block any

// DebugType is an opaque backend debug-info type handle (spec C3's
// "debug-type handle").
type DebugType any

// DebugLocation is an opaque backend debug line-location handle.
type DebugLocation any

// Context owns backend-global state (the single handle a Chigraph
// Context, §3, holds for its whole lifetime) and is the factory for
// primitive types, constants, and modules.
type Context interface {
	// Primitive types. Pointer forms are derived by wrapping a base type
	// in PointerType, mirroring the syntactic pointer-suffix rule in
	// spec §3 ("LangModule ... pointer forms derived by syntactic
	// suffix").
	BoolType() Type
	IntType(bits int) Type
	FloatType() Type
	DoubleType() Type
	VoidType() Type
	PointerType(elem Type) Type
	// StructType declares an aggregate type with the given field types,
	// in order. Chigraph's GraphStruct (spec C3) compiles to one of
	// these, with make/break node types using ExtractField/InsertField
	// to build and take apart values of it.
	StructType(fields []Type) Type

	// Constants.
	ConstInt(t Type, v int64) Value
	ConstFloat(t Type, v float64) Value
	ConstBool(v bool) Value
	ConstString(s string) Value
	// Undef returns an unspecified-but-valid value of t, the starting
	// point for building up an aggregate field by field with
	// InsertField (mirroring LLVM's undef + insertvalue idiom).
	Undef(t Type) Value

	// NewModule creates an empty Module named name within this Context.
	NewModule(name string) Module

	// Builder returns a Builder that emits into b. Each call to a
	// node's codegen hook (spec §4.2) obtains a fresh Builder for its
	// entry_block this way.
	Builder(b Block) Builder

	// ParseBitcode parses a previously written bitcode blob into a new
	// Module owned by this Context.
	ParseBitcode(data []byte) (Module, error)

	// Dispose releases the backend context. Only called once, at process
	// shutdown or test teardown.
	Dispose()
}

// Module is one compiled translation unit: a set of declared and defined
// functions, ready to be printed, verified, linked, or written to
// bitcode.
type Module interface {
	Name() string

	// DeclareFunction creates (or returns the existing) Function named
	// name with the given parameter and return types. Used both for
	// forward declarations of dependency functions (spec §4.6 step 3)
	// and for the function currently being compiled.
	DeclareFunction(name string, paramTypes []Type, returnType Type) Function

	// Functions returns every function known to this module (declared or
	// defined), for forward-declaration emission.
	Functions() []Function

	// Link merges other's contents into this module (spec §4.6 step 5,
	// linking a CModule's bitcode in). other is consumed; callers must
	// not use it afterward.
	Link(other Module) error

	// Verify runs the backend's structural verifier over the module,
	// surfacing CodeVerifierRejected-class failures.
	Verify() error

	// Print renders the module as backend-native human-readable text.
	Print() string

	// WriteBitcode serializes the module to its persistent on-disk form,
	// consumed by cache.ModuleCache.
	WriteBitcode() ([]byte, error)

	// NewDebugCompileUnit starts a debug-info compile unit for file,
	// consumed by FunctionCompiler.compile to attach subroutine metadata
	// (spec §4.5 step 3).
	NewDebugCompileUnit(file string) DebugCompileUnit

	// JIT returns an Engine that can execute functions defined in this
	// module.
	JIT() (Engine, error)

	Dispose()
}

// DebugCompileUnit is the root debug-info scope for one Module.
type DebugCompileUnit interface {
	// NewFile registers a source file within this compile unit.
	NewFile(name, dir string) DebugType

	// NewSubroutineType declares the debug type of a function with the
	// given parameter DebugTypes.
	NewSubroutineType(params []DebugType) DebugType

	// NewLineLocation creates a DebugLocation at (line, col) within
	// scope, for attaching to an instruction (the node's assigned debug
	// line number, spec §4.5 step 3).
	NewLineLocation(scope DebugType, line, col int) DebugLocation
}

// Function is a declared or defined backend function.
type Function interface {
	Name() string

	// Param returns the i'th parameter value. Valid once the function
	// has at least a declaration.
	Param(i int) Value

	// AppendBlock creates a new basic block at the end of this
	// function's block list.
	AppendBlock(name string) Block

	// SetSubroutineType attaches sub as this function's debug-info
	// subroutine type (spec §4.5 step 3).
	SetSubroutineType(sub DebugType)
}

// Builder emits instructions into a specific Block. Chigraph's two-stage
// node compiler (spec §4.4) always has a live Block in hand before it
// calls any of these, so Builder methods take no explicit block argument
// — call Context.Builder(block) to get one scoped to that block.
type Builder interface {
	// SetDebugLocation attaches loc to every instruction subsequently
	// emitted by this Builder, until changed again.
	SetDebugLocation(loc DebugLocation)

	Alloca(t Type, name string) Value
	Load(t Type, ptr Value) Value
	Store(val, ptr Value)

	Br(target Block)
	CondBr(cond Value, ifTrue, ifFalse Block)
	// Switch emits a switch on val, branching to cases[v] when val == v
	// and to def otherwise. Used by the exit node (spec §4.2) to select
	// which exec-output fired.
	Switch(val Value, def Block, cases map[int64]Block)
	// IndirectBr emits an indirect branch to the block addressed by
	// addr, restricted to possible (spec §4.4's jumpBackInst).
	IndirectBr(addr Value, possible []Block)
	Ret(v Value)
	RetVoid()

	Call(fn Function, args []Value) Value
	Phi(t Type, incoming map[Block]Value) Value

	// ExtractField reads field index from the aggregate value agg
	// (GraphStruct's break_<Name> node type, spec C3's struct support).
	ExtractField(agg Value, index int) Value
	// InsertField returns a new aggregate equal to agg with field index
	// replaced by val (GraphStruct's make_<Name> node type).
	InsertField(agg Value, index int, val Value) Value

	// BlockAddress returns a Value denoting b's address, usable with a
	// return-address storage cell plus IndirectBr (jumpBackInst).
	BlockAddress(b Block) Value
}

// Engine JIT-executes a compiled Module.
type Engine interface {
	// RunMain executes fnName as a process main entry point, per spec
	// §6: "JIT-execute a function as main with argv/envp, returning an
	// integer."
	RunMain(fnName string, argv, envp []string) (int, error)
	Dispose()
}
