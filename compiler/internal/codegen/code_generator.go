package codegen

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/xiaobogaga/minijava/compiler/internal/ast"
	"github.com/xiaobogaga/minijava/compiler/internal/symtab"
	mjtypes "github.com/xiaobogaga/minijava/compiler/internal/types"
)

// In this file, we lower a checked program onto an LLVM module. The module is
// laid out as
// * one vtable global per class, @.Main_vtable first and empty,
// * the runtime: libc declarations, print_int, throw_oob, throw_nal,
// * i32 @main(),
// * one function @Class.method(i8* %this, ...) per declared method.
//
// Object: [i8** vtable][fields at offset 8 + field offset]
// Array:  [i32 length][i32 element 0]...[i32 element length-1]

var (
	ErrUnfrozenTable = errors.New("symbol table is not frozen")
	ErrInternal      = errors.New("internal consistency fault")
)

var (
	i32Zero = constant.NewInt(types.I32, 0)
	i32One  = constant.NewInt(types.I32, 1)
	// i8*** is the type of an object header seen from its base pointer.
	headerPtrType = types.NewPointer(types.NewPointer(types.I8Ptr))
)

type Option func(*CodeGenerator)

// WithDiagnostics sets where internal consistency faults are reported.
// Defaults to os.Stderr.
func WithDiagnostics(w io.Writer) Option {
	return func(g *CodeGenerator) {
		g.diagnostics = w
	}
}

type CodeGenerator struct {
	table       *symtab.SymbolTable
	diagnostics io.Writer
	names       NameGenerator

	module  *ir.Module
	rt      *runtime
	vtables map[string]*ir.Global
	funcs   map[string]*ir.Func // by method symbol, Class.method
	faults  int
}

// lowerContext is the enclosing method of the construct being lowered.
type lowerContext struct {
	class  string
	method *symtab.MethodInfo
	fn     *ir.Func
	block  *ir.Block // where the next instruction goes.
	this   value.Value
	locals map[string]local
}

type local struct {
	addr value.Value
	tp   mjtypes.Type
}

// New fails unless table has been frozen by the semantic pass.
func New(table *symtab.SymbolTable, opts ...Option) (*CodeGenerator, error) {
	if !table.Frozen() {
		return nil, ErrUnfrozenTable
	}
	g := &CodeGenerator{table: table, diagnostics: os.Stderr}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Generate lowers program, which must be the program the table was built
// from. When a lookup fails the module is still returned, together with an
// error wrapping ErrInternal.
func (g *CodeGenerator) Generate(program *ast.Program) (*ir.Module, error) {
	g.module = ir.NewModule()
	g.vtables = map[string]*ir.Global{}
	g.funcs = map[string]*ir.Func{}
	g.faults = 0

	methods := g.declareMethods()
	g.defineVTables()
	g.rt = declareRuntime(g.module)
	g.lowerMain(program.Main)
	g.module.Funcs = append(g.module.Funcs, methods...)
	for _, cls := range program.Classes {
		for _, method := range cls.Methods {
			g.lowerMethod(cls.Name.Name, method)
		}
	}
	if g.faults > 0 {
		return g.module, fmt.Errorf("%w: %d faults", ErrInternal, g.faults)
	}
	return g.module, nil
}

// declareMethods creates the functions of every method so vtables can refer
// to them. They are added to the module after main.
func (g *CodeGenerator) declareMethods() []*ir.Func {
	var funcs []*ir.Func
	for className, classInfo := range g.table.OrderedClasses() {
		for methodName, methodInfo := range classInfo.Methods() {
			params := []*ir.Param{ir.NewParam("this", types.I8Ptr)}
			for _, arg := range methodInfo.Arguments() {
				params = append(params, ir.NewParam(paramName(arg.Name), arg.Type.IRType()))
			}
			fn := ir.NewFunc(symtab.MethodSymbol(className, methodName), methodInfo.ReturnType.IRType(), params...)
			fn.Parent = g.module
			g.funcs[fn.Name()] = fn
			funcs = append(funcs, fn)
		}
	}
	return funcs
}

func (g *CodeGenerator) defineVTables() {
	mainType := types.NewArray(0, types.I8Ptr)
	g.module.NewGlobalDef(symtab.VTableSymbol(g.table.MainClassName()), constant.NewArray(mainType))
	for className := range g.table.OrderedClasses() {
		slots := g.table.VTable(className)
		entries := make([]constant.Constant, 0, len(slots))
		for _, slot := range slots {
			fn, ok := g.funcs[slot.Symbol()]
			if !ok {
				g.report("vtable of %s: no function %s", className, slot.Symbol())
				entries = append(entries, constant.NewNull(types.I8Ptr))
				continue
			}
			entries = append(entries, constant.NewBitCast(fn, types.I8Ptr))
		}
		arrayType := types.NewArray(uint64(len(entries)), types.I8Ptr)
		g.vtables[className] = g.module.NewGlobalDef(symtab.VTableSymbol(className), constant.NewArray(arrayType, entries...))
	}
}

func (g *CodeGenerator) lowerMain(mainClass *ast.MainClass) {
	g.names.Reset()
	fn := ir.NewFunc("main", types.I32)
	fn.Parent = g.module
	g.module.Funcs = append(g.module.Funcs, fn)
	ctx := &lowerContext{
		class:  g.table.MainClassName(),
		method: g.table.MainMethod(),
		fn:     fn,
		block:  fn.NewBlock(""),
		locals: map[string]local{},
	}
	g.allocateVariables(ctx)
	for _, statement := range mainClass.Body {
		g.lowerStatement(ctx, statement)
	}
	ctx.block.NewRet(i32Zero)
	sealBlocks(fn)
}

func (g *CodeGenerator) lowerMethod(className string, decl *ast.MethodDecl) {
	g.names.Reset()
	symbol := symtab.MethodSymbol(className, decl.Name.Name)
	fn, ok := g.funcs[symbol]
	classInfo := g.table.LookupClass(className)
	if !ok || classInfo == nil || classInfo.Method(decl.Name.Name) == nil {
		g.report("no method %s in the symbol table", symbol)
		return
	}
	ctx := &lowerContext{
		class:  className,
		method: classInfo.Method(decl.Name.Name),
		fn:     fn,
		block:  fn.NewBlock(""),
		this:   fn.Params[0],
		locals: map[string]local{},
	}
	g.allocateVariables(ctx)
	for _, statement := range decl.Body {
		g.lowerStatement(ctx, statement)
	}
	if ret, _ := g.lowerExpression(ctx, decl.Return); ret != nil {
		ctx.block.NewRet(ret)
	}
	sealBlocks(fn)
}

// allocateVariables gives every argument and local a stack slot, named v.x
// for variable x, and copies the incoming arguments there.
func (g *CodeGenerator) allocateVariables(ctx *lowerContext) {
	for name, info := range ctx.method.Variables() {
		alloca := ctx.block.NewAlloca(info.Type.IRType())
		alloca.SetName(slotName(name))
		ctx.locals[name] = local{addr: alloca, tp: info.Type}
	}
	for i, arg := range ctx.method.Arguments() {
		ctx.block.NewStore(ctx.fn.Params[i+1], ctx.locals[arg.Name].addr)
	}
}

// sealBlocks ends every block left open by a fault.
func sealBlocks(fn *ir.Func) {
	for _, block := range fn.Blocks {
		if block.Term == nil {
			block.NewUnreachable()
		}
	}
}

// report records an internal consistency fault. The caller emits nothing
// for the construct at hand.
func (g *CodeGenerator) report(format string, msg ...interface{}) {
	g.faults++
	fmt.Fprintf(g.diagnostics, "codegen: "+format+"\n", msg...)
}

func (g *CodeGenerator) newBlock(ctx *lowerContext, hint string) *ir.Block {
	return ctx.fn.NewBlock(g.names.FreshLabel(hint))
}

// named gives an instruction result the next temporary name.
func (g *CodeGenerator) named(v value.Named) value.Value {
	v.SetName(g.names.FreshValue())
	return v
}

// guard continues in a fresh block when cond holds and calls the fault
// routine otherwise.
func (g *CodeGenerator) guard(ctx *lowerContext, cond value.Value, faultRoutine *ir.Func, hint string) {
	faultBlock := g.newBlock(ctx, hint+"_fault")
	okBlock := g.newBlock(ctx, hint+"_ok")
	ctx.block.NewCondBr(cond, okBlock, faultBlock)
	faultBlock.NewCall(faultRoutine)
	faultBlock.NewUnreachable()
	ctx.block = okBlock
}
