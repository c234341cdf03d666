package codegen

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

const (
	printIntFormat        = "%d\n\x00"
	outOfBoundsMessage    = "Out of bounds\n\x00"
	negativeLengthMessage = "Negative array length\n\x00"
)

// runtime holds the libc declarations and the support routines every
// compiled program calls.
type runtime struct {
	calloc *ir.Func
	printf *ir.Func
	exit   *ir.Func

	printInt *ir.Func // void print_int(i32)
	throwOOB *ir.Func // void throw_oob(), never returns
	throwNAL *ir.Func // void throw_nal(), never returns
}

func declareRuntime(m *ir.Module) *runtime {
	rt := &runtime{}
	rt.calloc = m.NewFunc("calloc", types.I8Ptr, ir.NewParam("count", types.I32), ir.NewParam("size", types.I32))
	rt.printf = m.NewFunc("printf", types.I32, ir.NewParam("format", types.I8Ptr))
	rt.printf.Sig.Variadic = true
	rt.exit = m.NewFunc("exit", types.Void, ir.NewParam("status", types.I32))

	intFormat := stringConstant(m, "_cint", printIntFormat)
	oobMessage := stringConstant(m, "_cOOB", outOfBoundsMessage)
	nalMessage := stringConstant(m, "_cNAL", negativeLengthMessage)

	rt.printInt = m.NewFunc("print_int", types.Void, ir.NewParam("i", types.I32))
	entry := rt.printInt.NewBlock("")
	entry.NewCall(rt.printf, intFormat, rt.printInt.Params[0])
	entry.NewRet(nil)

	rt.throwOOB = fault(m, rt, "throw_oob", oobMessage)
	rt.throwNAL = fault(m, rt, "throw_nal", nalMessage)
	return rt
}

// fault defines a routine printing message and exiting with status 1.
func fault(m *ir.Module, rt *runtime, name string, message value.Value) *ir.Func {
	fn := m.NewFunc(name, types.Void)
	entry := fn.NewBlock("")
	entry.NewCall(rt.printf, message)
	entry.NewCall(rt.exit, constant.NewInt(types.I32, 1))
	entry.NewUnreachable()
	return fn
}

// stringConstant defines an immutable global holding content and returns a
// constant i8* to its first byte.
func stringConstant(m *ir.Module, name, content string) constant.Constant {
	array := constant.NewCharArrayFromString(content)
	global := m.NewGlobalDef(name, array)
	global.Immutable = true
	zero := constant.NewInt(types.I32, 0)
	return constant.NewGetElementPtr(array.Typ, global, zero, zero)
}
