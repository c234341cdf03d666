package codegen

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/xiaobogaga/minijava/compiler/internal/ast"
	"github.com/xiaobogaga/minijava/compiler/internal/symtab"
	mjtypes "github.com/xiaobogaga/minijava/compiler/internal/types"
)

// lowerExpression emits expr into ctx.block and returns its value together
// with its static type. The value is nil after an internal fault.
func (g *CodeGenerator) lowerExpression(ctx *lowerContext, expr ast.Expression) (value.Value, mjtypes.Type) {
	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		return constant.NewInt(types.I32, int64(e.Value)), mjtypes.Integer
	case *ast.BooleanLiteral:
		return constant.NewBool(e.Value), mjtypes.Boolean
	case *ast.Paren:
		return g.lowerExpression(ctx, e.Inner)
	case *ast.Identifier:
		addr, tp := g.variableAddress(ctx, e.Name)
		if addr == nil {
			return nil, tp
		}
		return g.named(ctx.block.NewLoad(tp.IRType(), addr)), tp
	case *ast.This:
		if ctx.this == nil {
			g.report("this used in static method %s.%s", ctx.class, ctx.method.Name)
			return nil, mjtypes.Void
		}
		return ctx.this, mjtypes.ClassRef(ctx.class)
	case *ast.Not:
		operand, _ := g.lowerExpression(ctx, e.Operand)
		if operand == nil {
			return nil, mjtypes.Boolean
		}
		return g.named(ctx.block.NewXor(operand, constant.NewBool(true))), mjtypes.Boolean
	case *ast.Binary:
		return g.lowerBinary(ctx, e)
	case *ast.And:
		return g.lowerAnd(ctx, e)
	case *ast.NewObject:
		return g.lowerNewObject(ctx, e)
	case *ast.NewArray:
		return g.lowerNewArray(ctx, e)
	case *ast.ArrayLength:
		array, _ := g.lowerExpression(ctx, e.Array)
		if array == nil {
			return nil, mjtypes.Integer
		}
		return g.named(ctx.block.NewLoad(types.I32, array)), mjtypes.Integer
	case *ast.ArrayLookup:
		array, _ := g.lowerExpression(ctx, e.Array)
		if array == nil {
			return nil, mjtypes.Integer
		}
		index, _ := g.lowerExpression(ctx, e.Index)
		if index == nil {
			return nil, mjtypes.Integer
		}
		addr := g.elementAddress(ctx, array, index)
		return g.named(ctx.block.NewLoad(types.I32, addr)), mjtypes.Integer
	case *ast.MessageSend:
		return g.lowerMessageSend(ctx, e)
	}
	g.report("unexpected expression %T", expr)
	return nil, mjtypes.Void
}

func (g *CodeGenerator) lowerBinary(ctx *lowerContext, e *ast.Binary) (value.Value, mjtypes.Type) {
	left, _ := g.lowerExpression(ctx, e.Left)
	if left == nil {
		return nil, mjtypes.Integer
	}
	right, _ := g.lowerExpression(ctx, e.Right)
	if right == nil {
		return nil, mjtypes.Integer
	}
	switch e.Op {
	case ast.PlusOp:
		return g.named(ctx.block.NewAdd(left, right)), mjtypes.Integer
	case ast.MinusOp:
		return g.named(ctx.block.NewSub(left, right)), mjtypes.Integer
	case ast.TimesOp:
		return g.named(ctx.block.NewMul(left, right)), mjtypes.Integer
	case ast.LessOp:
		return g.named(ctx.block.NewICmp(enum.IPredSLT, left, right)), mjtypes.Boolean
	}
	g.report("unexpected operator %v", e.Op)
	return nil, mjtypes.Integer
}

// lowerAnd evaluates the right operand only when the left one is true:
//
//	      br left, and_rhs, and_end
//	and_rhs:
//	      br and_end
//	and_end:
//	      phi [false, left block], [right, end of and_rhs]
func (g *CodeGenerator) lowerAnd(ctx *lowerContext, e *ast.And) (value.Value, mjtypes.Type) {
	left, _ := g.lowerExpression(ctx, e.Left)
	if left == nil {
		return nil, mjtypes.Boolean
	}
	leftEnd := ctx.block
	rhs := g.newBlock(ctx, "and_rhs")
	end := g.newBlock(ctx, "and_end")
	leftEnd.NewCondBr(left, rhs, end)

	ctx.block = rhs
	right, _ := g.lowerExpression(ctx, e.Right)
	if right == nil {
		return nil, mjtypes.Boolean
	}
	// The right operand may have split its block with guards.
	rightEnd := ctx.block
	rightEnd.NewBr(end)

	ctx.block = end
	phi := end.NewPhi(ir.NewIncoming(constant.NewBool(false), leftEnd), ir.NewIncoming(right, rightEnd))
	return g.named(phi), mjtypes.Boolean
}

// lowerNewObject allocates zeroed memory for the fields and stores the
// vtable in the header.
func (g *CodeGenerator) lowerNewObject(ctx *lowerContext, e *ast.NewObject) (value.Value, mjtypes.Type) {
	tp := mjtypes.ClassRef(e.Class.Name)
	classInfo := g.table.LookupClass(e.Class.Name)
	vtable, ok := g.vtables[e.Class.Name]
	if classInfo == nil || !ok {
		g.report("new of unknown class %s", e.Class.Name)
		return nil, tp
	}
	size := constant.NewInt(types.I32, int64(classInfo.ObjectSize()))
	object := g.named(ctx.block.NewCall(g.rt.calloc, size, i32One))
	header := g.named(ctx.block.NewBitCast(object, headerPtrType))
	vtableType := vtable.ContentType
	base := constant.NewGetElementPtr(vtableType, vtable, i32Zero, i32Zero)
	ctx.block.NewStore(base, header)
	return object, tp
}

// lowerNewArray allocates length+1 words and stores length in the first one.
// A negative length calls throw_nal.
func (g *CodeGenerator) lowerNewArray(ctx *lowerContext, e *ast.NewArray) (value.Value, mjtypes.Type) {
	length, _ := g.lowerExpression(ctx, e.Length)
	if length == nil {
		return nil, mjtypes.IntArray
	}
	valid := g.named(ctx.block.NewICmp(enum.IPredSGE, length, i32Zero))
	g.guard(ctx, valid, g.rt.throwNAL, "nal")
	words := g.named(ctx.block.NewAdd(length, i32One))
	memory := g.named(ctx.block.NewCall(g.rt.calloc, words, constant.NewInt(types.I32, 4)))
	array := g.named(ctx.block.NewBitCast(memory, types.I32Ptr))
	ctx.block.NewStore(length, array)
	return array, mjtypes.IntArray
}

// elementAddress checks index against the stored length and returns the
// address of the element. A single unsigned comparison rejects negative
// indices too.
func (g *CodeGenerator) elementAddress(ctx *lowerContext, array, index value.Value) value.Value {
	length := g.named(ctx.block.NewLoad(types.I32, array))
	inBounds := g.named(ctx.block.NewICmp(enum.IPredULT, index, length))
	g.guard(ctx, inBounds, g.rt.throwOOB, "oob")
	slot := g.named(ctx.block.NewAdd(index, i32One))
	return g.named(ctx.block.NewGetElementPtr(types.I32, array, slot))
}

// lowerMessageSend calls through the vtable slot of the method resolved from
// the static type of the receiver. Receiver and arguments are evaluated left
// to right before the vtable is read.
func (g *CodeGenerator) lowerMessageSend(ctx *lowerContext, e *ast.MessageSend) (value.Value, mjtypes.Type) {
	receiver, receiverType := g.lowerExpression(ctx, e.Receiver)
	if receiver == nil {
		return nil, mjtypes.Void
	}
	if !receiverType.IsClass() {
		g.report("call of %s on a value of type %s", e.Method.Name, receiverType)
		return nil, mjtypes.Void
	}
	_, method := g.table.ResolveMethodOwner(receiverType.ClassName, e.Method.Name)
	if method == nil || g.table.IsMainClass(receiverType.ClassName) {
		g.report("class %s has no method %s", receiverType.ClassName, e.Method.Name)
		return nil, mjtypes.Void
	}
	if method.NumberOfArguments() != len(e.Args) {
		g.report("%s.%s called with %d arguments, wants %d",
			receiverType.ClassName, e.Method.Name, len(e.Args), method.NumberOfArguments())
		return nil, method.ReturnType
	}
	args := []value.Value{receiver}
	paramTypes := []types.Type{types.I8Ptr}
	for i, argExpr := range e.Args {
		arg, _ := g.lowerExpression(ctx, argExpr)
		if arg == nil {
			return nil, method.ReturnType
		}
		args = append(args, arg)
		paramTypes = append(paramTypes, method.Arguments()[i].Type.IRType())
	}
	header := g.named(ctx.block.NewBitCast(receiver, headerPtrType))
	vtable := g.named(ctx.block.NewLoad(types.NewPointer(types.I8Ptr), header))
	slot := constant.NewInt(types.I32, int64(method.Slot()))
	entry := g.named(ctx.block.NewGetElementPtr(types.I8Ptr, vtable, slot))
	raw := g.named(ctx.block.NewLoad(types.I8Ptr, entry))
	sig := types.NewFunc(method.ReturnType.IRType(), paramTypes...)
	callee := g.named(ctx.block.NewBitCast(raw, types.NewPointer(sig)))
	return g.named(ctx.block.NewCall(callee, args...)), method.ReturnType
}

// variableAddress resolves name as a local or argument first, then as a
// field of this, and returns a typed pointer to its storage.
func (g *CodeGenerator) variableAddress(ctx *lowerContext, name ast.Ident) (value.Value, mjtypes.Type) {
	if l, ok := ctx.locals[name.Name]; ok {
		return l.addr, l.tp
	}
	var field *symtab.VariableInfo
	if ctx.this != nil {
		field = g.table.ResolveField(ctx.class, name.Name)
	}
	if field == nil {
		g.report("unknown variable %s in %s.%s", name.Name, ctx.class, ctx.method.Name)
		return nil, mjtypes.Void
	}
	offset := constant.NewInt(types.I32, int64(symtab.ObjectHeaderSize+field.Offset))
	raw := g.named(ctx.block.NewGetElementPtr(types.I8, ctx.this, offset))
	return g.named(ctx.block.NewBitCast(raw, types.NewPointer(field.Type.IRType()))), field.Type
}
