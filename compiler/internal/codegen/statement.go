package codegen

import (
	"github.com/xiaobogaga/minijava/compiler/internal/ast"
)

// lowerStatement emits statement into ctx.block. Every block it opens is
// closed by an explicit branch; ctx.block is left open for what follows.
func (g *CodeGenerator) lowerStatement(ctx *lowerContext, statement ast.Statement) {
	switch s := statement.(type) {
	case *ast.Block:
		for _, inner := range s.Statements {
			g.lowerStatement(ctx, inner)
		}
	case *ast.Assign:
		g.lowerAssign(ctx, s)
	case *ast.ArrayAssign:
		g.lowerArrayAssign(ctx, s)
	case *ast.If:
		g.lowerIf(ctx, s)
	case *ast.While:
		g.lowerWhile(ctx, s)
	case *ast.Print:
		v, _ := g.lowerExpression(ctx, s.Value)
		if v == nil {
			return
		}
		ctx.block.NewCall(g.rt.printInt, v)
	default:
		g.report("unexpected statement %T", statement)
	}
}

func (g *CodeGenerator) lowerAssign(ctx *lowerContext, s *ast.Assign) {
	v, _ := g.lowerExpression(ctx, s.Value)
	if v == nil {
		return
	}
	addr, _ := g.variableAddress(ctx, s.Target)
	if addr == nil {
		return
	}
	ctx.block.NewStore(v, addr)
}

// lowerArrayAssign evaluates the array, the index and the value in that
// order, then checks the bounds.
func (g *CodeGenerator) lowerArrayAssign(ctx *lowerContext, s *ast.ArrayAssign) {
	addr, tp := g.variableAddress(ctx, s.Target)
	if addr == nil {
		return
	}
	array := g.named(ctx.block.NewLoad(tp.IRType(), addr))
	index, _ := g.lowerExpression(ctx, s.Index)
	if index == nil {
		return
	}
	v, _ := g.lowerExpression(ctx, s.Value)
	if v == nil {
		return
	}
	ctx.block.NewStore(v, g.elementAddress(ctx, array, index))
}

//	      br cond, if_then, if_else
//	if_then:
//	      br if_end
//	if_else:
//	      br if_end
//	if_end:
func (g *CodeGenerator) lowerIf(ctx *lowerContext, s *ast.If) {
	cond, _ := g.lowerExpression(ctx, s.Condition)
	if cond == nil {
		return
	}
	then := g.newBlock(ctx, "if_then")
	otherwise := g.newBlock(ctx, "if_else")
	end := g.newBlock(ctx, "if_end")
	ctx.block.NewCondBr(cond, then, otherwise)

	ctx.block = then
	g.lowerStatement(ctx, s.Then)
	ctx.block.NewBr(end)

	ctx.block = otherwise
	g.lowerStatement(ctx, s.Else)
	ctx.block.NewBr(end)

	ctx.block = end
}

//	      br loop_cond
//	loop_cond:
//	      br cond, loop_body, loop_end
//	loop_body:
//	      br loop_cond
//	loop_end:
func (g *CodeGenerator) lowerWhile(ctx *lowerContext, s *ast.While) {
	condBlock := g.newBlock(ctx, "loop_cond")
	body := g.newBlock(ctx, "loop_body")
	end := g.newBlock(ctx, "loop_end")
	ctx.block.NewBr(condBlock)

	ctx.block = condBlock
	cond, _ := g.lowerExpression(ctx, s.Condition)
	if cond == nil {
		ctx.block = end
		return
	}
	ctx.block.NewCondBr(cond, body, end)

	ctx.block = body
	g.lowerStatement(ctx, s.Body)
	ctx.block.NewBr(condBlock)

	ctx.block = end
}
