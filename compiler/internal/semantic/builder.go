package semantic

import (
	"errors"
	"fmt"

	"github.com/xiaobogaga/minijava/compiler/internal/ast"
	"github.com/xiaobogaga/minijava/compiler/internal/symtab"
	"github.com/xiaobogaga/minijava/compiler/internal/types"
)

// In this file, we walk the declarations of a program once and fill a symbol
// table with them. The first problem stops the walk:
// * duplicate classes, fields, methods and variables,
// * a mother class that is not declared before its subclass,
// * an override whose signature differs from the overridden method,
// * a class type naming no declared class,
// * cyclic inheritance.
// Statements declare nothing, so method bodies are not visited here.

type buildContext struct {
	class  string
	method string // empty while declaring fields.
}

type builder struct {
	table *symtab.SymbolTable
	// Class types used by declarations. They may name classes declared
	// later in the program, so they are checked after the walk.
	references []ast.Ident
}

// Build returns a frozen symbol table for program, or the first *Error found.
func Build(program *ast.Program) (*symtab.SymbolTable, error) {
	b := &builder{table: symtab.New()}
	if err := b.buildMain(program.Main); err != nil {
		return nil, err
	}
	for _, cls := range program.Classes {
		if err := b.buildClass(cls); err != nil {
			return nil, err
		}
	}
	if err := b.checkReferences(); err != nil {
		return nil, err
	}
	if err := b.table.CheckCyclicInheritance(); err != nil {
		return nil, makeSemanticError(CyclicInheritance, 0, "%s", err.Error())
	}
	b.table.Freeze()
	return b.table, nil
}

// TypeOf converts a declared type. Class names are not resolved.
func TypeOf(tp ast.Type) types.Type {
	switch t := tp.(type) {
	case *ast.IntType:
		return types.Integer
	case *ast.BooleanType:
		return types.Boolean
	case *ast.IntArrayType:
		return types.IntArray
	case *ast.ClassType:
		return types.ClassRef(t.Name.Name)
	}
	return types.Void
}

func (b *builder) typeOf(tp ast.Type) types.Type {
	if classType, ok := tp.(*ast.ClassType); ok {
		b.references = append(b.references, classType.Name)
	}
	return TypeOf(tp)
}

func (b *builder) buildMain(mainClass *ast.MainClass) error {
	if mainClass == nil {
		return errors.New("program has no main class")
	}
	if err := b.table.SetMainClass(mainClass.Name.Name, mainClass.ArgName.Name); err != nil {
		return makeSemanticError(DuplicateClass, mainClass.Name.Line, "duplicate class %s", mainClass.Name.Name)
	}
	ctx := buildContext{class: mainClass.Name.Name, method: symtab.MainMethodName}
	for _, decl := range mainClass.Vars {
		if err := b.declareVariable(ctx, decl, false); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) buildClass(cls *ast.ClassDecl) error {
	motherName := ""
	if cls.Extends != nil {
		motherName = cls.Extends.Name
	}
	_, err := b.table.DeclareClass(cls.Name.Name, motherName)
	switch {
	case errors.Is(err, symtab.ErrUnknownMother):
		return makeSemanticError(UnknownMother, cls.Extends.Line, "class %s extends unknown class %s",
			cls.Name.Name, motherName)
	case errors.Is(err, symtab.ErrDuplicateClass):
		return makeSemanticError(DuplicateClass, cls.Name.Line, "duplicate class %s", cls.Name.Name)
	case err != nil:
		return fmt.Errorf("class %s: %w", cls.Name.Name, err)
	}
	ctx := buildContext{class: cls.Name.Name}
	for _, decl := range cls.Fields {
		if err := b.declareVariable(ctx, decl, false); err != nil {
			return err
		}
	}
	for _, method := range cls.Methods {
		if err := b.buildMethod(ctx, method); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) buildMethod(ctx buildContext, method *ast.MethodDecl) error {
	_, err := b.table.DeclareMethod(ctx.class, method.Name.Name, b.typeOf(method.ReturnType))
	switch {
	case errors.Is(err, symtab.ErrDuplicateMethod):
		return makeSemanticError(DuplicateMethod, method.Name.Line, "duplicate method %s.%s", ctx.class, method.Name.Name)
	case err != nil:
		return fmt.Errorf("method %s.%s: %w", ctx.class, method.Name.Name, err)
	}
	ctx.method = method.Name.Name
	for _, decl := range method.Params {
		if err := b.declareVariable(ctx, decl, true); err != nil {
			return err
		}
	}
	// Argument types are part of the signature, so this waits for them.
	if err := b.checkOverride(ctx, method.Name.Line); err != nil {
		return err
	}
	for _, decl := range method.Locals {
		if err := b.declareVariable(ctx, decl, false); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) declareVariable(ctx buildContext, decl *ast.VarDecl, argument bool) error {
	tp := b.typeOf(decl.Type)
	name := decl.Name.Name
	var err error
	switch {
	case ctx.method == "":
		_, err = b.table.DeclareField(ctx.class, name, tp)
	case b.table.IsMainClass(ctx.class):
		_, err = b.table.DeclareMainLocal(name, tp)
	case argument:
		_, err = b.table.DeclareArgument(ctx.class, ctx.method, name, tp)
	default:
		_, err = b.table.DeclareLocal(ctx.class, ctx.method, name, tp)
	}
	switch {
	case errors.Is(err, symtab.ErrDuplicateField):
		return makeSemanticError(DuplicateField, decl.Name.Line, "duplicate field %s.%s", ctx.class, name)
	case errors.Is(err, symtab.ErrDuplicateVariable):
		return makeSemanticError(DuplicateVariable, decl.Name.Line, "duplicate variable %s in %s.%s",
			name, ctx.class, ctx.method)
	case err != nil:
		return fmt.Errorf("%s.%s: %w", ctx.class, name, err)
	}
	return nil
}

// checkOverride verifies that a method overriding an ancestor method keeps
// its argument count, argument types and return type.
func (b *builder) checkOverride(ctx buildContext, line int) error {
	ancestor, overridden := b.table.OverriddenMethod(ctx.class, ctx.method)
	if overridden == nil {
		return nil
	}
	method := b.table.LookupClass(ctx.class).Method(ctx.method)
	if method.NumberOfArguments() != overridden.NumberOfArguments() {
		return makeSemanticError(InvalidOverride, line, "%s.%s takes %d arguments but overrides %s.%s which takes %d",
			ctx.class, ctx.method, method.NumberOfArguments(), ancestor.Name(), ctx.method, overridden.NumberOfArguments())
	}
	for i, arg := range method.Arguments() {
		expected := overridden.Arguments()[i]
		if !arg.Type.Equal(expected.Type) {
			return makeSemanticError(InvalidOverride, line, "argument %d of %s.%s is %s but %s.%s expects %s",
				i+1, ctx.class, ctx.method, arg.Type, ancestor.Name(), ctx.method, expected.Type)
		}
	}
	if !method.ReturnType.Equal(overridden.ReturnType) {
		return makeSemanticError(InvalidOverride, line, "%s.%s returns %s but %s.%s returns %s",
			ctx.class, ctx.method, method.ReturnType, ancestor.Name(), ctx.method, overridden.ReturnType)
	}
	return nil
}

func (b *builder) checkReferences() error {
	for _, ref := range b.references {
		if b.table.LookupClass(ref.Name) == nil {
			return makeSemanticError(UnknownType, ref.Line, "unknown class %s", ref.Name)
		}
	}
	return nil
}
