package ast

// In this file, we defined the syntax tree of MiniJava programs. The tree is
// produced by an external parser; each grammar category (type, statement,
// expression) is a closed sum type so that passes can switch over it
// exhaustively.
//
// Goal         -> MainClass ClassDecl*
// MainClass    -> class id { public static void main(String[] id) { VarDecl* Statement* } }
// ClassDecl    -> class id [extends id] { VarDecl* MethodDecl* }
// MethodDecl   -> public Type id ( Params ) { VarDecl* Statement* return Expression; }

type Ident struct {
	Name string
	Line int // 0 when the position is unknown.
}

type Program struct {
	Main    *MainClass
	Classes []*ClassDecl
}

type MainClass struct {
	Name    Ident
	ArgName Ident // String[] parameter of main, unused by MiniJava.
	Vars    []*VarDecl
	Body    []Statement
}

type ClassDecl struct {
	Name Ident
	// Extends is nil for a class without a mother class.
	Extends *Ident
	Fields  []*VarDecl
	Methods []*MethodDecl
}

type VarDecl struct {
	Type Type
	Name Ident
}

type MethodDecl struct {
	ReturnType Type
	Name       Ident
	Params     []*VarDecl
	Locals     []*VarDecl
	Body       []Statement
	Return     Expression
}

// Type is one of *IntType, *BooleanType, *IntArrayType, *ClassType.
type Type interface {
	typeNode()
}

type IntType struct{}

type BooleanType struct{}

type IntArrayType struct{}

type ClassType struct {
	Name Ident
}

func (*IntType) typeNode()      {}
func (*BooleanType) typeNode()  {}
func (*IntArrayType) typeNode() {}
func (*ClassType) typeNode()    {}

// Statement is one of *Block, *Assign, *ArrayAssign, *If, *While, *Print.
type Statement interface {
	statementNode()
}

type Block struct {
	Statements []Statement
}

type Assign struct {
	Target Ident
	Value  Expression
}

type ArrayAssign struct {
	Target Ident
	Index  Expression
	Value  Expression
}

type If struct {
	Condition Expression
	Then      Statement
	Else      Statement
}

type While struct {
	Condition Expression
	Body      Statement
}

// Print is System.out.println.
type Print struct {
	Value Expression
}

func (*Block) statementNode()       {}
func (*Assign) statementNode()      {}
func (*ArrayAssign) statementNode() {}
func (*If) statementNode()          {}
func (*While) statementNode()       {}
func (*Print) statementNode()       {}

// Expression is one of *And, *Binary, *ArrayLookup, *ArrayLength,
// *MessageSend, *IntegerLiteral, *BooleanLiteral, *Identifier, *This,
// *NewArray, *NewObject, *Not, *Paren.
type Expression interface {
	expressionNode()
}

// And is the short-circuit && operator.
type And struct {
	Left  Expression
	Right Expression
}

type BinaryOp int

const (
	PlusOp BinaryOp = iota
	MinusOp
	TimesOp
	LessOp
)

func (op BinaryOp) String() string {
	switch op {
	case PlusOp:
		return "+"
	case MinusOp:
		return "-"
	case TimesOp:
		return "*"
	case LessOp:
		return "<"
	}
	return ""
}

type Binary struct {
	Op    BinaryOp
	Left  Expression
	Right Expression
}

type ArrayLookup struct {
	Array Expression
	Index Expression
}

type ArrayLength struct {
	Array Expression
}

// MessageSend is a virtual method call receiver.method(args...).
type MessageSend struct {
	Receiver Expression
	Method   Ident
	Args     []Expression
}

type IntegerLiteral struct {
	Value int32
}

type BooleanLiteral struct {
	Value bool
}

type Identifier struct {
	Name Ident
}

type This struct{}

// NewArray is new int[Length].
type NewArray struct {
	Length Expression
}

type NewObject struct {
	Class Ident
}

type Not struct {
	Operand Expression
}

type Paren struct {
	Inner Expression
}

func (*And) expressionNode()            {}
func (*Binary) expressionNode()         {}
func (*ArrayLookup) expressionNode()    {}
func (*ArrayLength) expressionNode()    {}
func (*MessageSend) expressionNode()    {}
func (*IntegerLiteral) expressionNode() {}
func (*BooleanLiteral) expressionNode() {}
func (*Identifier) expressionNode()     {}
func (*This) expressionNode()           {}
func (*NewArray) expressionNode()       {}
func (*NewObject) expressionNode()      {}
func (*Not) expressionNode()            {}
func (*Paren) expressionNode()          {}
