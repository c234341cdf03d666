package ast

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/xiaobogaga/minijava/util"
)

// The external parser hands the tree over as JSON. Identifiers are either a
// plain string or {"name": "x", "line": 3}. Types are the strings "int",
// "boolean", "int[]" or a class name. Statements and expressions are objects
// tagged by "kind":
//
//	statements:  block{statements} assign{target,value} arrayAssign{target,index,value}
//	             if{cond,then,else} while{cond,body} print{value}
//	expressions: and|plus|minus|times|less{left,right} lookup{array,index} length{array}
//	             call{receiver,method,args} int{value} bool{value} ident{name} this
//	             newArray{length} new{class} not{operand} paren{inner}

var ErrMalformedTree = errors.New("malformed syntax tree")

func (ident *Ident) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		ident.Line = 0
		return json.Unmarshal(data, &ident.Name)
	}
	var raw struct {
		Name string `json:"name"`
		Line int    `json:"line"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	ident.Name, ident.Line = raw.Name, raw.Line
	return nil
}

type rawProgram struct {
	Main    *rawMain    `json:"main"`
	Classes []*rawClass `json:"classes"`
}

type rawMain struct {
	Name Ident             `json:"name"`
	Arg  Ident             `json:"arg"`
	Vars []*rawVar         `json:"vars"`
	Body []json.RawMessage `json:"body"`
}

type rawClass struct {
	Name    Ident        `json:"name"`
	Extends *Ident       `json:"extends"`
	Fields  []*rawVar    `json:"fields"`
	Methods []*rawMethod `json:"methods"`
}

type rawVar struct {
	Type Ident `json:"type"`
	Name Ident `json:"name"`
}

type rawMethod struct {
	ReturnType Ident             `json:"returnType"`
	Name       Ident             `json:"name"`
	Params     []*rawVar         `json:"params"`
	Locals     []*rawVar         `json:"locals"`
	Body       []json.RawMessage `json:"body"`
	Return     json.RawMessage   `json:"return"`
}

// rawNode holds the union of all statement and expression fields.
type rawNode struct {
	Kind       string            `json:"kind"`
	Statements []json.RawMessage `json:"statements"`
	Target     *Ident            `json:"target"`
	Value      json.RawMessage   `json:"value"`
	Index      json.RawMessage   `json:"index"`
	Cond       json.RawMessage   `json:"cond"`
	Then       json.RawMessage   `json:"then"`
	Else       json.RawMessage   `json:"else"`
	Body       json.RawMessage   `json:"body"`
	Left       json.RawMessage   `json:"left"`
	Right      json.RawMessage   `json:"right"`
	Array      json.RawMessage   `json:"array"`
	Receiver   json.RawMessage   `json:"receiver"`
	Method     *Ident            `json:"method"`
	Args       []json.RawMessage `json:"args"`
	Name       *Ident            `json:"name"`
	Length     json.RawMessage   `json:"length"`
	Class      *Ident            `json:"class"`
	Operand    json.RawMessage   `json:"operand"`
	Inner      json.RawMessage   `json:"inner"`
}

func DecodeFile(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

func Decode(r io.Reader) (*Program, error) {
	var raw rawProgram
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTree, err)
	}
	if raw.Main == nil {
		return nil, makeTreeError("missing main class")
	}
	program := &Program{}
	mainClass, err := decodeMain(raw.Main)
	if err != nil {
		return nil, err
	}
	program.Main = mainClass
	for _, rawCls := range raw.Classes {
		cls, err := decodeClass(rawCls)
		if err != nil {
			return nil, err
		}
		program.Classes = append(program.Classes, cls)
	}
	return program, nil
}

func decodeMain(raw *rawMain) (*MainClass, error) {
	if err := checkIdent(raw.Name); err != nil {
		return nil, err
	}
	mainClass := &MainClass{Name: raw.Name, ArgName: raw.Arg}
	vars, err := decodeVars(raw.Vars)
	if err != nil {
		return nil, err
	}
	mainClass.Vars = vars
	mainClass.Body, err = decodeStatements(raw.Body)
	if err != nil {
		return nil, fmt.Errorf("main: %w", err)
	}
	return mainClass, nil
}

func decodeClass(raw *rawClass) (*ClassDecl, error) {
	if raw == nil {
		return nil, makeTreeError("missing class")
	}
	if err := checkIdent(raw.Name); err != nil {
		return nil, err
	}
	cls := &ClassDecl{Name: raw.Name, Extends: raw.Extends}
	if raw.Extends != nil {
		if err := checkIdent(*raw.Extends); err != nil {
			return nil, err
		}
	}
	fields, err := decodeVars(raw.Fields)
	if err != nil {
		return nil, fmt.Errorf("class %s: %w", raw.Name.Name, err)
	}
	cls.Fields = fields
	for _, rawM := range raw.Methods {
		method, err := decodeMethod(rawM)
		if err != nil {
			return nil, fmt.Errorf("class %s: %w", raw.Name.Name, err)
		}
		cls.Methods = append(cls.Methods, method)
	}
	return cls, nil
}

func decodeMethod(raw *rawMethod) (*MethodDecl, error) {
	if raw == nil {
		return nil, makeTreeError("missing method")
	}
	if err := checkIdent(raw.Name); err != nil {
		return nil, err
	}
	method := &MethodDecl{Name: raw.Name}
	var err error
	if method.ReturnType, err = decodeType(raw.ReturnType); err != nil {
		return nil, err
	}
	if method.Params, err = decodeVars(raw.Params); err != nil {
		return nil, fmt.Errorf("method %s: %w", raw.Name.Name, err)
	}
	if method.Locals, err = decodeVars(raw.Locals); err != nil {
		return nil, fmt.Errorf("method %s: %w", raw.Name.Name, err)
	}
	if method.Body, err = decodeStatements(raw.Body); err != nil {
		return nil, fmt.Errorf("method %s: %w", raw.Name.Name, err)
	}
	if method.Return, err = decodeExpression(raw.Return); err != nil {
		return nil, fmt.Errorf("method %s: return: %w", raw.Name.Name, err)
	}
	return method, nil
}

func decodeVars(raws []*rawVar) ([]*VarDecl, error) {
	vars := make([]*VarDecl, 0, len(raws))
	for _, raw := range raws {
		if raw == nil {
			return nil, makeTreeError("missing variable")
		}
		if err := checkIdent(raw.Name); err != nil {
			return nil, err
		}
		tp, err := decodeType(raw.Type)
		if err != nil {
			return nil, err
		}
		vars = append(vars, &VarDecl{Type: tp, Name: raw.Name})
	}
	return vars, nil
}

func decodeType(ident Ident) (Type, error) {
	switch ident.Name {
	case "int":
		return &IntType{}, nil
	case "boolean":
		return &BooleanType{}, nil
	case "int[]":
		return &IntArrayType{}, nil
	}
	if err := checkIdent(ident); err != nil {
		return nil, err
	}
	return &ClassType{Name: ident}, nil
}

func decodeStatements(raws []json.RawMessage) ([]Statement, error) {
	statements := make([]Statement, 0, len(raws))
	for i, raw := range raws {
		statement, err := decodeStatement(raw)
		if err != nil {
			return nil, fmt.Errorf("statement %d: %w", i, err)
		}
		statements = append(statements, statement)
	}
	return statements, nil
}

func decodeStatement(data json.RawMessage) (Statement, error) {
	node, err := decodeNode(data)
	if err != nil {
		return nil, err
	}
	switch node.Kind {
	case "block":
		statements, err := decodeStatements(node.Statements)
		if err != nil {
			return nil, err
		}
		return &Block{Statements: statements}, nil
	case "assign":
		target, err := requireIdent(node.Target, "target")
		if err != nil {
			return nil, err
		}
		value, err := decodeExpression(node.Value)
		if err != nil {
			return nil, err
		}
		return &Assign{Target: target, Value: value}, nil
	case "arrayAssign":
		target, err := requireIdent(node.Target, "target")
		if err != nil {
			return nil, err
		}
		index, err := decodeExpression(node.Index)
		if err != nil {
			return nil, err
		}
		value, err := decodeExpression(node.Value)
		if err != nil {
			return nil, err
		}
		return &ArrayAssign{Target: target, Index: index, Value: value}, nil
	case "if":
		cond, err := decodeExpression(node.Cond)
		if err != nil {
			return nil, err
		}
		then, err := decodeStatement(node.Then)
		if err != nil {
			return nil, err
		}
		otherwise, err := decodeStatement(node.Else)
		if err != nil {
			return nil, err
		}
		return &If{Condition: cond, Then: then, Else: otherwise}, nil
	case "while":
		cond, err := decodeExpression(node.Cond)
		if err != nil {
			return nil, err
		}
		body, err := decodeStatement(node.Body)
		if err != nil {
			return nil, err
		}
		return &While{Condition: cond, Body: body}, nil
	case "print":
		value, err := decodeExpression(node.Value)
		if err != nil {
			return nil, err
		}
		return &Print{Value: value}, nil
	}
	return nil, makeTreeError("unknown statement kind %q", node.Kind)
}

var binaryOps = map[string]BinaryOp{
	"plus":  PlusOp,
	"minus": MinusOp,
	"times": TimesOp,
	"less":  LessOp,
}

func decodeExpressions(raws []json.RawMessage) ([]Expression, error) {
	exprs := make([]Expression, 0, len(raws))
	for _, raw := range raws {
		expr, err := decodeExpression(raw)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
	}
	return exprs, nil
}

func decodeExpression(data json.RawMessage) (Expression, error) {
	node, err := decodeNode(data)
	if err != nil {
		return nil, err
	}
	if op, ok := binaryOps[node.Kind]; ok {
		left, right, err := decodePair(node.Left, node.Right)
		if err != nil {
			return nil, err
		}
		return &Binary{Op: op, Left: left, Right: right}, nil
	}
	switch node.Kind {
	case "and":
		left, right, err := decodePair(node.Left, node.Right)
		if err != nil {
			return nil, err
		}
		return &And{Left: left, Right: right}, nil
	case "lookup":
		array, index, err := decodePair(node.Array, node.Index)
		if err != nil {
			return nil, err
		}
		return &ArrayLookup{Array: array, Index: index}, nil
	case "length":
		array, err := decodeExpression(node.Array)
		if err != nil {
			return nil, err
		}
		return &ArrayLength{Array: array}, nil
	case "call":
		receiver, err := decodeExpression(node.Receiver)
		if err != nil {
			return nil, err
		}
		method, err := requireIdent(node.Method, "method")
		if err != nil {
			return nil, err
		}
		args, err := decodeExpressions(node.Args)
		if err != nil {
			return nil, err
		}
		return &MessageSend{Receiver: receiver, Method: method, Args: args}, nil
	case "int":
		var v int32
		if err := json.Unmarshal(node.Value, &v); err != nil {
			return nil, makeTreeError("bad integer literal: %v", err)
		}
		return &IntegerLiteral{Value: v}, nil
	case "bool":
		var v bool
		if err := json.Unmarshal(node.Value, &v); err != nil {
			return nil, makeTreeError("bad boolean literal: %v", err)
		}
		return &BooleanLiteral{Value: v}, nil
	case "ident":
		name, err := requireIdent(node.Name, "name")
		if err != nil {
			return nil, err
		}
		return &Identifier{Name: name}, nil
	case "this":
		return &This{}, nil
	case "newArray":
		length, err := decodeExpression(node.Length)
		if err != nil {
			return nil, err
		}
		return &NewArray{Length: length}, nil
	case "new":
		class, err := requireIdent(node.Class, "class")
		if err != nil {
			return nil, err
		}
		return &NewObject{Class: class}, nil
	case "not":
		operand, err := decodeExpression(node.Operand)
		if err != nil {
			return nil, err
		}
		return &Not{Operand: operand}, nil
	case "paren":
		inner, err := decodeExpression(node.Inner)
		if err != nil {
			return nil, err
		}
		return &Paren{Inner: inner}, nil
	}
	return nil, makeTreeError("unknown expression kind %q", node.Kind)
}

func decodePair(left, right json.RawMessage) (Expression, Expression, error) {
	l, err := decodeExpression(left)
	if err != nil {
		return nil, nil, err
	}
	r, err := decodeExpression(right)
	if err != nil {
		return nil, nil, err
	}
	return l, r, nil
}

func decodeNode(data json.RawMessage) (*rawNode, error) {
	if len(bytes.TrimSpace(data)) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, makeTreeError("missing node")
	}
	node := &rawNode{}
	if err := json.Unmarshal(data, node); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTree, err)
	}
	return node, nil
}

func requireIdent(ident *Ident, field string) (Ident, error) {
	if ident == nil {
		return Ident{}, makeTreeError("missing %s", field)
	}
	return *ident, checkIdent(*ident)
}

func checkIdent(ident Ident) error {
	if !util.IsIdentifier(ident.Name) {
		return makeTreeError("invalid identifier %q at line %d", ident.Name, ident.Line)
	}
	return nil
}

func makeTreeError(format string, msg ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrMalformedTree, fmt.Sprintf(format, msg...))
}
