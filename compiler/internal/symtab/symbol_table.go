package symtab

import (
	"errors"
	"iter"

	"github.com/xiaobogaga/minijava/compiler/internal/types"
)

// SymbolTable -> ClassInfo -> MethodInfo -> VariableInfo (locals and arguments)
//             -> ClassInfo -> VariableInfo (fields)
//
// The main class is kept apart from the other classes: it has no instances,
// no fields and no vtable slots, only the static main method.

const (
	// ObjectHeaderSize is the vtable pointer stored in front of every object.
	ObjectHeaderSize = 8
	// SlotSize is the width of one vtable entry.
	SlotSize = 8
)

var (
	ErrDuplicateClass    = errors.New("duplicate class")
	ErrUnknownMother     = errors.New("unknown mother class")
	ErrDuplicateField    = errors.New("duplicate field")
	ErrDuplicateMethod   = errors.New("duplicate method")
	ErrDuplicateVariable = errors.New("duplicate variable")
	ErrUnknownClass      = errors.New("unknown class")
	ErrUnknownMethod     = errors.New("unknown method")
	ErrCyclicInheritance = errors.New("cyclic inheritance")
	ErrFrozen            = errors.New("symbol table is frozen")
)

// MainMethodName is the only method the main class may have.
const MainMethodName = "main"

type VariableInfo struct {
	Name string
	Type types.Type
	// Offset is the byte offset inside the field region of an object. Only
	// set for fields.
	Offset int
}

type MethodInfo struct {
	Name       string
	ReturnType types.Type
	// Offset is slot * SlotSize in the vtable of the declaring class.
	Offset int

	arguments []*VariableInfo
	variables orderedMap[*VariableInfo] // arguments and locals share one namespace.
}

func newMethodInfo(name string, returnType types.Type) *MethodInfo {
	return &MethodInfo{Name: name, ReturnType: returnType}
}

func (m *MethodInfo) Slot() int {
	return m.Offset / SlotSize
}

// Arguments are in call-site order.
func (m *MethodInfo) Arguments() []*VariableInfo {
	return m.arguments
}

func (m *MethodInfo) NumberOfArguments() int {
	return len(m.arguments)
}

func (m *MethodInfo) Variable(name string) *VariableInfo {
	v, _ := m.variables.get(name)
	return v
}

// Variables yields arguments and locals in declaration order.
func (m *MethodInfo) Variables() iter.Seq2[string, *VariableInfo] {
	return m.variables.all()
}

func (m *MethodInfo) putVariable(name string, tp types.Type) (*VariableInfo, error) {
	info := &VariableInfo{Name: name, Type: tp}
	if !m.variables.put(name, info) {
		return nil, ErrDuplicateVariable
	}
	return info, nil
}

type ClassInfo struct {
	name       string
	motherName string

	fields  orderedMap[*VariableInfo]
	methods orderedMap[*MethodInfo]

	nextFieldOffset      int
	totalNumberOfMethods int
}

func (c *ClassInfo) Name() string {
	return c.name
}

// MotherName is empty when the class does not extend another class.
func (c *ClassInfo) MotherName() string {
	return c.motherName
}

func (c *ClassInfo) HasMother() bool {
	return c.motherName != ""
}

// NextFieldOffset is also the number of field bytes of an instance,
// inherited fields included.
func (c *ClassInfo) NextFieldOffset() int {
	return c.nextFieldOffset
}

// ObjectSize is the number of bytes allocated for one instance.
func (c *ClassInfo) ObjectSize() int {
	return c.nextFieldOffset + ObjectHeaderSize
}

// TotalNumberOfMethods is the number of vtable slots, inherited ones included.
func (c *ClassInfo) TotalNumberOfMethods() int {
	return c.totalNumberOfMethods
}

// Field only looks at fields declared by this class.
func (c *ClassInfo) Field(name string) *VariableInfo {
	v, _ := c.fields.get(name)
	return v
}

// Method only looks at methods declared by this class.
func (c *ClassInfo) Method(name string) *MethodInfo {
	m, _ := c.methods.get(name)
	return m
}

func (c *ClassInfo) Fields() iter.Seq2[string, *VariableInfo] {
	return c.fields.all()
}

func (c *ClassInfo) Methods() iter.Seq2[string, *MethodInfo] {
	return c.methods.all()
}

type SymbolTable struct {
	mainClassName string
	mainArgName   string
	mainClass     *ClassInfo
	mainMethod    *MethodInfo

	classes orderedMap[*ClassInfo]
	frozen  bool
}

func New() *SymbolTable {
	table := &SymbolTable{
		mainClass:  &ClassInfo{},
		mainMethod: newMethodInfo(MainMethodName, types.Void),
	}
	table.mainClass.methods.put(MainMethodName, table.mainMethod)
	return table
}

// Freeze ends the building stage. Every later Declare call fails with
// ErrFrozen.
func (table *SymbolTable) Freeze() {
	table.frozen = true
}

func (table *SymbolTable) Frozen() bool {
	return table.frozen
}

func (table *SymbolTable) MainClassName() string {
	return table.mainClassName
}

// MainArgName is the name of the String[] parameter of main. It is recorded
// but never declared as a variable.
func (table *SymbolTable) MainArgName() string {
	return table.mainArgName
}

func (table *SymbolTable) MainClass() *ClassInfo {
	return table.mainClass
}

func (table *SymbolTable) MainMethod() *MethodInfo {
	return table.mainMethod
}

func (table *SymbolTable) IsMainClass(name string) bool {
	return table.mainClassName != "" && table.mainClassName == name
}

func (table *SymbolTable) NumberOfClasses() int {
	return table.classes.len()
}

func (table *SymbolTable) SetMainClass(name, argName string) error {
	if table.frozen {
		return ErrFrozen
	}
	if table.mainClassName != "" {
		return ErrDuplicateClass
	}
	if _, ok := table.classes.get(name); ok {
		return ErrDuplicateClass
	}
	table.mainClassName, table.mainArgName = name, argName
	table.mainClass.name = name
	return nil
}

// DeclareClass registers a class. An empty motherName declares a root class,
// otherwise the mother must already be declared and the new class starts its
// field region and vtable where the mother's end.
func (table *SymbolTable) DeclareClass(name, motherName string) (*ClassInfo, error) {
	if table.frozen {
		return nil, ErrFrozen
	}
	if table.IsMainClass(name) {
		return nil, ErrDuplicateClass
	}
	if _, ok := table.classes.get(name); ok {
		return nil, ErrDuplicateClass
	}
	classInfo := &ClassInfo{name: name}
	if motherName != "" {
		mother := table.LookupClass(motherName)
		if mother == nil {
			return nil, ErrUnknownMother
		}
		classInfo.motherName = motherName
		classInfo.nextFieldOffset = mother.nextFieldOffset
		classInfo.totalNumberOfMethods = mother.totalNumberOfMethods
	}
	table.classes.put(name, classInfo)
	return classInfo, nil
}

func (table *SymbolTable) DeclareField(className, fieldName string, tp types.Type) (*VariableInfo, error) {
	if table.frozen {
		return nil, ErrFrozen
	}
	classInfo := table.LookupClass(className)
	if classInfo == nil {
		return nil, ErrUnknownClass
	}
	info := &VariableInfo{Name: fieldName, Type: tp, Offset: classInfo.nextFieldOffset}
	if !classInfo.fields.put(fieldName, info) {
		return nil, ErrDuplicateField
	}
	classInfo.nextFieldOffset += tp.Size()
	return info, nil
}

// DeclareMethod registers a method. When an ancestor already declares a
// method with the same name the new one overrides it and takes over its
// slot; otherwise a slot is appended to the vtable.
func (table *SymbolTable) DeclareMethod(className, methodName string, returnType types.Type) (*MethodInfo, error) {
	if table.frozen {
		return nil, ErrFrozen
	}
	classInfo := table.LookupClass(className)
	if classInfo == nil {
		return nil, ErrUnknownClass
	}
	methodInfo := newMethodInfo(methodName, returnType)
	if _, ok := classInfo.methods.get(methodName); ok {
		return nil, ErrDuplicateMethod
	}
	if _, overridden := table.OverriddenMethod(className, methodName); overridden != nil {
		methodInfo.Offset = overridden.Offset
	} else {
		methodInfo.Offset = classInfo.totalNumberOfMethods * SlotSize
		classInfo.totalNumberOfMethods++
	}
	classInfo.methods.put(methodName, methodInfo)
	return methodInfo, nil
}

func (table *SymbolTable) DeclareArgument(className, methodName, argName string, tp types.Type) (*VariableInfo, error) {
	methodInfo, err := table.declaredMethod(className, methodName)
	if err != nil {
		return nil, err
	}
	info, err := methodInfo.putVariable(argName, tp)
	if err != nil {
		return nil, err
	}
	methodInfo.arguments = append(methodInfo.arguments, info)
	return info, nil
}

func (table *SymbolTable) DeclareLocal(className, methodName, varName string, tp types.Type) (*VariableInfo, error) {
	methodInfo, err := table.declaredMethod(className, methodName)
	if err != nil {
		return nil, err
	}
	return methodInfo.putVariable(varName, tp)
}

func (table *SymbolTable) DeclareMainLocal(varName string, tp types.Type) (*VariableInfo, error) {
	if table.frozen {
		return nil, ErrFrozen
	}
	return table.mainMethod.putVariable(varName, tp)
}

func (table *SymbolTable) declaredMethod(className, methodName string) (*MethodInfo, error) {
	if table.frozen {
		return nil, ErrFrozen
	}
	classInfo := table.LookupClass(className)
	if classInfo == nil {
		return nil, ErrUnknownClass
	}
	methodInfo := classInfo.Method(methodName)
	if methodInfo == nil {
		return nil, ErrUnknownMethod
	}
	return methodInfo, nil
}
