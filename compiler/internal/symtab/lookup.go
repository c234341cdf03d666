package symtab

import (
	"fmt"
	"iter"
)

// LookupClass finds a class that can be instantiated. The main class is not
// one of them.
func (table *SymbolTable) LookupClass(className string) *ClassInfo {
	classInfo, _ := table.classes.get(className)
	return classInfo
}

// OrderedClasses yields every class except main in declaration order. The
// sequence can be ranged over any number of times.
func (table *SymbolTable) OrderedClasses() iter.Seq2[string, *ClassInfo] {
	return table.classes.all()
}

// Ancestors yields the mother, grandmother and so on of className. It stops
// at an unresolved name and never yields more classes than the table has,
// so a malformed cycle cannot loop forever.
func (table *SymbolTable) Ancestors(className string) iter.Seq2[string, *ClassInfo] {
	return func(yield func(string, *ClassInfo) bool) {
		classInfo := table.LookupClass(className)
		for steps := 0; classInfo != nil && classInfo.HasMother() && steps < table.classes.len(); steps++ {
			classInfo = table.LookupClass(classInfo.motherName)
			if classInfo == nil || !yield(classInfo.name, classInfo) {
				return
			}
		}
	}
}

// ResolveMethodOwner finds the method visible from className, walking up the
// inheritance chain, and returns it with the class that declares it.
func (table *SymbolTable) ResolveMethodOwner(className, methodName string) (*ClassInfo, *MethodInfo) {
	if table.IsMainClass(className) {
		if methodName == MainMethodName {
			return table.mainClass, table.mainMethod
		}
		return nil, nil
	}
	classInfo := table.LookupClass(className)
	if classInfo == nil {
		return nil, nil
	}
	if m := classInfo.Method(methodName); m != nil {
		return classInfo, m
	}
	for _, ancestor := range table.Ancestors(className) {
		if m := ancestor.Method(methodName); m != nil {
			return ancestor, m
		}
	}
	return nil, nil
}

func (table *SymbolTable) ResolveMethod(className, methodName string) *MethodInfo {
	_, m := table.ResolveMethodOwner(className, methodName)
	return m
}

// OverriddenMethod returns the closest ancestor method that a method named
// methodName declared in className overrides, if any.
func (table *SymbolTable) OverriddenMethod(className, methodName string) (*ClassInfo, *MethodInfo) {
	for _, ancestor := range table.Ancestors(className) {
		if m := ancestor.Method(methodName); m != nil {
			return ancestor, m
		}
	}
	return nil, nil
}

// ResolveField finds a field of className or of one of its ancestors. The
// main class has no fields.
func (table *SymbolTable) ResolveField(className, fieldName string) *VariableInfo {
	classInfo := table.LookupClass(className)
	if classInfo == nil {
		return nil
	}
	if f := classInfo.Field(fieldName); f != nil {
		return f
	}
	for _, ancestor := range table.Ancestors(className) {
		if f := ancestor.Field(fieldName); f != nil {
			return f
		}
	}
	return nil
}

// LookupVariable finds an argument or local of one method. Variables are
// never inherited.
func (table *SymbolTable) LookupVariable(className, methodName, varName string) *VariableInfo {
	if table.IsMainClass(className) {
		if methodName != MainMethodName {
			return nil
		}
		return table.mainMethod.Variable(varName)
	}
	classInfo := table.LookupClass(className)
	if classInfo == nil {
		return nil
	}
	methodInfo := classInfo.Method(methodName)
	if methodInfo == nil {
		return nil
	}
	return methodInfo.Variable(varName)
}

// Slot is one vtable entry: the most derived method visible from a class for
// that slot, and the class that declares it.
type Slot struct {
	Index  int
	Owner  string
	Method *MethodInfo
}

// Symbol is the IR function name of the slot, Owner.method.
func (s Slot) Symbol() string {
	return MethodSymbol(s.Owner, s.Method.Name)
}

func MethodSymbol(className, methodName string) string {
	return className + "." + methodName
}

func VTableSymbol(className string) string {
	return "." + className + "_vtable"
}

// VTable lays out the virtual table of className ordered by slot index.
func (table *SymbolTable) VTable(className string) []Slot {
	classInfo := table.LookupClass(className)
	if classInfo == nil {
		return nil
	}
	chain := []*ClassInfo{classInfo}
	for _, ancestor := range table.Ancestors(className) {
		chain = append(chain, ancestor)
	}
	slots := make([]Slot, classInfo.totalNumberOfMethods)
	// Root first, so that overrides further down replace inherited entries.
	for i := len(chain) - 1; i >= 0; i-- {
		for _, m := range chain[i].Methods() {
			slots[m.Slot()] = Slot{Index: m.Slot(), Owner: chain[i].name, Method: m}
		}
	}
	return slots
}

// CheckCyclicInheritance reports a class that is its own ancestor.
func (table *SymbolTable) CheckCyclicInheritance() error {
	for name, classInfo := range table.OrderedClasses() {
		seen := map[string]bool{name: true}
		for steps := 0; classInfo != nil && classInfo.HasMother(); steps++ {
			if seen[classInfo.motherName] || steps > table.classes.len() {
				return fmt.Errorf("%w: class %s", ErrCyclicInheritance, name)
			}
			seen[classInfo.motherName] = true
			classInfo = table.LookupClass(classInfo.motherName)
		}
	}
	return nil
}
