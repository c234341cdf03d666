package symtab

import (
	"bytes"
	"errors"
	"github.com/stretchr/testify/assert"
	"testing"

	"github.com/xiaobogaga/minijava/compiler/internal/types"
)

func TestSymbolTable_DeclareClass(t *testing.T) {
	table := New()
	assert.Nil(t, table.SetMainClass("Main", "args"))
	_, err := table.DeclareClass("A", "")
	assert.Nil(t, err)
	_, err = table.DeclareClass("A", "")
	assert.True(t, errors.Is(err, ErrDuplicateClass))
	_, err = table.DeclareClass("Main", "")
	assert.True(t, errors.Is(err, ErrDuplicateClass))
	_, err = table.DeclareClass("C", "B")
	assert.True(t, errors.Is(err, ErrUnknownMother))
	_, err = table.DeclareClass("D", "Main")
	assert.True(t, errors.Is(err, ErrUnknownMother))
	assert.Nil(t, table.LookupClass("C"))
	assert.Equal(t, 1, table.NumberOfClasses())
}

func TestSymbolTable_FieldOffsets(t *testing.T) {
	table := New()
	_, err := table.DeclareClass("A", "")
	assert.Nil(t, err)
	testData := []struct {
		class  string
		field  string
		tp     types.Type
		offset int
	}{
		{class: "A", field: "flag", tp: types.Boolean, offset: 0},
		{class: "A", field: "count", tp: types.Integer, offset: 1},
		{class: "A", field: "items", tp: types.IntArray, offset: 5},
		{class: "A", field: "next", tp: types.ClassRef("A"), offset: 13},
	}
	for _, data := range testData {
		info, err := table.DeclareField(data.class, data.field, data.tp)
		assert.Nil(t, err)
		assert.Equal(t, data.offset, info.Offset, data.field)
	}
	a := table.LookupClass("A")
	assert.Equal(t, 21, a.NextFieldOffset())
	assert.Equal(t, 29, a.ObjectSize())

	_, err = table.DeclareField("A", "count", types.Integer)
	assert.True(t, errors.Is(err, ErrDuplicateField))
	assert.Equal(t, 21, a.NextFieldOffset())

	// Subclass fields start where the mother's fields end.
	_, err = table.DeclareClass("B", "A")
	assert.Nil(t, err)
	info, err := table.DeclareField("B", "extra", types.Integer)
	assert.Nil(t, err)
	assert.Equal(t, 21, info.Offset)
	for _, f := range a.Fields() {
		assert.True(t, info.Offset >= f.Offset)
	}
	assert.Equal(t, info, table.ResolveField("B", "extra"))
	assert.Equal(t, a.Field("count"), table.ResolveField("B", "count"))
	assert.Nil(t, table.ResolveField("A", "extra"))

	_, err = table.DeclareField("Nope", "x", types.Integer)
	assert.True(t, errors.Is(err, ErrUnknownClass))
}

func TestSymbolTable_MethodSlots(t *testing.T) {
	table := New()
	_, err := table.DeclareClass("A", "")
	assert.Nil(t, err)
	m, err := table.DeclareMethod("A", "m", types.Integer)
	assert.Nil(t, err)
	assert.Equal(t, 0, m.Slot())
	n, err := table.DeclareMethod("A", "n", types.Boolean)
	assert.Nil(t, err)
	assert.Equal(t, 1, n.Slot())
	assert.Equal(t, 8, n.Offset)
	_, err = table.DeclareMethod("A", "m", types.Integer)
	assert.True(t, errors.Is(err, ErrDuplicateMethod))

	_, err = table.DeclareClass("B", "A")
	assert.Nil(t, err)
	fresh, err := table.DeclareMethod("B", "k", types.Integer)
	assert.Nil(t, err)
	assert.Equal(t, 2, fresh.Slot())
	override, err := table.DeclareMethod("B", "n", types.Boolean)
	assert.Nil(t, err)
	assert.Equal(t, n.Slot(), override.Slot())
	assert.Equal(t, 3, table.LookupClass("B").TotalNumberOfMethods())
	assert.Equal(t, 2, table.LookupClass("A").TotalNumberOfMethods())

	// Override of a grandmother method that the mother does not redeclare.
	_, err = table.DeclareClass("C", "B")
	assert.Nil(t, err)
	deep, err := table.DeclareMethod("C", "m", types.Integer)
	assert.Nil(t, err)
	assert.Equal(t, m.Slot(), deep.Slot())

	owner, resolved := table.ResolveMethodOwner("C", "n")
	assert.Equal(t, "B", owner.Name())
	assert.Equal(t, override, resolved)
	assert.Nil(t, table.ResolveMethod("A", "k"))

	ancestor, overridden := table.OverriddenMethod("C", "m")
	assert.Equal(t, "A", ancestor.Name())
	assert.Equal(t, m, overridden)
}

func TestSymbolTable_Variables(t *testing.T) {
	table := New()
	assert.Nil(t, table.SetMainClass("Main", "a"))
	_, err := table.DeclareClass("A", "")
	assert.Nil(t, err)
	_, err = table.DeclareMethod("A", "m", types.Integer)
	assert.Nil(t, err)
	_, err = table.DeclareArgument("A", "m", "x", types.Integer)
	assert.Nil(t, err)
	_, err = table.DeclareArgument("A", "m", "y", types.ClassRef("A"))
	assert.Nil(t, err)
	_, err = table.DeclareArgument("A", "m", "x", types.Boolean)
	assert.True(t, errors.Is(err, ErrDuplicateVariable))
	_, err = table.DeclareLocal("A", "m", "y", types.Integer)
	assert.True(t, errors.Is(err, ErrDuplicateVariable))
	_, err = table.DeclareLocal("A", "m", "z", types.IntArray)
	assert.Nil(t, err)
	_, err = table.DeclareLocal("A", "nope", "z", types.IntArray)
	assert.True(t, errors.Is(err, ErrUnknownMethod))

	m := table.ResolveMethod("A", "m")
	assert.Equal(t, 2, m.NumberOfArguments())
	assert.Equal(t, "x", m.Arguments()[0].Name)
	assert.Equal(t, "y", m.Arguments()[1].Name)
	var names []string
	for name := range m.Variables() {
		names = append(names, name)
	}
	assert.Equal(t, []string{"x", "y", "z"}, names)
	assert.Equal(t, types.IntArray, table.LookupVariable("A", "m", "z").Type)

	_, err = table.DeclareMainLocal("a", types.Integer)
	assert.Nil(t, err)
	_, err = table.DeclareMainLocal("a", types.Boolean)
	assert.True(t, errors.Is(err, ErrDuplicateVariable))
	assert.Equal(t, types.Integer, table.LookupVariable("Main", "main", "a").Type)
	assert.Equal(t, table.MainMethod(), table.ResolveMethod("Main", "main"))
	assert.Nil(t, table.ResolveMethod("Main", "m"))
	assert.Nil(t, table.ResolveField("Main", "a"))
}

func TestSymbolTable_VariablesAreNotInherited(t *testing.T) {
	table := New()
	_, _ = table.DeclareClass("A", "")
	_, _ = table.DeclareMethod("A", "m", types.Integer)
	_, _ = table.DeclareLocal("A", "m", "local", types.Integer)
	_, _ = table.DeclareClass("B", "A")
	assert.NotNil(t, table.LookupVariable("A", "m", "local"))
	assert.Nil(t, table.LookupVariable("B", "m", "local"))
}

func TestSymbolTable_VTable(t *testing.T) {
	table := New()
	_, _ = table.DeclareClass("A", "")
	_, _ = table.DeclareMethod("A", "m", types.Integer)
	_, _ = table.DeclareMethod("A", "n", types.Integer)
	_, _ = table.DeclareClass("B", "A")
	_, _ = table.DeclareMethod("B", "m", types.Integer)
	_, _ = table.DeclareMethod("B", "o", types.Integer)
	_, _ = table.DeclareClass("C", "")
	_, _ = table.DeclareMethod("C", "p", types.Integer)

	var symbols []string
	for _, slot := range table.VTable("A") {
		symbols = append(symbols, slot.Symbol())
	}
	assert.Equal(t, []string{"A.m", "A.n"}, symbols)
	symbols = nil
	for i, slot := range table.VTable("B") {
		assert.Equal(t, i, slot.Index)
		symbols = append(symbols, slot.Symbol())
	}
	assert.Equal(t, []string{"B.m", "A.n", "B.o"}, symbols)
	assert.Nil(t, table.ResolveMethod("C", "m"))
	assert.Equal(t, ".B_vtable", VTableSymbol("B"))
}

func TestSymbolTable_OrderedClasses(t *testing.T) {
	table := New()
	for _, name := range []string{"Zeta", "Alpha", "Mid"} {
		_, err := table.DeclareClass(name, "")
		assert.Nil(t, err)
	}
	collect := func() (names []string) {
		for name := range table.OrderedClasses() {
			names = append(names, name)
		}
		return
	}
	assert.Equal(t, []string{"Zeta", "Alpha", "Mid"}, collect())
	// The sequence can be restarted.
	assert.Equal(t, collect(), collect())
	for name := range table.OrderedClasses() {
		assert.Equal(t, "Zeta", name)
		break
	}
}

func TestSymbolTable_Freeze(t *testing.T) {
	table := New()
	_, _ = table.DeclareClass("A", "")
	table.Freeze()
	assert.True(t, table.Frozen())
	_, err := table.DeclareClass("B", "")
	assert.True(t, errors.Is(err, ErrFrozen))
	_, err = table.DeclareField("A", "x", types.Integer)
	assert.True(t, errors.Is(err, ErrFrozen))
	_, err = table.DeclareMethod("A", "m", types.Integer)
	assert.True(t, errors.Is(err, ErrFrozen))
	_, err = table.DeclareMainLocal("x", types.Integer)
	assert.True(t, errors.Is(err, ErrFrozen))
	assert.True(t, errors.Is(table.SetMainClass("Main", "a"), ErrFrozen))
}

func TestSymbolTable_CheckCyclicInheritance(t *testing.T) {
	table := New()
	_, _ = table.DeclareClass("A", "")
	_, _ = table.DeclareClass("B", "A")
	assert.Nil(t, table.CheckCyclicInheritance())
	// Declaration order rules cycles out; force one to check the detector.
	table.LookupClass("A").motherName = "B"
	assert.True(t, errors.Is(table.CheckCyclicInheritance(), ErrCyclicInheritance))
}

func TestSymbolTable_Dump(t *testing.T) {
	table := New()
	_ = table.SetMainClass("Main", "a")
	_, _ = table.DeclareMainLocal("x", types.Integer)
	_, _ = table.DeclareClass("A", "")
	_, _ = table.DeclareField("A", "f", types.Boolean)
	_, _ = table.DeclareMethod("A", "m", types.Integer)
	_, _ = table.DeclareArgument("A", "m", "p", types.IntArray)
	_, _ = table.DeclareClass("B", "A")
	buf := &bytes.Buffer{}
	assert.Nil(t, table.Dump(buf))
	out := buf.String()
	assert.Contains(t, out, "main class Main")
	assert.Contains(t, out, "class B extends A")
	assert.Contains(t, out, "method m(int[])")
	assert.Contains(t, out, "offset 0")
}
