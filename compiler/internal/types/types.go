package types

import (
	lltypes "github.com/llir/llvm/ir/types"
)

// Kind is the closed set of MiniJava value types.
type Kind int

const (
	VoidKind Kind = iota // Only used as the return type of main.
	IntegerKind
	BooleanKind
	IntArrayKind
	ClassKind
)

// Type is a MiniJava type. ClassName is only set for ClassKind and is
// resolved lazily against the symbol table.
type Type struct {
	Kind      Kind
	ClassName string
}

var (
	Void     = Type{Kind: VoidKind}
	Integer  = Type{Kind: IntegerKind}
	Boolean  = Type{Kind: BooleanKind}
	IntArray = Type{Kind: IntArrayKind}
)

// ClassRef returns a reference type to the named class.
func ClassRef(name string) Type {
	return Type{Kind: ClassKind, ClassName: name}
}

func (t Type) IsClass() bool {
	return t.Kind == ClassKind
}

func (t Type) Equal(other Type) bool {
	if t.Kind != other.Kind {
		return false
	}
	return t.Kind != ClassKind || t.ClassName == other.ClassName
}

// Size is the number of bytes a field of this type occupies inside an object.
// Void has no size and reports -1.
func (t Type) Size() int {
	switch t.Kind {
	case BooleanKind:
		return 1
	case IntegerKind:
		return 4
	case IntArrayKind, ClassKind:
		return 8
	}
	return -1
}

var (
	i8Ptr  = lltypes.NewPointer(lltypes.I8)
	i32Ptr = lltypes.NewPointer(lltypes.I32)
)

// IRType is the LLVM representation: objects are opaque i8* handles and
// arrays are i32* blocks whose first element holds the length.
func (t Type) IRType() lltypes.Type {
	switch t.Kind {
	case IntegerKind:
		return lltypes.I32
	case BooleanKind:
		return lltypes.I1
	case IntArrayKind:
		return i32Ptr
	case ClassKind:
		return i8Ptr
	}
	return lltypes.Void
}

// Repr is the textual IR token of the type, e.g. "i32" or "i8*".
func (t Type) Repr() string {
	return t.IRType().String()
}

func (t Type) String() string {
	switch t.Kind {
	case VoidKind:
		return "void"
	case IntegerKind:
		return "int"
	case BooleanKind:
		return "boolean"
	case IntArrayKind:
		return "int[]"
	case ClassKind:
		return t.ClassName
	}
	return "unknown"
}
