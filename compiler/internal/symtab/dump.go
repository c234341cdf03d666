package symtab

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Dump writes a readable listing of the table: classes in declaration order
// with their field offsets, vtable slots and method variables.
func (table *SymbolTable) Dump(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "main class %s\n", table.mainClassName)
	for name, v := range table.mainMethod.Variables() {
		fmt.Fprintf(tw, "\tvar %s\t%s\n", name, v.Type)
	}
	for className, classInfo := range table.OrderedClasses() {
		header := "class " + className
		if classInfo.HasMother() {
			header += " extends " + classInfo.motherName
		}
		fmt.Fprintf(tw, "%s\tfields=%d bytes\tslots=%d\n", header, classInfo.nextFieldOffset, classInfo.totalNumberOfMethods)
		for name, f := range classInfo.Fields() {
			fmt.Fprintf(tw, "\tfield %s\t%s\toffset %d\n", name, f.Type, f.Offset)
		}
		for name, m := range classInfo.Methods() {
			fmt.Fprintf(tw, "\tmethod %s(%s)\t%s\tslot %d\n", name, argumentList(m), m.ReturnType, m.Slot())
			for varName, v := range m.Variables() {
				fmt.Fprintf(tw, "\t\tvar %s\t%s\n", varName, v.Type)
			}
		}
	}
	return tw.Flush()
}

func argumentList(m *MethodInfo) string {
	args := make([]string, 0, len(m.arguments))
	for _, arg := range m.arguments {
		args = append(args, arg.Type.String())
	}
	return strings.Join(args, ", ")
}
