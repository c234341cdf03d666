package codegen

import "fmt"

// NameGenerator hands out local names for one function at a time. IR names
// are scoped to their function, so counters restart with every method.
type NameGenerator struct {
	values int
	labels int
}

func (gen *NameGenerator) Reset() {
	gen.values, gen.labels = 0, 0
}

// FreshValue returns the next temporary name: _0, _1, ...
func (gen *NameGenerator) FreshValue() string {
	name := fmt.Sprintf("_%d", gen.values)
	gen.values++
	return name
}

// FreshLabel returns a block label made of hint and a counter, e.g. if_then_3.
func (gen *NameGenerator) FreshLabel(hint string) string {
	name := fmt.Sprintf("%s_%d", hint, gen.labels)
	gen.labels++
	return name
}

// Source identifiers never contain a dot, so the names below cannot clash
// with each other or with the temporaries and labels handed out above.

func paramName(variable string) string {
	return "." + variable
}

func slotName(variable string) string {
	return "v." + variable
}
