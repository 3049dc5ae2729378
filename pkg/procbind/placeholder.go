package procbind

import "strconv"

const placeholderPrefix = "param"

// Allocator - issues unique sequential placeholder names for one statement
// build. A single instance must be shared by every call-site that binds a
// value into the same statement (procedure arguments and any additional
// predicates alike), otherwise token collisions become possible.
type Allocator struct {
	next int
}

func NewAllocator() *Allocator {
	return &Allocator{}
}

// Next - returns a fresh placeholder name (param0, param1, ...) never issued
// before by this allocator
func (a *Allocator) Next() string {
	name := placeholderPrefix + strconv.Itoa(a.next)
	a.next++
	return name
}

// Token - renders a placeholder name as the named-argument token used in the
// SQL text
func Token(name string) string {
	return "@" + name
}
