package procbind

import (
	"slices"

	"github.com/jackc/pgx/v5"
)

// Entry - one included parameter together with its placeholder token
type Entry struct {
	Parameter *ResolvedParameter
	Token     string
}

// ExecuteStructure - the aggregate resolution result: an ordered mapping from
// parameter name to placeholder token plus the bound argument values. Built
// to completion synchronously by the resolver and treated as immutable
// afterwards; it exposes no mutators.
type ExecuteStructure struct {
	entries []Entry
	args    map[string]any
}

func newExecuteStructure() *ExecuteStructure {
	return &ExecuteStructure{
		args: make(map[string]any),
	}
}

func (es *ExecuteStructure) add(rp *ResolvedParameter, placeholder string) {
	es.entries = append(es.entries, Entry{Parameter: rp, Token: Token(placeholder)})
	es.args[placeholder] = rp.Value
}

// Entries - included parameters in placeholder allocation order
func (es *ExecuteStructure) Entries() []Entry {
	return slices.Clone(es.entries)
}

// Token - placeholder token for the named parameter, if it was included
func (es *ExecuteStructure) Token(name string) (string, bool) {
	for _, e := range es.entries {
		if e.Parameter.Name == name {
			return e.Token, true
		}
	}
	return "", false
}

// Args - named arguments ready to hand to the pgx query rewriter. The map is
// copied so callers augmenting it (e.g. with predicate bindings) cannot
// mutate the structure.
func (es *ExecuteStructure) Args() pgx.NamedArgs {
	args := make(pgx.NamedArgs, len(es.args))
	for name, value := range es.args {
		args[name] = value
	}
	return args
}

// HasOutputParameters - true when at least one included parameter is output
// capable. Recomputed over the current entry set on every call rather than
// cached at construction time.
func (es *ExecuteStructure) HasOutputParameters() bool {
	for _, e := range es.entries {
		if e.Parameter.IsOutput() {
			return true
		}
	}
	return false
}

// OutputNames - names of output-capable parameters in declaration order, for
// the execution collaborator to read bound values back
func (es *ExecuteStructure) OutputNames() []string {
	var names []string
	for _, e := range es.entries {
		if e.Parameter.IsOutput() {
			names = append(names, e.Parameter.Name)
		}
	}
	return names
}
