package procbind

import (
	"fmt"
	"slices"
)

// ParamsValue - raw textual representation of a parameter value as received
// from the request layer or from config. A nil ParamsValue stored under a
// present key means an explicit NULL.
type ParamsValue []byte

// Direction - stored procedure parameter direction
type Direction int

const (
	DirectionInput Direction = iota
	DirectionOutput
	DirectionInputOutput
)

const (
	directionInputName       = "in"
	directionOutputName      = "out"
	directionInputOutputName = "inout"
)

func (d Direction) String() string {
	switch d {
	case DirectionInput:
		return directionInputName
	case DirectionOutput:
		return directionOutputName
	case DirectionInputOutput:
		return directionInputOutputName
	}
	return fmt.Sprintf("direction(%d)", int(d))
}

// IsOutput - shows that the execution collaborator must read the bound value
// back after the statement runs
func (d Direction) IsOutput() bool {
	return d == DirectionOutput || d == DirectionInputOutput
}

func ParseDirection(v string) (Direction, error) {
	switch v {
	case directionInputName:
		return DirectionInput, nil
	case directionOutputName:
		return DirectionOutput, nil
	case directionInputOutputName:
		return DirectionInputOutput, nil
	}
	return 0, fmt.Errorf("unknown parameter direction %q", v)
}

// RoutineKind - distinguishes procedures (invoked with CALL) from functions
// (invoked with SELECT ... FROM)
type RoutineKind int

const (
	RoutineFunction RoutineKind = iota
	RoutineProcedure
)

func (k RoutineKind) String() string {
	if k == RoutineProcedure {
		return "procedure"
	}
	return "function"
}

// ParameterDefinition - structural metadata of a single procedure parameter.
// Owned by the metadata catalog and read-only during resolution.
type ParameterDefinition struct {
	// Name - name of the parameter. Must be unique within the procedure
	Name string
	// Direction - input, output or both
	Direction Direction
	// Optional - the parameter may be omitted from the request entirely. The
	// procedure's own declared default applies at execution time
	Optional bool
	// DefaultValue - config-declared fallback for a required parameter.
	// nil means no config default
	DefaultValue ParamsValue
	// Kind - expected scalar kind the raw value is coerced into
	Kind ScalarKind
}

func NewParameterDefinition(name string, kind ScalarKind) *ParameterDefinition {
	return &ParameterDefinition{
		Name: name,
		Kind: kind,
	}
}

func (p *ParameterDefinition) SetDirection(d Direction) *ParameterDefinition {
	p.Direction = d
	return p
}

func (p *ParameterDefinition) SetOptional(v bool) *ParameterDefinition {
	p.Optional = v
	return p
}

func (p *ParameterDefinition) SetDefaultValue(v ParamsValue) *ParameterDefinition {
	p.DefaultValue = v
	return p
}

// HasConfigDefault - shows that a config-declared fallback value exists
func (p *ParameterDefinition) HasConfigDefault() bool {
	return p.DefaultValue != nil
}

// ProcedureDefinition - ordered parameter signature of a stored procedure or
// function. Order is significant: it drives placeholder allocation order and
// therefore the generated SQL text.
type ProcedureDefinition struct {
	Schema string
	Name   string
	Kind   RoutineKind

	params []*ParameterDefinition
	index  map[string]int
}

func NewProcedureDefinition(schema, name string, kind RoutineKind) *ProcedureDefinition {
	return &ProcedureDefinition{
		Schema: schema,
		Name:   name,
		Kind:   kind,
		index:  make(map[string]int),
	}
}

func (d *ProcedureDefinition) AddParameter(p *ParameterDefinition) error {
	if _, ok := d.index[p.Name]; ok {
		return fmt.Errorf("duplicated parameter %q in %s", p.Name, d.QualifiedName())
	}
	d.index[p.Name] = len(d.params)
	d.params = append(d.params, p)
	return nil
}

// Parameters - declared parameters in definition order
func (d *ProcedureDefinition) Parameters() []*ParameterDefinition {
	return slices.Clone(d.params)
}

func (d *ProcedureDefinition) GetParameter(name string) (*ParameterDefinition, bool) {
	idx, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return d.params[idx], true
}

func (d *ProcedureDefinition) QualifiedName() string {
	return fmt.Sprintf("%s.%s", d.Schema, d.Name)
}

// ResolvedParameter - a declared parameter together with the value chosen for
// it (request, config default or explicit NULL)
type ResolvedParameter struct {
	Name      string
	Value     any
	Direction Direction
}

func (rp *ResolvedParameter) IsOutput() bool {
	return rp.Direction.IsOutput()
}
