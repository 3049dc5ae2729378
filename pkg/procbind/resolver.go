package procbind

// Resolver - reconciles request-supplied values, config defaults and the
// procedure's declared signature into an ExecuteStructure. One Resolver is
// constructed per inbound request and never shared.
type Resolver struct {
	alloc *Allocator
}

func NewResolver(alloc *Allocator) *Resolver {
	return &Resolver{alloc: alloc}
}

// Resolve - iterates the declared parameters in definition order and decides
// the value source for each one:
//
//   - supplied non-null value: coerced against the declared scalar kind
//   - supplied explicit null: bound as untyped NULL without coercion
//   - absent and optional: skipped entirely, the procedure's own default
//     applies at execution time
//   - absent, required, config default declared: the default is coerced the
//     same way a request value would be
//   - absent, required, no default: resolution fails
//
// On any failure no ExecuteStructure is returned. Upstream request validation
// normally catches both failure kinds; this check is the final safety net.
func (r *Resolver) Resolve(def *ProcedureDefinition, req map[string]ParamsValue) (*ExecuteStructure, error) {
	es := newExecuteStructure()

	for _, pd := range def.Parameters() {
		raw, supplied := req[pd.Name]

		switch {
		case supplied && raw != nil:
			value, err := Coerce(pd.Kind, raw)
			if err != nil {
				return nil, newParameterCoercionError(pd.Name, err)
			}
			r.bind(es, pd, value)
		case supplied:
			// explicit null: the database accepts an untyped NULL
			r.bind(es, pd, nil)
		case pd.Optional:
			continue
		case pd.HasConfigDefault():
			value, err := Coerce(pd.Kind, pd.DefaultValue)
			if err != nil {
				return nil, newParameterCoercionError(pd.Name, err)
			}
			r.bind(es, pd, value)
		default:
			return nil, newMissingParameterError(pd.Name)
		}
	}

	return es, nil
}

func (r *Resolver) bind(es *ExecuteStructure, pd *ParameterDefinition, value any) {
	rp := &ResolvedParameter{
		Name:      pd.Name,
		Value:     value,
		Direction: pd.Direction,
	}
	es.add(rp, r.alloc.Next())
}
