// Copyright 2025 Sprocket
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package catalog

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/sprocketio/sprocket/internal/domains"
	"github.com/sprocketio/sprocket/pkg/procbind"
)

// Querier - the subset of pgxpool.Pool the catalog needs. Introspection runs
// one query per schema concurrently, so the querier must be safe for
// concurrent use.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const introspectRoutinesQuery = `
SELECT p.proname,
       p.prokind::text,
       coalesce(p.proallargtypes, p.proargtypes::oid[])  AS arg_types,
       coalesce(p.proargnames, '{}'::text[])             AS arg_names,
       coalesce(p.proargmodes::text[], '{}'::text[])     AS arg_modes,
       p.pronargdefaults
FROM pg_catalog.pg_proc p
JOIN pg_catalog.pg_namespace n ON n.oid = p.pronamespace
WHERE n.nspname = $1
  AND p.prokind = ANY('{f,p}')
ORDER BY p.proname
`

// Catalog - discovered stored procedure and function signatures with config
// overrides applied. Read-only after Load; safe for concurrent readers.
type Catalog struct {
	procedures map[string]*procbind.ProcedureDefinition
	names      []string
}

// Load - introspects pg_proc for every configured schema and layers the
// per-procedure config overrides on top of the discovered signatures
func Load(ctx context.Context, q Querier, cfg *domains.CatalogConfig) (*Catalog, error) {
	c := &Catalog{
		procedures: make(map[string]*procbind.ProcedureDefinition),
	}

	var mx sync.Mutex
	eg, gctx := errgroup.WithContext(ctx)
	for _, schema := range cfg.Schemas {
		eg.Go(func() error {
			defs, err := introspectSchema(gctx, q, schema)
			if err != nil {
				return fmt.Errorf("error introspecting schema %q: %w", schema, err)
			}
			mx.Lock()
			defer mx.Unlock()
			for _, def := range defs {
				if _, ok := c.procedures[def.QualifiedName()]; ok {
					log.Warn().
						Str("RoutineName", def.QualifiedName()).
						Msg("skipping overloaded routine: overloads are not supported")
					continue
				}
				c.procedures[def.QualifiedName()] = def
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	if err := applyOverrides(c.procedures, cfg.Procedures); err != nil {
		return nil, err
	}

	c.names = slices.Sorted(maps.Keys(c.procedures))
	return c, nil
}

// Get - look up a routine by its qualified "schema.name"
func (c *Catalog) Get(qualifiedName string) (*procbind.ProcedureDefinition, bool) {
	def, ok := c.procedures[qualifiedName]
	return def, ok
}

// Names - qualified routine names in lexical order
func (c *Catalog) Names() []string {
	return slices.Clone(c.names)
}

func introspectSchema(ctx context.Context, q Querier, schema string) ([]*procbind.ProcedureDefinition, error) {
	rows, err := q.Query(ctx, introspectRoutinesQuery, schema)
	if err != nil {
		return nil, fmt.Errorf("error querying pg_proc: %w", err)
	}
	defer rows.Close()

	var defs []*procbind.ProcedureDefinition
	for rows.Next() {
		var (
			name      string
			prokind   string
			argTypes  []uint32
			argNames  []string
			argModes  []string
			nDefaults int16
		)
		if err = rows.Scan(&name, &prokind, &argTypes, &argNames, &argModes, &nDefaults); err != nil {
			return nil, fmt.Errorf("error scanning pg_proc row: %w", err)
		}

		def, err := buildDefinition(schema, name, prokind, argTypes, argNames, argModes, nDefaults)
		if err != nil {
			log.Warn().
				Err(err).
				Str("SchemaName", schema).
				Str("RoutineName", name).
				Msg("skipping routine")
			continue
		}
		defs = append(defs, def)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading pg_proc rows: %w", err)
	}
	return defs, nil
}

// buildDefinition - turns one pg_proc row into an ordered procedure
// definition. proargmodes is empty when every argument is IN; otherwise it
// carries one mode code per entry of proallargtypes.
func buildDefinition(
	schema, name, prokind string, argTypes []uint32, argNames []string, argModes []string,
	nDefaults int16,
) (*procbind.ProcedureDefinition, error) {

	kind := procbind.RoutineFunction
	if prokind == "p" {
		kind = procbind.RoutineProcedure
	}
	def := procbind.NewProcedureDefinition(schema, name, kind)

	// DB-declared defaults attach to the trailing input arguments
	inputCount := 0
	for i := range argTypes {
		if mode(argModes, i) != "o" && mode(argModes, i) != "t" {
			inputCount++
		}
	}
	firstDefaulted := inputCount - int(nDefaults)

	inputSeen := 0
	for i, oid := range argTypes {
		m := mode(argModes, i)

		var direction procbind.Direction
		switch m {
		case "i":
			direction = procbind.DirectionInput
		case "b":
			direction = procbind.DirectionInputOutput
		case "o":
			// OUT arguments of a function shape its result row and are not
			// part of the call; for a procedure they must be bound
			if kind == procbind.RoutineFunction {
				continue
			}
			direction = procbind.DirectionOutput
		case "t":
			// RETURNS TABLE columns are never call arguments
			continue
		default:
			return nil, fmt.Errorf("unsupported argument mode %q", m)
		}

		if i >= len(argNames) || argNames[i] == "" {
			return nil, fmt.Errorf("argument %d has no name: routines are bound by name", i)
		}

		scalar, ok := scalarKindForOID(oid)
		if !ok {
			return nil, fmt.Errorf("argument %q has unsupported type oid %d", argNames[i], oid)
		}

		pd := procbind.NewParameterDefinition(argNames[i], scalar).SetDirection(direction)
		if m != "o" {
			if inputSeen >= firstDefaulted {
				pd.SetOptional(true)
			}
			inputSeen++
		}

		if err := def.AddParameter(pd); err != nil {
			return nil, err
		}
	}
	return def, nil
}

func mode(argModes []string, i int) string {
	if len(argModes) == 0 {
		return "i"
	}
	return argModes[i]
}
