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

package executor

import (
	"context"
	"time"

	"github.com/google/uuid"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/sprocketio/sprocket/internal/sqlgen"
	"github.com/sprocketio/sprocket/pkg/procbind"
)

// Executor - runs resolved statements against the database. The pool is safe
// for the catalog's concurrent introspection queries as well.
type Executor struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

func Connect(ctx context.Context, uri string, timeout time.Duration) (*Executor, error) {
	cfg, err := pgxpool.ParseConfig(uri)
	if err != nil {
		return nil, errors.Wrap(err, "error parsing database uri")
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		// numeric values scan into shopspring decimals instead of lossy floats
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "error creating connection pool")
	}
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "error pinging database")
	}
	return &Executor{pool: pool, timeout: timeout}, nil
}

// Pool - exposes the underlying pool for collaborators that only query
// (the metadata catalog)
func (e *Executor) Pool() *pgxpool.Pool {
	return e.pool
}

func (e *Executor) Close() {
	e.pool.Close()
}

// Result - materialized outcome of one invocation. Outputs is populated when
// the execute structure reported output-capable parameters; otherwise the
// result set is collected into Rows.
type Result struct {
	Columns []string
	Rows    []map[string]any
	Outputs map[string]any
}

// Run - executes the statement binding the named arguments through pgx's
// query rewriter and materializes either the output bindings or the result
// set, depending on the structure's output classification
func (e *Executor) Run(ctx context.Context, stmt *sqlgen.Statement, es *procbind.ExecuteStructure) (*Result, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	rows, err := e.pool.Query(ctx, stmt.SQL, stmt.Args)
	if err != nil {
		return nil, errors.Wrap(err, "error executing statement")
	}
	defer rows.Close()

	if es.HasOutputParameters() {
		return readOutputs(rows, es)
	}
	return readRows(rows)
}

// readOutputs - a CALL with output-capable arguments returns exactly one row
// whose columns are named after the OUT/INOUT parameters
func readOutputs(rows pgx.Rows, es *procbind.ExecuteStructure) (*Result, error) {
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, errors.Wrap(err, "error reading output bindings")
		}
		return nil, errors.New("statement returned no output row")
	}
	values, err := rows.Values()
	if err != nil {
		return nil, errors.Wrap(err, "error reading output bindings")
	}

	byColumn := make(map[string]any, len(values))
	for i, fd := range rows.FieldDescriptions() {
		byColumn[fd.Name] = normalizeValue(values[i])
	}

	outputs := make(map[string]any)
	for _, name := range es.OutputNames() {
		v, ok := byColumn[name]
		if !ok {
			return nil, errors.Errorf("output parameter %q missing from result row", name)
		}
		outputs[name] = v
	}

	rows.Close()
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error reading output bindings")
	}
	return &Result{Outputs: outputs}, nil
}

// normalizeValue - pgx scans uuid columns into raw byte arrays; render them
// textual so result documents stay readable
func normalizeValue(v any) any {
	if b, ok := v.([16]byte); ok {
		return uuid.UUID(b).String()
	}
	return v
}

func readRows(rows pgx.Rows) (*Result, error) {
	fds := rows.FieldDescriptions()
	columns := make([]string, len(fds))
	for i, fd := range fds {
		columns[i] = fd.Name
	}

	var collected []map[string]any
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, errors.Wrap(err, "error reading row")
		}
		row := make(map[string]any, len(columns))
		for i, c := range columns {
			row[c] = normalizeValue(values[i])
		}
		collected = append(collected, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating result set")
	}
	return &Result{Columns: columns, Rows: collected}, nil
}
