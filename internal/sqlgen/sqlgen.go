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

package sqlgen

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/sprocketio/sprocket/pkg/procbind"
)

// Options - statement-level settings that bind additional values beyond the
// procedure arguments
type Options struct {
	// RowLimit - caps function result sets with a bound LIMIT. Zero disables
	// it. Ignored for procedures, which return no result set.
	RowLimit int64
}

// Statement - final SQL text with every value bound through a named
// placeholder; nothing is ever inlined into the text
type Statement struct {
	SQL  string
	Args pgx.NamedArgs
}

// Build - renders the invocation statement for a resolved routine. Arguments
// use named notation so the call binds by name, not position. The allocator
// must be the same instance the resolver used: the LIMIT predicate draws its
// placeholder from the same sequence as the procedure arguments.
func Build(
	def *procbind.ProcedureDefinition, es *procbind.ExecuteStructure,
	alloc *procbind.Allocator, opts Options,
) *Statement {

	args := es.Args()

	argList := make([]string, 0, len(es.Entries()))
	for _, e := range es.Entries() {
		argList = append(
			argList,
			fmt.Sprintf("%s => %s", pgx.Identifier{e.Parameter.Name}.Sanitize(), e.Token),
		)
	}

	target := pgx.Identifier{def.Schema, def.Name}.Sanitize()

	var sb strings.Builder
	if def.Kind == procbind.RoutineProcedure {
		fmt.Fprintf(&sb, "CALL %s(%s)", target, strings.Join(argList, ", "))
	} else {
		fmt.Fprintf(&sb, "SELECT * FROM %s(%s)", target, strings.Join(argList, ", "))
		if opts.RowLimit > 0 {
			name := alloc.Next()
			fmt.Fprintf(&sb, " LIMIT %s", procbind.Token(name))
			args[name] = opts.RowLimit
		}
	}

	return &Statement{
		SQL:  sb.String(),
		Args: args,
	}
}
