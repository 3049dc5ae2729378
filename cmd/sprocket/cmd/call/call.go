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

package call

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/tidwall/sjson"

	"github.com/sprocketio/sprocket/internal/catalog"
	"github.com/sprocketio/sprocket/internal/domains"
	"github.com/sprocketio/sprocket/internal/executor"
	"github.com/sprocketio/sprocket/internal/request"
	"github.com/sprocketio/sprocket/internal/sqlgen"
	"github.com/sprocketio/sprocket/internal/utils/logger"
	"github.com/sprocketio/sprocket/pkg/procbind"
)

var (
	Cmd = &cobra.Command{
		Use:   "call <schema.routine>",
		Args:  cobra.ExactArgs(1),
		Short: "resolve request parameters and execute a stored procedure or function",
		Run: func(cmd *cobra.Command, args []string) {
			if err := logger.Setup(Config.Log.Level, Config.Log.Format); err != nil {
				log.Fatal().Err(err).Msg("")
			}
			if err := run(cmd.Context(), args[0]); err != nil {
				var re *procbind.ResolveError
				if errors.As(err, &re) {
					// client-attributable: the request must be corrected and resubmitted
					log.Fatal().
						Str("ParameterName", re.Parameter).
						Str("Reason", re.Kind.String()).
						Msg("invalid request parameters")
				}
				log.Fatal().Err(err).Msg("")
			}
		},
	}
	Config    = domains.NewConfig()
	paramsDoc string
	rowLimit  int64
)

func init() {
	Cmd.Flags().StringVar(&paramsDoc, "params", "", "request parameters as a JSON object")
	Cmd.Flags().Int64Var(&rowLimit, "row-limit", 0, "cap the number of returned rows (functions only)")
}

func run(ctx context.Context, routineName string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	timeout, err := Config.Database.Timeout()
	if err != nil {
		return fmt.Errorf("error parsing statement timeout: %w", err)
	}

	exec, err := executor.Connect(ctx, Config.Database.URI, timeout)
	if err != nil {
		return err
	}
	defer exec.Close()

	cat, err := catalog.Load(ctx, exec.Pool(), &Config.Catalog)
	if err != nil {
		return fmt.Errorf("error loading routine catalog: %w", err)
	}

	def, ok := cat.Get(routineName)
	if !ok {
		return fmt.Errorf("unknown routine %q", routineName)
	}

	req, err := request.ParseParams(paramsDoc)
	if err != nil {
		return err
	}

	alloc := procbind.NewAllocator()
	es, err := procbind.NewResolver(alloc).Resolve(def, req)
	if err != nil {
		return err
	}

	limit := rowLimit
	if limit == 0 {
		limit = Config.Call.RowLimit
	}
	stmt := sqlgen.Build(def, es, alloc, sqlgen.Options{RowLimit: limit})

	log.Debug().
		Str("RoutineName", routineName).
		Str("Sql", stmt.SQL).
		Bool("HasOutputParameters", es.HasOutputParameters()).
		Msg("executing statement")

	res, err := exec.Run(ctx, stmt, es)
	if err != nil {
		return err
	}
	return printResult(routineName, res)
}

func printResult(routineName string, res *executor.Result) error {
	doc := []byte(`{}`)
	doc, err := sjson.SetBytes(doc, "routine", routineName)
	if err != nil {
		return err
	}

	if res.Outputs != nil {
		for name, value := range res.Outputs {
			if doc, err = sjson.SetBytes(doc, "outputs."+name, value); err != nil {
				return err
			}
		}
	} else {
		if doc, err = sjson.SetBytes(doc, "rows", res.Rows); err != nil {
			return err
		}
	}

	fmt.Println(string(doc))
	return nil
}
