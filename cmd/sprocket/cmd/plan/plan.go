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

package plan

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

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
		Use:   "plan <schema.routine>",
		Args:  cobra.ExactArgs(1),
		Short: "resolve request parameters and print the statement without executing it",
		Run: func(cmd *cobra.Command, args []string) {
			if err := logger.Setup(Config.Log.Level, Config.Log.Format); err != nil {
				log.Fatal().Err(err).Msg("")
			}
			if err := run(cmd.Context(), args[0]); err != nil {
				log.Fatal().Err(err).Msg("")
			}
		},
	}
	Config    = domains.NewConfig()
	paramsDoc string
)

func init() {
	Cmd.Flags().StringVar(&paramsDoc, "params", "", "request parameters as a JSON object")
}

type planParameter struct {
	Name      string `yaml:"name"`
	Token     string `yaml:"token"`
	Direction string `yaml:"direction"`
	Value     any    `yaml:"value"`
}

type planDocument struct {
	Routine             string          `yaml:"routine"`
	Sql                 string          `yaml:"sql"`
	HasOutputParameters bool            `yaml:"has_output_parameters"`
	Parameters          []planParameter `yaml:"parameters"`
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

	stmt := sqlgen.Build(def, es, alloc, sqlgen.Options{RowLimit: Config.Call.RowLimit})

	doc := planDocument{
		Routine:             routineName,
		Sql:                 stmt.SQL,
		HasOutputParameters: es.HasOutputParameters(),
	}
	for _, e := range es.Entries() {
		doc.Parameters = append(doc.Parameters, planParameter{
			Name:      e.Parameter.Name,
			Token:     e.Token,
			Direction: e.Parameter.Direction.String(),
			Value:     renderValue(e.Parameter.Value),
		})
	}

	return yaml.NewEncoder(os.Stdout).Encode(&doc)
}

// renderValue - coerced values carry strict scalar types that yaml does not
// know how to print (decimals, uuids, raw bytes); render those textual
func renderValue(v any) any {
	switch t := v.(type) {
	case decimal.Decimal:
		return t.String()
	case uuid.UUID:
		return t.String()
	case time.Time:
		return t.Format(time.RFC3339)
	case []byte:
		return base64.StdEncoding.EncodeToString(t)
	}
	return v
}
