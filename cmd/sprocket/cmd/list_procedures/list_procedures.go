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

package list_procedures

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/go-wordwrap"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sprocketio/sprocket/internal/catalog"
	"github.com/sprocketio/sprocket/internal/domains"
	"github.com/sprocketio/sprocket/internal/executor"
	"github.com/sprocketio/sprocket/internal/utils/logger"
	"github.com/sprocketio/sprocket/pkg/procbind"
)

var (
	Cmd = &cobra.Command{
		Use:   "list-procedures",
		Short: "list the routines exposed through the catalog",
		Run: func(cmd *cobra.Command, args []string) {
			if err := logger.Setup(Config.Log.Level, Config.Log.Format); err != nil {
				log.Fatal().Err(err).Msg("")
			}
			if err := run(cmd.Context()); err != nil {
				log.Fatal().Err(err).Msg("")
			}
		},
	}
	Config = domains.NewConfig()
)

const parameterColumnWidth = 60

func run(ctx context.Context) error {
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

	var data [][]string
	for _, name := range cat.Names() {
		def, _ := cat.Get(name)
		data = append(data, []string{
			name,
			def.Kind.String(),
			wordwrap.WrapString(describeParameters(def), parameterColumnWidth),
		})
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"routine", "kind", "parameters"})
	table.AppendBulk(data)
	table.SetRowLine(true)
	table.Render()
	return nil
}

func describeParameters(def *procbind.ProcedureDefinition) string {
	params := def.Parameters()
	if len(params) == 0 {
		return "-"
	}

	descriptions := make([]string, 0, len(params))
	for _, p := range params {
		d := fmt.Sprintf("%s %s [%s]", p.Name, p.Kind, p.Direction)
		if p.Optional {
			d += " optional"
		}
		if p.HasConfigDefault() {
			d += fmt.Sprintf(" default=%s", string(p.DefaultValue))
		}
		descriptions = append(descriptions, d)
	}
	return strings.Join(descriptions, ", ")
}
