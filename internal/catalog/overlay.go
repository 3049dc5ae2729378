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
	"fmt"

	"github.com/sprocketio/sprocket/internal/domains"
	"github.com/sprocketio/sprocket/pkg/procbind"
)

const defaultSchemaName = "public"

// applyOverrides - layers config-declared parameter settings (optionality,
// config defaults) on top of the discovered signatures. An override that
// names an unknown routine or parameter is a configuration error.
func applyOverrides(
	procedures map[string]*procbind.ProcedureDefinition, overrides []*domains.ProcedureOverride,
) error {
	for _, o := range overrides {
		schema := o.Schema
		if schema == "" {
			schema = defaultSchemaName
		}
		key := fmt.Sprintf("%s.%s", schema, o.Name)
		def, ok := procedures[key]
		if !ok {
			return fmt.Errorf("config overrides unknown routine %q", key)
		}

		for _, po := range o.Parameters {
			pd, ok := def.GetParameter(po.Name)
			if !ok {
				return fmt.Errorf("config overrides unknown parameter %q of routine %q", po.Name, key)
			}
			if po.Optional {
				pd.SetOptional(true)
			}
			if po.Default != nil {
				pd.SetDefaultValue(po.Default)
			}
		}
	}
	return nil
}
