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

package request

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/sprocketio/sprocket/pkg/procbind"
)

// ParseParams - extracts the request parameter mapping from a JSON object.
// Explicit JSON nulls stay distinguishable from absent keys: they map to a
// present key with a nil value. Values must be scalars; the raw textual
// representation is preserved for the coercer.
func ParseParams(doc string) (map[string]procbind.ParamsValue, error) {
	params := make(map[string]procbind.ParamsValue)
	if strings.TrimSpace(doc) == "" {
		return params, nil
	}
	if !gjson.Valid(doc) {
		return nil, fmt.Errorf("params must be a valid JSON document")
	}
	parsed := gjson.Parse(doc)
	if !parsed.IsObject() {
		return nil, fmt.Errorf("params must be a JSON object")
	}

	var parseErr error
	parsed.ForEach(func(key, value gjson.Result) bool {
		switch value.Type {
		case gjson.Null:
			params[key.String()] = nil
		case gjson.String:
			params[key.String()] = procbind.ParamsValue(value.String())
		case gjson.JSON:
			parseErr = fmt.Errorf("parameter %q must be a scalar value", key.String())
			return false
		default:
			params[key.String()] = procbind.ParamsValue(value.Raw)
		}
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return params, nil
}
