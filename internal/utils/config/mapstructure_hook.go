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

package config

import (
	"fmt"
	"reflect"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cast"

	"github.com/sprocketio/sprocket/pkg/procbind"
)

// ParamsToByteSliceHookFunc - YAML scalars used as config defaults (numbers,
// bools, strings) decode into the raw textual representation the coercer
// expects, so a default written as `default: 0` behaves exactly like "0"
// supplied in a request.
func ParamsToByteSliceHookFunc() mapstructure.DecodeHookFunc {
	return func(
		f reflect.Type,
		t reflect.Type,
		data interface{},
	) (interface{}, error) {
		if t != reflect.TypeOf(procbind.ParamsValue{}) {
			return data, nil
		}

		res, err := cast.ToStringE(data)
		if err != nil {
			return nil, fmt.Errorf("cannot render config default as text: %w", err)
		}
		return procbind.ParamsValue(res), nil
	}
}
