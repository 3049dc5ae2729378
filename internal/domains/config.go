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

package domains

import (
	"sync"
	"time"

	str2duration "github.com/xhit/go-str2duration/v2"

	"github.com/sprocketio/sprocket/pkg/procbind"
)

var (
	Cfg  *Config
	once sync.Once
)

const (
	defaultSchema           = "public"
	defaultStatementTimeout = "30s"
)

func NewConfig() *Config {
	once.Do(
		func() {
			Cfg = &Config{
				Database: DatabaseConfig{
					StatementTimeout: defaultStatementTimeout,
				},
				Catalog: CatalogConfig{
					Schemas: []string{defaultSchema},
				},
			}
		},
	)
	return Cfg
}

type Config struct {
	Log      LogConfig      `mapstructure:"log" yaml:"log" json:"log"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database" json:"database"`
	Call     CallConfig     `mapstructure:"call" yaml:"call" json:"call"`
	Catalog  CatalogConfig  `mapstructure:"catalog" yaml:"catalog" json:"catalog"`
}

type LogConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format,omitempty"`
	Level  string `mapstructure:"level" yaml:"level" json:"level,omitempty"`
}

type DatabaseConfig struct {
	URI string `mapstructure:"uri" yaml:"uri" json:"uri,omitempty"`
	// StatementTimeout - str2duration syntax, e.g. "30s", "1m30s"
	StatementTimeout string `mapstructure:"statement_timeout" yaml:"statement_timeout" json:"statement_timeout,omitempty"`
}

func (c *DatabaseConfig) Timeout() (time.Duration, error) {
	return str2duration.ParseDuration(c.StatementTimeout)
}

type CallConfig struct {
	// RowLimit - cap on the number of result rows bound into the generated
	// statement. Zero disables the limit
	RowLimit int64 `mapstructure:"row_limit" yaml:"row_limit" json:"row_limit,omitempty"`
}

type CatalogConfig struct {
	Schemas    []string             `mapstructure:"schemas" yaml:"schemas" json:"schemas,omitempty"`
	Procedures []*ProcedureOverride `mapstructure:"procedures" yaml:"procedures" json:"procedures,omitempty"`
}

// ProcedureOverride - per-procedure parameter settings layered on top of the
// signature discovered from the database
type ProcedureOverride struct {
	Schema     string               `mapstructure:"schema" yaml:"schema" json:"schema,omitempty"`
	Name       string               `mapstructure:"name" yaml:"name" json:"name,omitempty"`
	Parameters []*ParameterOverride `mapstructure:"parameters" yaml:"parameters" json:"parameters,omitempty"`
}

type ParameterOverride struct {
	Name     string `mapstructure:"name" yaml:"name" json:"name,omitempty"`
	Optional bool   `mapstructure:"optional" yaml:"optional" json:"optional,omitempty"`
	// Default - fallback value for a required parameter, coerced against the
	// parameter's scalar kind at resolution time
	Default procbind.ParamsValue `mapstructure:"default" yaml:"default" json:"default,omitempty"`
}
