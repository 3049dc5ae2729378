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
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/sprocketio/sprocket/pkg/procbind"
)

// scalarKindForOID - maps a PostgreSQL type OID to the closed set of scalar
// kinds the coercer supports. Routines using any other argument type are not
// exposed through the catalog.
func scalarKindForOID(oid uint32) (procbind.ScalarKind, bool) {
	switch oid {
	case pgtype.Int2OID:
		return procbind.ScalarSmallint, true
	case pgtype.Int4OID:
		return procbind.ScalarInteger, true
	case pgtype.Int8OID:
		return procbind.ScalarBigint, true
	case pgtype.Float4OID, pgtype.Float8OID:
		return procbind.ScalarFloat, true
	case pgtype.NumericOID:
		return procbind.ScalarDecimal, true
	case pgtype.BoolOID:
		return procbind.ScalarBoolean, true
	case pgtype.TextOID, pgtype.VarcharOID, pgtype.BPCharOID:
		return procbind.ScalarText, true
	case pgtype.DateOID:
		return procbind.ScalarDate, true
	case pgtype.TimestampOID, pgtype.TimestamptzOID:
		return procbind.ScalarTimestamp, true
	case pgtype.UUIDOID:
		return procbind.ScalarUUID, true
	case pgtype.ByteaOID:
		return procbind.ScalarBytea, true
	}
	return 0, false
}
