package procbind

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ScalarKind - closed set of scalar kinds a procedure parameter may declare.
// Every kind has exactly one locale-invariant parse rule.
type ScalarKind int

const (
	ScalarSmallint ScalarKind = iota
	ScalarInteger
	ScalarBigint
	ScalarFloat
	ScalarDecimal
	ScalarBoolean
	ScalarText
	ScalarDate
	ScalarTimestamp
	ScalarUUID
	ScalarBytea
)

const dateFormat = "2006-01-02"

var scalarKindNames = map[ScalarKind]string{
	ScalarSmallint:  "smallint",
	ScalarInteger:   "integer",
	ScalarBigint:    "bigint",
	ScalarFloat:     "float",
	ScalarDecimal:   "decimal",
	ScalarBoolean:   "boolean",
	ScalarText:      "text",
	ScalarDate:      "date",
	ScalarTimestamp: "timestamp",
	ScalarUUID:      "uuid",
	ScalarBytea:     "bytea",
}

func (k ScalarKind) String() string {
	if name, ok := scalarKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("scalar(%d)", int(k))
}

// CoercionError - a raw value cannot be parsed into the declared scalar kind,
// including numeric overflow and out-of-range values
type CoercionError struct {
	Kind ScalarKind
	Err  error
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("cannot coerce value to %s: %s", e.Kind, e.Err.Error())
}

func (e *CoercionError) Unwrap() error {
	return e.Err
}

func newCoercionError(kind ScalarKind, err error) *CoercionError {
	return &CoercionError{Kind: kind, Err: err}
}

// Coerce - parse the raw textual value into the strict scalar type the kind
// declares. There is no implicit widening: each kind maps to exactly one Go
// type and out-of-range numerics fail instead of truncating.
func Coerce(kind ScalarKind, raw ParamsValue) (any, error) {
	s := string(raw)
	switch kind {
	case ScalarSmallint:
		v, err := strconv.ParseInt(s, 10, 16)
		if err != nil {
			return nil, newCoercionError(kind, err)
		}
		return int16(v), nil
	case ScalarInteger:
		v, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return nil, newCoercionError(kind, err)
		}
		return int32(v), nil
	case ScalarBigint:
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, newCoercionError(kind, err)
		}
		return v, nil
	case ScalarFloat:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, newCoercionError(kind, err)
		}
		return v, nil
	case ScalarDecimal:
		v, err := decimal.NewFromString(s)
		if err != nil {
			return nil, newCoercionError(kind, err)
		}
		return v, nil
	case ScalarBoolean:
		switch s {
		case "true", "1":
			return true, nil
		case "false", "0":
			return false, nil
		}
		return nil, newCoercionError(kind, fmt.Errorf("unknown boolean literal %q", s))
	case ScalarText:
		return s, nil
	case ScalarDate:
		v, err := time.Parse(dateFormat, s)
		if err != nil {
			return nil, newCoercionError(kind, err)
		}
		return v, nil
	case ScalarTimestamp:
		v, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, newCoercionError(kind, err)
		}
		return v, nil
	case ScalarUUID:
		v, err := uuid.Parse(s)
		if err != nil {
			return nil, newCoercionError(kind, err)
		}
		return v, nil
	case ScalarBytea:
		v, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, newCoercionError(kind, err)
		}
		return v, nil
	}
	return nil, newCoercionError(kind, fmt.Errorf("unsupported scalar kind"))
}
