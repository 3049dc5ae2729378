package catalog

import (
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sprocketio/sprocket/internal/domains"
	"github.com/sprocketio/sprocket/pkg/procbind"
)

func TestBuildDefinition_plainFunction(t *testing.T) {
	// create function get_user(user_id int, active bool default true)
	def, err := buildDefinition(
		"public", "get_user", "f",
		[]uint32{pgtype.Int4OID, pgtype.BoolOID},
		[]string{"user_id", "active"},
		nil,
		1,
	)
	require.NoError(t, err)

	assert.Equal(t, procbind.RoutineFunction, def.Kind)
	assert.Equal(t, "public.get_user", def.QualifiedName())

	params := def.Parameters()
	require.Len(t, params, 2)

	assert.Equal(t, "user_id", params[0].Name)
	assert.Equal(t, procbind.ScalarInteger, params[0].Kind)
	assert.Equal(t, procbind.DirectionInput, params[0].Direction)
	assert.False(t, params[0].Optional)

	assert.Equal(t, "active", params[1].Name)
	assert.Equal(t, procbind.ScalarBoolean, params[1].Kind)
	assert.True(t, params[1].Optional, "trailing defaulted argument must be optional")
}

func TestBuildDefinition_procedureWithOutputs(t *testing.T) {
	// create procedure transfer(from_id bigint, to_id bigint, inout total numeric, out status text)
	def, err := buildDefinition(
		"billing", "transfer", "p",
		[]uint32{pgtype.Int8OID, pgtype.Int8OID, pgtype.NumericOID, pgtype.TextOID},
		[]string{"from_id", "to_id", "total", "status"},
		[]string{"i", "i", "b", "o"},
		0,
	)
	require.NoError(t, err)

	assert.Equal(t, procbind.RoutineProcedure, def.Kind)

	params := def.Parameters()
	require.Len(t, params, 4)
	assert.Equal(t, procbind.DirectionInputOutput, params[2].Direction)
	assert.Equal(t, procbind.DirectionOutput, params[3].Direction)
	assert.Equal(t, procbind.ScalarDecimal, params[2].Kind)
}

func TestBuildDefinition_functionDropsOutAndTableColumns(t *testing.T) {
	// out args and RETURNS TABLE columns shape the result row, not the call
	def, err := buildDefinition(
		"public", "stats", "f",
		[]uint32{pgtype.Int4OID, pgtype.Int4OID, pgtype.TextOID},
		[]string{"bucket", "total", "label"},
		[]string{"i", "o", "t"},
		0,
	)
	require.NoError(t, err)

	params := def.Parameters()
	require.Len(t, params, 1)
	assert.Equal(t, "bucket", params[0].Name)
}

func TestBuildDefinition_unsupportedTypeRejected(t *testing.T) {
	_, err := buildDefinition(
		"public", "geo_lookup", "f",
		[]uint32{600}, // point
		[]string{"location"},
		nil,
		0,
	)
	require.Error(t, err)
	assert.ErrorContains(t, err, "unsupported type oid")
}

func TestBuildDefinition_unnamedArgumentsRejected(t *testing.T) {
	_, err := buildDefinition(
		"public", "anon", "f",
		[]uint32{pgtype.Int4OID},
		nil,
		nil,
		0,
	)
	require.Error(t, err)
	assert.ErrorContains(t, err, "no name")
}

func TestBuildDefinition_variadicRejected(t *testing.T) {
	_, err := buildDefinition(
		"public", "concat_all", "f",
		[]uint32{pgtype.TextOID},
		[]string{"parts"},
		[]string{"v"},
		0,
	)
	require.Error(t, err)
	assert.ErrorContains(t, err, "unsupported argument mode")
}

func TestApplyOverrides(t *testing.T) {
	def := procbind.NewProcedureDefinition("public", "get_user", procbind.RoutineFunction)
	require.NoError(t, def.AddParameter(procbind.NewParameterDefinition("user_id", procbind.ScalarInteger)))
	require.NoError(t, def.AddParameter(procbind.NewParameterDefinition("active", procbind.ScalarBoolean)))
	procedures := map[string]*procbind.ProcedureDefinition{
		"public.get_user": def,
	}

	err := applyOverrides(procedures, []*domains.ProcedureOverride{
		{
			Name: "get_user",
			Parameters: []*domains.ParameterOverride{
				{Name: "user_id", Default: procbind.ParamsValue("0")},
				{Name: "active", Optional: true},
			},
		},
	})
	require.NoError(t, err)

	userID, ok := def.GetParameter("user_id")
	require.True(t, ok)
	assert.True(t, userID.HasConfigDefault())
	assert.Equal(t, procbind.ParamsValue("0"), userID.DefaultValue)

	active, ok := def.GetParameter("active")
	require.True(t, ok)
	assert.True(t, active.Optional)
}

func TestApplyOverrides_unknownRoutine(t *testing.T) {
	err := applyOverrides(map[string]*procbind.ProcedureDefinition{}, []*domains.ProcedureOverride{
		{Schema: "public", Name: "nope"},
	})
	require.Error(t, err)
	assert.ErrorContains(t, err, "unknown routine")
}

func TestApplyOverrides_unknownParameter(t *testing.T) {
	def := procbind.NewProcedureDefinition("public", "get_user", procbind.RoutineFunction)
	require.NoError(t, def.AddParameter(procbind.NewParameterDefinition("user_id", procbind.ScalarInteger)))

	err := applyOverrides(
		map[string]*procbind.ProcedureDefinition{"public.get_user": def},
		[]*domains.ProcedureOverride{
			{
				Name:       "get_user",
				Parameters: []*domains.ParameterOverride{{Name: "missing"}},
			},
		},
	)
	require.Error(t, err)
	assert.ErrorContains(t, err, "unknown parameter")
}

func TestScalarKindForOID(t *testing.T) {
	tests := []struct {
		oid      uint32
		expected procbind.ScalarKind
	}{
		{pgtype.Int2OID, procbind.ScalarSmallint},
		{pgtype.Int4OID, procbind.ScalarInteger},
		{pgtype.Int8OID, procbind.ScalarBigint},
		{pgtype.Float8OID, procbind.ScalarFloat},
		{pgtype.NumericOID, procbind.ScalarDecimal},
		{pgtype.BoolOID, procbind.ScalarBoolean},
		{pgtype.VarcharOID, procbind.ScalarText},
		{pgtype.DateOID, procbind.ScalarDate},
		{pgtype.TimestamptzOID, procbind.ScalarTimestamp},
		{pgtype.UUIDOID, procbind.ScalarUUID},
		{pgtype.ByteaOID, procbind.ScalarBytea},
	}
	for _, tt := range tests {
		kind, ok := scalarKindForOID(tt.oid)
		require.True(t, ok)
		assert.Equal(t, tt.expected, kind)
	}

	_, ok := scalarKindForOID(3802) // jsonb
	assert.False(t, ok)
}
