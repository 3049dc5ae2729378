package procbind

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustProcedure(t *testing.T, params ...*ParameterDefinition) *ProcedureDefinition {
	t.Helper()
	def := NewProcedureDefinition("public", "test_proc", RoutineProcedure)
	for _, p := range params {
		require.NoError(t, def.AddParameter(p))
	}
	return def
}

func resolve(def *ProcedureDefinition, req map[string]ParamsValue) (*ExecuteStructure, error) {
	return NewResolver(NewAllocator()).Resolve(def, req)
}

func TestResolver_missingRequiredParameter(t *testing.T) {
	def := mustProcedure(t, NewParameterDefinition("id", ScalarInteger))

	es, err := resolve(def, map[string]ParamsValue{})
	require.Error(t, err)
	assert.Nil(t, es)

	var re *ResolveError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrKindMissing, re.Kind)
	assert.Equal(t, "id", re.Parameter)
}

func TestResolver_optionalAbsentIsSkipped(t *testing.T) {
	def := mustProcedure(t, NewParameterDefinition("flag", ScalarBoolean).SetOptional(true))

	es, err := resolve(def, map[string]ParamsValue{})
	require.NoError(t, err)
	assert.Empty(t, es.Entries())
	_, ok := es.Token("flag")
	assert.False(t, ok)
	assert.False(t, es.HasOutputParameters())
}

func TestResolver_suppliedValue(t *testing.T) {
	def := mustProcedure(t, NewParameterDefinition("name", ScalarText))

	es, err := resolve(def, map[string]ParamsValue{"name": ParamsValue("alice")})
	require.NoError(t, err)

	token, ok := es.Token("name")
	require.True(t, ok)
	assert.Equal(t, "@param0", token)
	assert.Equal(t, "alice", es.Args()["param0"])
}

func TestResolver_outputParameterWithConfigDefault(t *testing.T) {
	def := mustProcedure(t,
		NewParameterDefinition("result", ScalarInteger).
			SetDirection(DirectionOutput).
			SetDefaultValue(ParamsValue("0")),
	)

	es, err := resolve(def, map[string]ParamsValue{})
	require.NoError(t, err)

	token, ok := es.Token("result")
	require.True(t, ok)
	assert.Equal(t, "@param0", token)
	assert.Equal(t, int32(0), es.Args()["param0"])
	assert.True(t, es.HasOutputParameters())
	assert.Equal(t, []string{"result"}, es.OutputNames())
}

func TestResolver_coercionFailure(t *testing.T) {
	def := mustProcedure(t, NewParameterDefinition("age", ScalarInteger))

	es, err := resolve(def, map[string]ParamsValue{"age": ParamsValue("not-a-number")})
	require.Error(t, err)
	assert.Nil(t, es)

	var re *ResolveError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrKindCoercion, re.Kind)
	assert.Equal(t, "age", re.Parameter)

	var ce *CoercionError
	assert.ErrorAs(t, err, &ce)
}

func TestResolver_explicitNullBoundWithoutCoercion(t *testing.T) {
	def := mustProcedure(t, NewParameterDefinition("note", ScalarInteger))

	// a nil value under a present key is an explicit null and must not be
	// parsed against the declared kind
	es, err := resolve(def, map[string]ParamsValue{"note": nil})
	require.NoError(t, err)

	token, ok := es.Token("note")
	require.True(t, ok)
	assert.Equal(t, "@param0", token)
	args := es.Args()
	v, bound := args["param0"]
	require.True(t, bound)
	assert.Nil(t, v)
}

func TestResolver_optionalBeatsConfigDefault(t *testing.T) {
	// optional absent parameters are skipped even when a config default
	// exists: the procedure's own declared default applies instead
	def := mustProcedure(t,
		NewParameterDefinition("flag", ScalarBoolean).
			SetOptional(true).
			SetDefaultValue(ParamsValue("true")),
	)

	es, err := resolve(def, map[string]ParamsValue{})
	require.NoError(t, err)
	assert.Empty(t, es.Entries())
}

func TestResolver_malformedConfigDefaultFails(t *testing.T) {
	def := mustProcedure(t,
		NewParameterDefinition("limit", ScalarInteger).SetDefaultValue(ParamsValue("abc")),
	)

	es, err := resolve(def, map[string]ParamsValue{})
	require.Error(t, err)
	assert.Nil(t, es)

	var re *ResolveError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrKindCoercion, re.Kind)
	assert.Equal(t, "limit", re.Parameter)
}

func TestResolver_placeholdersFollowDeclarationOrder(t *testing.T) {
	def := mustProcedure(t,
		NewParameterDefinition("a", ScalarText),
		NewParameterDefinition("b", ScalarText).SetOptional(true),
		NewParameterDefinition("c", ScalarText),
	)

	es, err := resolve(def, map[string]ParamsValue{
		"c": ParamsValue("third"),
		"a": ParamsValue("first"),
	})
	require.NoError(t, err)

	entries := es.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].Parameter.Name)
	assert.Equal(t, "@param0", entries[0].Token)
	assert.Equal(t, "c", entries[1].Parameter.Name)
	assert.Equal(t, "@param1", entries[1].Token)
}

func TestResolver_sharedAllocatorOffsetsTokens(t *testing.T) {
	def := mustProcedure(t, NewParameterDefinition("id", ScalarInteger))

	alloc := NewAllocator()
	// something else in the statement already bound two values
	alloc.Next()
	alloc.Next()

	es, err := NewResolver(alloc).Resolve(def, map[string]ParamsValue{"id": ParamsValue("1")})
	require.NoError(t, err)

	token, ok := es.Token("id")
	require.True(t, ok)
	assert.Equal(t, "@param2", token)
}

func TestResolver_determinism(t *testing.T) {
	def := mustProcedure(t,
		NewParameterDefinition("id", ScalarInteger),
		NewParameterDefinition("name", ScalarText).SetOptional(true),
		NewParameterDefinition("total", ScalarDecimal).
			SetDirection(DirectionInputOutput).
			SetDefaultValue(ParamsValue("0")),
	)
	req := map[string]ParamsValue{
		"id":   ParamsValue("42"),
		"name": ParamsValue("bob"),
	}

	first, err := resolve(def, req)
	require.NoError(t, err)
	second, err := resolve(def, req)
	require.NoError(t, err)

	require.Equal(t, len(first.Entries()), len(second.Entries()))
	for i, e := range first.Entries() {
		assert.Equal(t, e.Parameter.Name, second.Entries()[i].Parameter.Name)
		assert.Equal(t, e.Token, second.Entries()[i].Token)
	}
	assert.Equal(t, first.HasOutputParameters(), second.HasOutputParameters())
}

func TestResolver_pairwiseDistinctTokens(t *testing.T) {
	def := mustProcedure(t,
		NewParameterDefinition("a", ScalarText),
		NewParameterDefinition("b", ScalarText),
		NewParameterDefinition("c", ScalarText),
	)

	es, err := resolve(def, map[string]ParamsValue{
		"a": ParamsValue("1"),
		"b": ParamsValue("2"),
		"c": ParamsValue("3"),
	})
	require.NoError(t, err)

	seen := make(map[string]struct{})
	for _, e := range es.Entries() {
		_, dup := seen[e.Token]
		require.False(t, dup, "duplicated token %s", e.Token)
		seen[e.Token] = struct{}{}
	}
}
