package stage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewUnknownKind(t *testing.T) {
	_, err := New("quantum_encoder", nil)
	var unknownErr *UnknownKindError
	assert.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "quantum_encoder", unknownErr.Kind)
}

func TestKindsIncludeRegisteredStages(t *testing.T) {
	kinds := Kinds()
	assert.Contains(t, kinds, KindStringIndexer)
	assert.Contains(t, kinds, KindOneHotEncoder)
	assert.Contains(t, kinds, KindVectorAssembler)
	assert.Contains(t, kinds, KindStandardScaler)
	assert.Contains(t, kinds, KindLogisticRegression)
	assert.Contains(t, kinds, KindRandomForestClassifier)
	assert.Contains(t, kinds, KindMLPClassifier)
	assert.Contains(t, kinds, KindLightGBMScorer)
}

func TestNewAssignsDistinctUIDs(t *testing.T) {
	a, err := New(KindStringIndexer, map[string]any{"inputCol": "x"})
	assert.NoError(t, err)
	b, err := New(KindStringIndexer, map[string]any{"inputCol": "x"})
	assert.NoError(t, err)
	assert.NotEqual(t, a.UID(), b.UID())
	assert.Contains(t, a.UID(), KindStringIndexer)
}

func TestRebuildKeepsUIDAndMergesParams(t *testing.T) {
	s, err := New(KindStandardScaler, map[string]any{"inputCol": "x"})
	assert.NoError(t, err)
	rebuilt, err := Rebuild(s, map[string]any{"withMean": false})
	assert.NoError(t, err)
	assert.Equal(t, s.UID(), rebuilt.UID())
	assert.False(t, rebuilt.Params().Bool("withMean"))
	assert.Equal(t, "x", rebuilt.Params().String("inputCol"))
	// the original keeps its values
	assert.True(t, s.Params().Bool("withMean"))
}

func TestRebuildValidatesOverrides(t *testing.T) {
	s, err := New(KindStandardScaler, map[string]any{"inputCol": "x"})
	assert.NoError(t, err)
	_, err = Rebuild(s, map[string]any{"withMeen": false})
	var invalidErr *InvalidParameterError
	assert.ErrorAs(t, err, &invalidErr)
	assert.Equal(t, "withMean", invalidErr.Suggestion)
}

func TestInputOutputColumns(t *testing.T) {
	s, err := New(KindVectorAssembler, map[string]any{
		"inputCols": []string{"a", "b"},
		"outputCol": "feats",
	})
	assert.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, InputColumns(s))
	assert.Equal(t, []string{"feats"}, OutputColumns(s))
}

func TestInputColumnsUseMaterializedDefaults(t *testing.T) {
	s, err := New(KindStringIndexer, map[string]any{"inputCol": "city"})
	assert.NoError(t, err)
	assert.Equal(t, []string{"city"}, InputColumns(s))
	assert.Equal(t, []string{"city_idx"}, OutputColumns(s))
}

func TestParamsGetterReturnsClone(t *testing.T) {
	s, err := New(KindStringIndexer, map[string]any{"inputCol": "city"})
	assert.NoError(t, err)
	p := s.Params()
	p["inputCol"] = "tampered"
	assert.Equal(t, "city", s.Params().String("inputCol"))
}
