package ml

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioSchema(t *testing.T) *FeatureSchema {
	t.Helper()
	schema, err := LoadSchema([]string{"KWH", "BEDROOMS", "state_postal_CA", "state_postal_TX"})
	require.NoError(t, err)
	return schema
}

func fullInput() RawInput {
	return RawInput{
		Numeric: map[string]float64{
			"KWH": 12.5, "BTUEL": 42000, "HDD65": 3100, "CDD65": 900, "TOTHSQFT": 1800,
			"TOTROOMS": 6, "BEDROOMS": 3, "NUMFRIG": 1, "NUMFREEZ": 0.5, "NUMTABLET": 2,
		},
		Categories: map[string]string{
			GroupState:   "TX",
			GroupClimate: "Marine",
			GroupIECC:    "5A",
		},
	}
}

func TestBuildFeatureVectorScenario(t *testing.T) {
	schema := scenarioSchema(t)

	vector, err := BuildFeatureVector(schema, RawInput{
		Numeric:    map[string]float64{"KWH": 12.5, "BEDROOMS": 3},
		Categories: map[string]string{GroupState: "CA"},
	})
	require.NoError(t, err)
	assert.Equal(t, FeatureVector{12.5, 3, 1.0, 0.0}, vector)
}

func TestBuildFeatureVectorUnknownState(t *testing.T) {
	schema := scenarioSchema(t)

	vector, err := BuildFeatureVector(schema, RawInput{
		Numeric:    map[string]float64{"KWH": 12.5, "BEDROOMS": 3},
		Categories: map[string]string{GroupState: "NY"},
	})
	require.Error(t, err)
	assert.Nil(t, vector)

	var unknown *UnknownCategoryError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, GroupState, unknown.Group)
	assert.Equal(t, "NY", unknown.Value)
	assert.True(t, errors.Is(err, ErrUnknownCategoryValue))
	assert.False(t, errors.Is(err, ErrClassification))
	assert.Contains(t, err.Error(), `state "NY"`)
}

func TestBuildFeatureVectorMissingSelection(t *testing.T) {
	schema := scenarioSchema(t)

	_, err := BuildFeatureVector(schema, RawInput{Numeric: map[string]float64{"KWH": 1}})
	var unknown *UnknownCategoryError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, GroupState, unknown.Group)
	assert.Empty(t, unknown.Value)
	assert.Contains(t, err.Error(), "no state selected")
}

func TestBuildFeatureVectorFailsFastOnFirstGroup(t *testing.T) {
	schema, err := LoadSchema(fullSchemaNames())
	require.NoError(t, err)

	input := fullInput()
	input.Categories[GroupClimate] = "Tropical"
	input.Categories[GroupIECC] = "9Z"

	_, err = BuildFeatureVector(schema, input)
	var unknown *UnknownCategoryError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, GroupClimate, unknown.Group)
	assert.Equal(t, "Tropical", unknown.Value)
}

func TestBuildFeatureVectorRejectsSelectionForAbsentGroup(t *testing.T) {
	schema := scenarioSchema(t)

	_, err := BuildFeatureVector(schema, RawInput{
		Categories: map[string]string{GroupState: "CA", GroupIECC: "4C"},
	})
	var unknown *UnknownCategoryError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, GroupIECC, unknown.Group)

	vector, err := BuildFeatureVector(schema, RawInput{
		Categories: map[string]string{GroupState: "CA", GroupIECC: ""},
	})
	require.NoError(t, err)
	assert.Equal(t, FeatureVector{0, 0, 1, 0}, vector)
}

func TestBuildFeatureVectorAllFieldsProvided(t *testing.T) {
	schema, err := LoadSchema(fullSchemaNames())
	require.NoError(t, err)
	input := fullInput()

	vector, err := BuildFeatureVector(schema, input)
	require.NoError(t, err)
	require.Len(t, vector, schema.Len())

	assert.Equal(t, len(schema.Groups()), vector.HotCount(schema))
	for name, value := range input.Numeric {
		idx, ok := schema.Index(name)
		require.True(t, ok, name)
		assert.Equal(t, value, vector[idx], name)
	}
	for _, group := range schema.Groups() {
		hot := 0
		for _, member := range group.Members() {
			idx, _ := group.Position(member)
			if vector[idx] == 1 {
				hot++
			}
		}
		assert.Equal(t, 1, hot, group.Name)
	}
}

func TestBuildFeatureVectorDefaultsOmittedToZero(t *testing.T) {
	schema, err := LoadSchema(fullSchemaNames())
	require.NoError(t, err)

	input := fullInput()
	delete(input.Numeric, "BTUEL")
	delete(input.Numeric, "NUMTABLET")

	vector, err := BuildFeatureVector(schema, input)
	require.NoError(t, err)
	for _, name := range []string{"BTUEL", "NUMTABLET"} {
		idx, _ := schema.Index(name)
		assert.Zero(t, vector[idx], name)
	}
}

func TestBuildFeatureVectorIgnoresUnknownAndOneHotNumerics(t *testing.T) {
	schema := scenarioSchema(t)

	vector, err := BuildFeatureVector(schema, RawInput{
		Numeric: map[string]float64{
			"KWH":             7,
			"NOT_A_FEATURE":   99,
			"state_postal_TX": 1,
		},
		Categories: map[string]string{GroupState: "CA"},
	})
	require.NoError(t, err)
	assert.Equal(t, FeatureVector{7, 0, 1, 0}, vector)
	assert.Equal(t, 1, vector.HotCount(schema))
}

func TestBuildFeatureVectorIsDeterministic(t *testing.T) {
	schema, err := LoadSchema(fullSchemaNames())
	require.NoError(t, err)
	input := fullInput()

	first, err := BuildFeatureVector(schema, input)
	require.NoError(t, err)
	second, err := BuildFeatureVector(schema, input)
	require.NoError(t, err)

	assert.Equal(t, vectorKey(first), vectorKey(second))
}

func TestCoreInputsAreInFormOrder(t *testing.T) {
	names := CoreInputNames()
	require.Len(t, names, 10)
	assert.Equal(t, "KWH", names[0])
	assert.Equal(t, "NUMTABLET", names[9])
	for _, in := range CoreInputs() {
		assert.NotEmpty(t, in.Label, in.Name)
	}
}
