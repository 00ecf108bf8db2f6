package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestDestinationMarshalJSON(t *testing.T) {
	destination := Destination{
		Name:     "Paris Romance",
		Features: datatypes.JSON(`["Eiffel Tower","Seine cruise"]`),
	}

	raw, err := json.Marshal(&destination)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))

	assert.Equal(t, []interface{}{"Eiffel Tower", "Seine cruise"}, out["features"])
	// A never-set flag serializes as available, matching the column default.
	assert.Equal(t, true, out["available"])
}

func TestDestinationMarshalJSONEmptyFeatures(t *testing.T) {
	destination := Destination{Name: "Bare", Available: boolPtr(false)}

	raw, err := json.Marshal(&destination)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))

	assert.Equal(t, []interface{}{}, out["features"])
	assert.Equal(t, false, out["available"])
}

func boolPtr(v bool) *bool { return &v }
