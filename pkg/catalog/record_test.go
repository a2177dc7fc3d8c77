package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRecord(t *testing.T) {
	body := []byte(`{
		"id": 25,
		"name": "pikachu",
		"height": 4,
		"weight": 60,
		"base_experience": 112,
		"sprites": {"other": {"official-artwork": {"front_default": "https://img/25.png"}}},
		"types": [{"slot": 1, "type": {"name": "Electric", "url": "https://x/type/13/"}}]
	}`)

	record, err := decodeRecord(body)
	require.NoError(t, err)

	assert.Equal(t, 25, record.ID)
	assert.Equal(t, "pikachu", record.Name)
	assert.Equal(t, []string{"electric"}, record.Types)
	assert.Equal(t, "https://img/25.png", record.ArtworkURL)
}

func TestDecodeRecord_Invalid(t *testing.T) {
	_, err := decodeRecord([]byte(`[`))
	assert.Error(t, err)
}

func TestDecodeTypeList(t *testing.T) {
	tags, err := decodeTypeList([]byte(`{"count":2,"results":[{"name":"normal","url":"u1"},{"name":"fire","url":"u2"}]}`))
	require.NoError(t, err)
	assert.Equal(t, []TypeTag{{Name: "normal", URL: "u1"}, {Name: "fire", URL: "u2"}}, tags)

	tags, err = decodeTypeList([]byte(`{}`))
	require.NoError(t, err)
	assert.NotNil(t, tags)
	assert.Empty(t, tags)
}

func TestRecordDisplayHelpers(t *testing.T) {
	r := Record{ID: 7, Name: "squirtle", Height: 5, Weight: 90, Types: []string{"water"}}

	assert.Equal(t, "#007", r.Number())
	assert.Equal(t, "Squirtle", r.DisplayName())
	assert.InDelta(t, 0.5, r.HeightMetres(), 1e-9)
	assert.InDelta(t, 9.0, r.WeightKilograms(), 1e-9)
	assert.True(t, r.HasType("water"))
	assert.False(t, r.HasType("fire"))
	assert.Equal(t, "#151", Record{ID: 151}.Number())
	assert.Equal(t, "", Capitalize(""))
}
