package grid

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/02loveslollipop/noisemap/services/api/models"
)

func reading(id int64, lat, lon, score float64) models.Reading {
	return models.Reading{
		ID:          id,
		GridCell:    Quantize(lat, lon).String(),
		StressScore: score,
		Timestamp:   time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
	}
}

func TestAggregate_Empty(t *testing.T) {
	cells, err := Aggregate(nil)
	require.NoError(t, err)
	require.NotNil(t, cells)
	assert.Empty(t, cells)
}

func TestAggregate_SameCell(t *testing.T) {
	cells, err := Aggregate([]models.Reading{
		reading(1, 37.7749, -122.4194, 5.0),
		reading(2, 37.7741, -122.4161, 7.0),
	})
	require.NoError(t, err)
	require.Len(t, cells, 1)
	assert.Equal(t, models.HeatmapCell{
		Latitude:      37.77,
		Longitude:     -122.42,
		AverageStress: 6.0,
		Count:         2,
	}, cells[0])
}

func TestAggregate_IndependentCells(t *testing.T) {
	cells, err := Aggregate([]models.Reading{
		reading(1, 0.0, 0.0, 1.0),
		reading(2, 1.0, 1.0, 9.0),
	})
	require.NoError(t, err)
	require.Len(t, cells, 2)

	assert.Equal(t, models.HeatmapCell{Latitude: 0, Longitude: 0, AverageStress: 1.0, Count: 1}, cells[0])
	assert.Equal(t, models.HeatmapCell{Latitude: 1, Longitude: 1, AverageStress: 9.0, Count: 1}, cells[1])
}

func TestAggregate_HugeScoresStayFinite(t *testing.T) {
	cells, err := Aggregate([]models.Reading{
		reading(1, 1, 1, 1.7e308),
		reading(2, 1, 1, 1.7e308),
		reading(3, 2, 2, 3.0),
	})
	require.NoError(t, err)
	require.Len(t, cells, 2)
	assert.InDelta(t, 1.7e308, cells[0].AverageStress, 1e294)
	assert.Equal(t, 2, cells[0].Count)
	assert.Equal(t, 3.0, cells[1].AverageStress)

	_, err = json.Marshal(cells)
	assert.NoError(t, err)
}

func TestAggregate_DuplicatesCount(t *testing.T) {
	r := reading(1, 51.5074, -0.1278, 4.0)
	cells, err := Aggregate([]models.Reading{r, r, r})
	require.NoError(t, err)
	require.Len(t, cells, 1)
	assert.Equal(t, 3, cells[0].Count)
	assert.InDelta(t, 4.0, cells[0].AverageStress, 1e-12)
}

func TestAggregate_OrderIndependent(t *testing.T) {
	in := []models.Reading{
		reading(1, -33.8688, 151.2093, 2.5),
		reading(2, 37.7749, -122.4194, 3.0),
		reading(3, -33.8681, 151.2071, 7.5),
		reading(4, 51.5074, -0.1278, 1.0),
	}
	forward, err := Aggregate(in)
	require.NoError(t, err)

	reversed := make([]models.Reading, len(in))
	for i := range in {
		reversed[len(in)-1-i] = in[i]
	}
	backward, err := Aggregate(reversed)
	require.NoError(t, err)

	assert.Equal(t, forward, backward)
	require.Len(t, forward, 3)
	// sorted by key: "-33.87,151.21" < "37.77,-122.42" < "51.51,-0.13"
	assert.Equal(t, -33.87, forward[0].Latitude)
	assert.InDelta(t, 5.0, forward[0].AverageStress, 1e-12)
	assert.Equal(t, 2, forward[0].Count)
}

func TestAggregate_MalformedKey(t *testing.T) {
	_, err := Aggregate([]models.Reading{{ID: 1, GridCell: "garbage", StressScore: 1}})
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrMalformedKey))
}

func TestFeatureCollection(t *testing.T) {
	fc, err := FeatureCollection([]models.HeatmapCell{
		{Latitude: 37.77, Longitude: -122.42, AverageStress: 6, Count: 2},
	})
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "37.77,-122.42", fc.Features[0].ID)
	assert.Equal(t, 2, fc.Features[0].Properties["count"])

	raw, err := json.Marshal(fc)
	require.NoError(t, err)

	var decoded struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type        string         `json:"type"`
				Coordinates [][][2]float64 `json:"coordinates"`
			} `json:"geometry"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "FeatureCollection", decoded.Type)
	require.Len(t, decoded.Features, 1)
	assert.Equal(t, "Polygon", decoded.Features[0].Geometry.Type)
	ring := decoded.Features[0].Geometry.Coordinates[0]
	require.Len(t, ring, 5)
	assert.Equal(t, ring[0], ring[4])
	assert.InDelta(t, -122.425, ring[0][0], 1e-9)
	assert.InDelta(t, 37.765, ring[0][1], 1e-9)
}

func TestFeatureCollection_Empty(t *testing.T) {
	fc, err := FeatureCollection(nil)
	require.NoError(t, err)
	assert.Empty(t, fc.Features)
}
