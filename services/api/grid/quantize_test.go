package grid

import (
	"math"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantize_SanFrancisco(t *testing.T) {
	assert.Equal(t, Key("37.77,-122.42"), Quantize(37.7749, -122.4194))
}

func TestQuantize_Deterministic(t *testing.T) {
	coords := [][2]float64{
		{37.7749, -122.4194},
		{-33.8688, 151.2093},
		{0.004, -0.004},
		{89.999, 179.999},
		{12.345, -45.675},
	}
	for _, c := range coords {
		assert.Equal(t, Quantize(c[0], c[1]), Quantize(c[0], c[1]))
	}
}

func TestQuantize_Table(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
		want     Key
	}{
		{"origin", 0, 0, "0,0"},
		{"whole degrees", 1, 1, "1,1"},
		{"near zero negative", -0.001, -0.004, "0,0"},
		{"near zero positive", 0.001, 0.004, "0,0"},
		{"rounds up", 0.006, 0.016, "0.01,0.02"},
		{"negative rounds away", -45.676, -0.016, "-45.68,-0.02"},
		{"polar", 89.999, 179.996, "90,180"},
		{"out of range accepted", 123.456, -200.004, "123.46,-200"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Quantize(tt.lat, tt.lon))
		})
	}
}

func TestQuantize_HugeFiniteCoordinates(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
	}{
		{"past exact limit", 1e14 + 0.5, -1e14},
		{"near max float", 1e307, 0},
		{"max float", math.MaxFloat64, -math.MaxFloat64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := Quantize(tt.lat, tt.lon)
			lat, lon, err := ParseKey(key.String())
			require.NoError(t, err)
			assert.False(t, math.IsInf(lat, 0) || math.IsNaN(lat), "lat in %s", key)
			assert.False(t, math.IsInf(lon, 0) || math.IsNaN(lon), "lon in %s", key)
			assert.Equal(t, tt.lat, lat)
			assert.Equal(t, tt.lon, lon)
			assert.Equal(t, key, Quantize(lat, lon))
		})
	}
}

func TestQuantize_SameCellSameKey(t *testing.T) {
	a := Quantize(37.7749, -122.4194)
	b := Quantize(37.7741, -122.4161)
	assert.Equal(t, a, b)
}

func TestQuantize_RoundTrip(t *testing.T) {
	coords := [][2]float64{
		{37.7749, -122.4194},
		{-33.8688, 151.2093},
		{51.5074, -0.1278},
		{-0.0049, 0.0049},
		{64.1466, -21.9426},
	}
	for _, c := range coords {
		key := Quantize(c[0], c[1])
		lat, lon, err := ParseKey(key.String())
		require.NoError(t, err)
		assert.Equal(t, key, Quantize(lat, lon), "re-quantizing %s", key)
	}
}

func TestParseKey(t *testing.T) {
	lat, lon, err := ParseKey("37.77,-122.42")
	require.NoError(t, err)
	assert.Equal(t, 37.77, lat)
	assert.Equal(t, -122.42, lon)
}

func TestParseKey_Malformed(t *testing.T) {
	for _, key := range []string{"", "37.77", "abc,1", "1,abc", "1;2"} {
		_, _, err := ParseKey(key)
		require.Error(t, err, key)
		assert.True(t, eris.Is(err, ErrMalformedKey), key)
	}
}

func TestBounds(t *testing.T) {
	rect, err := Bounds("37.77,-122.42")
	require.NoError(t, err)
	assert.InDelta(t, 37.765, rect.Lo().Lat.Degrees(), 1e-9)
	assert.InDelta(t, 37.775, rect.Hi().Lat.Degrees(), 1e-9)
	assert.InDelta(t, -122.425, rect.Lo().Lng.Degrees(), 1e-9)
	assert.InDelta(t, -122.415, rect.Hi().Lng.Degrees(), 1e-9)
}

func TestBounds_Malformed(t *testing.T) {
	_, err := Bounds("nope")
	assert.True(t, eris.Is(err, ErrMalformedKey))
}

func TestInRange(t *testing.T) {
	assert.True(t, InRange(37.7749, -122.4194))
	assert.True(t, InRange(-90, 180))
	assert.False(t, InRange(90.5, 0))
	assert.False(t, InRange(0, -180.5))
	assert.False(t, InRange(math.NaN(), 0))
	assert.False(t, InRange(0, math.Inf(1)))
}
