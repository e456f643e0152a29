package grid

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/02loveslollipop/noisemap/services/api/models"
)

// FeatureCollection renders heatmap cells as GeoJSON polygons covering each
// cell, with the aggregate values attached as properties.
func FeatureCollection(cells []models.HeatmapCell) (*geojson.FeatureCollection, error) {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(cells))}
	for _, cell := range cells {
		key := Quantize(cell.Latitude, cell.Longitude)
		rect, err := Bounds(key)
		if err != nil {
			return nil, err
		}
		lo, hi := rect.Lo(), rect.Hi()
		minLat, minLon := lo.Lat.Degrees(), lo.Lng.Degrees()
		maxLat, maxLon := hi.Lat.Degrees(), hi.Lng.Degrees()

		// GeoJSON is lon/lat ordered and rings are closed.
		poly, err := geom.NewPolygon(geom.XY).SetCoords([][]geom.Coord{{
			{minLon, minLat},
			{maxLon, minLat},
			{maxLon, maxLat},
			{minLon, maxLat},
			{minLon, minLat},
		}})
		if err != nil {
			return nil, eris.Wrapf(err, "grid: polygon for %s", key)
		}

		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       key.String(),
			Geometry: poly,
			Properties: map[string]interface{}{
				"gridCell":      key.String(),
				"latitude":      cell.Latitude,
				"longitude":     cell.Longitude,
				"averageStress": cell.AverageStress,
				"count":         cell.Count,
			},
		})
	}
	return fc, nil
}
