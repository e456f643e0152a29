package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/02loveslollipop/noisemap/services/api/grid"
	"github.com/02loveslollipop/noisemap/services/api/models"
)

// heatmapCells reads the full store and aggregates it per grid cell.
func (s *Server) heatmapCells(c *gin.Context) ([]models.HeatmapCell, bool) {
	ctx, span := s.tracer.Start(c.Request.Context(), "AggregateHeatmap")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	readings, err := s.store.ListReadings(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list readings")
		s.fail(c, http.StatusInternalServerError, "failed to load readings", err)
		return nil, false
	}

	cells, err := grid.Aggregate(readings)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "aggregate")
		s.fail(c, http.StatusInternalServerError, "failed to aggregate readings", err)
		return nil, false
	}
	span.SetAttributes(
		attribute.Int("noisemap.readings", len(readings)),
		attribute.Int("noisemap.cells", len(cells)),
	)
	return cells, true
}

// handleHeatmap returns one summary per occupied grid cell.
// GET /heatmap-data
func (s *Server) handleHeatmap(c *gin.Context) {
	cells, ok := s.heatmapCells(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, cells)
}

// handleHeatmapGeoJSON returns the heatmap as a FeatureCollection of cell
// polygons.
// GET /heatmap-data/geojson
func (s *Server) handleHeatmapGeoJSON(c *gin.Context) {
	cells, ok := s.heatmapCells(c)
	if !ok {
		return
	}
	fc, err := grid.FeatureCollection(cells)
	if err != nil {
		s.fail(c, http.StatusInternalServerError, "failed to build geojson", err)
		return
	}
	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, fc)
}
