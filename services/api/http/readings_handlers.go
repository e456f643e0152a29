package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/02loveslollipop/noisemap/services/api/grid"
	"github.com/02loveslollipop/noisemap/services/api/models"
)

// submitReadingRequest is the POST /submit-reading body. stress_score is
// the field name older clients send.
type submitReadingRequest struct {
	Latitude          *float64 `json:"latitude" binding:"required"`
	Longitude         *float64 `json:"longitude" binding:"required"`
	StressScore       *float64 `json:"stressScore"`
	LegacyStressScore *float64 `json:"stress_score"`
}

var errStressScoreMissing = errors.New("stressScore is required")

func (r submitReadingRequest) submission() (models.Submission, error) {
	score := r.StressScore
	if score == nil {
		score = r.LegacyStressScore
	}
	if score == nil {
		return models.Submission{}, errStressScoreMissing
	}
	return models.Submission{
		Latitude:    *r.Latitude,
		Longitude:   *r.Longitude,
		StressScore: *score,
	}, nil
}

// handleSubmitReading quantizes and stores one reading.
// POST /submit-reading
func (s *Server) handleSubmitReading(c *gin.Context) {
	var req submitReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, "invalid reading payload", err)
		return
	}
	sub, err := req.submission()
	if err != nil {
		s.fail(c, http.StatusBadRequest, "invalid reading payload", err)
		return
	}
	if s.cfg.StrictCoordinates && !grid.InRange(sub.Latitude, sub.Longitude) {
		s.fail(c, http.StatusBadRequest, "coordinates out of range", nil)
		return
	}

	ctx, span := s.tracer.Start(c.Request.Context(), "SubmitReading")
	defer span.End()

	key := grid.Quantize(sub.Latitude, sub.Longitude)
	span.SetAttributes(attribute.String("noisemap.grid_cell", key.String()))

	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	reading, err := s.store.SubmitReading(ctx, key.String(), sub.StressScore)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store reading")
		s.fail(c, http.StatusInternalServerError, "failed to store reading", err)
		return
	}

	s.log.Debug("reading stored",
		zap.Int64("id", reading.ID),
		zap.String("grid_cell", reading.GridCell),
	)

	c.JSON(http.StatusOK, gin.H{
		"message":  "Reading stored successfully",
		"id":       reading.ID,
		"gridCell": reading.GridCell,
	})
}

// handleListReadings returns every stored reading.
// GET /readings
func (s *Server) handleListReadings(c *gin.Context) {
	ctx, span := s.tracer.Start(c.Request.Context(), "ListReadings")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	readings, err := s.store.ListReadings(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list readings")
		s.fail(c, http.StatusInternalServerError, "failed to list readings", err)
		return
	}
	span.SetAttributes(attribute.Int("noisemap.readings", len(readings)))

	c.JSON(http.StatusOK, readings)
}
