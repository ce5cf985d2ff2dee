package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/safetywatch-backend/internal/domain"
	"github.com/yungbote/safetywatch-backend/internal/http/response"
	"github.com/yungbote/safetywatch-backend/internal/platform/apierr"
	"github.com/yungbote/safetywatch-backend/internal/services"
)

type ObservationHandler struct {
	observations services.ObservationService
}

func NewObservationHandler(observations services.ObservationService) *ObservationHandler {
	return &ObservationHandler{observations: observations}
}

// POST /add
func (h *ObservationHandler) Add(c *gin.Context) {
	var req services.ObservationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := h.observations.AddObservation(c.Request.Context(), req); err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondText(c, "ok")
}

// GET /data
func (h *ObservationHandler) List(c *gin.Context) {
	out, err := h.observations.GetAllObservations(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, nonNil(out))
}

// GET /data/open
func (h *ObservationHandler) ListOpen(c *gin.Context) {
	out, err := h.observations.GetOpenObservations(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, nonNil(out))
}

type updateObservationRequest struct {
	Status string `json:"status"`
	Fix    string `json:"fix"`
}

// PUT /update/:id
func (h *ObservationHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_observation_id", err)
		return
	}
	var req updateObservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := h.observations.UpdateObservation(c.Request.Context(), id, req.Status, req.Fix); err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondText(c, "updated")
}

func respondServiceError(c *gin.Context, err error) {
	status, code := apierr.StatusOf(err, "internal_error")
	response.RespondError(c, status, code, err)
}

func nonNil(in []*domain.Observation) []*domain.Observation {
	if in == nil {
		return []*domain.Observation{}
	}
	return in
}
