package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sportedu/agenda-api/internal/models"
	"github.com/sportedu/agenda-api/internal/service"
	appErrors "github.com/sportedu/agenda-api/pkg/errors"
	"github.com/sportedu/agenda-api/pkg/response"
)

// SportHandler wires the sport catalog to HTTP routes.
type SportHandler struct {
	sports *service.SportService
}

// NewSportHandler constructs a new SportHandler.
func NewSportHandler(sports *service.SportService) *SportHandler {
	return &SportHandler{sports: sports}
}

// List godoc
// @Summary List sports
// @Tags Sports
// @Produce json
// @Param search query string false "Search by name/category"
// @Param category query string false "Filter by category"
// @Param active query bool false "Filter by active status"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param sort query string false "Sort field (name,category,created_at)"
// @Param order query string false "Sort order (asc/desc)"
// @Success 200 {object} response.Envelope
// @Router /sports [get]
func (h *SportHandler) List(c *gin.Context) {
	filter := models.SportFilter{
		Search:    strings.TrimSpace(c.Query("search")),
		Category:  strings.TrimSpace(c.Query("category")),
		SortBy:    c.Query("sort"),
		SortOrder: c.Query("order"),
	}
	if active := c.Query("active"); active != "" {
		switch strings.ToLower(active) {
		case "true":
			val := true
			filter.Active = &val
		case "false":
			val := false
			filter.Active = &val
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	sports, pagination, err := h.sports.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sports, pagination)
}

// Get godoc
// @Summary Get sport detail
// @Tags Sports
// @Produce json
// @Param id path string true "Sport ID"
// @Success 200 {object} response.Envelope
// @Router /sports/{id} [get]
func (h *SportHandler) Get(c *gin.Context) {
	sport, err := h.sports.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sport, nil)
}

// Create godoc
// @Summary Create sport
// @Tags Sports
// @Accept json
// @Produce json
// @Param payload body service.CreateSportRequest true "Sport payload"
// @Success 201 {object} response.Envelope
// @Router /sports [post]
func (h *SportHandler) Create(c *gin.Context) {
	var req service.CreateSportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid sport payload"))
		return
	}
	sport, err := h.sports.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, sport)
}

// Delete godoc
// @Summary Deactivate sport
// @Tags Sports
// @Param id path string true "Sport ID"
// @Success 204
// @Router /sports/{id} [delete]
func (h *SportHandler) Delete(c *gin.Context) {
	if err := h.sports.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
