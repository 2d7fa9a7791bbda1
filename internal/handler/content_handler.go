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

// ContentHandler wires the content catalog to HTTP routes.
type ContentHandler struct {
	contents *service.ContentService
}

// NewContentHandler constructs a new ContentHandler.
func NewContentHandler(contents *service.ContentService) *ContentHandler {
	return &ContentHandler{contents: contents}
}

// List godoc
// @Summary List contents
// @Tags Contents
// @Produce json
// @Param sport_id query string false "Filter by sport"
// @Param level query string false "Filter by level"
// @Param search query string false "Search by title/description"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param sort query string false "Sort field (title,level,created_at)"
// @Param order query string false "Sort order (asc/desc)"
// @Success 200 {object} response.Envelope
// @Router /contents [get]
func (h *ContentHandler) List(c *gin.Context) {
	filter := models.ContentFilter{
		SportID:   strings.TrimSpace(c.Query("sport_id")),
		Level:     strings.TrimSpace(c.Query("level")),
		Search:    strings.TrimSpace(c.Query("search")),
		SortBy:    c.Query("sort"),
		SortOrder: c.Query("order"),
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	contents, pagination, err := h.contents.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, contents, pagination)
}

// Get godoc
// @Summary Get content detail
// @Tags Contents
// @Produce json
// @Param id path string true "Content ID"
// @Success 200 {object} response.Envelope
// @Router /contents/{id} [get]
func (h *ContentHandler) Get(c *gin.Context) {
	content, err := h.contents.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, content, nil)
}

// Create godoc
// @Summary Create content
// @Tags Contents
// @Accept json
// @Produce json
// @Param payload body service.CreateContentRequest true "Content payload"
// @Success 201 {object} response.Envelope
// @Router /contents [post]
func (h *ContentHandler) Create(c *gin.Context) {
	var req service.CreateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid content payload"))
		return
	}
	content, err := h.contents.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, content)
}

// Delete godoc
// @Summary Delete content
// @Tags Contents
// @Param id path string true "Content ID"
// @Success 204
// @Router /contents/{id} [delete]
func (h *ContentHandler) Delete(c *gin.Context) {
	if err := h.contents.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
