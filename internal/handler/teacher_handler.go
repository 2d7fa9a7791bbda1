package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sportedu/agenda-api/internal/models"
	"github.com/sportedu/agenda-api/internal/service"
	appErrors "github.com/sportedu/agenda-api/pkg/errors"
	"github.com/sportedu/agenda-api/pkg/response"
)

// TeacherHandler wires teacher services to HTTP routes.
type TeacherHandler struct {
	teachers *service.TeacherService
	bookings *service.BookingService
	exports  *service.ExportService
}

// NewTeacherHandler constructs a new TeacherHandler.
func NewTeacherHandler(teachers *service.TeacherService, bookings *service.BookingService, exports *service.ExportService) *TeacherHandler {
	return &TeacherHandler{teachers: teachers, bookings: bookings, exports: exports}
}

// List godoc
// @Summary List teachers
// @Tags Teachers
// @Produce json
// @Param search query string false "Search by name/email/specialization"
// @Param specialization query string false "Filter by specialization term"
// @Param active query bool false "Filter by active status"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param sort query string false "Sort field (full_name,email,specialization,created_at)"
// @Param order query string false "Sort order (asc/desc)"
// @Success 200 {object} response.Envelope
// @Router /teachers [get]
func (h *TeacherHandler) List(c *gin.Context) {
	if term := strings.TrimSpace(c.Query("specialization")); term != "" {
		teachers, err := h.teachers.ListBySpecialization(c.Request.Context(), term)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, teachers, nil)
		return
	}

	filter := models.TeacherFilter{
		Search:    strings.TrimSpace(c.Query("search")),
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

	teachers, pagination, err := h.teachers.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teachers, pagination)
}

// Get godoc
// @Summary Get teacher detail
// @Tags Teachers
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id} [get]
func (h *TeacherHandler) Get(c *gin.Context) {
	teacher, err := h.teachers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teacher, nil)
}

// Create godoc
// @Summary Create teacher
// @Tags Teachers
// @Accept json
// @Produce json
// @Param payload body service.CreateTeacherRequest true "Teacher payload"
// @Success 201 {object} response.Envelope
// @Router /teachers [post]
func (h *TeacherHandler) Create(c *gin.Context) {
	var req service.CreateTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid teacher payload"))
		return
	}
	teacher, err := h.teachers.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, teacher)
}

// Update godoc
// @Summary Update teacher
// @Tags Teachers
// @Accept json
// @Produce json
// @Param id path string true "Teacher ID"
// @Param payload body service.UpdateTeacherRequest true "Teacher payload"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id} [put]
func (h *TeacherHandler) Update(c *gin.Context) {
	var req service.UpdateTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid teacher payload"))
		return
	}
	teacher, err := h.teachers.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teacher, nil)
}

// Delete godoc
// @Summary Deactivate teacher
// @Tags Teachers
// @Param id path string true "Teacher ID"
// @Success 204
// @Router /teachers/{id} [delete]
func (h *TeacherHandler) Delete(c *gin.Context) {
	if err := h.teachers.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Agenda godoc
// @Summary Get teacher daily agenda
// @Tags Teachers
// @Produce json
// @Param id path string true "Teacher ID"
// @Param date query string true "Calendar date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/agenda [get]
func (h *TeacherHandler) Agenda(c *gin.Context) {
	date, err := parseDateQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	lessons, err := h.bookings.Agenda(c.Request.Context(), c.Param("id"), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lessons, nil)
}

// Lessons godoc
// @Summary List teacher lessons
// @Tags Teachers
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/lessons [get]
func (h *TeacherHandler) Lessons(c *gin.Context) {
	lessons, err := h.bookings.ListByTeacher(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lessons, nil)
}

// ExportAgenda godoc
// @Summary Export teacher daily agenda
// @Tags Teachers
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Teacher ID"
// @Param date query string true "Calendar date (YYYY-MM-DD)"
// @Param format query string false "Export format (csv/pdf)"
// @Success 200 {file} file
// @Router /teachers/{id}/agenda/export [get]
func (h *TeacherHandler) ExportAgenda(c *gin.Context) {
	date, err := parseDateQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.exports.AgendaExport(c.Request.Context(), c.Param("id"), date, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Data)
}

func parseDateQuery(c *gin.Context) (time.Time, error) {
	raw := strings.TrimSpace(c.Query("date"))
	if raw == "" {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "date query parameter is required")
	}
	date, err := time.Parse(models.DateLayout, raw)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "date must be formatted as YYYY-MM-DD")
	}
	return date, nil
}
