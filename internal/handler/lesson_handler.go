package handler

import (
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

// LessonHandler wires the booking service to HTTP routes.
type LessonHandler struct {
	bookings *service.BookingService
}

// NewLessonHandler constructs a new LessonHandler.
func NewLessonHandler(bookings *service.BookingService) *LessonHandler {
	return &LessonHandler{bookings: bookings}
}

// List godoc
// @Summary List lessons
// @Tags Lessons
// @Produce json
// @Param teacher_id query string false "Filter by teacher"
// @Param sport_id query string false "Filter by sport"
// @Param content_id query string false "Filter by content"
// @Param from query string false "Start of date range (YYYY-MM-DD)"
// @Param to query string false "End of date range (YYYY-MM-DD)"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param sort query string false "Sort field (lesson_date,start_time,created_at)"
// @Param order query string false "Sort order (asc/desc)"
// @Success 200 {object} response.Envelope
// @Router /lessons [get]
func (h *LessonHandler) List(c *gin.Context) {
	filter := models.LessonFilter{
		TeacherID: strings.TrimSpace(c.Query("teacher_id")),
		SportID:   strings.TrimSpace(c.Query("sport_id")),
		ContentID: strings.TrimSpace(c.Query("content_id")),
		SortBy:    c.Query("sort"),
		SortOrder: c.Query("order"),
	}
	if raw := strings.TrimSpace(c.Query("from")); raw != "" {
		from, err := time.Parse(models.DateLayout, raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "from must be formatted as YYYY-MM-DD"))
			return
		}
		filter.From = &from
	}
	if raw := strings.TrimSpace(c.Query("to")); raw != "" {
		to, err := time.Parse(models.DateLayout, raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "to must be formatted as YYYY-MM-DD"))
			return
		}
		filter.To = &to
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	lessons, pagination, err := h.bookings.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lessons, pagination)
}

// Get godoc
// @Summary Get lesson detail
// @Tags Lessons
// @Produce json
// @Param id path string true "Lesson ID"
// @Success 200 {object} response.Envelope
// @Router /lessons/{id} [get]
func (h *LessonHandler) Get(c *gin.Context) {
	lesson, err := h.bookings.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lesson, nil)
}

// Upcoming godoc
// @Summary List upcoming lessons
// @Tags Lessons
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /lessons/upcoming [get]
func (h *LessonHandler) Upcoming(c *gin.Context) {
	lessons, err := h.bookings.ListUpcoming(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lessons, nil)
}

// Book godoc
// @Summary Book a lesson
// @Tags Lessons
// @Accept json
// @Produce json
// @Param payload body service.BookLessonRequest true "Booking payload"
// @Success 201 {object} response.Envelope
// @Router /lessons [post]
func (h *LessonHandler) Book(c *gin.Context) {
	var req service.BookLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid booking payload"))
		return
	}
	lesson, err := h.bookings.Book(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, lesson)
}

// Cancel godoc
// @Summary Cancel a lesson
// @Tags Lessons
// @Param id path string true "Lesson ID"
// @Success 204
// @Router /lessons/{id} [delete]
func (h *LessonHandler) Cancel(c *gin.Context) {
	if err := h.bookings.Cancel(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Conflicts godoc
// @Summary Preview booking conflicts
// @Tags Lessons
// @Produce json
// @Param teacher_id query string true "Teacher ID"
// @Param date query string true "Calendar date (YYYY-MM-DD)"
// @Param start_time query string true "Start time (HH:MM)"
// @Param duration query int true "Duration in minutes"
// @Success 200 {object} response.Envelope
// @Router /lessons/conflicts [get]
func (h *LessonHandler) Conflicts(c *gin.Context) {
	teacherID := strings.TrimSpace(c.Query("teacher_id"))
	if teacherID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "teacher_id query parameter is required"))
		return
	}
	date, err := parseDateQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	duration, err := strconv.Atoi(c.DefaultQuery("duration", "0"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "duration must be an integer"))
		return
	}

	conflicts, err := h.bookings.FindConflicts(c.Request.Context(), teacherID, date, c.Query("start_time"), duration)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, conflicts, nil)
}
