package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edulane/lms-api/internal/dto"
	"github.com/edulane/lms-api/internal/service"
	appErrors "github.com/edulane/lms-api/pkg/errors"
	"github.com/edulane/lms-api/pkg/response"
)

// TimetableHandler manages timetable and schedule resolution endpoints.
type TimetableHandler struct {
	service *service.TimetableService
}

// NewTimetableHandler constructs handler.
func NewTimetableHandler(svc *service.TimetableService) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// ListByCourse godoc
// @Summary List timetables for a course
// @Tags Timetables
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id}/timetables [get]
func (h *TimetableHandler) ListByCourse(c *gin.Context) {
	timetables, err := h.service.ListByCourse(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timetables, nil)
}

// Localized godoc
// @Summary List a course's timetables in the viewer's timezone
// @Description Renders each weekly slot in the effective viewer timezone. The tz query overrides the viewer's profile timezone.
// @Tags Timetables
// @Produce json
// @Param id path string true "Course ID"
// @Param tz query string false "Viewer IANA timezone"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id}/timetables/localized [get]
func (h *TimetableHandler) Localized(c *gin.Context) {
	viewerTZ := h.service.ResolveViewerTimezone(c.Request.Context(), c.Query("tz"), viewerID(c))
	timetables, err := h.service.LocalizedByCourse(c.Request.Context(), c.Param("id"), viewerTZ)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timetables, nil)
}

// NextSession godoc
// @Summary Resolve the next upcoming class for a course
// @Description Picks the nearest upcoming occurrence among the course's active timetables, rendered in the viewer's timezone.
// @Tags Timetables
// @Produce json
// @Param id path string true "Course ID"
// @Param tz query string false "Viewer IANA timezone"
// @Success 200 {object} response.Envelope
// @Success 204 "No upcoming session"
// @Failure 404 {object} response.Envelope
// @Router /courses/{id}/next-session [get]
func (h *TimetableHandler) NextSession(c *gin.Context) {
	viewerTZ := h.service.ResolveViewerTimezone(c.Request.Context(), c.Query("tz"), viewerID(c))
	next, err := h.service.NextSessionForCourse(c.Request.Context(), c.Param("id"), viewerTZ)
	if err != nil {
		response.Error(c, err)
		return
	}
	if next == nil {
		response.NoContent(c)
		return
	}
	response.JSON(c, http.StatusOK, next, nil)
}

// MyNextSession godoc
// @Summary Resolve the next upcoming class across my courses
// @Description Picks the nearest upcoming occurrence across every course the caller is actively enrolled in.
// @Tags Timetables
// @Produce json
// @Param tz query string false "Viewer IANA timezone"
// @Success 200 {object} response.Envelope
// @Success 204 "No upcoming session"
// @Failure 401 {object} response.Envelope
// @Router /me/next-session [get]
func (h *TimetableHandler) MyNextSession(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	viewerTZ := h.service.ResolveViewerTimezone(c.Request.Context(), c.Query("tz"), claims.UserID)
	next, err := h.service.NextSessionForStudent(c.Request.Context(), claims.UserID, viewerTZ)
	if err != nil {
		response.Error(c, err)
		return
	}
	if next == nil {
		response.NoContent(c)
		return
	}
	response.JSON(c, http.StatusOK, next, nil)
}

// Create godoc
// @Summary Create timetable
// @Tags Timetables
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body dto.CreateTimetableRequest true "Timetable payload"
// @Success 201 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /courses/{id}/timetables [post]
func (h *TimetableHandler) Create(c *gin.Context) {
	var req dto.CreateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid timetable payload"))
		return
	}

	timetable, err := h.service.Create(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, timetable)
}

// Update godoc
// @Summary Update timetable
// @Tags Timetables
// @Accept json
// @Produce json
// @Param id path string true "Timetable ID"
// @Param payload body dto.UpdateTimetableRequest true "Timetable payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetables/{id} [put]
func (h *TimetableHandler) Update(c *gin.Context) {
	var req dto.UpdateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid timetable payload"))
		return
	}

	timetable, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timetable, nil)
}

// Delete godoc
// @Summary Delete timetable
// @Tags Timetables
// @Produce json
// @Param id path string true "Timetable ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetables/{id} [delete]
func (h *TimetableHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
