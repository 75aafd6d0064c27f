package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/academy-backend/internal/http/response"
	"github.com/yungbote/academy-backend/internal/platform/logger"
	"github.com/yungbote/academy-backend/internal/services"
)

type CourseHandler struct {
	log     *logger.Logger
	courses services.CourseService
}

func NewCourseHandler(log *logger.Logger, courses services.CourseService) *CourseHandler {
	return &CourseHandler{
		log:     log.With("handler", "CourseHandler"),
		courses: courses,
	}
}

func (h *CourseHandler) ListCourses(c *gin.Context) {
	limit := queryLimit(c, 50, 200)
	rows, err := h.courses.ListCourses(c.Request.Context(), limit)
	if err != nil {
		h.log.Error("ListCourses failed", "error", err)
		response.RespondError(c, http.StatusInternalServerError, "load_courses_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"courses": rows})
}

func (h *CourseHandler) GetCourse(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_course_id", err)
		return
	}
	detail, err := h.courses.GetCourseDetail(c.Request.Context(), id)
	if errors.Is(err, services.ErrCourseNotFound) {
		response.RespondError(c, http.StatusNotFound, "course_not_found", err)
		return
	}
	if err != nil {
		h.log.Error("GetCourse failed", "error", err, "course_id", id)
		response.RespondError(c, http.StatusInternalServerError, "load_course_failed", err)
		return
	}
	response.RespondOK(c, detail)
}

func (h *CourseHandler) ListImportLogs(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_course_id", err)
		return
	}
	logs, err := h.courses.ListImportLogs(c.Request.Context(), id, queryLimit(c, 50, 200))
	if errors.Is(err, services.ErrCourseNotFound) {
		response.RespondError(c, http.StatusNotFound, "course_not_found", err)
		return
	}
	if err != nil {
		h.log.Error("ListImportLogs failed", "error", err, "course_id", id)
		response.RespondError(c, http.StatusInternalServerError, "load_import_logs_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"import_logs": logs})
}

func queryLimit(c *gin.Context, def, max int) int {
	raw := c.Query("limit")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
