package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/DarmokhvalViktor/test-task-cs/internal/application"
	"github.com/DarmokhvalViktor/test-task-cs/pkg/response"
	"github.com/DarmokhvalViktor/test-task-cs/pkg/validation"
)

const birthDateInPastMsg = "Date of birth must be earlier than today"

type UserHandler struct {
	Svc    *userapp.Service
	Logger *logrus.Logger
}

func NewUserHandler(svc *userapp.Service, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

// fail translates a service error into the error envelope. Business-rule
// violations surface as 400 with their exact message; anything else is a 500.
func (h *UserHandler) fail(c *gin.Context, err error) {
	if userapp.IsViolation(err) {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if h.Logger != nil {
		h.Logger.WithError(err).WithField("path", c.Request.URL.Path).Error("user operation failed")
	}
	response.Fail(c, http.StatusInternalServerError, "internal server error")
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid user ID: must be an integer")
		return 0, false
	}
	return id, true
}

// dateQuery parses an optional ISO date query parameter. An absent parameter
// yields a zero time; the service rejects missing bounds with its own message.
func dateQuery(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, true
	}
	d, err := userapp.ParseDate(raw)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid '"+name+"' date: must be an ISO date (YYYY-MM-DD)")
		return time.Time{}, false
	}
	return d.Time, true
}

// FindByBirthDateRange handles GET /users/birth_date?from=&to=
func (h *UserHandler) FindByBirthDateRange(c *gin.Context) {
	from, ok := dateQuery(c, "from")
	if !ok {
		return
	}
	to, ok := dateQuery(c, "to")
	if !ok {
		return
	}
	users, err := h.Svc.FindUsersByBirthDateRange(c.Request.Context(), from, to)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// Create handles POST /users
func (h *UserHandler) Create(c *gin.Context) {
	var dto userapp.UserDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.FailFields(c, http.StatusBadRequest, validation.ToMessages(err))
		return
	}
	if !dto.BirthDate.InPast(time.Now()) {
		response.FailFields(c, http.StatusBadRequest, []string{birthDateInPastMsg})
		return
	}
	created, err := h.Svc.CreateUser(c.Request.Context(), dto)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Update handles PUT /users/:id
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var dto userapp.UserDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.FailFields(c, http.StatusBadRequest, validation.ToMessages(err))
		return
	}
	if !dto.BirthDate.InPast(time.Now()) {
		response.FailFields(c, http.StatusBadRequest, []string{birthDateInPastMsg})
		return
	}
	updated, err := h.Svc.UpdateUser(c.Request.Context(), dto, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Patch handles PATCH /users/:id
func (h *UserHandler) Patch(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var dto userapp.PartialUserDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.FailFields(c, http.StatusBadRequest, validation.ToMessages(err))
		return
	}
	if dto.BirthDate != nil && !dto.BirthDate.InPast(time.Now()) {
		response.FailFields(c, http.StatusBadRequest, []string{birthDateInPastMsg})
		return
	}
	updated, err := h.Svc.PatchUser(c.Request.Context(), dto, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /users/:id and answers with plain confirmation text.
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	msg, err := h.Svc.DeleteUser(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.String(http.StatusOK, msg)
}

// Search handles GET /users/search?q=&size= backed by the search index.
func (h *UserHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Fail(c, http.StatusBadRequest, "Query parameter 'q' is required")
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Svc.SearchUsers(c.Request.Context(), q, size)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, hits)
}
