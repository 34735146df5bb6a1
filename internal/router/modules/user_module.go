package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DarmokhvalViktor/test-task-cs/internal/container"
	handlers "github.com/DarmokhvalViktor/test-task-cs/internal/interface/http"
	"github.com/DarmokhvalViktor/test-task-cs/internal/interface/middleware"
)

// UserModule wires the user CRUD handlers into routes.
// GET    /api/users/birth_date   — range query
// GET    /api/users/search       — search index lookup
// POST   /api/users              — create
// PUT    /api/users/:id          — full update
// PATCH  /api/users/:id          — partial update
// DELETE /api/users/:id          — delete
type UserModule struct {
	Handler *handlers.UserHandler
}

func NewUserModule(h *handlers.UserHandler) *UserModule {
	return &UserModule{Handler: h}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	readLimiter := middleware.RateLimit(rdb, 300, time.Minute, middleware.KeyByIP())
	writeLimiter := middleware.RateLimit(rdb, 60, time.Minute, middleware.KeyByIPAndPath())

	users := rg.Group("/users")
	{
		users.GET("/birth_date", readLimiter, m.Handler.FindByBirthDateRange)
		users.GET("/search", readLimiter, m.Handler.Search)
		users.POST("", writeLimiter, m.Handler.Create)
		users.PUT("/:id", writeLimiter, m.Handler.Update)
		users.PATCH("/:id", writeLimiter, m.Handler.Patch)
		users.DELETE("/:id", writeLimiter, m.Handler.Delete)
	}
}
