package router

import (
	userapp "github.com/DarmokhvalViktor/test-task-cs/internal/application"
	"github.com/DarmokhvalViktor/test-task-cs/internal/container"
	repouser "github.com/DarmokhvalViktor/test-task-cs/internal/domain/repository"
	pginfra "github.com/DarmokhvalViktor/test-task-cs/internal/infrastructure/postgres"
	handlers "github.com/DarmokhvalViktor/test-task-cs/internal/interface/http"
	"github.com/DarmokhvalViktor/test-task-cs/internal/router/modules"
)

type UserModuleDeps struct {
	Repo    repouser.UserRepository
	Service *userapp.Service
	Handler *handlers.UserHandler
}

func buildUserDeps() UserModuleDeps {
	repo := pginfra.NewUserRepository(container.GetPGPool())

	cfg := container.GetConfig()
	service := userapp.NewService(
		repo,
		cfg.RequiredAge,
		container.GetLogger(),
		container.GetRabbitPub(),
		container.GetES(),
		cfg.ESUsersIndex,
	)

	handler := handlers.NewUserHandler(service, container.GetLogger())

	return UserModuleDeps{
		Repo:    repo,
		Service: service,
		Handler: handler,
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	userDeps := buildUserDeps()
	r.Add(modules.NewUserModule(userDeps.Handler))
	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
