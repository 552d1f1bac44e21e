package routes

import (
	"freelancehub/admin"
	"freelancehub/auth"
	"freelancehub/employers"
	"freelancehub/jobs"
	"freelancehub/middleware"
	"freelancehub/projects"
	"freelancehub/ratelim"
	"freelancehub/users"

	"github.com/julienschmidt/httprouter"
)

// Handlers groups every feature handler the API mounts.
type Handlers struct {
	Jobs      *jobs.Handler
	Users     *users.Handler
	Employers *employers.Handler
	Projects  *projects.Handler
	Auth      *auth.Handler
	Admin     *admin.Handler
}

func RoutesWrapper(router *httprouter.Router, h Handlers, guard *middleware.Auth, rateLimiter *ratelim.RateLimiter) {
	AddJobRoutes(router, h.Jobs)
	AddApplicationRoutes(router, h.Jobs)
	AddUserRoutes(router, h.Users, guard)
	AddEmployerRoutes(router, h.Employers, rateLimiter)
	AddProjectRoutes(router, h.Projects)
	AddAuthRoutes(router, h.Auth, guard, rateLimiter)
	AddAdminRoutes(router, h.Admin, rateLimiter)
}
