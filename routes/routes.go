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

func AddJobRoutes(router *httprouter.Router, h *jobs.Handler) {
	router.GET("/api/jobs", h.ListJobs)
	router.POST("/api/jobs", h.CreateJob)
	router.GET("/api/jobs/:id", h.GetJob)
	router.PATCH("/api/jobs/:id", h.UpdateJob)
	router.DELETE("/api/jobs/:id", h.DeleteJob)

	router.POST("/api/jobs/:id/submissions", h.Submit)
	router.PUT("/api/jobs/:id/submissions", h.UpsertSubmission)
}

func AddApplicationRoutes(router *httprouter.Router, h *jobs.Handler) {
	router.POST("/api/applications", h.Apply)
	router.PUT("/api/applications/:id/accept", h.AcceptApplication)
	router.PUT("/api/applications/:id/decline", h.DeclineApplication)
}

func AddUserRoutes(router *httprouter.Router, h *users.Handler, guard *middleware.Auth) {
	router.GET("/api/users", h.List)
	router.GET("/api/users/:id", h.Get)
	router.DELETE("/api/users/:id", guard.SelfOrAdmin("id", h.Delete))

	router.PUT("/api/users/:id/profile", h.UpdateProfile)
	router.PUT("/api/users/:id/skills", h.SetSkills)
	router.POST("/api/users/:id/reviews", h.AddReview)

	router.POST("/api/users/:id/projects", h.AddProject)
	router.PUT("/api/users/:id/projects/:projectId", h.UpdateProject)
	router.DELETE("/api/users/:id/projects/:projectId", h.DeleteProject)

	router.GET("/api/users/:id/metrics", h.Metrics)
	router.PUT("/api/users/:id/metrics/reconcile", h.Reconcile)
}

func AddEmployerRoutes(router *httprouter.Router, h *employers.Handler, rl *ratelim.RateLimiter) {
	router.POST("/api/employers/signup", rl.Limit(h.Signup))
	router.POST("/api/employers/signin", rl.Limit(h.Signin))

	router.GET("/api/employers", h.List)
	router.GET("/api/employers/:id", h.Get)
	router.PUT("/api/employers/:id", h.UpdateProfile)

	router.GET("/api/employers/:id/metrics", h.Metrics)
	router.PATCH("/api/employers/:id/metrics", h.SetMetrics)
	router.PUT("/api/employers/:id/metrics/reconcile", h.Reconcile)
}

func AddProjectRoutes(router *httprouter.Router, h *projects.Handler) {
	router.GET("/api/projects/freelancer/:id", h.ListByFreelancer)
	router.PUT("/api/projects/:id", h.Update)
	router.DELETE("/api/projects/:id", h.Delete)
}

func AddAuthRoutes(router *httprouter.Router, h *auth.Handler, guard *middleware.Auth, rl *ratelim.RateLimiter) {
	router.POST("/api/auth/signup", rl.Limit(h.Register))
	router.POST("/api/auth/signin", rl.Limit(h.Login))
	router.POST("/api/auth/signout", h.Logout)

	router.POST("/api/auth/forgot", rl.Limit(h.Forgot))
	router.POST("/api/auth/reset", rl.Limit(h.Reset))

	router.PATCH("/api/auth/profile/:userId", guard.SelfOrAdmin("userId", h.PatchProfile))
}

func AddAdminRoutes(router *httprouter.Router, h *admin.Handler, rl *ratelim.RateLimiter) {
	router.GET("/api/admin/health", h.Health)
	router.POST("/api/admin/bootstrap", rl.Limit(h.Bootstrap))
	router.POST("/api/admin/signin", rl.Limit(h.Signin))
}
