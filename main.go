package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"freelancehub/admin"
	"freelancehub/auth"
	"freelancehub/config"
	"freelancehub/db"
	"freelancehub/employers"
	"freelancehub/jobs"
	"freelancehub/mailer"
	"freelancehub/middleware"
	"freelancehub/mq"
	"freelancehub/projects"
	"freelancehub/ratelim"
	"freelancehub/rdx"
	"freelancehub/routes"
	"freelancehub/tokens"
	"freelancehub/users"
	"freelancehub/utils"

	"github.com/joho/godotenv"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// health reports liveness and whether MongoDB answers a ping.
func health(client *mongo.Client) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		status, state := http.StatusOK, "connected"
		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			status, state = http.StatusServiceUnavailable, "disconnected"
		}
		utils.RespondWithJSON(w, status, utils.M{
			"status":   "ok",
			"time":     time.Now().UTC().Format(time.RFC3339),
			"database": state,
		})
	}
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger, err := cfg.Logger()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	if cfg.DefaultSecret() {
		logger.Warn("JWT_SECRET not set; using the development secret")
	}

	ctx := context.Background()
	client, database, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Fatal("mongo connect", zap.Error(err))
	}
	if err := db.EnsureIndexes(ctx, database); err != nil {
		logger.Fatal("ensure indexes", zap.Error(err))
	}

	redisClient, err := rdx.New(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal("redis connect", zap.Error(err))
	}
	var revoker tokens.Revoker
	if redisClient != nil {
		revoker = rdx.NewDenylist(redisClient)
	} else {
		logger.Warn("REDIS_ADDR not set; signout will not revoke tokens")
	}
	tm := tokens.NewManager(cfg.JWTSecret, cfg.JWTTTL, revoker).WithLogger(logger)
	events := mq.New(redisClient, logger)
	mail := mailer.New(cfg.Mail, logger)

	userStore := users.New(database)
	employerStore := employers.New(database)
	jobStore := jobs.New(database)

	portfolio := projects.NewService(projects.New(database), logger)
	employerSvc := employers.NewService(employerStore, jobStore, userStore, tm, logger)
	userSvc := users.NewService(userStore, portfolio, employerSvc, jobStore, events, logger)
	authSvc := auth.NewService(userStore, employers.NewSync(employerStore, logger), tm, mail, logger)
	adminSvc := admin.NewService(admin.New(database), tm, cfg.BootstrapToken, logger)

	rateLimiter := ratelim.NewRateLimiter(5, 10, 3*time.Minute)

	router := httprouter.New()
	router.GET("/health", health(client))
	routes.RoutesWrapper(router, routes.Handlers{
		Jobs:      jobs.NewHandler(jobs.NewService(jobStore, events, logger), logger),
		Users:     users.NewHandler(userSvc, logger),
		Employers: employers.NewHandler(employerSvc, logger),
		Projects:  projects.NewHandler(portfolio, logger),
		Auth:      auth.NewHandler(authSvc, logger),
		Admin:     admin.NewHandler(adminSvc, logger),
	}, middleware.NewAuth(tm), rateLimiter)
	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondWithError(w, http.StatusNotFound, "Not found")
	})

	// logging → security headers → CORS → router
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Bootstrap-Token"},
		AllowCredentials: true,
	}).Handler(router)
	handler := middleware.RequestLogger(logger)(middleware.SecurityHeaders(corsHandler))

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Addr()), zap.String("env", cfg.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	rateLimiter.Stop()
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", zap.Error(err))
		}
	}
	if err := client.Disconnect(shutdownCtx); err != nil {
		logger.Warn("mongo disconnect", zap.Error(err))
	}
	logger.Info("server stopped")
}
