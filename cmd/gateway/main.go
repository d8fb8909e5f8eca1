package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	api "github.com/courseforge/courseforge-lms/internal/api/http"
	"github.com/courseforge/courseforge-lms/internal/assess"
	"github.com/courseforge/courseforge-lms/internal/attach"
	auth "github.com/courseforge/courseforge-lms/internal/auth/middleware"
	"github.com/courseforge/courseforge-lms/internal/config"
	"github.com/courseforge/courseforge-lms/internal/content"
	"github.com/courseforge/courseforge-lms/internal/db"
	"github.com/courseforge/courseforge-lms/internal/policy"
	"github.com/courseforge/courseforge-lms/internal/progress"
	"github.com/courseforge/courseforge-lms/internal/rbac"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	// --- Stores and engines ---
	contentRepo := content.NewSQLRepo(dbh)
	assessStore := assess.NewSQLStore(dbh)
	registry := attach.NewSQLRegistry(dbh, contentRepo, assessStore)
	guard := assess.NewGuard(assessStore, registry)
	ledger := policy.NewSQLLedger(dbh)
	engine := policy.NewEngine(registry, ledger, assessStore, cfg.AllowLegacyAttempts)
	progressStore := progress.NewSQLStore(dbh)
	tracker := progress.NewTracker(progressStore, contentRepo, registry, engine)
	aggregator := progress.NewAggregator(contentRepo, progressStore, registry, engine)
	surveys := progress.NewSurveyService(progress.NewSQLSurveyStore(dbh), aggregator)

	// --- Auth ---
	authSvc := auth.NewAuthService(cfg.AuthHMACSecret)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	origins := cfg.CORSOriginsOffline
	if cfg.Mode == config.ModeOnline {
		origins = cfg.CORSOriginsOnline
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.EnableLocalAuth {
		r.Post("/auth/login", auth.LoginHandler(authSvc, dbh, cfg.AdminUser, cfg.AdminPassHash))
	}

	// Protected API (JWT → subject+role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		// Assessment definitions
		pr.With(rbac.Require("assessment:create")).
			Post("/assessments", api.CreateAssessmentHandler(assessStore))
		pr.With(rbac.RequireAny("assessment:view", "assessment:take")).
			Get("/assessments/{assessmentID}", api.GetAssessmentHandler(assessStore))
		pr.With(rbac.Require("assessment:view")).
			Get("/assessments", api.ListAssessmentsHandler(assessStore))
		pr.With(rbac.Require("assessment:edit")).
			Put("/assessments/{assessmentID}", api.UpdateAssessmentHandler(guard))
		pr.With(rbac.Require("assessment:delete")).
			Delete("/assessments/{assessmentID}", api.DeleteAssessmentHandler(guard))

		// Attachment registry (admin/instructor)
		pr.With(rbac.Require("attachment:manage")).
			Post("/attachments", api.AttachHandler(registry))
		pr.With(rbac.Require("attachment:manage")).
			Delete("/attachments", api.DetachHandler(registry))
		pr.With(rbac.Require("attachment:manage")).
			Post("/attachments/{mappingID}/unarchive", api.UnarchiveMappingHandler(registry))
		pr.With(rbac.Require("attachment:view")).
			Get("/attachments", api.ListAttachmentsHandler(registry))

		// Learner flow
		pr.With(rbac.Require("assessment:take")).
			Get("/scopes/assessment", api.AssessmentForAttemptHandler(engine))
		pr.With(rbac.Require("attempt:create")).
			Post("/attempts", api.SubmitAttemptHandler(engine))
		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).
			Get("/attempts", api.ListAttemptsHandler(ledger))

		// Progress and completion
		pr.With(rbac.Require("progress:view")).
			Get("/progress/chapters/{chapterID}", api.GetChapterProgressHandler(tracker))
		pr.With(rbac.Require("progress:update")).
			Put("/progress/chapters/{chapterID}", api.SetChapterProgressHandler(tracker))
		pr.With(rbac.Require("completion:view")).
			Get("/courses/{courseID}/completion", api.GetCourseCompletionHandler(aggregator))
		pr.With(rbac.Require("survey:submit")).
			Get("/courses/{courseID}/survey", api.GetSurveyStatusHandler(surveys))
		pr.With(rbac.Require("survey:submit")).
			Post("/courses/{courseID}/survey", api.SubmitSurveyHandler(surveys))

		// Content read surface + seed
		pr.With(rbac.Require("content:view")).
			Get("/courses", api.ListCoursesHandler(dbh))
		pr.With(rbac.Require("content:view")).
			Get("/courses/{courseID}/chapters", api.ListCourseChaptersHandler(contentRepo))
		pr.With(rbac.Require("content:manage")).
			Post("/content/bulk", api.BulkUpsertContentHandler(dbh))

		// Users
		pr.With(rbac.Require("users:bulk_upsert")).
			Post("/users/bulk", api.BulkUpsertUsersHandler(dbh))
		pr.With(rbac.Require("users:list")).
			Get("/users", api.ListUsersHandler(dbh))
		pr.With(rbac.Require("user:change_password")).
			Post("/users/change-password", api.ChangePasswordHandler(dbh))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (mode=%s, db=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
