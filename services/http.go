package services

import (
	stdContext "context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/quizforge/quiz_api/services/handlers"
	"github.com/quizforge/quiz_api/shared"
)

type HttpService struct {
	context.DefaultService
	app *fiber.App

	port string

	authSvc        *AuthService
	jwtSvc         *JWTService
	quizSvc        *QuizService
	sessionSvc     *SessionService
	achievementSvc *AchievementService
	rankingSvc     *RankingService
	mediaSvc       *MediaService
	redisSvc       *RedisService
	monitoringSvc  *MonitoringService

	authHandler        *handlers.AuthHandler
	quizHandler        *handlers.QuizHandler
	sessionHandler     *handlers.SessionHandler
	achievementHandler *handlers.AchievementHandler
	rankingHandler     *handlers.RankingHandler
	adminHandler       *handlers.AdminHandler
}

const HTTP_SVC = "http_svc"

func (svc HttpService) Id() string {
	return HTTP_SVC
}

func (svc *HttpService) Configure(ctx *context.Context) error {
	svc.port = os.Getenv("PORT")
	if svc.port == "" {
		svc.port = "8000"
	}
	return svc.DefaultService.Configure(ctx)
}

func (svc *HttpService) Start() error {
	svc.authSvc = svc.Service(AUTH_SVC).(*AuthService)
	svc.jwtSvc = svc.Service(JWT_SVC).(*JWTService)
	svc.quizSvc = svc.Service(QUIZ_SVC).(*QuizService)
	svc.sessionSvc = svc.Service(SESSION_SVC).(*SessionService)
	svc.achievementSvc = svc.Service(ACHIEVEMENT_SVC).(*AchievementService)
	svc.rankingSvc = svc.Service(RANKING_SVC).(*RankingService)
	svc.mediaSvc = svc.Service(MEDIA_SVC).(*MediaService)
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)
	svc.monitoringSvc = svc.Service(MONITORING_SVC).(*MonitoringService)

	svc.authHandler = handlers.NewAuthHandler(svc.authSvc)
	svc.quizHandler = handlers.NewQuizHandler(svc.quizSvc, svc.jwtSvc)
	svc.sessionHandler = handlers.NewSessionHandler(svc.sessionSvc)
	svc.achievementHandler = handlers.NewAchievementHandler(svc.achievementSvc)
	svc.rankingHandler = handlers.NewRankingHandler(svc.rankingSvc, svc.jwtSvc)
	svc.adminHandler = handlers.NewAdminHandler(svc.rankingSvc, svc.achievementSvc, svc.mediaSvc)

	svc.app = fiber.New(fiber.Config{
		AppName:      "quiz_api",
		ErrorHandler: svc.errorHandler,
	})

	svc.app.Use(recover.New())
	svc.app.Use(cors.New())
	svc.app.Use(svc.metricsMiddleware())
	svc.app.Use(svc.rateLimitMiddleware())

	svc.registerRoutes()

	log.Printf("HTTP server listening on :%s", svc.port)
	return svc.app.Listen(fmt.Sprintf(":%s", svc.port))
}

func (svc *HttpService) Shutdown() {
	if svc.app != nil {
		svc.app.ShutdownWithTimeout(10 * time.Second)
	}
}

// errorHandler maps service errors to the response envelope. AppErrors carry
// their own status; everything else is a 500.
func (svc *HttpService) errorHandler(c *fiber.Ctx, err error) error {
	if appErr, ok := shared.GetAppError(err); ok {
		if appErr.StatusCode >= 500 {
			log.WithError(err).Error("Request failed")
		}
		return shared.ResponseJSON(c, appErr.StatusCode, appErr.Message, appErr.Data)
	}

	if e, ok := err.(*fiber.Error); ok {
		return shared.ResponseJSON(c, e.Code, e.Message, nil)
	}

	log.WithError(err).Error("Unhandled error")
	return shared.ResponseInternalError(c, err)
}

// authMiddlewareProvider is implemented by the middleware package's auth
// service, resolved by id to avoid an import cycle.
type authMiddlewareProvider interface {
	RequiredAuth() fiber.Handler
	RequiredAdmin() fiber.Handler
}

func (svc *HttpService) registerRoutes() {
	mw := svc.Service("auth").(authMiddlewareProvider)
	authMw := mw.RequiredAuth()
	adminMw := mw.RequiredAdmin()

	svc.app.Get("/health", func(c *fiber.Ctx) error {
		return shared.ResponseOK(c, fiber.Map{"status": "ok"})
	})

	metricsHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	svc.app.Get("/metrics", func(c *fiber.Ctx) error {
		metricsHandler(c.Context())
		return nil
	})

	svc.app.Get("/swagger/*", swagger.HandlerDefault)

	v1 := svc.app.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.Post("/register", svc.authHandler.Register)
	auth.Post("/login", svc.authHandler.Login)

	quizzes := v1.Group("/quizzes")
	quizzes.Get("/", svc.quizHandler.ListQuizzes)
	quizzes.Post("/", authMw, svc.quizHandler.CreateQuiz)
	quizzes.Get("/:id", svc.quizHandler.GetQuiz)
	quizzes.Post("/:quizId/sessions", authMw, svc.sessionHandler.StartSession)

	sessions := v1.Group("/sessions", authMw)
	sessions.Get("/:id", svc.sessionHandler.GetSession)
	sessions.Post("/:id/answers", svc.sessionHandler.SubmitAnswer)
	sessions.Post("/:id/pause", svc.sessionHandler.PauseSession)
	sessions.Post("/:id/resume", svc.sessionHandler.ResumeSession)
	sessions.Post("/:id/complete", svc.sessionHandler.CompleteSession)
	sessions.Post("/:id/abandon", svc.sessionHandler.AbandonSession)

	v1.Get("/achievements", authMw, svc.achievementHandler.GetMyAchievements)

	rankings := v1.Group("/rankings")
	rankings.Get("/global", svc.rankingHandler.GetGlobalRanking)
	rankings.Get("/weekly", svc.rankingHandler.GetWeeklyRanking)
	rankings.Get("/category/:category", svc.rankingHandler.GetCategoryRanking)

	admin := v1.Group("/admin", authMw, adminMw)
	admin.Post("/rankings/recompute", svc.adminHandler.RecomputeRankings)
	admin.Post("/users/:userId/achievements/evaluate", svc.adminHandler.EvaluateAchievements)
	admin.Post("/achievements/:code/badge", svc.adminHandler.UploadBadge)
	admin.Post("/quizzes/:id/cover", svc.adminHandler.UploadQuizCover)
}

func (svc *HttpService) metricsMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := c.Route().Path
		method := c.Method()
		status := strconv.Itoa(c.Response().StatusCode())

		svc.monitoringSvc.HttpRequests.WithLabelValues(method, path, status).Inc()
		svc.monitoringSvc.HttpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		return err
	}
}

func (svc *HttpService) rateLimitMiddleware() fiber.Handler {
	limit := 100
	if l := os.Getenv("RATE_LIMIT_PER_MINUTE"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	return func(c *fiber.Ctx) error {
		key := fmt.Sprintf("ratelimit:%s:%s", c.IP(), time.Now().Format("200601021504"))
		if !svc.redisSvc.AllowRequest(stdContext.Background(), key, limit, time.Minute) {
			return shared.ResponseJSON(c, http.StatusTooManyRequests, "Too Many Requests", nil)
		}
		return c.Next()
	}
}
