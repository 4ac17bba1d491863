package main

import (
	_ "github.com/quizforge/quiz_api/docs"
	"github.com/quizforge/quiz_api/middleware"
	"github.com/quizforge/quiz_api/services"

	"github.com/alphabatem/common/context"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// @title Quiz API
// @version 1.0
// @description Quiz session lifecycle, scoring, achievements and leaderboards
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("No .env file loaded")
	}

	ctx, err := context.NewCtx(
		&services.MonitoringService{},
		&services.PostgresService{},
		&services.RedisService{},
		&services.MinioService{},
		&services.JWTService{},
		&middleware.AuthMiddleware{},

		&services.AuthService{},
		&services.QuizService{},
		&services.AchievementService{},
		&services.SessionService{},
		&services.RankingService{},
		&services.StatsService{},
		&services.MediaService{},

		&services.HttpService{},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure services")
		return
	}

	if err = ctx.Run(); err != nil {
		log.Fatal().Err(err).Msg("Service runtime exited")
		return
	}
}
