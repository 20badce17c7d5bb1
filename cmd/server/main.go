package main

import (
	"net/http"
	"time"

	goaway "github.com/TwiN/go-away"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"storyparty/game"
	"storyparty/session"
	"storyparty/shared/configs"
	"storyparty/shared/logger"
	"storyparty/storage"
)

func main() {
	godotenv.Load()

	cfg, err := configs.Load()
	if err != nil {
		panic(err)
	}
	release := cfg.GinMode == gin.ReleaseMode
	logger.Setup(release)
	if release {
		gin.SetMode(gin.ReleaseMode)
	}

	var store game.RoomStore
	if cfg.RedisURL != "" {
		redisStore := storage.NewRedisRoomStore(cfg.RedisURL, cfg.RoomTTL)
		defer redisStore.Close()
		store = redisStore
		log.Info().Msg("using redis room store")
	} else {
		store = storage.NewMemoryRoomStore(cfg.RoomTTL)
		log.Warn().Msg("REDIS_URL not set, using in-memory room store")
	}

	validator := game.NewAnswerValidator(cfg.MaxAnswerLength, goaway.IsProfane)
	rng := game.NewLockedRand(time.Now().UnixNano())
	engine := game.NewEngine(store, rng, validator, log.Logger)
	adapter := session.NewAdapter(engine, cfg.GracePeriod, cfg.RevealDelay, log.Logger)

	var allowedOrigins []string
	if cfg.FrontendOrigin != "" {
		if release {
			allowedOrigins = append(allowedOrigins,
				"https://"+cfg.FrontendOrigin,
				"https://www."+cfg.FrontendOrigin,
			)
		} else {
			allowedOrigins = append(allowedOrigins, "http://"+cfg.FrontendOrigin)
		}
	}

	r := gin.Default()

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if len(allowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     allowedOrigins,
			AllowCredentials: true,
			AllowHeaders:     []string{"Content-Type", "Origin"},
		}))
	}

	session.NewHandler(adapter, allowedOrigins).RegisterRoutes(r)

	log.Info().Str("addr", cfg.Addr).Msg("server listening")
	if err := r.Run(cfg.Addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
