// cmd/server/main.go
package main

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"regicide-server/internal/auth"
	"regicide-server/internal/cache"
	"regicide-server/internal/database"
	"regicide-server/internal/handlers"
	"regicide-server/internal/middleware"
)

func main() {
	auth.Init()

	logger := logrus.New()
	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logger.SetLevel(lvl)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	// Postgres and Redis are optional: without them the server still runs,
	// it just skips result recording and action logging.
	if os.Getenv("PG_HOST") != "" {
		database.ConnectDB()
	} else {
		logger.Warn("PG_HOST not set, game results will not be recorded")
	}
	if err := cache.ConnectRedis(); err != nil {
		logger.Warnf("redis unavailable, action logging disabled: %v", err)
		cache.Rdb = nil
	}

	rs := handlers.NewRoomServer(logger)

	r := chi.NewRouter()
	r.Use(middleware.LogMiddleware(logger))

	r.Get("/healthz", handlers.HealthzHandler)
	r.Post("/rooms", rs.CreateRoomHandler)
	r.Get("/rooms", rs.ListRoomsHandler)
	r.Get("/rooms/ws/{room_id}", handlers.RoomWSHandler(logger, rs))

	addr := os.Getenv("SERVER_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	logger.Infof("regicide server listening on %s", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Fatalf("server error: %v", err)
	}
}
