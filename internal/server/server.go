package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/ets-berkeley-edu/ripley/internal/canvas"
	"github.com/ets-berkeley-edu/ripley/internal/config"
	"github.com/ets-berkeley-edu/ripley/internal/dataloch"
	"github.com/ets-berkeley-edu/ripley/internal/jobs"
	"github.com/ets-berkeley-edu/ripley/internal/mailinglist"
	"github.com/ets-berkeley-edu/ripley/internal/server/handlers"
	"github.com/ets-berkeley-edu/ripley/internal/server/middleware"
	"github.com/ets-berkeley-edu/ripley/internal/server/router"
)

// New builds the HTTP server and every collaborator behind it.
func New(cfg *config.Config) (*http.Server, error) {
	loch, err := dataloch.New(cfg.DataLochDSN)
	if err != nil {
		return nil, err
	}

	appDB, err := sqlx.Open("postgres", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open app database: %w", err)
	}

	canvasClient := canvas.New(cfg.CanvasAPIURL, cfg.CanvasAccessToken, cfg.CanvasAccountID)
	queue := jobs.NewQueue(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
	lists := mailinglist.NewStore(appDB)

	handler := handlers.New(canvasClient, loch, queue, lists, cfg.GradeDistributionMaxDistinctCourses)
	mw := middleware.NewManager()

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router.New(handler, mw),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}, nil
}
