package app

import (
	"context"
	"log/slog"
	"os"
	"time"

	"library_circulation/config"
	"library_circulation/db"
	"library_circulation/throttle"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// 简化别名，便于 handlers 调用
type Ctx = gin.Context
type H = gin.H

// App 聚合各依赖
type App struct {
	Router *gin.Engine
	DB     *gorm.DB
	RDB    *redis.Client // nil when REDIS_ADDR is unset
	Repo   *db.Repo
	Config config.Config
	Log    *slog.Logger

	accrual *throttle.Marker
}

func (a *App) Accrual() *throttle.Marker { return a.accrual }

func MustNew() *App {
	cfg := config.Load()
	log := cfg.NewLogger()
	slog.SetDefault(log)

	// --- DB: Postgres ---
	dbConn, err := db.ConnectDB(cfg.DatabaseURL, log)
	if err != nil {
		log.Error("database", "error", err)
		os.Exit(1)
	}

	// --- Redis (optional) ---
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: 0})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Error("redis", "error", err)
			os.Exit(1)
		}
	}

	return New(cfg, dbConn, rdb, log)
}

// New wires an App around already-open connections.
func New(cfg config.Config, dbConn *gorm.DB, rdb *redis.Client, log *slog.Logger) *App {
	r := gin.Default()
	useCORS(r, cfg.WebOrigin)
	r.Use(RequestID(log))

	a := &App{
		Router: r, DB: dbConn, RDB: rdb, Config: cfg, Log: log,
		Repo: db.NewRepo(dbConn, db.WithLogger(log)),
	}
	if rdb != nil {
		a.accrual = throttle.NewMarker(rdb, cfg.AccrueEvery)
	}
	return a
}

func (a *App) Close() {
	if a.RDB != nil {
		_ = a.RDB.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
