package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"ofs/fulfillsync/internal/app/config"
	"ofs/fulfillsync/internal/app/domains/modules/mdresolve"
	"ofs/fulfillsync/internal/app/domains/repo/rpaudit"
	"ofs/fulfillsync/internal/app/domains/repo/rplink"
	"ofs/fulfillsync/internal/app/domains/services/svsync"
	"ofs/fulfillsync/internal/app/infra/commerce"
	"ofs/fulfillsync/internal/app/infra/fulfillment"
	redisstore "ofs/fulfillsync/internal/app/infra/persistence/redis"
	"ofs/fulfillsync/internal/app/pkg/logger"
	"ofs/fulfillsync/internal/app/poller"
	"ofs/fulfillsync/internal/app/server/handlers/reconcile"
	"ofs/fulfillsync/internal/app/server/handlers/syncstatus"
	"ofs/fulfillsync/internal/app/server/handlers/webhook"
	"ofs/fulfillsync/internal/app/server/routers"
)

// App 组装完成的应用
type App struct {
	Engine    *gin.Engine
	Scheduler *poller.Scheduler
	Logger    logger.Logger
}

// InitializeApp 装配全部依赖
func InitializeApp(cfg *config.Config) (*App, func(), error) {
	log, err := logger.NewZapLogger(cfg.App.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger failed: %w", err)
	}

	db, err := gorm.Open(mysql.Open(cfg.MySQL.DSN), &gorm.Config{})
	if err != nil {
		return nil, nil, fmt.Errorf("connect mysql failed: %w", err)
	}
	if err := db.AutoMigrate(&rplink.OrderLink{}, &rpaudit.SyncAudit{}); err != nil {
		return nil, nil, fmt.Errorf("auto migrate failed: %w", err)
	}

	// Redis 次级映射存储可选：未配置时解析器只走主存储
	var localStore mdresolve.LocalLinkStore
	var linkStore *redisstore.LinkStore
	if cfg.Redis.Addr != "" {
		linkStore, err = redisstore.NewLinkStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis failed: %w", err)
		}
		localStore = linkStore
	}

	commerceClient := commerce.NewClient(
		cfg.Commerce.BaseURL, cfg.Commerce.ConsumerKey, cfg.Commerce.ConsumerSecret, cfg.Commerce.Timeout)
	fulfillmentClient := fulfillment.NewClient(
		cfg.Fulfillment.BaseURL, cfg.Fulfillment.APIKey, cfg.Fulfillment.APISecret, cfg.Fulfillment.Timeout)

	linkRepo := rplink.NewLinkRepository(db)
	auditRepo := rpaudit.NewAuditRepository(db)

	resolver := mdresolve.NewResolver(linkRepo, localStore, commerceClient, log)
	reconciler := svsync.NewReconcileService(fulfillmentClient, resolver, commerceClient, auditRepo, log)
	sweeper := svsync.NewSweepService(commerceClient, fulfillmentClient, reconciler, svsync.SweepConfig{
		AttentionStatus: cfg.Sync.AttentionStatus,
		LookbackWindow:  time.Duration(cfg.Sync.LookbackDays) * 24 * time.Hour,
		MaxOrders:       cfg.Sync.MaxOrders,
	}, log)

	tracker := poller.NewTracker()
	scheduler := poller.NewScheduler(sweeper, tracker, poller.NewSystemClock(), cfg.Sync.Interval, log)

	webhookHandler := webhook.NewWebhookHandler(reconciler, cfg.Sync.WebhookSecret, log)
	syncStatusHandler := syncstatus.NewSyncStatusHandler(tracker, cfg)
	reconcileHandler := reconcile.NewReconcileHandler(reconciler, log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := routers.SetupRoutes(webhookHandler, syncStatusHandler, reconcileHandler, log)

	cleanup := func() {
		if linkStore != nil {
			if err := linkStore.Close(); err != nil {
				log.Warnf(context.Background(), "close redis failed: %v", err)
			}
		}
		_ = log.Sync()
	}

	return &App{
		Engine:    engine,
		Scheduler: scheduler,
		Logger:    log,
	}, cleanup, nil
}
