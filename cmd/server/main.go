// Package main 是应用程序的入口点。
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"converso-go/internal/config"
	"converso-go/internal/handler"
	"converso-go/internal/middleware"
	"converso-go/internal/model"
	"converso-go/internal/popularity"
	"converso-go/internal/repository"
	"converso-go/internal/service"
	"converso-go/pkg/database"
	"converso-go/pkg/kafka"
	"converso-go/pkg/log"
	"converso-go/pkg/storage"
	"converso-go/pkg/token"

	"github.com/gin-gonic/gin"
)

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	// 3. 初始化数据库、Redis 与对象存储
	database.InitMySQL(cfg.Database.MySQL.DSN)
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	storage.InitMinIO(cfg.MinIO)
	kafka.InitProducer(cfg.Kafka)

	// 建表迁移
	if err := database.DB.AutoMigrate(&model.Companion{}, &model.SessionHistory{}, &model.Bookmark{}); err != nil {
		log.Fatal("数据库迁移失败", err)
	}

	// 4. 初始化 Repository
	companionRepo := repository.NewCompanionRepository(database.DB)
	historyRepo := repository.NewSessionHistoryRepository(database.DB)
	bookmarkRepo := repository.NewBookmarkRepository(database.DB)
	pageCacheRepo := repository.NewPageCacheRepository(database.RDB)
	popularityRepo := repository.NewPopularityRepository(database.RDB)

	// 5. 初始化 Service (依赖注入)
	jwtManager := token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.TokenExpireHours)
	transcriptStore := storage.NewTranscriptStore(cfg.MinIO.BucketName,
		time.Duration(cfg.Transcript.URLExpireMinutes)*time.Minute)
	quotaService := service.NewQuotaService(companionRepo)
	companionService := service.NewCompanionService(companionRepo, popularityRepo, quotaService)
	sessionService := service.NewSessionService(historyRepo, companionRepo, kafka.ProduceSessionEvent, transcriptStore)
	bookmarkService := service.NewBookmarkService(bookmarkRepo, companionRepo, pageCacheRepo, cfg.Bookmark.EnforceUnique)

	// 6. 启动后台 Kafka 消费者，维护伙伴热度排行
	processor := popularity.NewProcessor(popularityRepo, pageCacheRepo)
	go kafka.StartConsumer(cfg.Kafka, processor)

	// 7. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	r.Use(middleware.RequestLogger(), gin.Recovery())

	pageCacheTTL := time.Duration(cfg.PageCache.TTLMinutes) * time.Minute

	// 8. 注册路由
	apiV1 := r.Group("/api/v1")
	{
		companionHandler := handler.NewCompanionHandler(companionService, quotaService)
		sessionHandler := handler.NewSessionHandler(sessionService)
		bookmarkHandler := handler.NewBookmarkHandler(bookmarkService)

		// 公开读取路由（伙伴库页面走 Redis 页面缓存）
		companions := apiV1.Group("/companions")
		{
			companions.GET("", middleware.PageCache(pageCacheRepo, pageCacheTTL), companionHandler.List)
			companions.GET("/popular", companionHandler.Popular)

			// 需要认证的路由
			authed := companions.Group("")
			authed.Use(middleware.AuthMiddleware(jwtManager))
			{
				authed.POST("", companionHandler.Create)
				authed.GET("/permissions", companionHandler.Permissions)
				authed.POST("/:id/bookmark", bookmarkHandler.Add)
				authed.DELETE("/:id/bookmark", bookmarkHandler.Remove)
			}

			// 注意 :id 路由必须在具名路由之后注册
			companions.GET("/:id", companionHandler.GetByID)
		}

		// 会话历史路由
		sessions := apiV1.Group("/sessions")
		{
			sessions.GET("/recent", sessionHandler.RecentGlobal)

			authed := sessions.Group("")
			authed.Use(middleware.AuthMiddleware(jwtManager))
			{
				authed.POST("", sessionHandler.Append)
				authed.GET("/:id/transcript", sessionHandler.TranscriptURL)
			}
		}

		// 当前用户视角的聚合路由
		me := apiV1.Group("/users/me")
		me.Use(middleware.AuthMiddleware(jwtManager))
		{
			me.GET("/companions", companionHandler.ListMine)
			me.GET("/sessions", sessionHandler.ListMine)
			me.GET("/bookmarks", bookmarkHandler.ListMine)
		}

		// 实时搜索 (WebSocket)
		searchHandler := handler.NewSearchHandler(companionService,
			time.Duration(cfg.Search.DebounceMillis)*time.Millisecond, cfg.Search.Limit)
		apiV1.GET("/search/live", searchHandler.Live)
	}

	// 语音会话路由 (WebSocket)，令牌走路径参数
	voiceHandler := handler.NewVoiceHandler(sessionService, companionService, jwtManager)
	r.GET("/voice/:token", voiceHandler.Handle)

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	// 设置一个5秒的超时上下文
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 关闭 HTTP 服务器
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}

	log.Info("服务已优雅关闭")
}
