package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/6610545011/cn331-project/config"
	"github.com/6610545011/cn331-project/internal/api/handler"
	"github.com/6610545011/cn331-project/internal/api/middleware"
	"github.com/6610545011/cn331-project/pkg/jwt"
	"github.com/6610545011/cn331-project/pkg/redis"
)

// 请求体上限 1MB，本服务没有文件上传场景
const maxBodyBytes = 1 << 20

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1（全部需要认证）──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(jwtMgr, rdb))
	{
		// 当前计划
		planner := v1.Group("/planner")
		{
			planner.GET("", h.Planner.GetTimetable)
			planner.GET("/sections/search", h.Section.Search)
			// 加课会触发冲突检测，单独限流
			planner.POST("/sections/:id", middleware.RateLimit(rdb, 30, time.Minute), h.Planner.AddSection)
			planner.DELETE("/sections/:id", h.Planner.RemoveSection)
			planner.POST("/schedules", h.Planner.AddSchedule)
		}

		// 计划方案
		variants := v1.Group("/variants")
		{
			variants.GET("", h.Variant.List)
			variants.POST("", h.Variant.Create)
			variants.POST("/save-current", h.Variant.SaveCurrent)
			variants.POST("/:id/load", h.Variant.Load)
			variants.DELETE("/:id", h.Variant.Delete)
			variants.POST("/:id/sections/:sectionId", middleware.RateLimit(rdb, 30, time.Minute), h.Variant.AddSection)
			variants.DELETE("/:id/sections/:sectionId", h.Variant.RemoveSection)
		}

		// 导出
		export := v1.Group("/export")
		{
			export.GET("/timetable", h.Export.ExportTimetable)
		}
	}

	return r
}
