// Package router 组装HTTP路由与全局中间件
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/internal/domain/user"
	"github.com/xiebiao/bookshop/internal/infrastructure/config"
	"github.com/xiebiao/bookshop/internal/interface/http/handler"
	"github.com/xiebiao/bookshop/internal/interface/http/middleware"
	"github.com/xiebiao/bookshop/pkg/response"
)

// Handlers 各模块的HTTP处理器
type Handlers struct {
	User   *handler.UserHandler
	Author *handler.AuthorHandler
	Book   *handler.BookHandler
	Order  *handler.OrderHandler
}

// New 创建Gin引擎并注册全部路由
//
// 中间件顺序：Logger → Recovery → CORS → Tracing → Metrics
// Logger在最外层，panic时Recovery能取到带request_id的logger，返回的500也会被记录
func New(cfg *config.Config, log *zap.Logger, h Handlers, auth *middleware.AuthMiddleware) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(
		middleware.Logger(log, cfg.Server.SlowThreshold),
		middleware.Recovery(),
		middleware.CORS(cfg.CORS),
		middleware.Tracing(),
	)
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics())
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// 生产环境不暴露Swagger
	if cfg.Server.Mode != "release" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	adminOnly := middleware.RequireRole(user.RoleAdmin)

	v1 := r.Group("/api/v1")
	{
		users := v1.Group("/users")
		{
			users.POST("/register", h.User.Register)
			users.POST("/login", h.User.Login)
			users.POST("/refresh", h.User.Refresh)
			users.POST("/logout", auth.RequireAuth(), h.User.Logout)
			users.GET("/me", auth.RequireAuth(), h.User.Me)
		}

		authors := v1.Group("/authors")
		{
			authors.GET("", h.Author.ListAuthors)
			authors.GET("/:id", h.Author.GetAuthor)
			authors.POST("", auth.RequireAuth(), adminOnly, h.Author.CreateAuthor)
		}

		books := v1.Group("/books")
		{
			books.GET("", h.Book.ListBooks)
			books.GET("/:id", h.Book.GetBook)
			books.POST("", auth.RequireAuth(), adminOnly, h.Book.CreateBook)
			books.PATCH("/:id", auth.RequireAuth(), adminOnly, h.Book.UpdateBook)
		}

		// 订单模块都需要登录
		orders := v1.Group("/orders")
		orders.Use(auth.RequireAuth())
		{
			orders.POST("", h.Order.CreateOrder)
			orders.GET("", h.Order.ListOrders)
			orders.GET("/:id", h.Order.GetOrder)
		}
	}

	return r
}
