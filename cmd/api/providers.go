package main

import (
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appbook "github.com/xiebiao/bookshop/internal/application/book"
	"github.com/xiebiao/bookshop/internal/domain/author"
	"github.com/xiebiao/bookshop/internal/domain/user"
	"github.com/xiebiao/bookshop/internal/infrastructure/config"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookshop/internal/interface/http/handler"
	"github.com/xiebiao/bookshop/internal/interface/http/router"
	"github.com/xiebiao/bookshop/pkg/circuitbreaker"
	"github.com/xiebiao/bookshop/pkg/jwt"
	"github.com/xiebiao/bookshop/pkg/metrics"
	"github.com/xiebiao/bookshop/pkg/mq"
	"github.com/xiebiao/bookshop/pkg/validator"
)

// 自定义Provider：构造参数需要从Config中提取，或者构造函数带可选参数，Wire无法直接使用

func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

// provideBookCache 未启用缓存时返回nil接口（注意不能返回nil的*BookCache）
func provideBookCache(cfg *config.Config, client *goredis.Client) appbook.DetailCache {
	if !cfg.Cache.Enabled {
		return nil
	}
	return redis.NewBookCache(client, cfg.Cache.BookDetailTTL)
}

// providePublisher 未启用消息队列时事件直接丢弃
// 启用时在熔断器保护下发布，状态变化写日志与指标
func providePublisher(cfg *config.Config, log *zap.Logger) (mq.Publisher, func(), error) {
	if !cfg.MQ.Enabled {
		return mq.NopPublisher{}, func() {}, nil
	}
	rabbit, err := mq.NewRabbitPublisher(cfg.MQ.URL, cfg.MQ.Exchange, log)
	if err != nil {
		return nil, nil, fmt.Errorf("连接消息队列失败: %w", err)
	}

	failures := cfg.MQ.BreakerFailures
	cb := circuitbreaker.New("rabbitmq", circuitbreaker.Config{
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.MQ.BreakerTimeout,
		ReadyToTrip: func(c circuitbreaker.Counts) bool {
			return c.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to circuitbreaker.State) {
			log.Warn("熔断器状态变化",
				zap.String("name", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to),
			)
			metrics.SetGaugeVec(metrics.CircuitBreakerState, map[string]string{"name": name}, float64(to))
		},
	})
	p := mq.WithBreaker(rabbit, cb)
	cleanup := func() {
		if err := p.Close(); err != nil {
			log.Warn("关闭消息队列连接失败", zap.Error(err))
		}
	}
	return p, cleanup, nil
}

func provideValidator() *validator.Validator {
	return validator.New()
}

func provideAuthorService(repo author.Repository) author.Service {
	return author.NewService(repo)
}

func provideUserService(repo user.Repository) user.Service {
	return user.NewService(repo)
}

func provideRedisClient(cfg *config.Config, log *zap.Logger) (*goredis.Client, func(), error) {
	client, err := redis.NewClient(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

func provideHandlers(
	userHandler *handler.UserHandler,
	authorHandler *handler.AuthorHandler,
	bookHandler *handler.BookHandler,
	orderHandler *handler.OrderHandler,
) router.Handlers {
	return router.Handlers{
		User:   userHandler,
		Author: authorHandler,
		Book:   bookHandler,
		Order:  orderHandler,
	}
}
