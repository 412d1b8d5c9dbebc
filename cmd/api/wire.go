//go:build wireinject
// +build wireinject

// Wire依赖注入配置
//
// 修改本文件后运行 `wire gen ./cmd/api` 重新生成wire_gen.go
// 依赖链：Repository ← Service ← UseCase ← Handler ← Router ← App

package main

import (
	"github.com/google/wire"
	"go.uber.org/zap"

	appauthor "github.com/xiebiao/bookshop/internal/application/author"
	appbook "github.com/xiebiao/bookshop/internal/application/book"
	apporder "github.com/xiebiao/bookshop/internal/application/order"
	appuser "github.com/xiebiao/bookshop/internal/application/user"
	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/infrastructure/config"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookshop/internal/interface/http/handler"
	"github.com/xiebiao/bookshop/internal/interface/http/middleware"
	"github.com/xiebiao/bookshop/internal/interface/http/router"
)

// infrastructureSet 基础设施层依赖
var infrastructureSet = wire.NewSet(
	mysql.NewDB,
	provideRedisClient,
	providePublisher,
	provideJWTManager,
	redis.NewSessionStore,
	provideBookCache,
	provideValidator,
)

// repositorySet 仓储层依赖
var repositorySet = wire.NewSet(
	mysql.NewAuthorRepository,
	mysql.NewBookRepository,
	mysql.NewUserRepository,
	mysql.NewOrderRepository,
	mysql.NewTxManager,
)

// domainSet 领域层依赖
var domainSet = wire.NewSet(
	provideAuthorService,
	book.NewService,
	provideUserService,
)

// applicationSet 应用层依赖
var applicationSet = wire.NewSet(
	appauthor.NewCreateAuthorUseCase,
	appauthor.NewGetAuthorUseCase,
	appauthor.NewListAuthorsUseCase,
	appbook.NewCreateBookUseCase,
	appbook.NewUpdateBookUseCase,
	appbook.NewGetBookUseCase,
	appbook.NewListBooksUseCase,
	appuser.NewRegisterUseCase,
	appuser.NewLoginUseCase,
	appuser.NewLogoutUseCase,
	appuser.NewRefreshUseCase,
	appuser.NewGetUserUseCase,
	appuser.NewEnsureAdminUseCase,
	apporder.NewCreateOrderUseCase,
	apporder.NewGetOrderUseCase,
	apporder.NewListOrdersUseCase,
)

// interfaceSet 接口层依赖
var interfaceSet = wire.NewSet(
	middleware.NewAuthMiddleware,
	handler.NewUserHandler,
	handler.NewAuthorHandler,
	handler.NewBookHandler,
	handler.NewOrderHandler,
	provideHandlers,
	router.New,
)

// InitializeApp 初始化整个应用
// cfg与log由main提前创建（启动失败时也需要日志）
// 返回的cleanup按创建的逆序释放Redis、消息队列连接
func InitializeApp(cfg *config.Config, log *zap.Logger) (*App, func(), error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		interfaceSet,
		newApp,
	)
	return nil, nil, nil
}
