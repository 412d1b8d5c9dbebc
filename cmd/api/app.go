package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appuser "github.com/xiebiao/bookshop/internal/application/user"
	"github.com/xiebiao/bookshop/internal/infrastructure/config"
)

// App HTTP服务及启动任务
type App struct {
	cfg         *config.Config
	log         *zap.Logger
	server      *http.Server
	ensureAdmin *appuser.EnsureAdminUseCase
}

func newApp(cfg *config.Config, log *zap.Logger, engine *gin.Engine, ensureAdmin *appuser.EnsureAdminUseCase) *App {
	return &App{
		cfg: cfg,
		log: log,
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:      engine,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		ensureAdmin: ensureAdmin,
	}
}

// Run 启动服务，ctx取消后优雅关闭
func (a *App) Run(ctx context.Context) error {
	created, err := a.ensureAdmin.Execute(ctx, appuser.EnsureAdminRequest{
		Username: a.cfg.Admin.Username,
		Email:    a.cfg.Admin.Email,
		Password: a.cfg.Admin.Password,
	})
	if err != nil {
		return fmt.Errorf("初始化管理员账号失败: %w", err)
	}
	if created {
		a.log.Info("已创建管理员账号", zap.String("username", a.cfg.Admin.Username))
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("HTTP服务启动", zap.String("addr", a.server.Addr), zap.String("mode", a.cfg.Server.Mode))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info("正在关闭服务...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout())
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("服务关闭失败: %w", err)
	}
	a.log.Info("服务已关闭")
	return nil
}

func (a *App) shutdownTimeout() time.Duration {
	if a.cfg.Server.ShutdownTimeout > 0 {
		return a.cfg.Server.ShutdownTimeout
	}
	return 5 * time.Second
}
