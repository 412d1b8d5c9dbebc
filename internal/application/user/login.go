package user

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/internal/application/dto"
	"github.com/xiebiao/bookshop/internal/domain/user"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/redis"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
	"github.com/xiebiao/bookshop/pkg/jwt"
	"github.com/xiebiao/bookshop/pkg/logger"
	"github.com/xiebiao/bookshop/pkg/metrics"
	"github.com/xiebiao/bookshop/pkg/tracing"
)

// TokenTypeBearer 登录结果中的token_type
const TokenTypeBearer = "bearer"

// LoginUseCase 用户登录用例
// 设计说明：
// 1. 验证用户名密码（用户不存在与密码错误返回同一个错误）
// 2. 生成JWT Token对
// 3. 保存会话到Redis
type LoginUseCase struct {
	userService  user.Service
	jwtManager   *jwt.Manager
	sessionStore *redis.SessionStore
}

// NewLoginUseCase 创建登录用例
func NewLoginUseCase(
	userService user.Service,
	jwtManager *jwt.Manager,
	sessionStore *redis.SessionStore,
) *LoginUseCase {
	return &LoginUseCase{
		userService:  userService,
		jwtManager:   jwtManager,
		sessionStore: sessionStore,
	}
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string
	Password string
	ClientIP string // 由HTTP层提供
}

// Execute 执行登录
func (uc *LoginUseCase) Execute(ctx context.Context, req LoginRequest) (*dto.TokenResponse, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "Login")
	defer span.End()

	// 1. 验证用户名密码（调用领域服务）
	u, err := uc.userService.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		metrics.IncCounterVec(metrics.LoginsTotal, map[string]string{"result": "failure"})
		tracing.RecordError(span, err)
		return nil, err
	}

	// 2. 生成Token对，角色写入Access Token
	pair, err := uc.jwtManager.GenerateToken(u.ID, u.Username, u.Role.String())
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	// 3. 保存会话，有效期与Refresh Token一致
	// 会话只用于登出与续期，保存失败不影响本次登录
	sess := redis.Session{
		UserID:   u.ID,
		Username: u.Username,
		Role:     u.Role.String(),
		LoginAt:  time.Now(),
		ClientIP: req.ClientIP,
	}
	if err := uc.sessionStore.SaveSession(ctx, sess, uc.jwtManager.RefreshTokenExpire()); err != nil {
		logger.Get(ctx).Warn("保存会话失败", zap.Uint("user_id", u.ID), zap.Error(err))
	}
	metrics.IncCounterVec(metrics.LoginsTotal, map[string]string{"result": "success"})

	return toTokenResponse(pair), nil
}

// LogoutUseCase 用户登出用例
type LogoutUseCase struct {
	jwtManager   *jwt.Manager
	sessionStore *redis.SessionStore
}

// NewLogoutUseCase 创建登出用例
func NewLogoutUseCase(jwtManager *jwt.Manager, sessionStore *redis.SessionStore) *LogoutUseCase {
	return &LogoutUseCase{
		jwtManager:   jwtManager,
		sessionStore: sessionStore,
	}
}

// Execute 执行登出
// 删除会话使Refresh Token失效，Access Token加入黑名单直到自然过期
func (uc *LogoutUseCase) Execute(ctx context.Context, accessToken string) error {
	claims, err := uc.jwtManager.ParseToken(accessToken)
	if err != nil {
		return err
	}

	if err := uc.sessionStore.DeleteSession(ctx, claims.UserID); err != nil {
		return err
	}
	return uc.sessionStore.AddToBlacklist(ctx, accessToken, uc.jwtManager.Remaining(claims))
}

// RefreshUseCase 使用Refresh Token换取新的Token对
// 每个Refresh Token只能使用一次：签发前先原子地占用（SETNX），并发请求中只有一个成功
// 登出后会话不存在则拒绝续期；续期成功后会话过期时间随新Refresh Token重置
type RefreshUseCase struct {
	userService  user.Service
	jwtManager   *jwt.Manager
	sessionStore *redis.SessionStore
}

// NewRefreshUseCase 创建续期用例
func NewRefreshUseCase(
	userService user.Service,
	jwtManager *jwt.Manager,
	sessionStore *redis.SessionStore,
) *RefreshUseCase {
	return &RefreshUseCase{
		userService:  userService,
		jwtManager:   jwtManager,
		sessionStore: sessionStore,
	}
}

// Execute 执行续期
func (uc *RefreshUseCase) Execute(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := uc.jwtManager.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	ctx, span := tracing.StartSpan(ctx, tracerName, "Refresh")
	defer span.End()

	// 1. 会话必须存在（未登出）
	if _, err := uc.sessionStore.GetSession(ctx, claims.UserID); err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	// 2. 占用旧Refresh Token，已被使用过的直接拒绝
	claimed, err := uc.sessionStore.ClaimToken(ctx, refreshToken, uc.jwtManager.Remaining(claims))
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	if !claimed {
		tracing.RecordError(span, apperrors.ErrInvalidToken)
		return nil, apperrors.ErrInvalidToken
	}

	// 3. 角色以数据库为准，不沿用旧Token
	u, err := uc.userService.GetUser(ctx, claims.UserID)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		tracing.RecordError(span, err)
		return nil, err
	}

	pair, err := uc.jwtManager.GenerateToken(u.ID, u.Username, u.Role.String())
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	// 4. 会话随新Refresh Token续期；期间已登出则不签发
	if err := uc.sessionStore.RenewSession(ctx, u.ID, u.Role.String(), uc.jwtManager.RefreshTokenExpire()); err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	return toTokenResponse(pair), nil
}

func toTokenResponse(pair *jwt.TokenPair) *dto.TokenResponse {
	return &dto.TokenResponse{
		AccessToken:  pair.AccessToken,
		TokenType:    TokenTypeBearer,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}
}
