package user

import (
	"context"

	"github.com/xiebiao/bookshop/internal/application/dto"
	"github.com/xiebiao/bookshop/internal/domain/user"
	"github.com/xiebiao/bookshop/pkg/metrics"
	"github.com/xiebiao/bookshop/pkg/tracing"
)

const tracerName = "bookstore/application/user"

// RegisterUseCase 用户注册用例
// 设计说明：
// 1. 应用层负责用例编排，协调领域服务完成业务流程
// 2. 角色固定为普通用户，注册时间只写一次
// 3. 用户名/邮箱冲突由唯一索引判定，错误中指明冲突的字段
type RegisterUseCase struct {
	userService user.Service
}

// NewRegisterUseCase 创建注册用例
func NewRegisterUseCase(userService user.Service) *RegisterUseCase {
	return &RegisterUseCase{userService: userService}
}

// RegisterRequest 注册请求（已通过校验层）
type RegisterRequest struct {
	Username string
	Email    string
	Password string
}

// Execute 执行注册
func (uc *RegisterUseCase) Execute(ctx context.Context, req RegisterRequest) (*dto.UserResponse, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "Register")
	defer span.End()

	u, err := uc.userService.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	metrics.IncCounter(metrics.UsersRegisteredTotal)

	resp := dto.FromUser(u)
	return &resp, nil
}

// GetUserUseCase 查询当前用户
type GetUserUseCase struct {
	userService user.Service
}

// NewGetUserUseCase 创建用例实例
func NewGetUserUseCase(userService user.Service) *GetUserUseCase {
	return &GetUserUseCase{userService: userService}
}

// Execute 执行查询
func (uc *GetUserUseCase) Execute(ctx context.Context, userID uint) (*dto.UserResponse, error) {
	u, err := uc.userService.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := dto.FromUser(u)
	return &resp, nil
}

// EnsureAdminUseCase 启动时确保管理员账号存在
// 这是唯一会赋予admin角色的入口
type EnsureAdminUseCase struct {
	userService user.Service
}

// NewEnsureAdminUseCase 创建用例实例
func NewEnsureAdminUseCase(userService user.Service) *EnsureAdminUseCase {
	return &EnsureAdminUseCase{userService: userService}
}

// EnsureAdminRequest 管理员账号（来自配置）
type EnsureAdminRequest struct {
	Username string
	Email    string
	Password string
}

// Execute 执行检查，Username为空时什么也不做
// created表示本次是否新建了账号
func (uc *EnsureAdminUseCase) Execute(ctx context.Context, req EnsureAdminRequest) (created bool, err error) {
	if req.Username == "" {
		return false, nil
	}
	return uc.userService.EnsureAdmin(ctx, req.Username, req.Email, req.Password)
}
