package user

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// DefaultBcryptCost 默认bcrypt cost
const DefaultBcryptCost = 12

// Service 用户领域服务
// 设计说明：
// 1. Service包含不属于单个实体的业务逻辑（密码加密、验证）
// 2. Service依赖Repository接口，不依赖具体实现（依赖倒置）
type Service interface {
	// Register 用户注册，角色固定为普通用户
	Register(ctx context.Context, username, email, password string) (*User, error)

	// Authenticate 校验用户名密码
	// 用户不存在与密码错误返回同一个错误，避免泄露用户名是否存在
	Authenticate(ctx context.Context, username, password string) (*User, error)

	// GetUser 根据ID获取用户
	GetUser(ctx context.Context, id uint) (*User, error)

	// EnsureAdmin 确保管理员账号存在（启动时调用）
	// 返回值created表示本次是否新建
	EnsureAdmin(ctx context.Context, username, email, password string) (created bool, err error)
}

type service struct {
	repo Repository
	cost int
}

// ServiceOption 领域服务选项
type ServiceOption func(*service)

// WithBcryptCost 指定bcrypt cost（测试时使用bcrypt.MinCost加速）
func WithBcryptCost(cost int) ServiceOption {
	return func(s *service) {
		s.cost = cost
	}
}

// NewService 创建用户服务
func NewService(repo Repository, opts ...ServiceOption) Service {
	s := &service{repo: repo, cost: DefaultBcryptCost}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register 用户注册
// 业务规则：
// 1. 用户名3-100个字符，密码6-100个字符
// 2. 密码bcrypt加密
// 3. 用户名、邮箱唯一性由数据库UNIQUE索引保证
func (s *service) Register(ctx context.Context, username, email, password string) (*User, error) {
	u, err := s.newUser(username, email, password)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err // Repository已转换为业务错误
	}
	return u, nil
}

// Authenticate 校验用户名密码
func (s *service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	u, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), passwordBytes(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.Wrap(err, "密码验证失败")
	}
	return u, nil
}

// GetUser 根据ID获取用户
func (s *service) GetUser(ctx context.Context, id uint) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

// EnsureAdmin 确保管理员账号存在
func (s *service) EnsureAdmin(ctx context.Context, username, email, password string) (bool, error) {
	_, err := s.repo.FindByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return false, err
	}

	u, err := s.newUser(username, email, password)
	if err != nil {
		return false, err
	}
	u.Role = RoleAdmin

	if err := s.repo.Create(ctx, u); err != nil {
		// 并发启动时另一个实例可能已经创建
		if errors.Is(err, ErrUsernameDuplicate) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *service) newUser(username, email, password string) (*User, error) {
	var fields []apperrors.FieldError
	if n := utf8.RuneCountInString(username); n < 3 || n > 100 {
		fields = append(fields, apperrors.FieldError{Field: "username", Reason: "长度应为3-100个字符"})
	}
	if email == "" {
		fields = append(fields, apperrors.FieldError{Field: "email", Reason: "必填"})
	}
	if n := utf8.RuneCountInString(password); n < 6 || n > 100 {
		fields = append(fields, apperrors.FieldError{Field: "password", Reason: "长度应为6-100个字符"})
	}
	if len(fields) > 0 {
		return nil, apperrors.Validation(fields...)
	}

	hashed, err := bcrypt.GenerateFromPassword(passwordBytes(password), s.cost)
	if err != nil {
		return nil, apperrors.Wrap(err, "密码加密失败")
	}
	return NewUser(username, email, string(hashed)), nil
}

// passwordBytes bcrypt只接受72字节以内的输入
// 超长密码先做SHA-256，保证100个字符的多字节密码也能完整参与校验
func passwordBytes(password string) []byte {
	if len(password) <= 72 {
		return []byte(password)
	}
	sum := sha256.Sum256([]byte(password))
	return []byte(hex.EncodeToString(sum[:]))
}
