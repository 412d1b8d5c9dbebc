package dto

import (
	appuser "github.com/xiebiao/bookshop/internal/application/user"
)

// UserCreate 用户注册
type UserCreate struct {
	Username string `json:"username" validate:"required,min=3,max=100" example:"alice"`
	Email    string `json:"email" validate:"required,email,max=255" example:"alice@example.com"`
	Password string `json:"password" validate:"required,min=6,max=100" example:"secret123"`
}

// ToRequest 转换为应用层请求
func (r *UserCreate) ToRequest() appuser.RegisterRequest {
	return appuser.RegisterRequest{
		Username: r.Username,
		Email:    r.Email,
		Password: r.Password,
	}
}

// LoginRequest 用户登录
type LoginRequest struct {
	Username string `json:"username" validate:"required" example:"alice"`
	Password string `json:"password" validate:"required" example:"secret123"`
}

// RefreshRequest 刷新Token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}
