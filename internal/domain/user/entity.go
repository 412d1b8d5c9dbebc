package user

import (
	"time"
)

// User 用户实体（聚合根）
// DDD设计说明：
// 1. 密码已加密存储（bcrypt），实体中只有哈希值
// 2. Role与CreationDate在创建时确定，之后不再修改
// 3. 领域实体不依赖GORM tag（infrastructure层的Repository负责映射）
type User struct {
	ID           uint
	Username     string
	Email        string
	Password     string // bcrypt哈希值
	Role         Role
	CreationDate time.Time
}

// NewUser 创建新用户（工厂方法）
// hashedPassword必须是bcrypt加密后的密码；角色默认为普通用户
func NewUser(username, email, hashedPassword string) *User {
	return &User{
		Username:     username,
		Email:        email,
		Password:     hashedPassword,
		Role:         RoleUser,
		CreationDate: time.Now().Truncate(time.Millisecond), // 与DATETIME(3)精度一致
	}
}
