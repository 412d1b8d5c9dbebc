package user

import (
	"fmt"
)

// Role 用户角色（封闭枚举）
// 零值非法，任何角色都必须显式指定；授权逻辑可以对全部取值做穷举判断
type Role uint8

const (
	RoleUser  Role = iota + 1 // 普通用户
	RoleAdmin                 // 管理员
)

// Roles 全部合法角色
var Roles = []Role{RoleUser, RoleAdmin}

// String 实现Stringer接口（也是存储与JWT中的取值）
func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleAdmin:
		return "admin"
	default:
		return fmt.Sprintf("Role(%d)", uint8(r))
	}
}

// IsValid 是否为合法角色
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// IsAdmin 是否为管理员
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// ParseRole 解析角色字符串，未知取值返回错误
func ParseRole(s string) (Role, error) {
	switch s {
	case "user":
		return RoleUser, nil
	case "admin":
		return RoleAdmin, nil
	default:
		return 0, fmt.Errorf("unknown role %q", s)
	}
}

// MarshalText 实现encoding.TextMarshaler
func (r Role) MarshalText() ([]byte, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("invalid role %d", uint8(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText 实现encoding.TextUnmarshaler
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
