//go:build integration

// Package integration 针对运行中服务的黑盒测试
//
// 运行方式（需要先启动MySQL、Redis与API服务）：
//
//	BOOKSTORE_BASE_URL=http://localhost:8080 go test -tags integration ./test/integration/...
//
// 管理员账号与config.yaml中admin一致，可通过BOOKSTORE_ADMIN_USERNAME/BOOKSTORE_ADMIN_PASSWORD覆盖
package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const timeout = 10 * time.Second

var client = &http.Client{Timeout: timeout}

// Response 统一响应结构
type Response struct {
	Status  int             `json:"-"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  []struct {
		Field  string `json:"field"`
		Reason string `json:"reason"`
	} `json:"errors"`
}

// Decode 解析data字段
func (r *Response) Decode(t *testing.T, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Data, dst), "解析data失败: %s", string(r.Data))
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func baseURL() string {
	return env("BOOKSTORE_BASE_URL", "http://localhost:8080") + "/api/v1"
}

// Do 发送请求并解析统一响应
func Do(t *testing.T, method, path string, body interface{}, token string) *Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err, "JSON序列化失败")
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, baseURL()+path, reader)
	require.NoError(t, err, "创建HTTP请求失败")
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	require.NoError(t, err, "发送HTTP请求失败（服务是否已启动？）")
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "读取响应体失败")

	result := &Response{Status: resp.StatusCode}
	require.NoError(t, json.Unmarshal(raw, result), "解析JSON响应失败: %s", string(raw))
	return result
}

// unique 生成不会与上次运行冲突的名称
func unique(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}

// Login 登录并返回Access Token
func Login(t *testing.T, username, password string) string {
	t.Helper()
	resp := Do(t, http.MethodPost, "/users/login", map[string]string{
		"username": username,
		"password": password,
	}, "")
	require.Equal(t, http.StatusOK, resp.Status, "登录失败: %s", resp.Message)

	var tk struct {
		AccessToken string `json:"access_token"`
	}
	resp.Decode(t, &tk)
	return tk.AccessToken
}

// AdminToken 使用配置中的管理员账号登录
func AdminToken(t *testing.T) string {
	return Login(t,
		env("BOOKSTORE_ADMIN_USERNAME", "admin"),
		env("BOOKSTORE_ADMIN_PASSWORD", "admin123456"),
	)
}

// RegisterUser 注册普通用户并登录
func RegisterUser(t *testing.T, prefix string) (userID uint, token string) {
	t.Helper()
	username := unique(prefix)
	resp := Do(t, http.MethodPost, "/users/register", map[string]string{
		"username": username,
		"email":    username + "@test.com",
		"password": "Test1234",
	}, "")
	require.Equal(t, http.StatusCreated, resp.Status, "注册失败: %s", resp.Message)

	var u struct {
		ID uint `json:"id"`
	}
	resp.Decode(t, &u)
	return u.ID, Login(t, username, "Test1234")
}

// CreateBook 创建作者与图书，返回图书ID
func CreateBook(t *testing.T, adminToken string, price int64, stock int) uint {
	t.Helper()
	resp := Do(t, http.MethodPost, "/authors", map[string]string{
		"name":       unique("作者"),
		"birth_date": "1900-01-01",
	}, adminToken)
	require.Equal(t, http.StatusCreated, resp.Status, "创建作者失败: %s", resp.Message)
	var a struct {
		ID uint `json:"id"`
	}
	resp.Decode(t, &a)

	resp = Do(t, http.MethodPost, "/books", map[string]interface{}{
		"title":          unique("图书"),
		"price":          price,
		"stock_quantity": stock,
		"pages":          100,
		"genre":          "测试",
		"author_id":      a.ID,
	}, adminToken)
	require.Equal(t, http.StatusCreated, resp.Status, "创建图书失败: %s", resp.Message)
	var b struct {
		ID uint `json:"id"`
	}
	resp.Decode(t, &b)
	return b.ID
}
