package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xiebiao/bookshop/internal/domain/user"
	"github.com/xiebiao/bookshop/internal/infrastructure/config"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/redis"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
	"github.com/xiebiao/bookshop/pkg/jwt"
	"github.com/xiebiao/bookshop/pkg/logger"
	"github.com/xiebiao/bookshop/pkg/metrics"
	"github.com/xiebiao/bookshop/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuth(t *testing.T) (*AuthMiddleware, *jwt.Manager, *redis.SessionStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	manager := jwt.NewManager("test-secret", time.Hour, 24*time.Hour)
	store := redis.NewSessionStore(client)
	return NewAuthMiddleware(manager, store), manager, store
}

func decodeCode(t *testing.T, w *httptest.ResponseRecorder) int {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Code
}

func TestRequireAuth(t *testing.T) {
	auth, manager, store := newAuth(t)

	r := gin.New()
	r.GET("/me", auth.RequireAuth(), func(c *gin.Context) {
		response.Success(c, gin.H{
			"user_id": GetUserID(c),
			"role":    GetRole(c).String(),
			"token":   GetAccessToken(c),
		})
	})
	r.GET("/admin", auth.RequireAuth(), RequireRole(user.RoleAdmin), func(c *gin.Context) {
		response.Success(c, nil)
	})

	do := func(path, authHeader string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if authHeader != "" {
			req.Header.Set("Authorization", authHeader)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	userPair, err := manager.GenerateToken(7, "alice", "user")
	require.NoError(t, err)
	adminPair, err := manager.GenerateToken(1, "admin", "admin")
	require.NoError(t, err)

	t.Run("缺少Authorization头", func(t *testing.T) {
		w := do("/me", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, apperrors.ErrCodeUnauthorized, decodeCode(t, w))
	})

	t.Run("格式错误", func(t *testing.T) {
		w := do("/me", "Token "+userPair.AccessToken)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, apperrors.ErrCodeInvalidToken, decodeCode(t, w))
	})

	t.Run("签名错误", func(t *testing.T) {
		other := jwt.NewManager("other-secret", time.Hour, time.Hour)
		pair, err := other.GenerateToken(7, "alice", "user")
		require.NoError(t, err)

		w := do("/me", "Bearer "+pair.AccessToken)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Refresh Token不能用于访问接口", func(t *testing.T) {
		w := do("/me", "Bearer "+userPair.RefreshToken)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("未知角色视为无效Token", func(t *testing.T) {
		pair, err := manager.GenerateToken(9, "mallory", "root")
		require.NoError(t, err)

		w := do("/me", "Bearer "+pair.AccessToken)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, apperrors.ErrCodeInvalidToken, decodeCode(t, w))
	})

	t.Run("合法Token注入用户信息", func(t *testing.T) {
		w := do("/me", "bearer "+userPair.AccessToken)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data struct {
				UserID uint   `json:"user_id"`
				Role   string `json:"role"`
				Token  string `json:"token"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, uint(7), resp.Data.UserID)
		assert.Equal(t, "user", resp.Data.Role)
		assert.Equal(t, userPair.AccessToken, resp.Data.Token)
	})

	t.Run("普通用户访问管理员接口", func(t *testing.T) {
		w := do("/admin", "Bearer "+userPair.AccessToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, apperrors.ErrCodeForbidden, decodeCode(t, w))
	})

	t.Run("管理员访问管理员接口", func(t *testing.T) {
		w := do("/admin", "Bearer "+adminPair.AccessToken)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("黑名单中的Token", func(t *testing.T) {
		require.NoError(t, store.AddToBlacklist(context.Background(), adminPair.AccessToken, time.Hour))

		w := do("/admin", "Bearer "+adminPair.AccessToken)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, apperrors.ErrCodeInvalidToken, decodeCode(t, w))
	})
}

func TestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	r := gin.New()
	r.Use(Logger(zap.New(core), 0))
	r.GET("/ok", func(c *gin.Context) {
		logger.Info(c.Request.Context(), "handler内日志")
		response.Success(c, nil)
	})
	r.GET("/missing", func(c *gin.Context) {
		response.Error(c, apperrors.New(apperrors.ErrCodeBookNotFound, "图书不存在"))
	})

	t.Run("生成请求ID并传递给下游logger", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))

		requestID := w.Header().Get(HeaderRequestID)
		require.NotEmpty(t, requestID)

		entries := logs.TakeAll()
		require.Len(t, entries, 2)
		for _, e := range entries {
			assert.Equal(t, requestID, e.ContextMap()["request_id"])
		}
		assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
		assert.EqualValues(t, http.StatusOK, entries[1].ContextMap()["status"])
	})

	t.Run("复用客户端请求ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ok", nil)
		req.Header.Set(HeaderRequestID, "req-123")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, "req-123", w.Header().Get(HeaderRequestID))
		logs.TakeAll()
	})

	t.Run("4xx记为Warn", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))

		entries := logs.TakeAll()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	})
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	r := gin.New()
	r.Use(Logger(zap.New(core), 0), Recovery())
	r.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, apperrors.ErrCodeInternal, decodeCode(t, w))
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

func TestMetrics(t *testing.T) {
	metrics.InitMetrics()

	r := gin.New()
	r.Use(Metrics())
	r.GET("/books/:id", func(c *gin.Context) {
		response.Success(c, nil)
	})

	labels := map[string]string{"method": "GET", "path": "/books/:id", "status": "200"}
	before := testutil.ToFloat64(metrics.HTTPRequestsTotal.With(labels))

	for _, path := range []string{"/books/1", "/books/2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}
	assert.Equal(t, before+2, testutil.ToFloat64(metrics.HTTPRequestsTotal.With(labels)))

	unmatched := map[string]string{"method": "GET", "path": "unmatched", "status": "404"}
	before = testutil.ToFloat64(metrics.HTTPRequestsTotal.With(unmatched))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.HTTPRequestsTotal.With(unmatched)))
}

func TestCORS(t *testing.T) {
	cfg := config.CORSConfig{
		Enabled:          true,
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           time.Hour,
	}

	r := gin.New()
	r.Use(CORS(cfg))
	r.GET("/books", func(c *gin.Context) { response.Success(c, nil) })

	do := func(method, origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/books", nil)
		if origin != "" {
			req.Header.Set("Origin", origin)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	t.Run("允许的Origin", func(t *testing.T) {
		w := do(http.MethodGet, "http://localhost:3000")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		assert.Equal(t, "3600", w.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("预检请求", func(t *testing.T) {
		w := do(http.MethodOptions, "http://localhost:3000")
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "GET, POST", w.Header().Get("Access-Control-Allow-Methods"))
	})

	t.Run("不允许的Origin", func(t *testing.T) {
		w := do(http.MethodGet, "http://evil.example")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("非跨域请求不受影响", func(t *testing.T) {
		w := do(http.MethodGet, "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}
