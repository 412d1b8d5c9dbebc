package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookshop/internal/interface/http/dto"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
	"github.com/xiebiao/bookshop/pkg/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestPathID(t *testing.T) {
	cases := []struct {
		raw  string
		want uint
		ok   bool
	}{
		{"1", 1, true},
		{"42", 42, true},
		{"0", 0, false},
		{"-1", 0, false},
		{"abc", 0, false},
		{"18446744073709551616", 0, false}, // 溢出
	}

	for _, tc := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Params = gin.Params{{Key: "id", Value: tc.raw}}

		id, err := pathID(c, "id")
		if !tc.ok {
			assert.True(t, apperrors.IsKind(err, apperrors.KindValidation), tc.raw)
			continue
		}
		require.NoError(t, err, tc.raw)
		assert.Equal(t, tc.want, id)
	}
}

func TestBindJSON(t *testing.T) {
	v := validator.New()

	newContext := func(body string) *gin.Context {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		return c
	}

	t.Run("合法请求体", func(t *testing.T) {
		var req dto.LoginRequest
		require.NoError(t, bindJSON(newContext(`{"username":"alice","password":"secret123"}`), v, &req))
		assert.Equal(t, "alice", req.Username)
	})

	t.Run("空请求体", func(t *testing.T) {
		var req dto.LoginRequest
		err := bindJSON(newContext(""), v, &req)
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	})

	t.Run("请求体超过上限", func(t *testing.T) {
		var req dto.LoginRequest
		body := `{"username":"` + strings.Repeat("a", int(maxBodyBytes)) + `"}`
		err := bindJSON(newContext(body), v, &req)
		appErr := apperrors.GetAppError(err)
		require.Equal(t, apperrors.KindValidation, appErr.Kind)
		require.Len(t, appErr.Fields, 1)
		assert.Equal(t, "body", appErr.Fields[0].Field)
		assert.Contains(t, appErr.Fields[0].Reason, "不能超过")
	})

	t.Run("缺少字段", func(t *testing.T) {
		var req dto.LoginRequest
		err := bindJSON(newContext(`{}`), v, &req)
		appErr := apperrors.GetAppError(err)
		require.Equal(t, apperrors.KindValidation, appErr.Kind)
		assert.Len(t, appErr.Fields, 2)
	})
}
