package dto

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/bookshop/pkg/errors"
	"github.com/xiebiao/bookshop/pkg/validator"
)

func newValidator() *validator.Validator {
	return validator.New(validator.WithClock(func() time.Time {
		return time.Date(2024, 6, 15, 10, 0, 0, 0, time.Local)
	}))
}

func fieldNames(t *testing.T, err error) []string {
	t.Helper()
	appErr := apperrors.GetAppError(err)
	require.Equal(t, apperrors.KindValidation, appErr.Kind)
	names := make([]string, 0, len(appErr.Fields))
	for _, f := range appErr.Fields {
		names = append(names, f.Field)
	}
	return names
}

func TestAuthorCreate(t *testing.T) {
	v := newValidator()

	t.Run("合法输入", func(t *testing.T) {
		var in AuthorCreate
		require.NoError(t, v.Bind([]byte(`{"name":"鲁迅","birth_date":"1881-09-25"}`), &in))
		assert.Equal(t, "1881-09-25", in.ToRequest().BirthDate.String())
	})

	t.Run("缺少字段与未来日期", func(t *testing.T) {
		var in AuthorCreate
		err := v.Bind([]byte(`{"birth_date":"2030-01-01"}`), &in)
		assert.ElementsMatch(t, []string{"name", "birth_date"}, fieldNames(t, err))
	})

	t.Run("名称超过50个字符", func(t *testing.T) {
		var in AuthorCreate
		body := `{"name":"` + strings.Repeat("名", 51) + `","birth_date":"1900-01-01"}`
		err := v.Bind([]byte(body), &in)
		assert.Equal(t, []string{"name"}, fieldNames(t, err))
	})
}

func TestBookCreate(t *testing.T) {
	v := newValidator()

	t.Run("库存默认为0", func(t *testing.T) {
		var in BookCreate
		require.NoError(t, v.Bind([]byte(`{"title":"呐喊","price":1500,"pages":200,"genre":"小说","author_id":1}`), &in))
		req := in.ToRequest()
		assert.Equal(t, 0, req.StockQuantity)
		assert.Equal(t, int64(1500), req.Price)
	})

	t.Run("数值越界全部报告", func(t *testing.T) {
		var in BookCreate
		err := v.Bind([]byte(`{"title":"呐喊","price":0,"stock_quantity":-1,"pages":0,"genre":"小说","author_id":1}`), &in)
		assert.ElementsMatch(t, []string{"price", "stock_quantity", "pages"}, fieldNames(t, err))
	})

	t.Run("缺少必填字段", func(t *testing.T) {
		var in BookCreate
		err := v.Bind([]byte(`{}`), &in)
		assert.ElementsMatch(t, []string{"title", "price", "pages", "genre", "author_id"}, fieldNames(t, err))
	})

	t.Run("类型错误", func(t *testing.T) {
		var in BookCreate
		err := v.Bind([]byte(`{"title":"呐喊","price":"贵","pages":200,"genre":"小说","author_id":1}`), &in)
		assert.Equal(t, []string{"price"}, fieldNames(t, err))
	})
}

func TestBookUpdate(t *testing.T) {
	v := newValidator()

	t.Run("只转换提供的字段", func(t *testing.T) {
		var in BookUpdate
		require.NoError(t, v.Bind([]byte(`{"stock_quantity":5}`), &in))
		patch := in.ToPatch()
		require.NotNil(t, patch.StockQuantity)
		assert.Equal(t, 5, *patch.StockQuantity)
		assert.Nil(t, patch.Title)
		assert.Nil(t, patch.Price)
		assert.Nil(t, patch.Pages)
		assert.Nil(t, patch.Genre)
	})

	t.Run("显式设置为0与未提供不同", func(t *testing.T) {
		var in BookUpdate
		require.NoError(t, v.Bind([]byte(`{"stock_quantity":0}`), &in))
		require.NotNil(t, in.ToPatch().StockQuantity)
		assert.Equal(t, 0, *in.ToPatch().StockQuantity)
	})

	t.Run("提供的字段按规则校验", func(t *testing.T) {
		var in BookUpdate
		err := v.Bind([]byte(`{"title":"","pages":0,"price":-5}`), &in)
		assert.ElementsMatch(t, []string{"title", "pages", "price"}, fieldNames(t, err))
	})

	t.Run("显式null等同于未提供", func(t *testing.T) {
		var in BookUpdate
		require.NoError(t, v.Bind([]byte(`{"price":null,"genre":null,"stock_quantity":5}`), &in))
		patch := in.ToPatch()
		assert.Nil(t, patch.Price)
		assert.Nil(t, patch.Genre)
		require.NotNil(t, patch.StockQuantity)
		assert.Equal(t, 5, *patch.StockQuantity)
	})

	t.Run("不可修改的字段被忽略", func(t *testing.T) {
		var in BookUpdate
		require.NoError(t, v.Bind([]byte(`{"author_id":2,"id":9}`), &in))
		assert.True(t, in.ToPatch().IsEmpty())
	})
}

func TestUserCreate(t *testing.T) {
	v := newValidator()

	var in UserCreate
	err := v.Bind([]byte(`{"username":"ab","email":"not-an-email","password":"123"}`), &in)
	assert.ElementsMatch(t, []string{"username", "email", "password"}, fieldNames(t, err))

	in = UserCreate{}
	require.NoError(t, v.Bind([]byte(`{"username":"alice","email":"alice@example.com","password":"secret123"}`), &in))
	assert.Equal(t, "alice", in.ToRequest().Username)
}

func TestOrderCreate(t *testing.T) {
	v := newValidator()

	var in OrderCreate
	err := v.Bind([]byte(`{"book_id":1,"quantity":0}`), &in)
	assert.Equal(t, []string{"quantity"}, fieldNames(t, err))

	in = OrderCreate{}
	require.NoError(t, v.Bind([]byte(`{"book_id":1,"quantity":3,"user_id":99}`), &in))
	req := in.ToRequest(7)
	assert.Equal(t, uint(7), req.UserID, "user_id只来自会话")
	assert.Equal(t, 3, req.Quantity)
}

func TestBindPage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	v := newValidator()

	bind := func(query string) (PageQuery, error) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/books?"+query, nil)
		return BindPage(c, v)
	}

	t.Run("默认值", func(t *testing.T) {
		q, err := bind("")
		require.NoError(t, err)
		assert.Equal(t, PageQuery{Limit: 10, Offset: 0}, q)
	})

	t.Run("合法参数", func(t *testing.T) {
		q, err := bind("limit=20&offset=40")
		require.NoError(t, err)
		assert.Equal(t, PageQuery{Limit: 20, Offset: 40}, q)
	})

	t.Run("越界", func(t *testing.T) {
		_, err := bind("limit=101&offset=-1")
		assert.ElementsMatch(t, []string{"limit", "offset"}, fieldNames(t, err))
	})

	t.Run("非整数", func(t *testing.T) {
		_, err := bind("limit=abc")
		assert.Equal(t, []string{"limit"}, fieldNames(t, err))
	})
}
