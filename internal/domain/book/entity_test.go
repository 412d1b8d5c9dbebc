package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

func ptr[T any](v T) *T { return &v }

func TestNewBook(t *testing.T) {
	t.Run("合法图书", func(t *testing.T) {
		b, err := NewBook("Go语言实战", 5900, 0, 300, "编程", 1)
		require.NoError(t, err)
		assert.Equal(t, 0, b.StockQuantity)
	})

	t.Run("数值越界全部报告", func(t *testing.T) {
		_, err := NewBook("", 0, -1, 0, "", 0)
		require.Error(t, err)
		appErr := apperrors.GetAppError(err)
		assert.Equal(t, apperrors.KindValidation, appErr.Kind)

		var names []string
		for _, f := range appErr.Fields {
			names = append(names, f.Field)
		}
		assert.ElementsMatch(t, []string{"title", "price", "stock_quantity", "pages", "genre", "author_id"}, names)
	})
}

func TestBook_ApplyPatch(t *testing.T) {
	newBook := func() *Book {
		return &Book{ID: 1, Title: "原书名", Price: 1000, StockQuantity: 10, Pages: 200, Genre: "小说", AuthorID: 3}
	}

	t.Run("只修改提供的字段", func(t *testing.T) {
		b := newBook()
		changed, err := b.ApplyPatch(Patch{StockQuantity: ptr(5)})
		require.NoError(t, err)
		assert.Equal(t, []string{"stock_quantity"}, changed)

		want := newBook()
		want.StockQuantity = 5
		want.UpdatedAt = b.UpdatedAt
		assert.Equal(t, want, b)
	})

	t.Run("值未变化时不产生变更列", func(t *testing.T) {
		b := newBook()
		changed, err := b.ApplyPatch(Patch{Title: ptr("原书名")})
		require.NoError(t, err)
		assert.Empty(t, changed)
	})

	t.Run("非法字段不修改实体", func(t *testing.T) {
		b := newBook()
		_, err := b.ApplyPatch(Patch{Title: ptr("新书名"), Price: ptr(int64(0))})
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
		assert.Equal(t, newBook(), b)
	})

	t.Run("空补丁", func(t *testing.T) {
		assert.True(t, Patch{}.IsEmpty())
		assert.False(t, Patch{Genre: ptr("历史")}.IsEmpty())
	})
}

func TestBook_DecrStock(t *testing.T) {
	b := &Book{StockQuantity: 3}
	assert.ErrorIs(t, b.DecrStock(0), ErrInvalidQuantity)
	assert.ErrorIs(t, b.DecrStock(4), ErrInsufficientStock)
	require.NoError(t, b.DecrStock(3))
	assert.Equal(t, 0, b.StockQuantity)
}
