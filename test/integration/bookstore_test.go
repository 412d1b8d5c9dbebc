//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserFlow(t *testing.T) {
	_, token := RegisterUser(t, "flow")

	resp := Do(t, http.MethodGet, "/users/me", nil, token)
	require.Equal(t, http.StatusOK, resp.Status)

	resp = Do(t, http.MethodPost, "/users/logout", nil, token)
	require.Equal(t, http.StatusOK, resp.Status)

	resp = Do(t, http.MethodGet, "/users/me", nil, token)
	assert.Equal(t, http.StatusUnauthorized, resp.Status)
}

func TestCatalogPermissions(t *testing.T) {
	_, token := RegisterUser(t, "reader")

	resp := Do(t, http.MethodPost, "/authors", map[string]string{
		"name":       "无权限",
		"birth_date": "1900-01-01",
	}, token)
	assert.Equal(t, http.StatusForbidden, resp.Status)

	resp = Do(t, http.MethodGet, "/books?limit=5", nil, "")
	assert.Equal(t, http.StatusOK, resp.Status)
}

func TestOrderFlow(t *testing.T) {
	admin := AdminToken(t)
	bookID := CreateBook(t, admin, 2990, 10)
	_, token := RegisterUser(t, "buyer")

	t.Run("总价按图书价格计算", func(t *testing.T) {
		resp := Do(t, http.MethodPost, "/orders", map[string]interface{}{
			"book_id":  bookID,
			"quantity": 2,
		}, token)
		require.Equal(t, http.StatusCreated, resp.Status, resp.Message)

		var o struct {
			ID         uint  `json:"id"`
			TotalPrice int64 `json:"total_price"`
		}
		resp.Decode(t, &o)
		assert.EqualValues(t, 5980, o.TotalPrice)

		resp = Do(t, http.MethodGet, fmt.Sprintf("/orders/%d", o.ID), nil, token)
		assert.Equal(t, http.StatusOK, resp.Status)
	})

	t.Run("并发下单不超卖", func(t *testing.T) {
		// 剩余库存8，20个并发请求各买1本
		var (
			wg      sync.WaitGroup
			success atomic.Int32
		)
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				resp := Do(t, http.MethodPost, "/orders", map[string]interface{}{
					"book_id":  bookID,
					"quantity": 1,
				}, token)
				if resp.Status == http.StatusCreated {
					success.Add(1)
				}
			}()
		}
		wg.Wait()
		assert.EqualValues(t, 8, success.Load())

		resp := Do(t, http.MethodGet, fmt.Sprintf("/books/%d", bookID), nil, "")
		var b struct {
			StockQuantity int `json:"stock_quantity"`
		}
		resp.Decode(t, &b)
		assert.Zero(t, b.StockQuantity)
	})
}
