package order

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookshop/internal/domain/author"
	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/order"
	"github.com/xiebiao/bookshop/internal/domain/user"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/mysql/mysqltest"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
	"github.com/xiebiao/bookshop/pkg/metrics"
	"github.com/xiebiao/bookshop/pkg/mq"
)

// fakePublisher 记录发布的事件
type fakePublisher struct {
	mu     sync.Mutex
	err    error
	events []mq.OrderCreatedEvent
}

func (p *fakePublisher) Publish(_ context.Context, routingKey string, event interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	if routingKey == mq.RoutingKeyOrderCreated {
		p.events = append(p.events, event.(mq.OrderCreatedEvent))
	}
	return nil
}

func (p *fakePublisher) Close() error { return nil }

// fakeCache 记录被删除的图书缓存
type fakeCache struct {
	mu      sync.Mutex
	deleted []uint
}

func (c *fakeCache) Get(context.Context, uint) (*book.Book, *author.Author, error) {
	return nil, nil, nil
}

func (c *fakeCache) Version(context.Context, uint) (int64, error) { return 0, nil }

func (c *fakeCache) Set(context.Context, *book.Book, *author.Author, int64) (bool, error) {
	return true, nil
}

func (c *fakeCache) Delete(_ context.Context, bookID uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, bookID)
	return nil
}

type fixture struct {
	books     book.Repository
	users     user.Repository
	authors   author.Repository
	publisher *fakePublisher
	cache     *fakeCache
	create    *CreateOrderUseCase
	get       *GetOrderUseCase
	list      *ListOrdersUseCase
}

func newFixture(t *testing.T) *fixture {
	metrics.InitMetrics()
	db := mysqltest.NewDB(t)

	orderRepo := mysql.NewOrderRepository(db)
	bookRepo := mysql.NewBookRepository(db)
	userRepo := mysql.NewUserRepository(db)
	publisher := &fakePublisher{}
	cache := &fakeCache{}

	return &fixture{
		books:     bookRepo,
		users:     userRepo,
		authors:   mysql.NewAuthorRepository(db),
		publisher: publisher,
		cache:     cache,
		create:    NewCreateOrderUseCase(orderRepo, bookRepo, userRepo, mysql.NewTxManager(db), publisher, cache),
		get:       NewGetOrderUseCase(orderRepo),
		list:      NewListOrdersUseCase(orderRepo),
	}
}

func (f *fixture) user(t *testing.T, username string) *user.User {
	t.Helper()
	u := user.NewUser(username, username+"@example.com", "hash")
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *fixture) book(t *testing.T, title string, price int64, stock int) *book.Book {
	t.Helper()
	ctx := context.Background()
	a, err := author.NewAuthor(title+"的作者", civil.Date{Year: 1900, Month: 1, Day: 1}, civil.Date{Year: 2024, Month: 1, Day: 1})
	require.NoError(t, err)
	require.NoError(t, f.authors.Create(ctx, a))

	b, err := book.NewBook(title, price, stock, 100, "小说", a.ID)
	require.NoError(t, err)
	require.NoError(t, f.books.Create(ctx, b))
	return b
}

func TestCreateOrderUseCase(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	buyer := f.user(t, "alice")

	t.Run("总价按锁定时的价格计算并扣减库存", func(t *testing.T) {
		b := f.book(t, "呐喊", 1500, 10)
		created := testutil.ToFloat64(metrics.OrdersCreatedTotal)

		resp, err := f.create.Execute(ctx, CreateOrderRequest{UserID: buyer.ID, BookID: b.ID, Quantity: 3})
		require.NoError(t, err)
		assert.Equal(t, int64(4500), resp.TotalPrice)
		assert.Equal(t, buyer.ID, resp.UserID)
		assert.False(t, resp.CreationDate.IsZero())

		got, err := f.books.FindByID(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, 7, got.StockQuantity)
		assert.Equal(t, created+1, testutil.ToFloat64(metrics.OrdersCreatedTotal))

		require.Len(t, f.publisher.events, 1)
		assert.Equal(t, resp.ID, f.publisher.events[0].OrderID)
		assert.Equal(t, int64(4500), f.publisher.events[0].TotalPrice)
		assert.Contains(t, f.cache.deleted, b.ID)
	})

	t.Run("库存不足", func(t *testing.T) {
		b := f.book(t, "彷徨", 1000, 2)
		failed := testutil.ToFloat64(metrics.OrdersFailedTotal.WithLabelValues("conflict"))

		_, err := f.create.Execute(ctx, CreateOrderRequest{UserID: buyer.ID, BookID: b.ID, Quantity: 3})
		assert.ErrorIs(t, err, book.ErrInsufficientStock)
		assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
		assert.Equal(t, failed+1, testutil.ToFloat64(metrics.OrdersFailedTotal.WithLabelValues("conflict")))

		got, err := f.books.FindByID(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.StockQuantity)
	})

	t.Run("数量必须大于0", func(t *testing.T) {
		b := f.book(t, "野草", 1000, 2)
		_, err := f.create.Execute(ctx, CreateOrderRequest{UserID: buyer.ID, BookID: b.ID, Quantity: 0})
		assert.ErrorIs(t, err, order.ErrInvalidQuantity)
	})

	t.Run("总价溢出", func(t *testing.T) {
		b := f.book(t, "天价书", math.MaxInt64/2+1, 5)
		_, err := f.create.Execute(ctx, CreateOrderRequest{UserID: buyer.ID, BookID: b.ID, Quantity: 2})
		assert.ErrorIs(t, err, order.ErrTotalOverflow)
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

		page, err := f.list.Execute(ctx, ListOrdersRequest{UserID: buyer.ID, Limit: 100})
		require.NoError(t, err)
		for _, o := range page.Items {
			assert.NotEqual(t, b.ID, o.BookID)
		}
	})

	t.Run("图书不存在", func(t *testing.T) {
		_, err := f.create.Execute(ctx, CreateOrderRequest{UserID: buyer.ID, BookID: 9999, Quantity: 1})
		assert.ErrorIs(t, err, book.ErrBookNotFound)
	})

	t.Run("用户不存在", func(t *testing.T) {
		b := f.book(t, "朝花夕拾", 1000, 2)
		_, err := f.create.Execute(ctx, CreateOrderRequest{UserID: 9999, BookID: b.ID, Quantity: 1})
		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})

	t.Run("事件发布失败不影响下单", func(t *testing.T) {
		b := f.book(t, "故事新编", 1000, 2)
		f.publisher.err = errors.New("broker unavailable")
		defer func() { f.publisher.err = nil }()

		failures := testutil.ToFloat64(metrics.MessagesPublishedTotal.WithLabelValues(mq.RoutingKeyOrderCreated, "failure"))
		_, err := f.create.Execute(ctx, CreateOrderRequest{UserID: buyer.ID, BookID: b.ID, Quantity: 1})
		require.NoError(t, err)
		assert.Equal(t, failures+1, testutil.ToFloat64(metrics.MessagesPublishedTotal.WithLabelValues(mq.RoutingKeyOrderCreated, "failure")))
	})
}

func TestCreateOrderUseCase_Concurrent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	buyer := f.user(t, "alice")
	b := f.book(t, "呐喊", 1500, 5)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.create.Execute(ctx, CreateOrderRequest{UserID: buyer.ID, BookID: b.ID, Quantity: 1})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, book.ErrInsufficientStock):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, succeeded)
	assert.Equal(t, 5, conflicts)

	got, err := f.books.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.StockQuantity, "不能超卖")
}

func TestGetOrderUseCase(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	b := f.book(t, "呐喊", 1500, 10)

	created, err := f.create.Execute(ctx, CreateOrderRequest{UserID: alice.ID, BookID: b.ID, Quantity: 1})
	require.NoError(t, err)

	t.Run("本人可以查看", func(t *testing.T) {
		resp, err := f.get.Execute(ctx, GetOrderRequest{OrderID: created.ID, CallerID: alice.ID, CallerRole: user.RoleUser})
		require.NoError(t, err)
		assert.Equal(t, created.ID, resp.ID)
	})

	t.Run("管理员可以查看", func(t *testing.T) {
		_, err := f.get.Execute(ctx, GetOrderRequest{OrderID: created.ID, CallerID: 9999, CallerRole: user.RoleAdmin})
		assert.NoError(t, err)
	})

	t.Run("他人不能查看", func(t *testing.T) {
		_, err := f.get.Execute(ctx, GetOrderRequest{OrderID: created.ID, CallerID: bob.ID, CallerRole: user.RoleUser})
		assert.ErrorIs(t, err, order.ErrForbidden)
		assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
	})

	t.Run("订单不存在", func(t *testing.T) {
		_, err := f.get.Execute(ctx, GetOrderRequest{OrderID: 9999, CallerID: alice.ID, CallerRole: user.RoleUser})
		assert.ErrorIs(t, err, order.ErrOrderNotFound)
	})
}

func TestListOrdersUseCase(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	b := f.book(t, "呐喊", 100, 100)

	var last uint
	for i := 0; i < 3; i++ {
		resp, err := f.create.Execute(ctx, CreateOrderRequest{UserID: alice.ID, BookID: b.ID, Quantity: 1})
		require.NoError(t, err)
		last = resp.ID
		time.Sleep(time.Millisecond)
	}
	_, err := f.create.Execute(ctx, CreateOrderRequest{UserID: bob.ID, BookID: b.ID, Quantity: 1})
	require.NoError(t, err)

	page, err := f.list.Execute(ctx, ListOrdersRequest{UserID: alice.ID, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, last, page.Items[0].ID, "最新的在前")
	for _, o := range page.Items {
		assert.Equal(t, alice.ID, o.UserID)
	}
}
