package mysql_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/xiebiao/bookshop/internal/domain/author"
	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/order"
	"github.com/xiebiao/bookshop/internal/domain/user"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/mysql/mysqltest"
)

var today = civil.Date{Year: 2024, Month: time.June, Day: 15}

type fixture struct {
	db      *gorm.DB
	authors author.Repository
	books   book.Repository
	users   user.Repository
	orders  order.Repository
	tx      *mysql.TxManager
}

func newFixture(t *testing.T) *fixture {
	db := mysqltest.NewDB(t)
	return &fixture{
		db:      db,
		authors: mysql.NewAuthorRepository(db),
		books:   mysql.NewBookRepository(db),
		users:   mysql.NewUserRepository(db),
		orders:  mysql.NewOrderRepository(db),
		tx:      mysql.NewTxManager(db),
	}
}

func (f *fixture) author(t *testing.T, name string) *author.Author {
	t.Helper()
	a, err := author.NewAuthor(name, civil.Date{Year: 1881, Month: time.September, Day: 25}, today)
	require.NoError(t, err)
	require.NoError(t, f.authors.Create(context.Background(), a))
	return a
}

func (f *fixture) book(t *testing.T, title string, authorID uint, stock int) *book.Book {
	t.Helper()
	b, err := book.NewBook(title, 3990, stock, 320, "小说", authorID)
	require.NoError(t, err)
	require.NoError(t, f.books.Create(context.Background(), b))
	return b
}

func (f *fixture) user(t *testing.T, username string) *user.User {
	t.Helper()
	u := user.NewUser(username, username+"@example.com", "hashed")
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func TestAuthorRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("创建并读取,出生日期原样保存", func(t *testing.T) {
		f := newFixture(t)
		a := f.author(t, "鲁迅")
		assert.NotZero(t, a.ID)

		got, err := f.authors.FindByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, "鲁迅", got.Name)
		assert.Equal(t, civil.Date{Year: 1881, Month: time.September, Day: 25}, got.BirthDate)
	})

	t.Run("作者名重复", func(t *testing.T) {
		f := newFixture(t)
		f.author(t, "老舍")

		dup, err := author.NewAuthor("老舍", today, today)
		require.NoError(t, err)
		err = f.authors.Create(ctx, dup)
		assert.ErrorIs(t, err, author.ErrNameDuplicate)
	})

	t.Run("不存在", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.authors.FindByID(ctx, 999)
		assert.ErrorIs(t, err, author.ErrAuthorNotFound)
	})

	t.Run("批量查询忽略不存在的ID", func(t *testing.T) {
		f := newFixture(t)
		a1 := f.author(t, "巴金")
		a2 := f.author(t, "茅盾")

		got, err := f.authors.FindByIDs(ctx, []uint{a1.ID, a2.ID, 999})
		require.NoError(t, err)
		assert.Len(t, got, 2)
		assert.Equal(t, "茅盾", got[a2.ID].Name)

		empty, err := f.authors.FindByIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("分页按ID升序", func(t *testing.T) {
		f := newFixture(t)
		for i := 0; i < 5; i++ {
			f.author(t, fmt.Sprintf("作者%d", i))
		}

		items, total, err := f.authors.List(ctx, 1, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		require.Len(t, items, 2)
		assert.Equal(t, "作者1", items[0].Name)
		assert.Equal(t, "作者2", items[1].Name)
	})
}

func TestBookRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("书名重复", func(t *testing.T) {
		f := newFixture(t)
		a := f.author(t, "金庸")
		f.book(t, "天龙八部", a.ID, 1)

		dup, err := book.NewBook("天龙八部", 100, 0, 10, "武侠", a.ID)
		require.NoError(t, err)
		assert.ErrorIs(t, f.books.Create(ctx, dup), book.ErrTitleDuplicate)
	})

	t.Run("作者不存在时外键拒绝写入", func(t *testing.T) {
		f := newFixture(t)
		b, err := book.NewBook("无主之书", 100, 0, 10, "未知", 999)
		require.NoError(t, err)
		assert.ErrorIs(t, f.books.Create(ctx, b), author.ErrAuthorNotFound)
	})

	t.Run("只更新变化的列", func(t *testing.T) {
		f := newFixture(t)
		a := f.author(t, "古龙")
		b := f.book(t, "多情剑客无情剑", a.ID, 5)

		// 另一个写入者修改了库存
		require.NoError(t, f.books.UpdateStock(ctx, b.ID, 10))

		price := int64(4990)
		changed, err := b.ApplyPatch(book.Patch{Price: &price})
		require.NoError(t, err)
		require.Equal(t, []string{"price"}, changed)
		require.NoError(t, f.books.Update(ctx, b, changed))

		got, err := f.books.FindByID(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(4990), got.Price)
		assert.Equal(t, 15, got.StockQuantity, "未提交的列不应被覆盖")
	})

	t.Run("更新为已存在的书名", func(t *testing.T) {
		f := newFixture(t)
		a := f.author(t, "梁羽生")
		f.book(t, "七剑下天山", a.ID, 1)
		b := f.book(t, "白发魔女传", a.ID, 1)

		title := "七剑下天山"
		changed, err := b.ApplyPatch(book.Patch{Title: &title})
		require.NoError(t, err)
		assert.ErrorIs(t, f.books.Update(ctx, b, changed), book.ErrTitleDuplicate)
	})

	t.Run("库存扣减不会变为负数", func(t *testing.T) {
		f := newFixture(t)
		a := f.author(t, "三毛")
		b := f.book(t, "撒哈拉的故事", a.ID, 3)

		require.NoError(t, f.books.UpdateStock(ctx, b.ID, -2))
		assert.ErrorIs(t, f.books.UpdateStock(ctx, b.ID, -2), book.ErrInsufficientStock)
		assert.ErrorIs(t, f.books.UpdateStock(ctx, 999, -1), book.ErrBookNotFound)

		got, err := f.books.FindByID(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.StockQuantity)
	})

	t.Run("按作者查询与分页", func(t *testing.T) {
		f := newFixture(t)
		a1 := f.author(t, "作者甲")
		a2 := f.author(t, "作者乙")
		f.book(t, "书1", a1.ID, 0)
		f.book(t, "书2", a2.ID, 0)
		f.book(t, "书3", a1.ID, 0)

		byAuthor, err := f.books.FindByAuthorID(ctx, a1.ID)
		require.NoError(t, err)
		require.Len(t, byAuthor, 2)
		assert.Equal(t, "书1", byAuthor[0].Title)
		assert.Equal(t, "书3", byAuthor[1].Title)

		items, total, err := f.books.List(ctx, 2, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total, "total与分页窗口无关")
		require.Len(t, items, 1)
		assert.Equal(t, "书3", items[0].Title)
	})
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("用户名与邮箱冲突分别报告", func(t *testing.T) {
		f := newFixture(t)
		f.user(t, "alice")

		err := f.users.Create(ctx, user.NewUser("alice", "other@example.com", "h"))
		assert.ErrorIs(t, err, user.ErrUsernameDuplicate)

		// 用户名里包含"email"也不影响判断
		err = f.users.Create(ctx, user.NewUser("myemail", "alice@example.com", "h"))
		assert.ErrorIs(t, err, user.ErrEmailDuplicate)
	})

	t.Run("角色以字符串存储并还原", func(t *testing.T) {
		f := newFixture(t)
		admin := user.NewUser("root", "root@example.com", "h")
		admin.Role = user.RoleAdmin
		require.NoError(t, f.users.Create(ctx, admin))

		var stored string
		require.NoError(t, f.db.Table("users").Select("role").Where("id = ?", admin.ID).Scan(&stored).Error)
		assert.Equal(t, "admin", stored)

		got, err := f.users.FindByUsername(ctx, "root")
		require.NoError(t, err)
		assert.Equal(t, user.RoleAdmin, got.Role)
	})

	t.Run("未知角色视为内部错误", func(t *testing.T) {
		f := newFixture(t)
		u := f.user(t, "bob")
		require.NoError(t, f.db.Table("users").Where("id = ?", u.ID).Update("role", "superuser").Error)

		_, err := f.users.FindByID(ctx, u.ID)
		require.Error(t, err)
		assert.NotErrorIs(t, err, user.ErrUserNotFound)
	})

	t.Run("不存在", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.users.FindByUsername(ctx, "ghost")
		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})
}

func TestOrderRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("按下单时间倒序分页", func(t *testing.T) {
		f := newFixture(t)
		u := f.user(t, "buyer")
		other := f.user(t, "other")
		a := f.author(t, "作者")
		b := f.book(t, "书", a.ID, 100)

		base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		for i := 1; i <= 3; i++ {
			o, err := order.NewOrder(u.ID, b.ID, i, b.Price)
			require.NoError(t, err)
			o.CreationDate = base.Add(time.Duration(i) * time.Hour)
			require.NoError(t, f.orders.Create(ctx, o))
		}
		o, err := order.NewOrder(other.ID, b.ID, 1, b.Price)
		require.NoError(t, err)
		require.NoError(t, f.orders.Create(ctx, o))

		items, total, err := f.orders.ListByUserID(ctx, u.ID, 0, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, items, 2)
		assert.Equal(t, 3, items[0].Quantity)
		assert.Equal(t, 2, items[1].Quantity)

		got, err := f.orders.FindByID(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, other.ID, got.UserID)
		assert.Equal(t, b.Price, got.TotalPrice)
	})

	t.Run("不存在", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.orders.FindByID(ctx, 1)
		assert.ErrorIs(t, err, order.ErrOrderNotFound)
	})
}

func TestTxManager(t *testing.T) {
	ctx := context.Background()

	t.Run("返回错误时回滚全部写入", func(t *testing.T) {
		f := newFixture(t)
		u := f.user(t, "buyer")
		a := f.author(t, "作者")
		b := f.book(t, "书", a.ID, 5)

		boom := errors.New("boom")
		err := f.tx.Transaction(ctx, func(ctx context.Context) error {
			o, err := order.NewOrder(u.ID, b.ID, 2, b.Price)
			if err != nil {
				return err
			}
			if err := f.orders.Create(ctx, o); err != nil {
				return err
			}
			if err := f.books.UpdateStock(ctx, b.ID, -2); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		_, total, err := f.orders.ListByUserID(ctx, u.ID, 0, 10)
		require.NoError(t, err)
		assert.Zero(t, total)

		got, err := f.books.FindByID(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, 5, got.StockQuantity)
	})

	t.Run("成功时提交", func(t *testing.T) {
		f := newFixture(t)
		a := f.author(t, "作者")
		b := f.book(t, "书", a.ID, 5)

		err := f.tx.Transaction(ctx, func(ctx context.Context) error {
			locked, err := f.books.LockByID(ctx, b.ID)
			if err != nil {
				return err
			}
			return f.books.UpdateStock(ctx, locked.ID, -5)
		})
		require.NoError(t, err)

		got, err := f.books.FindByID(ctx, b.ID)
		require.NoError(t, err)
		assert.Zero(t, got.StockQuantity)
	})
}
