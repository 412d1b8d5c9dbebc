package book

import (
	"context"

	"github.com/xiebiao/bookshop/internal/domain/author"
	"github.com/xiebiao/bookshop/internal/domain/book"
)

const tracerName = "bookstore/application/book"

// DetailCache 图书详情缓存（Cache-Aside）
// 未命中返回(nil, nil, nil)；实现见persistence/redis.BookCache
//
// 回填前先取版本号，Set只在版本未变时写入：
// 读库与回填之间有更新或下单提交（Delete递增版本）时放弃回填，避免把旧数据写回缓存
type DetailCache interface {
	Get(ctx context.Context, bookID uint) (*book.Book, *author.Author, error)
	Version(ctx context.Context, bookID uint) (int64, error)
	Set(ctx context.Context, b *book.Book, a *author.Author, version int64) (bool, error)
	Delete(ctx context.Context, bookID uint) error
}
