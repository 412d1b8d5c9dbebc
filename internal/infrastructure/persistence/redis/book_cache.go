package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/bookshop/internal/domain/author"
	"github.com/xiebiao/bookshop/internal/domain/book"
)

// BookCache 图书详情缓存（Cache-Aside）
//
// 教学要点：
// 1. 先查缓存，未命中再查数据库并回填
// 2. 更新数据库后删除缓存（而不是更新缓存），下次读取时重新加载
// 3. 回填带版本号，删除时版本递增，并发的旧回填不会覆盖
// 4. 缓存只是加速手段，调用方应把缓存错误当作未命中处理
type BookCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewBookCache 创建图书详情缓存
func NewBookCache(client *redis.Client, ttl time.Duration) *BookCache {
	return &BookCache{client: client, ttl: ttl}
}

// bookDetail 缓存中的图书详情（图书+作者）
type bookDetail struct {
	Book   *book.Book     `json:"book"`
	Author *author.Author `json:"author"`
}

// Get 获取图书详情缓存
// 未命中时返回(nil, nil, nil)
func (c *BookCache) Get(ctx context.Context, bookID uint) (*book.Book, *author.Author, error) {
	val, err := c.client.Get(ctx, bookDetailKey(bookID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("获取缓存失败: %w", err)
	}

	var d bookDetail
	if err := json.Unmarshal(val, &d); err != nil {
		return nil, nil, fmt.Errorf("反序列化失败: %w", err)
	}
	if d.Book == nil || d.Author == nil {
		return nil, nil, nil
	}
	return d.Book, d.Author, nil
}

// setIfVersionScript 版本号未变化时才写入详情
// KEYS[1]=详情key KEYS[2]=版本key ARGV=版本号,值,TTL(毫秒)
var setIfVersionScript = redis.NewScript(`
local current = redis.call('GET', KEYS[2]) or '0'
if current ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

// Version 图书的缓存版本号，从未失效过为0
func (c *BookCache) Version(ctx context.Context, bookID uint) (int64, error) {
	v, err := c.client.Get(ctx, bookVersionKey(bookID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("获取缓存版本失败: %w", err)
	}
	return v, nil
}

// Set 写入图书详情缓存
// version与当前版本不一致时不写入，返回false
func (c *BookCache) Set(ctx context.Context, b *book.Book, a *author.Author, version int64) (bool, error) {
	val, err := json.Marshal(bookDetail{Book: b, Author: a})
	if err != nil {
		return false, fmt.Errorf("序列化失败: %w", err)
	}
	keys := []string{bookDetailKey(b.ID), bookVersionKey(b.ID)}
	n, err := setIfVersionScript.Run(ctx, c.client, keys, version, val, c.ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("设置缓存失败: %w", err)
	}
	return n == 1, nil
}

// Delete 删除图书详情缓存（图书更新、下单后调用）
// 先递增版本号，使正在回填的旧数据作废
func (c *BookCache) Delete(ctx context.Context, bookID uint) error {
	_, err := c.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, bookVersionKey(bookID))
		pipe.Del(ctx, bookDetailKey(bookID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("删除缓存失败: %w", err)
	}
	return nil
}

func bookDetailKey(bookID uint) string {
	return fmt.Sprintf("book:detail:%d", bookID)
}

func bookVersionKey(bookID uint) string {
	return fmt.Sprintf("book:version:%d", bookID)
}
