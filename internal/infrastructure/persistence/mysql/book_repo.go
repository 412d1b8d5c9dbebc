package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookshop/internal/domain/author"
	"github.com/xiebiao/bookshop/internal/domain/book"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// bookRepository 图书仓储实现(MySQL)
// 设计说明:
// 1. 实现domain/book/repository.go定义的接口
// 2. 负责domain实体与GORM模型之间的转换
// 3. 处理数据库特定的错误(书名重复、作者外键),转换为业务错误
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db}
}

// Create 创建图书
func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	// 1. 领域实体 → GORM模型
	model := &BookModel{
		Title:         b.Title,
		Price:         b.Price,
		StockQuantity: b.StockQuantity,
		Pages:         b.Pages,
		Genre:         b.Genre,
		AuthorID:      b.AuthorID,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}

	// 2. 插入数据库(不级联写作者)
	if err := getDB(ctx, r.db).Omit(clause.Associations).Create(model).Error; err != nil {
		switch {
		case isDuplicateError(err):
			return book.ErrTitleDuplicate
		case isForeignKeyError(err):
			return author.ErrAuthorNotFound
		}
		return apperrors.Wrap(err, "创建图书失败")
	}

	// 3. 回填自增ID
	b.ID = model.ID
	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID 根据ID查找图书
func (r *bookRepository) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	if err := getDB(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "查询图书失败")
	}
	return toBookEntity(&model), nil
}

// FindByAuthorID 查询作者的全部图书
func (r *bookRepository) FindByAuthorID(ctx context.Context, authorID uint) ([]*book.Book, error) {
	var models []BookModel
	err := getDB(ctx, r.db).
		Where("author_id = ?", authorID).
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询作者图书失败")
	}
	return toBookEntities(models), nil
}

// Update 只更新指定的列
// 教学要点:用map更新而不是Save,避免覆盖并发事务修改过的其他列
func (r *bookRepository) Update(ctx context.Context, b *book.Book, columns []string) error {
	if len(columns) == 0 {
		return nil
	}

	values := make(map[string]interface{}, len(columns)+1)
	for _, col := range columns {
		switch col {
		case "title":
			values[col] = b.Title
		case "price":
			values[col] = b.Price
		case "stock_quantity":
			values[col] = b.StockQuantity
		case "pages":
			values[col] = b.Pages
		case "genre":
			values[col] = b.Genre
		}
	}
	values["updated_at"] = b.UpdatedAt

	// 调用方已通过LockByID确认行存在,这里不依赖RowsAffected(MySQL只统计实际变化的行)
	err := getDB(ctx, r.db).Model(&BookModel{}).Where("id = ?", b.ID).Updates(values).Error
	if err != nil {
		if isDuplicateError(err) {
			return book.ErrTitleDuplicate
		}
		return apperrors.Wrap(err, "更新图书失败")
	}
	return nil
}

// List 分页查询图书列表,按ID升序
// total统计全部图书,与分页窗口无关
func (r *bookRepository) List(ctx context.Context, offset, limit int) ([]*book.Book, int64, error) {
	var total int64
	if err := getDB(ctx, r.db).Model(&BookModel{}).Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询图书总数失败")
	}

	var models []BookModel
	err := getDB(ctx, r.db).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询图书列表失败")
	}

	return toBookEntities(models), total, nil
}

// LockByID 悲观锁查询图书
// SELECT ... FOR UPDATE,必须在TxManager.Transaction内调用才有意义
func (r *bookRepository) LockByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	err := getDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "锁定图书失败")
	}
	return toBookEntity(&model), nil
}

// UpdateStock 更新库存(原子操作)
// UPDATE books SET stock_quantity = stock_quantity + ? WHERE id = ? AND stock_quantity + ? >= 0
func (r *bookRepository) UpdateStock(ctx context.Context, id uint, delta int) error {
	db := getDB(ctx, r.db)
	result := db.Model(&BookModel{}).
		Where("id = ?", id).
		Where("stock_quantity + ? >= 0", delta). // 防止库存为负
		Update("stock_quantity", gorm.Expr("stock_quantity + ?", delta))
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新库存失败")
	}

	if result.RowsAffected == 0 {
		// 图书不存在或库存不足,再查一次确定原因
		var count int64
		if err := db.Model(&BookModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return apperrors.Wrap(err, "查询图书失败")
		}
		if count == 0 {
			return book.ErrBookNotFound
		}
		return book.ErrInsufficientStock
	}
	return nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

// toBookEntity GORM模型 → 领域实体
func toBookEntity(model *BookModel) *book.Book {
	return &book.Book{
		ID:            model.ID,
		Title:         model.Title,
		Price:         model.Price,
		StockQuantity: model.StockQuantity,
		Pages:         model.Pages,
		Genre:         model.Genre,
		AuthorID:      model.AuthorID,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}

func toBookEntities(models []BookModel) []*book.Book {
	books := make([]*book.Book, len(models))
	for i := range models {
		books[i] = toBookEntity(&models[i])
	}
	return books
}
