package mysql

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/bookshop/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 设计说明：
// 1. 使用GORM v2作为ORM框架
// 2. 配置连接池参数（MaxOpenConns、MaxIdleConns、ConnMaxLifetime）
// 3. SQL日志输出到zap，开发环境Info级别，其余只记录慢查询和错误
// 4. 不开启TranslateError：唯一索引冲突需要保留原始错误信息来判断是哪一列
func NewDB(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	// 1. 连接数据库
	db, err := gorm.Open(mysql.Open(cfg.Database.DSN()), &gorm.Config{
		Logger: NewGormLogger(log, cfg.Server.Mode == "debug"),
		NowFunc: func() time.Time {
			return time.Now().Truncate(time.Millisecond) // DATETIME(3)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	// 2. 配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	// 3. 测试连接
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}
	log.Info("数据库连接成功", zap.String("host", cfg.Database.Host), zap.String("dbname", cfg.Database.DBName))

	// 4. 自动迁移表结构（开发环境）
	// 注意：生产环境应使用专门的迁移工具（如golang-migrate）
	if cfg.Database.AutoMigrate {
		if err := AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("数据库迁移失败: %w", err)
		}
	}

	return db, nil
}

// NewGormLogger GORM日志适配到zap
func NewGormLogger(log *zap.Logger, verbose bool) logger.Interface {
	level := logger.Warn
	if verbose {
		level = logger.Info
	}
	return logger.New(zap.NewStdLog(log.Named("gorm")), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})
}

// AutoMigrate 自动迁移表结构
// 顺序按外键依赖：authors → books → users → orders
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&AuthorModel{},
		&BookModel{},
		&UserModel{},
		&OrderModel{},
	)
}

// AuthorModel GORM作者模型
// 设计说明：
// 1. 这是infrastructure层的数据模型，包含GORM tag
// 2. domain/author/entity.go是领域实体，不依赖GORM
// 3. 名称唯一索引是唯一性的最终判定
type AuthorModel struct {
	ID        uint       `gorm:"primaryKey"`
	Name      string     `gorm:"uniqueIndex:uk_authors_name;size:50;not null;comment:作者名"`
	BirthDate dateColumn `gorm:"not null;comment:出生日期"`
	CreatedAt time.Time  `gorm:"comment:创建时间"`
	UpdatedAt time.Time  `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (AuthorModel) TableName() string {
	return "authors"
}

// BookModel GORM图书模型
// 设计说明:
// 1. 价格使用int64存储"分"为单位(避免浮点数精度问题)
// 2. 书名唯一索引
// 3. author_id外键指向authors,数值约束同时落在CHECK约束上
type BookModel struct {
	ID            uint        `gorm:"primaryKey"`
	Title         string      `gorm:"uniqueIndex:uk_books_title;size:255;not null;comment:书名"`
	Price         int64       `gorm:"not null;check:chk_books_price,price > 0;comment:价格(分)"`
	StockQuantity int         `gorm:"not null;default:0;check:chk_books_stock,stock_quantity >= 0;comment:库存数量"`
	Pages         int         `gorm:"not null;check:chk_books_pages,pages > 0;comment:页数"`
	Genre         string      `gorm:"size:255;not null;comment:类型"`
	AuthorID      uint        `gorm:"index;not null;comment:作者ID"`
	Author        AuthorModel `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	CreatedAt     time.Time   `gorm:"comment:创建时间"`
	UpdatedAt     time.Time   `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (BookModel) TableName() string {
	return "books"
}

// UserModel GORM用户模型
// Role以字符串存储（user | admin），读取时由user.ParseRole校验
type UserModel struct {
	ID           uint      `gorm:"primaryKey"`
	Username     string    `gorm:"uniqueIndex:uk_users_username;size:100;not null;comment:用户名"`
	Email        string    `gorm:"uniqueIndex:uk_users_email;size:255;not null;comment:邮箱"`
	Password     string    `gorm:"size:255;not null;comment:密码（bcrypt加密）"`
	Role         string    `gorm:"size:16;not null;default:user;comment:角色"`
	CreationDate time.Time `gorm:"not null;comment:注册时间"`
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}

// OrderModel GORM订单模型
// 教学要点:
// 1. 一个订单对应一本图书,user_id/book_id均有外键
// 2. TotalPrice是下单时的金额快照
type OrderModel struct {
	ID           uint      `gorm:"primaryKey"`
	UserID       uint      `gorm:"index;not null;comment:买家用户ID"`
	BookID       uint      `gorm:"index;not null;comment:图书ID"`
	Quantity     int       `gorm:"not null;check:chk_orders_quantity,quantity > 0;comment:购买数量"`
	TotalPrice   int64     `gorm:"not null;comment:订单总金额(分)"`
	CreationDate time.Time `gorm:"index;not null;comment:下单时间"`

	User UserModel `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Book BookModel `gorm:"foreignKey:BookID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

// TableName 指定表名
func (OrderModel) TableName() string {
	return "orders"
}
