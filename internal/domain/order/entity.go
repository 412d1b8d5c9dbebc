package order

import (
	"math"
	"time"
)

// Order 订单实体(聚合根)
// 教学要点:
// 1. 一个订单对应一本图书,只保存UserID、BookID(不跨聚合引用对象)
// 2. TotalPrice是下单时按锁定价格计算的快照,之后图书改价也不重算
// 3. 订单创建后不再修改,CreationDate只写一次
type Order struct {
	ID           uint
	UserID       uint  // 买家用户ID
	BookID       uint  // 图书ID
	Quantity     int   // 购买数量
	TotalPrice   int64 // 订单总金额(分)
	CreationDate time.Time
}

// NewOrder 创建新订单(工厂方法)
// unitPrice必须来自事务内锁定的图书行;总价由此计算,不接受外部传入
func NewOrder(userID, bookID uint, quantity int, unitPrice int64) (*Order, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	total, err := TotalPrice(unitPrice, quantity)
	if err != nil {
		return nil, err
	}

	return &Order{
		UserID:       userID,
		BookID:       bookID,
		Quantity:     quantity,
		TotalPrice:   total,
		CreationDate: time.Now().Truncate(time.Millisecond), // 与DATETIME(3)精度一致
	}, nil
}

// TotalPrice 计算 quantity × unitPrice,溢出int64时返回ErrTotalOverflow
func TotalPrice(unitPrice int64, quantity int) (int64, error) {
	if unitPrice <= 0 || quantity <= 0 {
		return 0, ErrInvalidQuantity
	}
	q := int64(quantity)
	if unitPrice > math.MaxInt64/q {
		return 0, ErrTotalOverflow
	}
	return unitPrice * q, nil
}

// IsOwnedBy 订单是否属于指定用户
func (o *Order) IsOwnedBy(userID uint) bool {
	return o.UserID == userID
}
