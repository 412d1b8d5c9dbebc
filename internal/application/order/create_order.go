package order

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	appbook "github.com/xiebiao/bookshop/internal/application/book"
	"github.com/xiebiao/bookshop/internal/application/dto"
	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/order"
	"github.com/xiebiao/bookshop/internal/domain/user"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/mysql"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
	"github.com/xiebiao/bookshop/pkg/logger"
	"github.com/xiebiao/bookshop/pkg/metrics"
	"github.com/xiebiao/bookshop/pkg/mq"
	"github.com/xiebiao/bookshop/pkg/tracing"
)

const tracerName = "bookstore/application/order"

// CreateOrderUseCase 创建订单用例
// 教学要点:这是整个项目最核心的用例
// 涉及:事务处理、并发控制、跨聚合读取(图书价格)
type CreateOrderUseCase struct {
	orderRepo order.Repository
	bookRepo  book.Repository
	userRepo  user.Repository
	txManager *mysql.TxManager
	publisher mq.Publisher
	cache     appbook.DetailCache // 可为nil,库存变化后删除图书详情缓存
}

// NewCreateOrderUseCase 创建下单用例
func NewCreateOrderUseCase(
	orderRepo order.Repository,
	bookRepo book.Repository,
	userRepo user.Repository,
	txManager *mysql.TxManager,
	publisher mq.Publisher,
	cache appbook.DetailCache,
) *CreateOrderUseCase {
	return &CreateOrderUseCase{
		orderRepo: orderRepo,
		bookRepo:  bookRepo,
		userRepo:  userRepo,
		txManager: txManager,
		publisher: publisher,
		cache:     cache,
	}
}

// CreateOrderRequest 下单请求
type CreateOrderRequest struct {
	UserID   uint // 买家用户ID(从JWT中提取,不接受客户端传入)
	BookID   uint
	Quantity int
}

// Execute 执行下单用例
// 教学重点:价格一致性与防止超卖
//
// 错误实现:
//  1. 查询图书 → 价格1500,库存10
//  2. (此时另一请求把价格改为2000)
//  3. 按1500计算总价并扣减库存
//     结果:订单总价对应的价格与扣库存时的图书状态不一致
//
// 正确实现:悲观锁
//  1. SELECT FOR UPDATE 锁定图书行
//  2. 判断库存是否充足
//  3. 按锁定行的价格计算总价
//  4. 创建订单并原子扣减库存
//  5. COMMIT释放锁
func (uc *CreateOrderUseCase) Execute(ctx context.Context, req CreateOrderRequest) (*dto.OrderResponse, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "CreateOrder")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("book.id", int64(req.BookID)),
		attribute.Int("order.quantity", req.Quantity),
	)

	metrics.IncGauge(metrics.OrdersInProgress)
	defer metrics.DecGauge(metrics.OrdersInProgress)
	start := time.Now()

	if req.Quantity <= 0 {
		return nil, uc.fail(span, order.ErrInvalidQuantity)
	}

	var created *order.Order
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// 步骤1:确认买家存在
		if _, err := uc.userRepo.FindByID(txCtx, req.UserID); err != nil {
			return err
		}

		// 步骤2:锁定图书(SELECT ... FOR UPDATE)
		// 其他事务必须等待当前事务结束才能修改该行的价格与库存
		b, err := uc.bookRepo.LockByID(txCtx, req.BookID)
		if err != nil {
			return err
		}

		// 步骤3:检查库存,必须在锁定后进行
		if b.StockQuantity < req.Quantity {
			return book.ErrInsufficientStock
		}

		// 步骤4:按锁定时的价格计算总价(不接受客户端传入)
		o, err := order.NewOrder(req.UserID, b.ID, req.Quantity, b.Price)
		if err != nil {
			return err
		}
		if err := uc.orderRepo.Create(txCtx, o); err != nil {
			return err
		}

		// 步骤5:原子扣减库存,失败时整个事务回滚,订单不会创建
		if err := uc.bookRepo.UpdateStock(txCtx, b.ID, -req.Quantity); err != nil {
			return err
		}

		created = o
		return nil
	})
	if err != nil {
		return nil, uc.fail(span, err)
	}

	metrics.IncCounter(metrics.OrdersCreatedTotal)
	metrics.ObserveHistogram(metrics.OrderCreationDuration, time.Since(start).Seconds())
	span.SetAttributes(attribute.Int64("order.id", int64(created.ID)))

	// 事务提交后的操作失败只记录日志,订单已经生效
	uc.evictBook(ctx, created.BookID)
	uc.publishCreated(ctx, created)

	resp := dto.FromOrder(created)
	return &resp, nil
}

// fail 按错误类别记录失败原因
func (uc *CreateOrderUseCase) fail(span trace.Span, err error) error {
	tracing.RecordError(span, err)
	kind := apperrors.GetAppError(err).Kind
	metrics.IncCounterVec(metrics.OrdersFailedTotal, map[string]string{"reason": kind.String()})
	return err
}

// evictBook 库存已变化,删除图书详情缓存
func (uc *CreateOrderUseCase) evictBook(ctx context.Context, bookID uint) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Delete(ctx, bookID); err != nil {
		logger.Get(ctx).Warn("删除图书缓存失败", zap.Uint("book_id", bookID), zap.Error(err))
	}
}

func (uc *CreateOrderUseCase) publishCreated(ctx context.Context, o *order.Order) {
	event := mq.OrderCreatedEvent{
		OrderID:    o.ID,
		UserID:     o.UserID,
		BookID:     o.BookID,
		Quantity:   o.Quantity,
		TotalPrice: o.TotalPrice,
		CreatedAt:  o.CreationDate,
	}

	result := "success"
	if err := uc.publisher.Publish(ctx, mq.RoutingKeyOrderCreated, event); err != nil {
		result = "failure"
		logger.Get(ctx).Error("发布订单创建事件失败",
			zap.Uint("order_id", o.ID),
			zap.String("routing_key", mq.RoutingKeyOrderCreated),
			zap.Error(err),
		)
	}
	metrics.IncCounterVec(metrics.MessagesPublishedTotal, map[string]string{
		"routing_key": mq.RoutingKeyOrderCreated,
		"result":      result,
	})
}
