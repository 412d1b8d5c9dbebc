// Package mq 基于RabbitMQ的领域事件发布
//
// 事件在业务事务提交之后发布，发布失败不回滚业务（best-effort），
// 由调用方记录日志。未启用消息队列时使用NopPublisher。
package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/pkg/circuitbreaker"
)

// 路由键
const (
	RoutingKeyOrderCreated = "order.created"
)

// Publisher 事件发布接口
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event interface{}) error
	Close() error
}

// channel amqp.Channel中用到的方法（测试时替换）
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitPublisher RabbitMQ发布者
// amqp.Channel不能被多个goroutine同时使用，发布时加锁
type RabbitPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       channel
	exchange string
	log      *zap.Logger
}

// NewRabbitPublisher 连接RabbitMQ并声明topic类型的持久化Exchange
func NewRabbitPublisher(url, exchange string, log *zap.Logger) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("连接RabbitMQ失败: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("创建Channel失败: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange,
		amqp.ExchangeTopic,
		true,  // Durable
		false, // AutoDelete
		false, // Internal
		false, // NoWait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("声明Exchange失败: %w", err)
	}

	log.Info("消息发布者已创建", zap.String("exchange", exchange))
	return &RabbitPublisher{conn: conn, ch: ch, exchange: exchange, log: log}, nil
}

// Exchange 交换机名称
func (p *RabbitPublisher) Exchange() string {
	return p.exchange
}

// Publish 发布JSON事件（持久化消息）
func (p *RabbitPublisher) Publish(ctx context.Context, routingKey string, event interface{}) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("消息序列化失败: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(ctx,
		p.exchange,
		routingKey,
		false, // Mandatory
		false, // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("发布消息失败: %w", err)
	}

	p.log.Debug("消息已发布", zap.String("routing_key", routingKey), zap.Int("bytes", len(body)))
	return nil
}

// Close 关闭Channel与连接
func (p *RabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// BreakerPublisher 在熔断器保护下发布
// 消息队列连续失败后直接返回错误，不再等待发布超时
type BreakerPublisher struct {
	next Publisher
	cb   *circuitbreaker.CircuitBreaker
}

// WithBreaker 为Publisher加上熔断保护
func WithBreaker(next Publisher, cb *circuitbreaker.CircuitBreaker) *BreakerPublisher {
	return &BreakerPublisher{next: next, cb: cb}
}

// Publish 熔断时返回包装了circuitbreaker.ErrOpenState的错误
func (p *BreakerPublisher) Publish(ctx context.Context, routingKey string, event interface{}) error {
	err := p.cb.Execute(func() error {
		return p.next.Publish(ctx, routingKey, event)
	})
	if errors.Is(err, circuitbreaker.ErrOpenState) {
		return fmt.Errorf("消息队列熔断中(%s): %w", p.cb.Name(), err)
	}
	return err
}

// Close 关闭下层Publisher
func (p *BreakerPublisher) Close() error {
	return p.next.Close()
}

// NopPublisher 丢弃所有事件
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, interface{}) error { return nil }

func (NopPublisher) Close() error { return nil }

// OrderCreatedEvent 订单创建事件
type OrderCreatedEvent struct {
	OrderID    uint      `json:"order_id"`
	UserID     uint      `json:"user_id"`
	BookID     uint      `json:"book_id"`
	Quantity   int       `json:"quantity"`
	TotalPrice int64     `json:"total_price"`
	CreatedAt  time.Time `json:"created_at"`
}
