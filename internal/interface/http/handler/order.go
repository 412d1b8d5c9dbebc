package handler

import (
	"github.com/gin-gonic/gin"

	apporder "github.com/xiebiao/bookshop/internal/application/order"
	"github.com/xiebiao/bookshop/internal/interface/http/dto"
	"github.com/xiebiao/bookshop/internal/interface/http/middleware"
	"github.com/xiebiao/bookshop/pkg/response"
	"github.com/xiebiao/bookshop/pkg/validator"
)

// OrderHandler 订单HTTP处理器
type OrderHandler struct {
	validator     *validator.Validator
	createUseCase *apporder.CreateOrderUseCase
	getUseCase    *apporder.GetOrderUseCase
	listUseCase   *apporder.ListOrdersUseCase
}

// NewOrderHandler 创建订单处理器
func NewOrderHandler(
	v *validator.Validator,
	createUseCase *apporder.CreateOrderUseCase,
	getUseCase *apporder.GetOrderUseCase,
	listUseCase *apporder.ListOrdersUseCase,
) *OrderHandler {
	return &OrderHandler{
		validator:     v,
		createUseCase: createUseCase,
		getUseCase:    getUseCase,
		listUseCase:   listUseCase,
	}
}

// CreateOrder 创建订单
// @Summary      创建订单
// @Description  总价按下单时的图书价格计算，库存不足返回409
// @Tags         订单
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.OrderCreate true "订单信息"
// @Success      201 {object} response.Response{data=appdto.OrderResponse}
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "图书不存在"
// @Failure      409 {object} response.Response "库存不足"
// @Failure      422 {object} response.Response "参数错误"
// @Router       /api/v1/orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req dto.OrderCreate
	if err := bindJSON(c, h.validator, &req); err != nil {
		response.Error(c, err)
		return
	}

	// user_id从认证中间件注入的Context中获取
	result, err := h.createUseCase.Execute(c.Request.Context(), req.ToRequest(middleware.GetUserID(c)))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// GetOrder 订单详情
// @Summary      订单详情
// @Description  只有下单用户或管理员可以查看
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response{data=appdto.OrderResponse}
// @Failure      403 {object} response.Response "无权查看"
// @Failure      404 {object} response.Response "订单不存在"
// @Router       /api/v1/orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.getUseCase.Execute(c.Request.Context(), apporder.GetOrderRequest{
		OrderID:    id,
		CallerID:   middleware.GetUserID(c),
		CallerRole: middleware.GetRole(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListOrders 我的订单
// @Summary      我的订单
// @Description  当前用户的订单，最新的在前
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query int false "每页数量(1-100)" default(10)
// @Param        offset query int false "偏移量" default(0)
// @Success      200 {object} response.Response{data=appdto.Page[appdto.OrderResponse]}
// @Router       /api/v1/orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	page, err := dto.BindPage(c, h.validator)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.listUseCase.Execute(c.Request.Context(), apporder.ListOrdersRequest{
		UserID: middleware.GetUserID(c),
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
