package handler

import (
	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/bookshop/internal/application/book"
	"github.com/xiebiao/bookshop/internal/interface/http/dto"
	"github.com/xiebiao/bookshop/pkg/response"
	"github.com/xiebiao/bookshop/pkg/validator"
)

// BookHandler 图书HTTP处理器
type BookHandler struct {
	validator     *validator.Validator
	createUseCase *appbook.CreateBookUseCase
	updateUseCase *appbook.UpdateBookUseCase
	getUseCase    *appbook.GetBookUseCase
	listUseCase   *appbook.ListBooksUseCase
}

// NewBookHandler 创建图书处理器
func NewBookHandler(
	v *validator.Validator,
	createUseCase *appbook.CreateBookUseCase,
	updateUseCase *appbook.UpdateBookUseCase,
	getUseCase *appbook.GetBookUseCase,
	listUseCase *appbook.ListBooksUseCase,
) *BookHandler {
	return &BookHandler{
		validator:     v,
		createUseCase: createUseCase,
		updateUseCase: updateUseCase,
		getUseCase:    getUseCase,
		listUseCase:   listUseCase,
	}
}

// CreateBook 创建图书
// @Summary      创建图书
// @Description  管理员创建图书，书名唯一，作者必须存在，库存默认为0
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.BookCreate true "图书信息"
// @Success      201 {object} response.Response{data=appdto.BookResponse}
// @Failure      401 {object} response.Response "未登录"
// @Failure      403 {object} response.Response "非管理员"
// @Failure      404 {object} response.Response "作者不存在"
// @Failure      409 {object} response.Response "书名已存在"
// @Failure      422 {object} response.Response "参数错误"
// @Router       /api/v1/books [post]
func (h *BookHandler) CreateBook(c *gin.Context) {
	var req dto.BookCreate
	if err := bindJSON(c, h.validator, &req); err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.createUseCase.Execute(c.Request.Context(), req.ToRequest())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// UpdateBook 部分更新图书
// @Summary      更新图书
// @Description  只修改请求中出现的字段，作者不可修改
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int            true "图书ID"
// @Param        request body dto.BookUpdate true "需要修改的字段"
// @Success      200 {object} response.Response{data=appdto.BookResponse}
// @Failure      403 {object} response.Response "非管理员"
// @Failure      404 {object} response.Response "图书不存在"
// @Failure      409 {object} response.Response "书名已存在"
// @Failure      422 {object} response.Response "参数错误"
// @Router       /api/v1/books/{id} [patch]
func (h *BookHandler) UpdateBook(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.BookUpdate
	if err := bindJSON(c, h.validator, &req); err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.updateUseCase.Execute(c.Request.Context(), appbook.UpdateBookRequest{
		ID:    id,
		Patch: req.ToPatch(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetBook 图书详情
// @Summary      图书详情
// @Tags         图书
// @Produce      json
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=appdto.BookResponse}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [get]
func (h *BookHandler) GetBook(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.getUseCase.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListBooks 图书列表
// @Summary      图书列表
// @Description  按ID升序分页，total为全部图书数量
// @Tags         图书
// @Produce      json
// @Param        limit  query int false "每页数量(1-100)" default(10)
// @Param        offset query int false "偏移量" default(0)
// @Success      200 {object} response.Response{data=appdto.Page[appdto.BookResponse]}
// @Failure      422 {object} response.Response "参数错误"
// @Router       /api/v1/books [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	page, err := dto.BindPage(c, h.validator)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.listUseCase.Execute(c.Request.Context(), appbook.ListBooksRequest{
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
