package handler

import (
	"github.com/gin-gonic/gin"

	appauthor "github.com/xiebiao/bookshop/internal/application/author"
	"github.com/xiebiao/bookshop/internal/interface/http/dto"
	"github.com/xiebiao/bookshop/pkg/response"
	"github.com/xiebiao/bookshop/pkg/validator"
)

// AuthorHandler 作者HTTP处理器
type AuthorHandler struct {
	validator     *validator.Validator
	createUseCase *appauthor.CreateAuthorUseCase
	getUseCase    *appauthor.GetAuthorUseCase
	listUseCase   *appauthor.ListAuthorsUseCase
}

// NewAuthorHandler 创建作者处理器
func NewAuthorHandler(
	v *validator.Validator,
	createUseCase *appauthor.CreateAuthorUseCase,
	getUseCase *appauthor.GetAuthorUseCase,
	listUseCase *appauthor.ListAuthorsUseCase,
) *AuthorHandler {
	return &AuthorHandler{
		validator:     v,
		createUseCase: createUseCase,
		getUseCase:    getUseCase,
		listUseCase:   listUseCase,
	}
}

// CreateAuthor 创建作者
// @Summary      创建作者
// @Description  管理员创建作者，名称唯一，出生日期不晚于今天
// @Tags         作者
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.AuthorCreate true "作者信息"
// @Success      201 {object} response.Response{data=appdto.AuthorResponse}
// @Failure      401 {object} response.Response "未登录"
// @Failure      403 {object} response.Response "非管理员"
// @Failure      409 {object} response.Response "作者名已存在"
// @Failure      422 {object} response.Response "参数错误"
// @Router       /api/v1/authors [post]
func (h *AuthorHandler) CreateAuthor(c *gin.Context) {
	var req dto.AuthorCreate
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

// GetAuthor 查询作者及其图书
// @Summary      作者详情
// @Tags         作者
// @Produce      json
// @Param        id path int true "作者ID"
// @Success      200 {object} response.Response{data=appdto.AuthorWithBooksResponse}
// @Failure      404 {object} response.Response "作者不存在"
// @Router       /api/v1/authors/{id} [get]
func (h *AuthorHandler) GetAuthor(c *gin.Context) {
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

// ListAuthors 作者列表
// @Summary      作者列表
// @Tags         作者
// @Produce      json
// @Param        limit  query int false "每页数量(1-100)" default(10)
// @Param        offset query int false "偏移量" default(0)
// @Success      200 {object} response.Response{data=appdto.Page[appdto.AuthorResponse]}
// @Failure      422 {object} response.Response "参数错误"
// @Router       /api/v1/authors [get]
func (h *AuthorHandler) ListAuthors(c *gin.Context) {
	page, err := dto.BindPage(c, h.validator)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.listUseCase.Execute(c.Request.Context(), appauthor.ListAuthorsRequest{
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
