package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xiebiao/bookshop/pkg/errors"
	"github.com/xiebiao/bookshop/pkg/validator"
)

// maxBodyBytes 请求体上限，所有写接口的输入都远小于该值
const maxBodyBytes int64 = 1 << 20

// bindJSON 读取原始请求体并校验
// 不使用ShouldBindJSON：需要区分字段缺失与显式null，并一次报告所有字段错误
func bindJSON(c *gin.Context, v *validator.Validator, dst interface{}) error {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	data, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperrors.Validation(apperrors.FieldError{Field: "body", Reason: fmt.Sprintf("请求体不能超过%d字节", maxBodyBytes)})
		}
		return apperrors.Validation(apperrors.FieldError{Field: "body", Reason: "读取请求体失败"})
	}
	return v.Bind(data, dst)
}

// pathID 解析路径参数中的ID
func pathID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.Validation(apperrors.FieldError{Field: name, Reason: "必须是正整数"})
	}
	return uint(id), nil
}
