package response

import (
	"net/http"

	"go-rbacadmin/internal/apperr"

	"github.com/gin-gonic/gin"
)

const CodeOK = "OK"

// KeyErrorCode Fail 写入 gin.Context 的错误类别，供指标中间件读取
const KeyErrorCode = "error_code"

// Body 统一响应结构；成功 code=OK，失败 code 为错误类别
type Body struct {
	Code    string      `json:"code"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data"`
	Details interface{} `json:"details,omitempty"`
}

// ErrorBody 失败时不输出 data
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Page 分页结果
type Page[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

func NewPage[T any](items []T, total int64, page, pageSize int) Page[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return Page[T]{Items: items, Total: total, Page: page, PageSize: pageSize, TotalPages: totalPages}
}

func JSON(c *gin.Context, status int, msg string, data interface{}) {
	c.JSON(status, Body{Code: CodeOK, Message: msg, Data: data})
}

// OK 200
func OK(c *gin.Context, data interface{}) { JSON(c, http.StatusOK, "", data) }

// Created 201
func Created(c *gin.Context, data interface{}) { JSON(c, http.StatusCreated, "创建成功", data) }

// Success 200 data=null，仅带提示
func Success(c *gin.Context, msg string) { JSON(c, http.StatusOK, msg, nil) }

// Fail 唯一的错误出口，按 apperr.Kind 选择状态码
func Fail(c *gin.Context, err error) {
	ae := apperr.From(err)
	c.Set(KeyErrorCode, string(ae.Kind))
	if ae.Kind == apperr.KindInternal {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(ae.Kind.Status(), ErrorBody{Code: string(ae.Kind), Message: ae.Message, Details: ae.Details})
}
