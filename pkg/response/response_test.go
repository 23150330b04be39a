package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-rbacadmin/internal/apperr"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

func TestNewPage(t *testing.T) {
	p := NewPage[int](nil, 41, 2, 20)
	assert.Equal(t, 3, p.TotalPages)
	assert.NotNil(t, p.Items)
	assert.Equal(t, 0, NewPage([]int{}, 0, 1, 20).TotalPages)
	assert.Equal(t, 1, NewPage([]int{1}, 20, 1, 20).TotalPages)
}

func TestFail_MapsKindToStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{apperr.NotFound("角色不存在"), http.StatusNotFound, "NOT_FOUND"},
		{apperr.Conflict("菜单下存在子节点"), http.StatusConflict, "CONFLICT"},
		{apperr.Forbidden("无权限"), http.StatusForbidden, "FORBIDDEN"},
		{errors.New("db down"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		Fail(c, tc.err)

		assert.Equal(t, tc.status, w.Code)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, tc.code, body["code"])
		assert.NotEmpty(t, body["message"])
		_, hasData := body["data"]
		assert.False(t, hasData)
	}
}

func TestCreatedAndSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	Created(c, map[string]int{"id": 7})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"code":"OK","message":"创建成功","data":{"id":7}}`, w.Body.String())

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	Success(c, "删除成功")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"code":"OK","message":"删除成功","data":null}`, w.Body.String())
}
