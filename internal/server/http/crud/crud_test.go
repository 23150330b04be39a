package crud

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"go-rbacadmin/internal/apperr"
	"go-rbacadmin/internal/domain/model"
	"go-rbacadmin/internal/server/http/middleware"
	"go-rbacadmin/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

type item struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type itemCreate struct {
	Name     string `json:"name" binding:"required"`
	Password string `json:"password"`
}

type itemUpdate struct {
	Name string `json:"name"`
}

type itemQuery struct {
	Page int    `form:"page"`
	Name string `form:"name"`
}

// 只认 X-Admin 头的假认证
func fakeAuth(c *gin.Context) {
	id, _ := strconv.ParseInt(c.GetHeader("X-Admin"), 10, 64)
	if id <= 0 {
		response.Fail(c, apperr.Unauthorized("未登录"))
		return
	}
	c.Set(middleware.KeyAdminID, id)
	c.Set(middleware.KeyUsername, "u"+c.GetHeader("X-Admin"))
	c.Next()
}

type grants map[int64][]string

func (g grants) HasPermission(_ context.Context, adminID int64, perm string) (bool, error) {
	for _, p := range g[adminID] {
		if p == perm {
			return true, nil
		}
	}
	return false, nil
}

type memSink struct {
	mu   sync.Mutex
	recs []model.SysOperationLog
}

func (s *memSink) Write(_ context.Context, rec *model.SysOperationLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = append(s.recs, *rec)
	return nil
}

func (s *memSink) all() []model.SysOperationLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.SysOperationLog(nil), s.recs...)
}

func newEngine(t *testing.T, sink *memSink, h Handlers[item, item, itemCreate, itemUpdate, itemQuery]) *gin.Engine {
	t.Helper()
	r := gin.New()
	g := NewGroup(r.Group("/api/items"), Deps{
		Auth: fakeAuth,
		Perm: grants{
			2: {"demo:item:list", "demo:item:query", "demo:item:create", "demo:item:update", "demo:item:delete"},
			3: {"demo:item:list"},
		},
		Sink: sink,
	}, Options{Module: "示例", Name: "条目", Permission: "demo:item", Audit: true})
	Register(g, h)
	return r
}

func fullHandlers() Handlers[item, item, itemCreate, itemUpdate, itemQuery] {
	return Handlers[item, item, itemCreate, itemUpdate, itemQuery]{
		List: func(_ *gin.Context, q itemQuery) (response.Page[item], error) {
			return response.NewPage([]item{{ID: 1, Name: q.Name}}, 1, 1, 10), nil
		},
		Detail: func(_ *gin.Context, id int64) (item, error) {
			if id == 404 {
				return item{}, apperr.NotFound("条目不存在")
			}
			return item{ID: id, Name: "x"}, nil
		},
		Create: func(_ *gin.Context, in itemCreate) (item, error) {
			return item{ID: 9, Name: in.Name}, nil
		},
		Update: func(_ *gin.Context, id int64, in itemUpdate) (item, error) {
			if in.Name == "dup" {
				return item{}, apperr.Conflict("名称已存在")
			}
			return item{ID: id, Name: in.Name}, nil
		},
		Delete: func(_ *gin.Context, id int64) error { return nil },
	}
}

func do(r http.Handler, method, path, admin, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if admin != "" {
		req.Header.Set("X-Admin", admin)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var out map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func TestRegister_RequiresLogin(t *testing.T) {
	r := newEngine(t, &memSink{}, fullHandlers())
	for _, rt := range []struct{ method, path string }{
		{http.MethodGet, "/api/items"},
		{http.MethodGet, "/api/items/1"},
		{http.MethodPost, "/api/items"},
		{http.MethodPut, "/api/items/1"},
		{http.MethodDelete, "/api/items/1"},
	} {
		w, body := do(r, rt.method, rt.path, "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, rt.path)
		assert.Equal(t, "UNAUTHORIZED", body["code"])
	}
}

func TestRegister_ChecksActionPermission(t *testing.T) {
	r := newEngine(t, &memSink{}, fullHandlers())

	w, _ := do(r, http.MethodGet, "/api/items", "3", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, body := do(r, http.MethodPost, "/api/items", "3", `{"name":"a"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", body["code"])

	w, _ = do(r, http.MethodDelete, "/api/items/1", "3", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRegister_StatusCodesAndEnvelope(t *testing.T) {
	r := newEngine(t, &memSink{}, fullHandlers())

	w, body := do(r, http.MethodGet, "/api/items?name=k", "2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", body["code"])
	page := body["data"].(map[string]interface{})
	assert.EqualValues(t, 1, page["total"])
	assert.Equal(t, "k", page["items"].([]interface{})[0].(map[string]interface{})["name"])

	w, body = do(r, http.MethodGet, "/api/items/5", "2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 5, body["data"].(map[string]interface{})["id"])

	w, body = do(r, http.MethodPost, "/api/items", "2", `{"name":"new"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "new", body["data"].(map[string]interface{})["name"])

	w, _ = do(r, http.MethodPut, "/api/items/5", "2", `{"name":"renamed"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w, body = do(r, http.MethodDelete, "/api/items/5", "2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", body["code"])
	data, ok := body["data"]
	assert.True(t, ok)
	assert.Nil(t, data)
}

func TestRegister_ErrorMapping(t *testing.T) {
	r := newEngine(t, &memSink{}, fullHandlers())

	w, body := do(r, http.MethodGet, "/api/items/404", "2", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", body["code"])
	_, hasData := body["data"]
	assert.False(t, hasData)

	w, body = do(r, http.MethodGet, "/api/items/abc", "2", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])

	w, body = do(r, http.MethodPost, "/api/items", "2", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
	assert.NotEmpty(t, body["details"])

	w, body = do(r, http.MethodPost, "/api/items", "2", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])

	w, body = do(r, http.MethodPut, "/api/items/1", "2", `{"name":"dup"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "CONFLICT", body["code"])
}

func TestRegister_AuditsWrites(t *testing.T) {
	sink := &memSink{}
	r := newEngine(t, sink, fullHandlers())

	do(r, http.MethodGet, "/api/items", "2", "")
	do(r, http.MethodPost, "/api/items", "2", `{"name":"a","password":"p@ss"}`)
	do(r, http.MethodPut, "/api/items/1", "2", `{"name":"dup"}`)
	do(r, http.MethodDelete, "/api/items/1", "3", "")

	recs := sink.all()
	require.Len(t, recs, 2, "读操作与鉴权失败不写审计")

	created := recs[0]
	assert.Equal(t, "示例", created.Module)
	assert.Equal(t, ActionCreate, created.Operation)
	assert.Equal(t, "新增条目", created.Description)
	assert.Equal(t, int64(2), created.AdminID)
	assert.Equal(t, "u2", created.AdminName)
	assert.Equal(t, int8(1), created.Status)
	assert.Equal(t, http.MethodPost, created.RequestMethod)
	assert.NotContains(t, created.RequestParams, "p@ss")
	assert.False(t, created.CreatedAt.IsZero())

	failed := recs[1]
	assert.Equal(t, ActionUpdate, failed.Operation)
	assert.Equal(t, int8(0), failed.Status)
	assert.Equal(t, "名称已存在", failed.ErrorMsg)
}

func TestRegister_SkipsNilHandlers(t *testing.T) {
	h := fullHandlers()
	h.Create, h.Update = nil, nil
	r := newEngine(t, &memSink{}, h)

	w, _ := do(r, http.MethodPost, "/api/items", "2", `{"name":"a"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = do(r, http.MethodGet, "/api/items/1", "2", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGroup_LoginOnlyRoute(t *testing.T) {
	r := gin.New()
	g := NewGroup(r.Group("/x"), Deps{Auth: fakeAuth, Perm: grants{}}, Options{Permission: "demo:x"})
	g.Handle(http.MethodGet, "/open", "", false, func(c *gin.Context) { response.OK(c, "hi") })

	w, _ := do(r, http.MethodGet, "/x/open", "7", "")
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = do(r, http.MethodGet, "/x/open", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "demo:x:list", g.Permission(ActionList))
	assert.Equal(t, "", g.Permission(""))
}
