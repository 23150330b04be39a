package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestKindStatus(t *testing.T) {
	cases := map[Kind]int{
		KindUnauthorized: http.StatusUnauthorized,
		KindForbidden:    http.StatusForbidden,
		KindNotFound:     http.StatusNotFound,
		KindConflict:     http.StatusConflict,
		KindValidation:   http.StatusBadRequest,
		KindBusiness:     http.StatusBadRequest,
		KindTooMany:      http.StatusTooManyRequests,
		KindInternal:     http.StatusInternalServerError,
	}
	for k, want := range cases {
		assert.Equal(t, want, k.Status(), string(k))
	}
}

func TestIs_MatchesSentinelByKind(t *testing.T) {
	err := fmt.Errorf("load role: %w", NotFound("角色不存在"))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
}

func TestFrom(t *testing.T) {
	assert.Nil(t, From(nil))
	assert.Equal(t, KindNotFound, KindOf(fmt.Errorf("x: %w", gorm.ErrRecordNotFound)))
	assert.Equal(t, KindConflict, KindOf(fmt.Errorf("x: %w", gorm.ErrDuplicatedKey)))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))

	orig := Conflict("用户名已存在")
	assert.Same(t, orig, From(fmt.Errorf("wrapped: %w", orig)))
}

func TestFrom_ValidationErrors(t *testing.T) {
	type req struct {
		Username string `validate:"required"`
		PageSize int    `validate:"max=100"`
	}
	err := validator.New().Struct(req{PageSize: 500})
	require.Error(t, err)

	ae := From(err)
	assert.Equal(t, KindValidation, ae.Kind)
	details, ok := ae.Details.([]FieldError)
	require.True(t, ok)
	require.Len(t, details, 2)
	assert.Equal(t, "Username", details[0].Field)
	assert.Equal(t, "required", details[0].Rule)
	assert.Equal(t, "max", details[1].Rule)
	assert.Equal(t, "100", details[1].Param)
}
