package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	t.Run("matches outer code", func(t *testing.T) {
		err := New(CodeParse, "bad json")
		assert.True(t, HasCode(err, CodeParse))
		assert.False(t, HasCode(err, CodeNetwork))
	})

	t.Run("matches nested code through fmt wrapping", func(t *testing.T) {
		inner := NewNetwork(http.StatusNotFound, "student fetch failed", nil)
		err := fmt.Errorf("load home: %w", Wrap(inner, CodeInternal, "home"))
		assert.True(t, HasCode(err, CodeNetwork))
		assert.True(t, HasCode(err, CodeInternal))
		assert.True(t, Is(err, CodeInternal))
		assert.False(t, Is(err, CodeNetwork))
	})

	t.Run("plain errors carry no code", func(t *testing.T) {
		err := errors.New("boom")
		assert.False(t, HasCode(err, CodeInternal))
		assert.Equal(t, CodeInternal, CodeOf(err))
	})
}

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(cause, CodeStore, "persist session")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "persist session: disk full", err.Error())
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeParse:        http.StatusBadRequest,
		CodeValidation:   http.StatusBadRequest,
		CodeUnauthorized: http.StatusUnauthorized,
		CodeNotFound:     http.StatusNotFound,
		CodeInvalidState: http.StatusConflict,
		CodeNetwork:      http.StatusBadGateway,
		CodeStore:        http.StatusServiceUnavailable,
		CodeInternal:     http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, HTTPStatus(code), string(code))
	}
}
