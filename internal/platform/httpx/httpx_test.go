package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRespondErrorMapsSentinels(t *testing.T) {
	cases := map[error]int{
		fmt.Errorf("stores: store not found: %w", ErrNotFound): http.StatusNotFound,
		fmt.Errorf("users: email taken: %w", ErrDuplicate):     http.StatusConflict,
		fmt.Errorf("closures: exists: %w", ErrConflict):        http.StatusConflict,
		fmt.Errorf("bad: %w", ErrValidation):                   http.StatusBadRequest,
		fmt.Errorf("no: %w", ErrForbidden):                     http.StatusForbidden,
		fmt.Errorf("who: %w", ErrUnauthorized):                 http.StatusUnauthorized,
		fmt.Errorf("rate source: %w", ErrUnavailable):          http.StatusServiceUnavailable,
		errors.New("pq: connection reset"):                     http.StatusInternalServerError,
	}
	for err, status := range cases {
		rec := httptest.NewRecorder()
		RespondError(rec, err)
		require.Equal(t, status, rec.Code, err.Error())
		require.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

		var body ProblemDetail
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, status, body.Status)
		if status == http.StatusInternalServerError {
			require.Empty(t, body.Detail)
			require.True(t, Internal(err))
		} else {
			require.Equal(t, err.Error(), body.Detail)
			require.False(t, Internal(err))
		}
	}
	require.False(t, Internal(nil))
}

type bindTarget struct {
	Email string  `json:"email" validate:"required,email"`
	Rate  float64 `json:"rate" validate:"gt=0"`
}

func TestBind(t *testing.T) {
	bind := func(body string) error {
		var target bindTarget
		return Bind(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)), &target)
	}
	require.NoError(t, bind(`{"email":"a@b.com","rate":36.5}`))

	err := bind(`{"email":"nope","rate":0}`)
	require.ErrorIs(t, err, ErrValidation)
	require.Contains(t, err.Error(), "email failed email")
	require.Contains(t, err.Error(), "rate failed gt")

	require.ErrorIs(t, bind(`{"email":"a@b.com","rate":1,"extra":true}`), ErrValidation)
	require.ErrorIs(t, bind(`{`), ErrValidation)
}
