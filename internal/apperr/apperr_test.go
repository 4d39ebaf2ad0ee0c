package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"invalid", Invalid("category with ID %d does not exist", 3), http.StatusBadRequest},
		{"not found", NotFound("rule %d not found", 1), http.StatusNotFound},
		{"handler not found", HandlerNotFound("contracts.Foo"), http.StatusInternalServerError},
		{"transient", Transient(errors.New("disk"), "update transaction"), http.StatusInternalServerError},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped invalid", fmt.Errorf("handler: %w", Invalid("bad")), http.StatusBadRequest},
		{"cancelled", fmt.Errorf("apply: %w", context.Canceled), StatusClientClosedRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestPublicMessageHidesInternalDetails(t *testing.T) {
	assert.Equal(t, GenericMessage, PublicMessage(errors.New("sql: connection refused")))
	assert.Equal(t, GenericMessage, PublicMessage(Transient(errors.New("locked"), "update")))
	assert.Equal(t, "Category name is required.", PublicMessage(Invalid("Category name is required.")))
}

func TestErrorsIsMatchesKindSentinels(t *testing.T) {
	err := fmt.Errorf("load: %w", NotFound("transaction %d not found", 9))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrInvalid))

	wrapped := Transient(context.Canceled, "update transaction")
	assert.True(t, errors.Is(wrapped, context.Canceled))
	assert.Equal(t, "update transaction: context canceled", wrapped.Error())
}
