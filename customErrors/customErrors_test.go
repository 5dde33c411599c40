package customErrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"direct", ErrorResponse{Code: ErrConflict}, ErrConflict},
		{"wrapped", fmt.Errorf("saving user: %w", ErrorResponse{Code: ErrNotFound}), ErrNotFound},
		{"plain error", errors.New("boom"), ErrInternal},
		{"nil", nil, ErrInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err))
		})
	}
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", ErrorResponse{Code: ErrNoBudget, Message: "no budget"})

	assert.True(t, HasCode(err, ErrNoBudget))
	assert.False(t, HasCode(err, ErrInvalidBudget))
	assert.False(t, HasCode(errors.New("boom"), ErrNoBudget))
}

func TestErrorResponse_Error(t *testing.T) {
	plain := ErrorResponse{Code: ErrAuth, Message: "session expired"}
	assert.Equal(t, "code: UNAUTHORIZED, message: session expired", plain.Error())

	withFields := ErrorResponse{Code: ErrInvalidInput, Message: "bad form", Fields: map[string]string{"Email": "invalid"}}
	assert.Contains(t, withFields.Error(), "fields: map[Email:invalid]")
}
