package xerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetailfDerivesFreshInstance(t *testing.T) {
	derived := ErrRaggedRow.Detailf("row %d", 3).WithContext("row", 3)

	assert.Equal(t, "row 3", derived.Detail)
	assert.Equal(t, 3, derived.Context["row"])
	assert.NotEmpty(t, derived.Stack)

	assert.Equal(t, "every constraint row must have len(objective) entries", ErrRaggedRow.Detail)
	assert.Empty(t, ErrRaggedRow.Context)
	assert.NotSame(t, ErrRaggedRow, derived)
}

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("load: %w", ErrNonFinite.Detailf("rhs[0] = +Inf"))

	assert.True(t, errors.Is(err, ErrNonFinite))
	assert.False(t, errors.Is(err, ErrRaggedRow))
	assert.False(t, errors.Is(err, errors.New("other")))
}

func TestWrapKeepsTypeAndCode(t *testing.T) {
	wrapped := Wrap(ErrCycleLimit.Detailf("after 9 pivots"), ErrInternal, "solve failed")

	assert.Equal(t, ErrUnprocessable, wrapped.Type)
	assert.Equal(t, ErrCycleLimit.Code, wrapped.Code)
	assert.Equal(t, "solve failed", wrapped.Message)
	assert.True(t, errors.Is(wrapped, ErrCycleLimit))

	plain := WrapInternal(errors.New("disk full"), "write result")
	assert.Equal(t, ErrInternal, plain.Type)
	assert.Contains(t, plain.Error(), "disk full")

	assert.Nil(t, Wrap(nil, ErrInternal, "noop"))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  *Error
		want int
	}{
		{ErrEmptyObjective, http.StatusBadRequest},
		{NotFound("x"), http.StatusNotFound},
		{ErrInfeasibleProblem, http.StatusUnprocessableEntity},
		{New(ErrLimitExceeded, 429, "slow down", "", nil), http.StatusTooManyRequests},
		{New(ErrDeadlineExceeded, 504, "late", "", nil), http.StatusGatewayTimeout},
		{New(ErrUnavailable, 503, "down", "", nil), http.StatusServiceUnavailable},
		{ErrPhaseOneUnbounded, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Message, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.HTTPStatus())
		})
	}
}

func TestFromErrorAndIsType(t *testing.T) {
	_, ok := FromError(nil)
	assert.False(t, ok)

	e, ok := FromError(fmt.Errorf("ctx: %w", InvalidArg("bad")))
	require.True(t, ok)
	assert.Equal(t, "bad", e.Message)
	assert.True(t, IsType(e, ErrInvalidArg))
	assert.False(t, IsType(errors.New("plain"), ErrInvalidArg))

	assert.Equal(t, "Unknown", ErrorType(99).String())
	assert.Equal(t, "[Unprocessable] 422101: infeasible problem (x)", ErrInfeasibleProblem.Detailf("x").Error())
}
