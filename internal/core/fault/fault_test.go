package fault

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsKind(t *testing.T) {
	err := NotFound("lead %s not found", "l1")
	require.True(t, IsKind(err, KindNotFound))
	require.False(t, IsKind(err, KindConflict))
	require.Contains(t, err.Error(), "l1")
}

func TestIsKindThroughWrapping(t *testing.T) {
	err := fmt.Errorf("handling request: %w", Conflict("duplicate break"))
	require.True(t, IsKind(err, KindConflict))
}

func TestIsKindOnPlainError(t *testing.T) {
	require.False(t, IsKind(errors.New("boom"), KindValidation))
	require.False(t, IsKind(nil, KindValidation))
}

func TestKindString(t *testing.T) {
	require.Equal(t, "resource_exhausted", KindResourceExhausted.String())
	require.Equal(t, "validation", KindValidation.String())
}
