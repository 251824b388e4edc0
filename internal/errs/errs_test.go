package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructors_SetExpectedKind(t *testing.T) {
	assert.Equal(t, KindValidation, Validation("bad %s", "input").Kind)
	assert.Equal(t, KindNotFound, NotFound("missing %s", "id").Kind)
	assert.Equal(t, KindUnauthenticated, Unauthenticated("no token").Kind)
	assert.Equal(t, KindPermissionDenied, PermissionDenied("denied").Kind)
	assert.Equal(t, KindConflict, Conflict("duplicate").Kind)
	assert.Equal(t, KindFatalEvent, FatalEvent("unrecoverable").Kind)
}

func TestTransient_WrapsCauseAndUnwraps(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Transient(cause, "dial failed")

	assert.Equal(t, KindTransient, err.Kind)
	assert.Same(t, cause, err.Unwrap())
	assert.True(t, errors.Is(err, cause))
}

func TestError_MessageIncludesCauseWhenPresent(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := Transient(cause, "write failed")
	assert.Equal(t, "write failed: boom", err.Error())

	plain := Validation("bad input")
	assert.Equal(t, "bad input", plain.Error())
}

func TestIs_MatchesExactKindOnly(t *testing.T) {
	err := NotFound("missing")
	assert.True(t, Is(err, KindNotFound))
	assert.False(t, Is(err, KindValidation))
}

func TestIs_FalseForNonTaxonomyError(t *testing.T) {
	assert.False(t, Is(fmt.Errorf("plain error"), KindNotFound))
}

func TestIs_FalseForWrappedTaxonomyError(t *testing.T) {
	wrapped := fmt.Errorf("context: %w", NotFound("missing"))
	assert.False(t, Is(wrapped, KindNotFound), "Is performs a direct type assertion, not errors.As-style unwrapping")
}
