package proteograph

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorClass
	}{
		{newSearchError(ClassInvalid, "op", errors.New("x")), ClassInvalid},
		{fmt.Errorf("wrapped: %w", newSearchError(ClassTimeout, "op", ErrQueryTimeout)), ClassTimeout},
		{fmt.Errorf("%w: bad", ErrInvalidRequest), ClassInvalid},
		{ErrUnknownSearchType, ClassUnknownKind},
		{context.DeadlineExceeded, ClassTimeout},
		{ErrUpstream, ClassUpstream},
		{errors.New("anything else"), ClassUpstream},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.err), "%v", tt.err)
	}
}

func TestSearchErrorMessageAndUnwrap(t *testing.T) {
	err := invalidf("parse request", "no value for %s", "Gene Name")
	assert.Equal(t, "parse request: invalid search request: no value for Gene Name", err.Error())
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.Equal(t, "invalid", ClassInvalid.String())
	assert.Equal(t, "upstream", ErrorClass(99).String())
}

func TestClassifyDriverError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := classifyDriverError(ctx, errors.New("connection refused"))
	assert.Equal(t, ClassUpstream, Classify(err))
	assert.ErrorIs(t, err, ErrUpstream)

	err = classifyDriverError(context.Background(), fmt.Errorf("read: %w", context.DeadlineExceeded))
	assert.Equal(t, ClassTimeout, Classify(err))
	assert.ErrorIs(t, err, ErrQueryTimeout)
}
