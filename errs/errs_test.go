package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/inkstream/isf/errs"
	"github.com/stretchr/testify/require"
)

func TestSentinelsAreDistinct(t *testing.T) {
	all := []error{
		errs.ErrBadVersion,
		errs.ErrBadStreamSize,
		errs.ErrInvalidStream,
		errs.ErrInvalidPayload,
		errs.ErrInvalidBlock,
		errs.ErrInternal,
		errs.ErrUnsupported,
		errs.ErrEndOfStream,
		errs.ErrHashCollision,
	}
	for i, e := range all {
		for j, other := range all {
			if i == j {
				continue
			}
			require.False(t, errors.Is(e, other), "sentinel %d should not match %d", i, j)
		}
	}
}

func TestWrappedSentinelRecoverable(t *testing.T) {
	err := fmt.Errorf("%w: tag %d at offset %d", errs.ErrInvalidStream, 7, 128)
	require.ErrorIs(t, err, errs.ErrInvalidStream)
	require.Contains(t, err.Error(), "tag 7")
}
