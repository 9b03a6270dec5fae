package auctionerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIs_MatchesByCode(t *testing.T) {
	err := Newf(CodeBidTooLow, "bid must exceed %s", "150.00")
	require.ErrorIs(t, err, ErrBidTooLow)
	require.NotErrorIs(t, err, ErrAuctionClosed)
}

func TestIs_SurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("place bid: %w", ErrSelfBid)
	require.ErrorIs(t, err, ErrSelfBid)
	require.Equal(t, CodeSelfBid, CodeOf(err))
}

func TestCodeOf_DefaultsToInternal(t *testing.T) {
	require.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
}

func TestTransient_KeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Transient(cause)

	require.Equal(t, CodeTransient, CodeOf(err))
	require.ErrorIs(t, err, cause)
	require.False(t, IsPrecondition(err))
}

func TestIsPrecondition(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"bid_too_low", ErrBidTooLow, true},
		{"auction_closed", ErrAuctionClosed, true},
		{"validation", New(CodeValidation, "bad amount"), true},
		{"transient", Transient(errors.New("timeout")), false},
		{"internal", Internal("seq out of step", nil), false},
		{"plain", errors.New("plain"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsPrecondition(tt.err))
		})
	}
}
