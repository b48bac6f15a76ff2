package streamerr

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorTextIsUnderlyingDescription(t *testing.T) {
	err := UpstreamConnection(errors.New("AccessDeniedException: no access"))
	require.Equal(t, "AccessDeniedException: no access", err.Error())
	require.True(t, IsUpstreamConnection(err))
	require.False(t, IsMalformedFrame(err))
}

func TestWrapKeepsFirstKind(t *testing.T) {
	inner := MalformedFrame(errors.New("bad json"))
	outer := Internal(inner)
	require.Same(t, inner, outer)
	require.Equal(t, KindMalformedFrame, KindOf(outer))
}

func TestKindOfThroughFmtWrap(t *testing.T) {
	err := fmt.Errorf("frame 3: %w", MalformedFrame(errors.New("eof")))
	require.True(t, IsMalformedFrame(err))
}

func TestKindOfUntagged(t *testing.T) {
	require.Equal(t, KindInternal, KindOf(errors.New("boom")))
	require.Equal(t, KindCanceled, KindOf(context.Canceled))
	require.Equal(t, KindCanceled, KindOf(fmt.Errorf("read: %w", context.DeadlineExceeded)))
}

func TestNilStaysNil(t *testing.T) {
	require.NoError(t, UpstreamStream(nil))
}

func TestKindStrings(t *testing.T) {
	cases := map[Kind]string{
		KindInternal:           "internal",
		KindRequest:            "request",
		KindUpstreamConnection: "upstream_connection",
		KindUpstreamStream:     "upstream_stream",
		KindMalformedFrame:     "malformed_frame",
		KindCanceled:           "canceled",
	}
	for k, want := range cases {
		require.Equal(t, want, k.String())
	}
}
