package idx_test

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/quill/pkg/idx"
)

func TestNewIsULID(t *testing.T) {
	id := idx.New()
	require.NotEmpty(t, id.String())

	_, err := ulid.ParseStrict(id.String())
	require.NoError(t, err)
}

func TestMonotonicWithinMillisecond(t *testing.T) {
	tm := time.Unix(1700000000, 0).UTC()
	a := idx.NewAt(tm)
	b := idx.NewAt(tm)

	// Same timestamp, the monotonic source must still order them.
	require.Less(t, a.String(), b.String())
}

func TestNewAtEmbedsTimestamp(t *testing.T) {
	tm := time.Unix(1700000000, 0).UTC()
	u, err := ulid.ParseStrict(idx.NewAt(tm).String())
	require.NoError(t, err)
	require.WithinDuration(t, tm, ulid.Time(u.Time()), time.Millisecond)
}
