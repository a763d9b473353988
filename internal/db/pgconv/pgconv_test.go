package pgconv

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestUUIDRoundTrip(t *testing.T) {
	id, err := UUID(" 3f1b7c5e-9a52-4d8e-8d0c-2f6f5d1a9b10 ")
	require.NoError(t, err)
	require.True(t, id.Valid)
	require.Equal(t, "3f1b7c5e-9a52-4d8e-8d0c-2f6f5d1a9b10", UUIDString(id))

	_, err = UUID("not-a-uuid")
	require.Error(t, err)
}

func TestTextHelpers(t *testing.T) {
	require.False(t, Text("   ").Valid)
	require.Equal(t, "JP", Text(" JP ").String)

	empty := ""
	require.True(t, TextPtr(&empty).Valid)
	require.False(t, TextPtr(nil).Valid)
	require.Nil(t, StringPtr(Text("")))
}

func TestTimeHelpers(t *testing.T) {
	require.False(t, Timestamptz(time.Time{}).Valid)
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	require.Equal(t, now, Time(Timestamptz(now)))
	require.Nil(t, TimePtr(Timestamptz(time.Time{})))
}
