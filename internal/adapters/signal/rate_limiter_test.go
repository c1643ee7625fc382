package signal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRoomRateLimiter_SlidingWindow(t *testing.T) {
	req := require.New(t)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRoomRateLimiter(2, 10*time.Second)
	rl.now = func() time.Time { return now }

	req.True(rl.Allow("c1"))
	req.True(rl.Allow("c1"))
	req.False(rl.Allow("c1"))

	// Other connections have their own window
	req.True(rl.Allow("c2"))

	now = now.Add(11 * time.Second)
	req.True(rl.Allow("c1"))
}

func TestRoomRateLimiter_ForgetAndDisabled(t *testing.T) {
	req := require.New(t)
	rl := NewRoomRateLimiter(1, time.Minute)
	req.True(rl.Allow("c1"))
	req.False(rl.Allow("c1"))
	rl.Forget("c1")
	req.True(rl.Allow("c1"))

	off := NewRoomRateLimiter(0, time.Minute)
	for range 100 {
		req.True(off.Allow("c1"))
	}
}
