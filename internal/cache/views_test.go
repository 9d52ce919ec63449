package cache

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeeklyKey(t *testing.T) {
	// 2024-12-30 falls in ISO week 1 of 2025.
	assert.Equal(t, "event:abc:views:2025-01", WeeklyKey("abc", time.Date(2024, 12, 30, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, "event:abc:views:2030-18", WeeklyKey("abc", time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC)))

	monday := time.Date(2030, 4, 29, 0, 0, 0, 0, time.UTC)
	sunday := time.Date(2030, 5, 5, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, WeeklyKey("abc", monday), WeeklyKey("abc", sunday))
}

func TestSeenKey(t *testing.T) {
	assert.Equal(t, "event:abc:seen:10.0.0.1", SeenKey("abc", "10.0.0.1"))
}

func TestRecordView_Errors(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	vc := NewViewCounter(client)

	_, _, err := vc.RecordView(context.Background(), "", "viewer")
	require.Error(t, err)

	_, counted, err := vc.RecordView(context.Background(), "abc", "viewer")
	assert.Error(t, err)
	assert.False(t, counted)
}
