// Package cache keeps short-lived counters in Redis.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	// event:<eventID>:views:<isoYear>-<isoWeek>
	weeklyViewsKey = "event:%s:views:%d-%02d"
	// event:<eventID>:seen:<viewer>
	seenKey = "event:%s:seen:%s"

	// Weekly counters outlive their week so the previous one can still be read.
	weeklyViewsTTL = 14 * 24 * time.Hour
	defaultDedupe  = time.Hour
)

type ViewCounter struct {
	client *redis.Client
	dedupe time.Duration
	now    func() time.Time
}

func NewViewCounter(client *redis.Client) *ViewCounter {
	return &ViewCounter{client: client, dedupe: defaultDedupe, now: time.Now}
}

// WeeklyKey names the counter for the ISO week containing t.
func WeeklyKey(eventID string, t time.Time) string {
	year, week := t.UTC().ISOWeek()
	return fmt.Sprintf(weeklyViewsKey, eventID, year, week)
}

func SeenKey(eventID, viewer string) string {
	return fmt.Sprintf(seenKey, eventID, viewer)
}

// RecordView counts one view of eventID by viewer, ignoring repeats within the
// dedupe window. It returns the current weekly total and whether this view counted.
func (vc *ViewCounter) RecordView(ctx context.Context, eventID, viewer string) (int64, bool, error) {
	if eventID == "" || viewer == "" {
		return 0, false, fmt.Errorf("eventID and viewer cannot be empty")
	}

	first, err := vc.client.SetNX(ctx, SeenKey(eventID, viewer), 1, vc.dedupe).Result()
	if err != nil {
		return 0, false, fmt.Errorf("failed to mark view of event '%s': %w", eventID, err)
	}
	if !first {
		return 0, false, nil
	}

	key := WeeklyKey(eventID, vc.now())
	pipe := vc.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, weeklyViewsTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, false, fmt.Errorf("failed to count view of event '%s': %w", eventID, err)
	}
	return incr.Val(), true, nil
}

// WeeklyViews reads the current week's counter; a missing key is zero.
func (vc *ViewCounter) WeeklyViews(ctx context.Context, eventID string) (int64, error) {
	n, err := vc.client.Get(ctx, WeeklyKey(eventID, vc.now())).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read views of event '%s': %w", eventID, err)
	}
	return n, nil
}
