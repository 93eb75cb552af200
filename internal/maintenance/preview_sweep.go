package maintenance

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"
)

const DefaultPreviewMaxAge = 24 * time.Hour

// Sweeper removes preview objects older than maxAge.
type Sweeper interface {
	Sweep(ctx context.Context, maxAge time.Duration) (int, error)
}

// StartPreviewSweep runs a daily job at localTime ("HH:MM") in tzName that
// deletes cover previews no wizard released, e.g. after a crash.
// Call once at startup: maintenance.StartPreviewSweep(ctx, previews, 24*time.Hour, "03:30", "UTC")
func StartPreviewSweep(ctx context.Context, s Sweeper, maxAge time.Duration, localTime, tzName string) {
	if maxAge <= 0 {
		maxAge = DefaultPreviewMaxAge
	}
	go func() {
		loc, err := time.LoadLocation(tzName)
		if err != nil {
			loc = time.Local
		}
		h, m := parseClock(localTime)

		for {
			timer := time.NewTimer(time.Until(nextRun(time.Now().In(loc), h, m)))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
				RunPreviewSweep(ctx, s, maxAge)
			}
		}
	}()
}

// RunPreviewSweep performs one sweep and logs the result.
func RunPreviewSweep(ctx context.Context, s Sweeper, maxAge time.Duration) int {
	n, err := s.Sweep(ctx, maxAge)
	if err != nil {
		log.Printf("[sweep] preview sweep failed: %v", err)
		return n
	}
	log.Printf("[sweep] removed %d previews older than %s", n, maxAge)
	return n
}

// parseClock reads "HH:MM"; anything unparsable falls back to 03:00.
func parseClock(s string) (h, m int) {
	h, m = 3, 0
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return h, m
	}
	hv, err1 := strconv.Atoi(parts[0])
	mv, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || hv < 0 || hv > 23 || mv < 0 || mv > 59 {
		return h, m
	}
	return hv, mv
}

func nextRun(now time.Time, h, m int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), h, m, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
