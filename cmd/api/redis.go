package main

import (
	"time"

	"github.com/5w1tchy/books-admin/internal/validate"
	"github.com/redis/go-redis/v9"
)

// newRedis builds the snapshot/rate-limit client.
func newRedis() (*redis.Client, error) {
	opt, err := validate.RedisOptionsFromEnv()
	if err != nil {
		return nil, err
	}
	// Snapshot writes sit on the event path; keep them short.
	opt.ReadTimeout = 750 * time.Millisecond
	opt.WriteTimeout = 750 * time.Millisecond
	return redis.NewClient(opt), nil
}
