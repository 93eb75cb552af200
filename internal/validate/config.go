package validate

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Onboarding holds the wizard settings read from the environment.
type Onboarding struct {
	SubmitTimeout  time.Duration // ONBOARDING_SUBMIT_TIMEOUT
	MaxCopies      int           // ONBOARDING_MAX_COPIES
	SnapshotTTL    time.Duration // ONBOARDING_SNAPSHOT_TTL
	PreviewURLTTL  time.Duration // PREVIEW_URL_TTL
	PreviewMaxAge  time.Duration // PREVIEW_MAX_AGE
	SweepLocalTime string        // PREVIEW_SWEEP_AT, "HH:MM"
	SweepTZ        string        // PREVIEW_SWEEP_TZ
	AuditBuffer    int           // AUDIT_QUEUE_SIZE
	AuditWorkers   int           // AUDIT_WORKERS
}

// Env validates required env configuration. Fail-fast on bad config.
func Env() error {
	if len(os.Getenv("AUTH_JWT_SECRET")) < 32 {
		return errors.New("AUTH_JWT_SECRET must be at least 32 characters")
	}
	if os.Getenv("DATABASE_URL") == "" {
		return errors.New("DATABASE_URL not set")
	}
	if os.Getenv("AWS_BUCKET") == "" {
		return errors.New("AWS_BUCKET not set")
	}
	_, err := OnboardingFromEnv()
	return err
}

// OnboardingFromEnv applies defaults for unset variables and rejects
// malformed ones.
func OnboardingFromEnv() (Onboarding, error) {
	var (
		c   Onboarding
		err error
	)
	if c.SubmitTimeout, err = envDuration("ONBOARDING_SUBMIT_TIMEOUT", "30s"); err != nil {
		return c, fmt.Errorf("ONBOARDING_SUBMIT_TIMEOUT: %w", err)
	}
	if c.MaxCopies, err = envIntRange("ONBOARDING_MAX_COPIES", 100, 1, 1000); err != nil {
		return c, fmt.Errorf("ONBOARDING_MAX_COPIES: %w", err)
	}
	if c.SnapshotTTL, err = envDuration("ONBOARDING_SNAPSHOT_TTL", "24h"); err != nil {
		return c, fmt.Errorf("ONBOARDING_SNAPSHOT_TTL: %w", err)
	}
	if c.PreviewURLTTL, err = envDuration("PREVIEW_URL_TTL", "15m"); err != nil {
		return c, fmt.Errorf("PREVIEW_URL_TTL: %w", err)
	}
	if c.PreviewMaxAge, err = envDuration("PREVIEW_MAX_AGE", "24h"); err != nil {
		return c, fmt.Errorf("PREVIEW_MAX_AGE: %w", err)
	}
	if c.AuditBuffer, err = envIntRange("AUDIT_QUEUE_SIZE", 1024, 1, 1<<20); err != nil {
		return c, fmt.Errorf("AUDIT_QUEUE_SIZE: %w", err)
	}
	if c.AuditWorkers, err = envIntRange("AUDIT_WORKERS", 2, 1, 64); err != nil {
		return c, fmt.Errorf("AUDIT_WORKERS: %w", err)
	}
	c.SweepLocalTime = envOr("PREVIEW_SWEEP_AT", "03:00")
	c.SweepTZ = envOr("PREVIEW_SWEEP_TZ", "UTC")
	return c, nil
}

// HardeningWarnings returns non-fatal warnings you may want to log on startup.
func HardeningWarnings(appEnv string) []string {
	var warns []string

	c, err := OnboardingFromEnv()
	if err == nil {
		if c.SubmitTimeout > 2*time.Minute {
			warns = append(warns, fmt.Sprintf("ONBOARDING_SUBMIT_TIMEOUT=%s keeps admins waiting on a stuck database", c.SubmitTimeout))
		}
		if c.PreviewMaxAge < c.SnapshotTTL {
			warns = append(warns, "PREVIEW_MAX_AGE is shorter than ONBOARDING_SNAPSHOT_TTL; resumed wizards may lose their preview")
		}
	}

	if strings.EqualFold(appEnv, "production") {
		if u := os.Getenv("UPSTASH_REDIS_URL"); u != "" && strings.HasPrefix(u, "redis://") {
			warns = append(warns, "UPSTASH_REDIS_URL uses redis:// (no TLS). Prefer rediss:// for TLS")
		}
		if os.Getenv("UPSTASH_REDIS_URL") == "" {
			if os.Getenv("REDIS_PASSWORD") == "" || os.Getenv("REDIS_USER") == "" {
				warns = append(warns, "REDIS_ADDR provided without REDIS_USER/REDIS_PASSWORD; require auth in production")
			}
		}
		if os.Getenv("CORS_ALLOWED_ORIGINS") == "" {
			warns = append(warns, "CORS_ALLOWED_ORIGINS not set; only localhost dev origins are allowed")
		}
	}
	return warns
}

// RedisOptionsFromEnv reads the Redis connection shared by the service
// and adminctl. UPSTASH_REDIS_URL wins over the split
// REDIS_ADDR/REDIS_USER/REDIS_PASSWORD form. TLS is on unless
// REDIS_INSECURE=1.
func RedisOptionsFromEnv() (*redis.Options, error) {
	var opt *redis.Options
	if url := strings.TrimSpace(os.Getenv("UPSTASH_REDIS_URL")); url != "" {
		o, err := redis.ParseURL(url)
		if err != nil {
			return nil, fmt.Errorf("invalid UPSTASH_REDIS_URL: %w", err)
		}
		o.DialTimeout = 5 * time.Second
		opt = o
	} else {
		addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
		if addr == "" {
			return nil, errors.New("redis: set UPSTASH_REDIS_URL or REDIS_ADDR")
		}
		opt = &redis.Options{
			Addr:        addr,
			Username:    os.Getenv("REDIS_USER"),
			Password:    os.Getenv("REDIS_PASSWORD"),
			DialTimeout: 2 * time.Second,
		}
	}

	if os.Getenv("REDIS_INSECURE") == "1" {
		opt.TLSConfig = nil
	} else if opt.TLSConfig == nil {
		opt.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return opt, nil
}

// PingRedis checks connectivity with a short timeout.
func PingRedis(rdb *redis.Client, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	_, err := rdb.Ping(ctx).Result()
	return err
}

// --- helpers ---

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envDuration(key, def string) (time.Duration, error) {
	s := envOr(key, def)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return d, nil
}

func envIntRange(key string, def, min, max int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("not a number: %v", err)
	}
	if n < min || n > max {
		return 0, fmt.Errorf("must be between %d and %d", min, max)
	}
	return n, nil
}
