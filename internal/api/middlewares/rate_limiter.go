package middlewares

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/5w1tchy/books-admin/internal/api/apperr"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// KeyFunc names the bucket a request is counted against.
type KeyFunc func(r *http.Request) string

func PerIPKey(prefix string) KeyFunc {
	return func(r *http.Request) string {
		ip := clientIP(r)
		if ip == "" {
			ip = "unknown"
		}
		return prefix + ":ip:" + ip
	}
}

// PerUserKey keys on the authenticated admin and falls back to the client
// IP when the route is not behind the auth gate.
func PerUserKey(prefix string) KeyFunc {
	byIP := PerIPKey(prefix)
	return func(r *http.Request) string {
		if id, ok := UserIDFrom(r.Context()); ok {
			return prefix + ":user:" + id
		}
		return byIP(r)
	}
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

type decision struct {
	allowed   bool
	remaining int64
	retry     time.Duration
}

// limiter is one counting policy backed by Redis.
type limiter interface {
	policy() string
	capacity() int
	take(ctx context.Context, key string) (decision, error)
}

// limit runs next when l admits the request. Redis failures let the
// request through.
func limit(l limiter, keyFn KeyFunc, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := keyFn(r)
		d, err := l.take(r.Context(), key)
		if err != nil {
			log.Printf("[ratelimit] %s: redis error, allowing request: %v", l.policy(), err)
			next.ServeHTTP(w, r)
			return
		}

		h := w.Header()
		h.Set("X-RateLimit-Policy", l.policy())
		h.Set("X-RateLimit-Limit", strconv.Itoa(l.capacity()))
		h.Set("X-RateLimit-Remaining", strconv.FormatInt(max(d.remaining, 0), 10))

		if !d.allowed {
			sec := int64((d.retry + time.Second - 1) / time.Second)
			if sec < 1 {
				sec = 1
			}
			log.Printf("[ratelimit] %s blocked key=%s retry=%ds", l.policy(), key, sec)
			h.Set("Retry-After", strconv.FormatInt(sec, 10))
			apperr.Write(w, r, apperr.Problem{
				Status:    http.StatusTooManyRequests,
				Title:     "Too Many Requests",
				Detail:    "rate limit exceeded",
				Retryable: true,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// bucketScript refills and takes one token atomically using the server
// clock. Replies {allowed, whole tokens left, retry ms}.
var bucketScript = redis.NewScript(`
local rate = tonumber(ARGV[1])
local cap  = tonumber(ARGV[2])
local t    = redis.call('TIME')
local now  = tonumber(t[1]) * 1000 + math.floor(tonumber(t[2]) / 1000)

local st = redis.call('HMGET', KEYS[1], 'tokens', 'ts')
local tokens = tonumber(st[1]) or cap
local ts     = tonumber(st[2]) or now
if now > ts then
  tokens = math.min(cap, tokens + (now - ts) * rate / 1000.0)
end

local ok, wait = 0, 0
if tokens >= 1 then
  tokens = tokens - 1
  ok = 1
else
  wait = math.ceil((1 - tokens) * 1000.0 / rate)
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'ts', now)
redis.call('PEXPIRE', KEYS[1], math.ceil(cap * 1000.0 / rate))
return {ok, math.floor(tokens), wait}
`)

// RedisTokenBucket allows bursts up to burst requests, refilled at
// ratePerS per second.
type RedisTokenBucket struct {
	rdb      *redis.Client
	keyFn    KeyFunc
	ratePerS float64
	burst    int
}

func NewRedisTokenBucket(rdb *redis.Client, ratePerSecond float64, burst int, keyFn KeyFunc) *RedisTokenBucket {
	return &RedisTokenBucket{rdb: rdb, keyFn: keyFn, ratePerS: ratePerSecond, burst: burst}
}

func (tb *RedisTokenBucket) policy() string { return "token-bucket" }
func (tb *RedisTokenBucket) capacity() int  { return tb.burst }

func (tb *RedisTokenBucket) take(ctx context.Context, key string) (decision, error) {
	res, err := bucketScript.Run(ctx, tb.rdb, []string{key},
		strconv.FormatFloat(tb.ratePerS, 'f', -1, 64), tb.burst).Int64Slice()
	if err != nil {
		return decision{}, err
	}
	if len(res) != 3 {
		return decision{}, fmt.Errorf("token bucket: unexpected reply %v", res)
	}
	return decision{
		allowed:   res[0] == 1,
		remaining: res[1],
		retry:     time.Duration(res[2]) * time.Millisecond,
	}, nil
}

func (tb *RedisTokenBucket) Middleware(next http.Handler) http.Handler {
	return limit(tb, tb.keyFn, next)
}

// RedisSlidingWindow admits at most limit requests in any window span,
// tracked as a sorted set of request timestamps.
type RedisSlidingWindow struct {
	rdb    *redis.Client
	keyFn  KeyFunc
	limit  int
	window time.Duration
}

func NewRedisSlidingWindow(rdb *redis.Client, limit int, window time.Duration, keyFn KeyFunc) *RedisSlidingWindow {
	return &RedisSlidingWindow{rdb: rdb, keyFn: keyFn, limit: limit, window: window}
}

func (sw *RedisSlidingWindow) policy() string { return "sliding-window" }
func (sw *RedisSlidingWindow) capacity() int  { return sw.limit }

func (sw *RedisSlidingWindow) take(ctx context.Context, key string) (decision, error) {
	now := time.Now()
	cutoff := now.Add(-sw.window).UnixMilli()

	pipe := sw.rdb.TxPipeline()
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixMilli()), Member: uuid.NewString()})
	pipe.ZRemRangeByScore(ctx, key, "-inf", strconv.FormatInt(cutoff, 10))
	card := pipe.ZCard(ctx, key)
	oldest := pipe.ZRangeWithScores(ctx, key, 0, 0)
	pipe.PExpire(ctx, key, sw.window+time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		return decision{}, err
	}

	count := card.Val()
	d := decision{
		allowed:   count <= int64(sw.limit),
		remaining: int64(sw.limit) - count,
	}
	if !d.allowed {
		d.retry = time.Second
		if zs := oldest.Val(); len(zs) == 1 {
			frees := time.UnixMilli(int64(zs[0].Score)).Add(sw.window)
			if wait := frees.Sub(now); wait > d.retry {
				d.retry = wait
			}
		}
	}
	return d, nil
}

func (sw *RedisSlidingWindow) Middleware(next http.Handler) http.Handler {
	return limit(sw, sw.keyFn, next)
}
