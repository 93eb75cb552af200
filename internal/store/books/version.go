package books

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ListingVersionKey is read by listing caches to build their key prefix.
const ListingVersionKey = "catalog:ver"

// BumpListingVersion invalidates cached listings after a catalog write.
// A nil client is a no-op.
func BumpListingVersion(ctx context.Context, rdb *redis.Client) error {
	if rdb == nil {
		return nil
	}
	shortTO := 150 * time.Millisecond
	if v := os.Getenv("CATALOG_CACHE_TIMEOUT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			shortTO = time.Duration(ms) * time.Millisecond
		}
	}
	cctx, cancel := context.WithTimeout(ctx, shortTO)
	defer cancel()
	if _, err := rdb.Incr(cctx, ListingVersionKey).Result(); err != nil {
		return fmt.Errorf("bump listing version failed: %w", err)
	}
	return nil
}
