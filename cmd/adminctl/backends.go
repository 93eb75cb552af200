package main

import (
	"context"

	admin "github.com/5w1tchy/books-admin/internal/api/handlers/admin"
	"github.com/5w1tchy/books-admin/internal/maintenance"
	"github.com/5w1tchy/books-admin/internal/repository/sqlconnect"
	jwtutil "github.com/5w1tchy/books-admin/internal/security/jwt"
	storage "github.com/5w1tchy/books-admin/internal/storage/s3"
	adminstore "github.com/5w1tchy/books-admin/internal/store/admin"
	"github.com/5w1tchy/books-admin/internal/store/wizardsnap"
	"github.com/5w1tchy/books-admin/internal/validate"
	"github.com/redis/go-redis/v9"
)

type auditLister interface {
	ListAudit(ctx context.Context, f admin.AuditFilter) ([]admin.AuditRow, int, error)
}

type snapshotStore interface {
	Load(ctx context.Context, owner string) (wizardsnap.Snapshot, bool, error)
	Delete(ctx context.Context, owner string) error
}

// backends open the service's stores on demand. Each opener returns a
// close func the command must call.
type backends struct {
	audit     func(ctx context.Context) (auditLister, func(), error)
	snapshots func(ctx context.Context) (snapshotStore, func(), error)
	previews  func(ctx context.Context) (maintenance.Sweeper, error)
	tokens    func() (*jwtutil.Verifier, error)
}

func defaultBackends() *backends {
	return &backends{
		audit: func(ctx context.Context) (auditLister, func(), error) {
			db, err := sqlconnect.ConnectDB(ctx)
			if err != nil {
				return nil, nil, err
			}
			return adminstore.New(db), func() { db.Close() }, nil
		},
		snapshots: func(ctx context.Context) (snapshotStore, func(), error) {
			rdb, err := redisFromEnv()
			if err != nil {
				return nil, nil, err
			}
			return wizardsnap.New(rdb, wizardsnap.DefaultTTL), func() { rdb.Close() }, nil
		},
		previews: func(ctx context.Context) (maintenance.Sweeper, error) {
			c, err := storage.NewR2Client(ctx)
			if err != nil {
				return nil, err
			}
			return storage.NewPreviewStore(c, storage.DefaultPreviewTTL), nil
		},
		tokens: jwtutil.VerifierFromEnv,
	}
}

// redisFromEnv reads the same Redis settings as the service.
func redisFromEnv() (*redis.Client, error) {
	opt, err := validate.RedisOptionsFromEnv()
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opt), nil
}
