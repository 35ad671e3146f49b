//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"circulation-engine/internal/pkg/pin"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// the minimal interface required for test DB operations.
type DBLike interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Seeded by SeedReferenceData and stable across resets so collection
// configuration can refer to them.
var (
	SeedLibraryID      = uuid.MustParse("8f1d6a52-0c1b-4d0e-9a77-2f4c3b1e5d01")
	SeedPatronID       = uuid.MustParse("3c2b9e7a-5f14-4b8d-8e21-6a0d4c9f7b02")
	LocalCollectionID  = uuid.MustParse("b7e4f1c3-2a9d-4e6b-8c05-1d3f5a7b9c03")
	VendorCollectionID = uuid.MustParse("e5a3c1b9-7d2f-4a8e-b604-9c1e3f5d7a04")
)

const (
	SeedBarcode = "23333000000042"
	SeedPIN     = "1234"
)

var (
	pinHashOnce sync.Once
	pinHash     string
	pinHashErr  error
)

func seedPINHash() (string, error) {
	pinHashOnce.Do(func() {
		pinHash, pinHashErr = pin.Hash(SeedPIN)
	})
	return pinHash, pinHashErr
}

// CreateTestPatron registers a patron whose PIN is SeedPIN.
func CreateTestPatron(t *testing.T, db DBLike, libraryID uuid.UUID, barcode string) uuid.UUID {
	t.Helper()

	hash, err := seedPINHash()
	require.NoError(t, err)

	patronID := uuid.New()
	ctx := context.Background()
	tag, err := db.Exec(ctx, `INSERT INTO patrons (id, library_id, authorization_identifier, pin_hash)
		VALUES ($1, $2, $3, $4) ON CONFLICT (authorization_identifier) DO NOTHING`,
		patronID, libraryID, barcode, hash)
	require.NoError(t, err)

	if tag.RowsAffected() == 0 {
		_ = db.QueryRow(ctx, "SELECT id FROM patrons WHERE authorization_identifier = $1", barcode).Scan(&patronID)
	}

	return patronID
}

type PoolFixture struct {
	CollectionID      uuid.UUID
	DataSource        string
	IdentifierType    string
	Identifier        string
	OpenAccess        bool
	LicensesOwned     int
	LicensesAvailable int
	ContentType       string
	DRMScheme         string
}

// CreateTestPool inserts a license pool with a single delivery mechanism.
func CreateTestPool(t *testing.T, db DBLike, f PoolFixture) uuid.UUID {
	t.Helper()

	if f.DataSource == "" {
		f.DataSource = "Test Vendor"
	}
	if f.IdentifierType == "" {
		f.IdentifierType = "ISBN"
	}
	if f.ContentType == "" {
		f.ContentType = "application/epub+zip"
	}

	poolID := uuid.New()
	ctx := context.Background()
	_, err := db.Exec(ctx, `INSERT INTO license_pools
		(id, collection_id, data_source_name, identifier_type, identifier, open_access, licenses_owned, licenses_available)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		poolID, f.CollectionID, f.DataSource, f.IdentifierType, f.Identifier, f.OpenAccess, f.LicensesOwned, f.LicensesAvailable)
	require.NoError(t, err)

	_, err = db.Exec(ctx, `INSERT INTO license_pool_delivery_mechanisms (license_pool_id, content_type, drm_scheme)
		VALUES ($1, $2, $3)`, poolID, f.ContentType, f.DRMScheme)
	require.NoError(t, err)

	return poolID
}

func CountRows(t *testing.T, db DBLike, table string, patronID uuid.UUID) int {
	t.Helper()

	var n int
	err := db.QueryRow(context.Background(), "SELECT count(*) FROM "+table+" WHERE patron_id = $1", patronID).Scan(&n)
	require.NoError(t, err)
	return n
}

// inserts basic reference data needed by tests
func SeedReferenceData(pool *pgxpool.Pool) error {
	ctx := context.Background()

	hash, err := seedPINHash()
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO libraries (id, name, short_name) VALUES ($1, 'Springfield Public Library', 'SPL')
		ON CONFLICT (id) DO NOTHING;
	`, SeedLibraryID)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO patrons (id, library_id, authorization_identifier, pin_hash) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING;
	`, SeedPatronID, SeedLibraryID, SeedBarcode, hash)
	if err != nil {
		return err
	}

	return nil
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// truncates all tables and reseeds reference data
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('schema_migrations')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	if _, err := pool.Exec(ctx, sqlAny.(string)); err != nil {
		return err
	}

	return SeedReferenceData(pool)
}
