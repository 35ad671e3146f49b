//go:build e2e

package e2e

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"circulation-engine/cmd/bootstrap"
	"circulation-engine/cmd/bootstrap/components"
	"circulation-engine/internal/infra/db"
	"circulation-engine/internal/infra/vendors"
	"circulation-engine/internal/infra/vendors/restapi"
	"circulation-engine/internal/pkg/config"
	"circulation-engine/tests/common/dbtest"

	"github.com/docker/go-connections/nat"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/fx"
)

const (
	pgUser     = "test"
	pgPassword = "testpass"
	pgPort     = nat.Port("5432/tcp")
)

var (
	containerOnce sync.Once
	container     testcontainers.Container
	containerErr  error
)

type endpoint struct {
	Host string
	Port nat.Port
}

func (e endpoint) dsn(dbName string) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", pgUser, pgPassword, e.Host, e.Port.Port(), dbName)
}

// Environment is everything one suite talks to: its own database, the
// assembled router and the vendor stub behind the restapi collection.
type Environment struct {
	DB     *pgxpool.Pool
	Router *gin.Engine
	Config config.Config
	Vendor *VendorStub
}

// ------------------------------------------------------------
// スイート毎の環境構築
// ------------------------------------------------------------
func newEnvironment(t *testing.T) Environment {
	t.Helper()
	gin.SetMode(gin.TestMode)

	pg := postgresEndpoint(t)
	pool, dbConfig := createDatabase(t, pg)

	// ベンダーAPIはプロセス内のスタブで代替
	stub := NewVendorStub()
	t.Cleanup(stub.Close)

	router, cfg := startApp(t, pool, dbConfig, testCollections(stub.URL()))

	slog.Info("E2E環境の準備が完了しました", "postgres", pg.Host+":"+pg.Port.Port(), "database", dbConfig.DBName, "vendor", stub.URL())
	return Environment{DB: pool, Router: router, Config: cfg, Vendor: stub}
}

// ------------------------------------------------------------
// PostgreSQLコンテナ（プロセス内で一度だけ起動）
// ------------------------------------------------------------
func postgresEndpoint(t *testing.T) endpoint {
	t.Helper()

	containerOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
		defer cancel()

		container, containerErr = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "postgres:17",
				ExposedPorts: []string{string(pgPort)},
				Env: map[string]string{
					"POSTGRES_USER":     pgUser,
					"POSTGRES_PASSWORD": pgPassword,
					"POSTGRES_DB":       "postgres",
				},
				// データはRAMに置き、耐久性の設定は切る
				Tmpfs: map[string]string{"/var/lib/postgresql/data": "rw,size=512m"},
				Cmd: []string{
					"postgres",
					"-c", "fsync=off",
					"-c", "full_page_writes=off",
					"-c", "synchronous_commit=off",
					"-c", "max_connections=200",
					"-c", "log_statement=none",
				},
				WaitingFor: wait.ForSQL(pgPort, "pgx", func(host string, port nat.Port) string {
					return endpoint{Host: host, Port: port}.dsn("postgres")
				}).WithStartupTimeout(time.Minute),
				Labels: map[string]string{"purpose": "circulation-e2e"},
			},
			Started: true,
		})
	})
	require.NoError(t, containerErr, "PostgreSQLコンテナの起動に失敗")

	ctx := context.Background()
	host, err := container.Host(ctx)
	require.NoError(t, err, "コンテナのホスト取得に失敗")
	port, err := container.MappedPort(ctx, pgPort)
	require.NoError(t, err, "コンテナのポート取得に失敗")

	return endpoint{Host: host, Port: port}
}

// ------------------------------------------------------------
// スイート専用データベースの作成とマイグレーション
// ------------------------------------------------------------
func createDatabase(t *testing.T, pg endpoint) (*pgxpool.Pool, config.DBConfig) {
	t.Helper()

	dbName := "circ_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	quoted := pgx.Identifier{dbName}.Sanitize()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	admin, err := pgxpool.New(ctx, pg.dsn("postgres"))
	require.NoError(t, err, "管理者接続に失敗")
	defer admin.Close()

	// 並列実行時はテンプレートDBのロックで失敗することがあるため再試行する
	for attempt := 1; ; attempt++ {
		_, err = admin.Exec(ctx, "CREATE DATABASE "+quoted)
		if err == nil || attempt == 5 {
			break
		}
		slog.Warn("データベース作成を再試行中", "attempt", attempt, "error", err.Error())
		time.Sleep(time.Duration(attempt) * 500 * time.Millisecond)
	}
	require.NoError(t, err, "テスト用データベースの作成に失敗")

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		admin, err := pgxpool.New(ctx, pg.dsn("postgres"))
		if err != nil {
			slog.Warn("クリーンアップ用の接続に失敗しました", "database", dbName, "error", err.Error())
			return
		}
		defer admin.Close()
		if _, err := admin.Exec(ctx, "DROP DATABASE IF EXISTS "+quoted+" WITH (FORCE)"); err != nil {
			slog.Warn("テストデータベースの削除に失敗しました", "database", dbName, "error", err.Error())
		}
	})

	dbConfig := config.DBConfig{
		Host:     pg.Host,
		Port:     pg.Port.Port(),
		User:     pgUser,
		Password: pgPassword,
		DBName:   dbName,
		SSLMode:  "disable",
		TimeZone: "UTC",
		MaxConns: 10,
	}

	pool, closePool, err := db.Connect(dbConfig)
	require.NoError(t, err, "データベース接続に失敗")
	t.Cleanup(closePool)

	require.NoError(t, applyMigrations(ctx, pool), "マイグレーションに失敗")
	require.NoError(t, dbtest.SeedReferenceData(pool), "参照データの投入に失敗")

	return pool, dbConfig
}

// applyMigrations runs every migrations/*.sql file in name order.
func applyMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	root, err := moduleRoot()
	if err != nil {
		return err
	}
	files, err := filepath.Glob(filepath.Join(root, "migrations", "*.sql"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no migrations under %s", root)
	}
	sort.Strings(files)

	for _, file := range files {
		sqlText, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read %s: %w", file, err)
		}
		if _, err := pool.Exec(ctx, string(sqlText)); err != nil {
			return fmt.Errorf("apply %s: %w", filepath.Base(file), err)
		}
	}
	return nil
}

// moduleRoot walks up from the package directory `go test` runs in.
func moduleRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found above working directory")
		}
		dir = parent
	}
}

// ------------------------------------------------------------
// fxアプリケーションの組み立て
// ------------------------------------------------------------
func startApp(t *testing.T, pool *pgxpool.Pool, dbConfig config.DBConfig, collections *vendor.CollectionsFile) (*gin.Engine, config.Config) {
	t.Helper()

	var router *gin.Engine
	cfg := config.NewTestConfig()
	cfg.DB = dbConfig

	app := fx.New(
		fx.Supply(pool, cfg),
		fx.Provide(func() *gin.Engine { return gin.New() }),
		// コレクション設定ファイルの代わりにスタブ向けの設定を注入
		fx.Provide(
			func() *vendor.CollectionsFile { return collections },
			components.NewHTTPClient,
			vendor.NewMetrics,
			components.NewRegistry,
		),
		bootstrap.LoggerModule,
		bootstrap.TelemetryModule,
		bootstrap.JWTModule,
		components.PersistenceModule,
		components.AnalyticsModule,
		components.UseCaseModule,
		components.AuthModule,
		components.HandlerModule,
		fx.Populate(&router),
		fx.NopLogger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, app.Start(ctx), "fxアプリケーションの起動に失敗")

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.Stop(ctx); err != nil {
			slog.Warn("fxアプリケーションの停止に失敗しました", "error", err.Error())
		}
	})

	return router, cfg
}

// testCollections serves the seeded library from one local collection and
// one restapi collection backed by the vendor stub.
func testCollections(vendorURL string) *vendor.CollectionsFile {
	return &vendor.CollectionsFile{
		Collections: []vendor.CollectionConfig{
			{
				ID:        dbtest.LocalCollectionID,
				Name:      "Open Access",
				Protocol:  vendor.ProtocolLocal,
				Libraries: []uuid.UUID{dbtest.SeedLibraryID},
			},
			{
				ID:         dbtest.VendorCollectionID,
				Name:       "Stub Vendor",
				Protocol:   restapi.Protocol,
				DataSource: "Stub Vendor",
				Libraries:  []uuid.UUID{dbtest.SeedLibraryID},
				BaseURL:    vendorURL,
				Timeout:    5 * time.Second,
			},
		},
	}
}

// ------------------------------------------------------------
// E2Eテストスイートで共通のセットアップ
// ------------------------------------------------------------
type SharedSuite struct {
	suite.Suite
	Environment
}

func (s *SharedSuite) SetupSuite() {
	s.Environment = newEnvironment(s.T())
}

// SetupSubTest gives every subtest an empty database and a vendor with no
// loans or holds.
func (s *SharedSuite) SetupSubTest() {
	require.NoError(s.T(), dbtest.ResetDB(s.DB), "データベースの初期化に失敗")
	s.Vendor.Reset()
}
