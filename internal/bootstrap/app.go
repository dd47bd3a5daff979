package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/dashboard"
	"resume-builder/internal/editor"
	"resume-builder/internal/gateway"
	remotegateway "resume-builder/internal/gateway/remote"
	"resume-builder/internal/llm"
	"resume-builder/internal/llm/gemini"
	"resume-builder/internal/llm/openai"
	"resume-builder/internal/services/health"
	"resume-builder/internal/shared/auth"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/httpapi"
	"resume-builder/internal/shared/server"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/storage/db"
	"resume-builder/internal/shared/storage/object"
	localstore "resume-builder/internal/shared/storage/object/local"
	s3store "resume-builder/internal/shared/storage/object/s3"
	"resume-builder/resume/augment"
	remoteaugment "resume-builder/resume/augment/remote"
	"resume-builder/resume/location"
	"resume-builder/resume/preview"
)

// App holds shared dependencies and the wired router.
type App struct {
	Config           config.Config
	Router           *gin.Engine
	DB               *sql.DB
	Store            object.ObjectStore
	Gateway          gateway.Gateway
	Improver         augment.Improver
	Locations        *location.Index
	EditorService    *editor.Service
	DashboardService *dashboard.Service
	EditorHandler    *editor.Handler
	DashboardHandler *dashboard.Handler
	ImproveLimiter   *middleware.RateLimiter
}

// Overrides replaces individual dependencies, mainly for tests. Nil fields
// are built from config.
type Overrides struct {
	Gateway  gateway.Gateway
	Improver augment.Improver
	Store    object.ObjectStore
	Now      func() time.Time
}

// Build prepares dependencies from cfg and wires the router.
func Build(cfg config.Config) (*App, error) {
	return BuildWith(cfg, Overrides{})
}

// BuildWith is Build with some dependencies supplied by the caller.
func BuildWith(cfg config.Config, o Overrides) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()
	app := &App{Config: cfg}

	gw := o.Gateway
	if gw == nil {
		var err error
		gw, app.DB, err = buildGateway(ctx, cfg)
		if err != nil {
			return nil, err
		}
	}
	app.Gateway = gw

	store := o.Store
	if store == nil {
		var err error
		store, err = buildStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
	}
	app.Store = store

	improver := o.Improver
	if improver == nil {
		var err error
		improver, err = NewImprover(ctx, cfg)
		if err != nil {
			return nil, err
		}
	}
	app.Improver = improver

	idx, err := buildLocations(cfg)
	if err != nil {
		return nil, err
	}
	app.Locations = idx

	var pdf editor.PDFRenderer
	if cfg.ChromePDF {
		exporter := preview.NewPDFExporter()
		exporter.ExecPath = cfg.ChromeExecPath
		pdf = exporter
	}

	app.EditorService = editor.NewService(editor.Config{
		Gateway:   gw,
		Improver:  improver,
		Locations: idx,
		Store:     store,
		PDF:       pdf,
		Now:       o.Now,
	})
	app.DashboardService = dashboard.NewService(gw)
	app.EditorHandler = editor.NewHandler(app.EditorService)
	app.DashboardHandler = dashboard.NewHandler(app.DashboardService)

	verifier, err := auth.NewVerifier(cfg.JWTSecret, cfg.Env)
	if err != nil {
		return nil, err
	}
	app.ImproveLimiter = middleware.NewRateLimiter(o.Now)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:           cfg,
		EditorHandler:    app.EditorHandler,
		DashboardHandler: app.DashboardHandler,
		Health:           health.NewService(app.DB, cfg.Gateway),
		Verifier:         verifier,
		ImproveLimiter:   app.ImproveLimiter,
	})
	return app, nil
}

func buildGateway(ctx context.Context, cfg config.Config) (gateway.Gateway, *sql.DB, error) {
	switch cfg.Gateway {
	case "remote":
		api := httpapi.New(cfg.APIBaseURL, cfg.APIToken, 0)
		return remotegateway.New(api), nil, nil
	case "postgres":
		sqlDB, err := buildDB(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		if sqlDB == nil {
			return gateway.NewMemoryRepo(), nil, nil
		}
		return &gateway.PGRepo{DB: sqlDB}, sqlDB, nil
	default:
		return gateway.NewMemoryRepo(), nil, nil
	}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory gateway")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory gateway: %v", err)
			return nil, nil
		}
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

// NewImprover builds the improver selected by cfg. It returns nil when
// augmentation is switched off, which the editor reports as not configured.
func NewImprover(ctx context.Context, cfg config.Config) (augment.Improver, error) {
	limiter := llm.NewLimiter(cfg.AugmentRatePerSec, cfg.AugmentBurst)
	switch cfg.AugmentProvider {
	case "none":
		return nil, nil
	case "openai":
		client, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel, openai.Options{
			BaseURL: cfg.OpenAIBaseURL,
			Timeout: cfg.LLMTimeout,
		})
		if err != nil {
			return nil, err
		}
		return llm.NewImprover(client, limiter), nil
	case "gemini":
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.LLMModel)
		if err != nil {
			return nil, err
		}
		return llm.NewImprover(client, limiter), nil
	default:
		api := httpapi.New(cfg.APIBaseURL, cfg.APIToken, 0)
		return remoteaugment.New(api), nil
	}
}

func buildLocations(cfg config.Config) (*location.Index, error) {
	if strings.TrimSpace(cfg.LocationDataPath) == "" {
		return location.Default(), nil
	}
	idx, err := location.LoadFile(cfg.LocationDataPath)
	if err != nil {
		return nil, fmt.Errorf("load location data: %w", err)
	}
	return idx, nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
