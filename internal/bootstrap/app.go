package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"mediavault-backend/internal/files"
	"mediavault-backend/internal/refs"
	"mediavault-backend/internal/shared/config"
	"mediavault-backend/internal/shared/server"
	"mediavault-backend/internal/shared/storage/db"
	"mediavault-backend/internal/shares"
	"mediavault-backend/internal/users"
)

// App holds shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB

	UsersRepo  users.Repo
	FilesRepo  files.Repo
	SharesRepo shares.Repo

	UsersService  *users.Service
	FilesService  *files.Service
	SharesService *shares.Service

	UsersHandler  *users.Handler
	FilesHandler  *files.Handler
	SharesHandler *shares.Handler

	// MemoryRefs tracks post/message attachments in memory mode; nil
	// when a database is connected.
	MemoryRefs *refs.MemoryRefs
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
	}
	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:       app.Config,
		FilesHandler: app.FilesHandler,
		ShareHandler: app.SharesHandler,
		UsersHandler: app.UsersHandler,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: migrations failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

func buildServices(app *App) {
	var userRepo users.Repo
	var fileRepo files.Repo
	var shareRepo shares.Repo

	if app.DB != nil {
		userRepo = &users.PGRepo{DB: app.DB}
		fileRepo = &files.PGRepo{DB: app.DB}
		shareRepo = &shares.PGRepo{DB: app.DB}
	} else {
		memUsers := users.NewMemoryRepo()
		memFiles := files.NewMemoryRepo(memUsers)
		memShares := shares.NewMemoryRepo()
		memRefs := refs.NewMemoryRefs()
		// Deletion cleanup in memory mode mirrors the SQL cascade:
		// null external references, then drop the file's grants.
		memFiles.AddCleanup(memRefs.NullifyFileReferences)
		memFiles.AddCleanup(memShares.DeleteByFile)
		userRepo = memUsers
		fileRepo = memFiles
		shareRepo = memShares
		app.MemoryRefs = memRefs
	}

	userSvc := users.NewService(userRepo)
	fileSvc := files.NewService(fileRepo, userSvc, app.Config.MaxFileBytes)
	shareSvc := shares.NewService(shareRepo, fileSvc, app.Config.PublicBaseURL)

	app.UsersRepo = userRepo
	app.FilesRepo = fileRepo
	app.SharesRepo = shareRepo
	app.UsersService = userSvc
	app.FilesService = fileSvc
	app.SharesService = shareSvc
	app.UsersHandler = users.NewHandler(userSvc)
	app.FilesHandler = files.NewHandler(fileSvc)
	app.SharesHandler = shares.NewHandler(shareSvc)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
