package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/schooldesk/internal/app/controllers"
	appMigrations "github.com/yigit/schooldesk/internal/app/migrations"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	appRepos "github.com/yigit/schooldesk/internal/app/repositories"
	appRoutes "github.com/yigit/schooldesk/internal/app/routes"
	appServices "github.com/yigit/schooldesk/internal/app/services"
	"github.com/yigit/schooldesk/internal/config"
	"github.com/yigit/schooldesk/internal/db"
	"github.com/yigit/schooldesk/internal/jobs"
	appMiddleware "github.com/yigit/schooldesk/internal/middleware"
	pkgAuth "github.com/yigit/schooldesk/internal/pkg/auth"
	"github.com/yigit/schooldesk/internal/pkg/cache"
	"github.com/yigit/schooldesk/internal/pkg/email"
	"github.com/yigit/schooldesk/internal/pkg/filestorage"
	"github.com/yigit/schooldesk/internal/pkg/logger"
	"github.com/yigit/schooldesk/internal/pkg/metrics"
	"github.com/yigit/schooldesk/internal/pkg/sms"
	"github.com/yigit/schooldesk/internal/pkg/validation"
	"github.com/yigit/schooldesk/internal/pkg/websocket"
	"github.com/yigit/schooldesk/internal/seed"
)

// Version is reported to Rollbar as the code version
var Version = "dev"

const loginLimiterClients = 10000

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos       *appRepos.Repositories
	CacheStore  cache.Store
	Cache       *cache.Service
	Storage     filestorage.FileStorage
	Hub         *websocket.Hub
	Tasks       *appServices.TaskRunner
	JWTService  *pkgAuth.JWTService
	Scheduler   *jobs.Scheduler
	Controllers *appRoutes.Controllers

	AuthService      appServices.AuthService
	UserService      appServices.UserService
	SessionCache     appServices.SessionCacheService
	AuditService     appServices.AuditService
	DashboardService appServices.DashboardService
	StaffService     appServices.StaffService
	SalaryService    appServices.StaffSalaryService
	ParentService    appServices.ParentService
	StudentService   appServices.StudentService
	RoomService      appServices.RoomService
	ClassService     appServices.ClassService
	LeaveTypeService appServices.LeaveTypeService
	FeeService       appServices.FeeService
	TimetableService appServices.TimetableService
	NoticeService    appServices.NoticeService

	AuthMiddleware *appMiddleware.AuthMiddleware
	LoginLimiter   *appMiddleware.IPRateLimiter
	WSHandler      *websocket.Handler
	Logger         zerolog.Logger
}

// ConfigPath returns the YAML config location, overridable with CONFIG_PATH
func ConfigPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return filepath.Join("configs", "config.yaml")
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
// The returned func flushes the error reporter and must be called on shutdown.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, func(), error) {
	cfg, err := config.LoadConfig(ConfigPath())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, func() {}, err
	}

	flush := func() {}
	var hooks []zerolog.Hook
	if cfg.Logging.RollbarToken != "" {
		hook, closeFn := logger.NewRollbarHook(cfg.Logging.RollbarToken, cfg.Server.Mode, Version)
		hooks = append(hooks, hook)
		flush = closeFn
	}

	lgr := logger.Configure(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Hooks:  hooks,
	})
	lgr.Info().
		Str("logLevel", logger.ParseLevel(cfg.Logging.Level).String()).
		Str("logFormat", cfg.Logging.Format).
		Bool("rollbar", len(hooks) > 0).
		Msg("Logger configured")
	return cfg, lgr, flush, nil
}

// RunMigrations applies every pending migration
func RunMigrations(cfg *config.Config, lgr zerolog.Logger) error {
	migrator, err := appMigrations.NewMigrator(cfg.GetMigrationURL(), lgr)
	if err != nil {
		return err
	}
	defer migrator.Close()

	return migrator.Up()
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dbPool.Ping(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		dbPool.Close()
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	if cfg.Database.AutoMigrate {
		lgr.Info().Msg("Running database migrations...")
		if err := RunMigrations(cfg, lgr); err != nil {
			lgr.Error().Err(err).Msg("Database migration error")
			dbPool.Close()
			return nil, fmt.Errorf("database migrations failed: %w", err)
		}
		lgr.Info().Msg("Database migrations successfully applied.")
	}

	admin := seed.AdminAccount{Email: cfg.Seed.AdminEmail, Password: cfg.Seed.AdminPassword}
	if err := seed.CreateDefaultData(context.Background(), appRepos.NewRepositories(dbPool), admin, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return dbPool, nil
}

// SetupCache builds the configured cache store
func SetupCache(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (cache.Store, error) {
	if cfg.Cache.Driver == "redis" {
		store, err := cache.NewRedisStore(ctx, cache.RedisConfig{
			Addr:      cfg.Cache.RedisAddr,
			Password:  cfg.Cache.RedisPassword,
			DB:        cfg.Cache.RedisDB,
			KeyPrefix: cfg.Cache.KeyPrefix,
		})
		if err != nil {
			return nil, err
		}
		lgr.Info().Str("addr", cfg.Cache.RedisAddr).Msg("Using redis cache")
		return store, nil
	}
	lgr.Info().Int("size", cfg.Cache.Size).Msg("Using in-memory cache")
	return cache.NewMemoryStore(cfg.Cache.Size), nil
}

// SetupStorage builds the configured avatar storage
func SetupStorage(cfg *config.Config) (filestorage.FileStorage, error) {
	if cfg.Storage.Driver == "s3" {
		return filestorage.NewS3Storage(filestorage.S3Config{
			Bucket:          cfg.Storage.S3Bucket,
			Region:          cfg.Storage.S3Region,
			AccessKeyID:     cfg.Storage.S3AccessKeyID,
			SecretAccessKey: cfg.Storage.S3SecretAccessKey,
			Endpoint:        cfg.Storage.S3Endpoint,
			PublicURL:       cfg.Storage.S3PublicURL,
		})
	}
	baseURL := strings.TrimRight(cfg.Server.PublicURL, "/") + "/uploads"
	return filestorage.NewLocalStorage(cfg.Storage.LocalPath, baseURL)
}

// SetupMailer builds the email service on top of the configured provider
func SetupMailer(cfg *config.Config, lgr zerolog.Logger) email.EmailService {
	sender := email.NewSender(email.ProviderConfig{
		Provider: cfg.Mail.Provider,
		SMTP: email.SMTPConfig{
			Host:     cfg.Mail.SMTPHost,
			Port:     cfg.Mail.SMTPPort,
			Username: cfg.Mail.SMTPUsername,
			Password: cfg.Mail.SMTPPassword,
			UseTLS:   cfg.Mail.SMTPPort == 465,
		},
		SendGridAPIKey: cfg.Mail.SendGridAPIKey,
	}, lgr)

	return email.NewEmailService(email.Config{
		AppName:     "SchoolDesk",
		FromName:    cfg.Mail.FromName,
		FromEmail:   cfg.Mail.FromAddress,
		FrontendURL: cfg.Mail.FrontendURL,
	}, sender, lgr)
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}
	var err error

	deps.Repos = appRepos.NewRepositories(dbPool)
	repos := deps.Repos

	deps.CacheStore, err = SetupCache(context.Background(), cfg, lgr)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize cache")
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}
	deps.Cache = cache.NewService(deps.CacheStore, cfg.Cache.DefaultTTL)

	deps.Storage, err = SetupStorage(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}
	avatarURL := dto.AvatarURLFunc(deps.Storage.URL)

	mailer := SetupMailer(cfg, lgr)
	smsSender := sms.NewSender(sms.Config{
		Enabled:    cfg.SMS.Enabled,
		AccountSID: cfg.SMS.TwilioAccountSID,
		AuthToken:  cfg.SMS.TwilioAuthToken,
		FromNumber: cfg.SMS.FromNumber,
	}, lgr)

	deps.Hub = websocket.NewHub(lgr)
	deps.Tasks = appServices.NewTaskRunner(lgr)
	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  cfg.JWT.AccessTokenExpiration,
		RefreshTokenExp: cfg.JWT.RefreshTokenExpiration,
		TokenIssuer:     cfg.JWT.Issuer,
	})

	// Cross-cutting services
	deps.SessionCache = appServices.NewSessionCacheService(repos.SessionRepository, deps.Cache, cfg.Session.CacheTTL, lgr)
	deps.AuditService = appServices.NewAuditService(repos.AuditLogRepository, deps.Tasks, lgr)
	deps.DashboardService = appServices.NewDashboardService(repos.DashboardRepository, deps.Cache)

	// Domain services
	deps.AuthService = appServices.NewAuthService(
		repos.UserRepository,
		repos.SessionRepository,
		repos.PasswordResetRepository,
		deps.SessionCache,
		deps.JWTService,
		mailer,
		deps.AuditService,
		deps.Tasks,
		avatarURL,
		lgr,
	)
	deps.UserService = appServices.NewUserService(
		repos.UserRepository,
		repos.SessionRepository,
		deps.SessionCache,
		deps.Storage,
		deps.AuditService,
		lgr,
	)
	deps.StaffService = appServices.NewStaffService(
		repos.StaffRepository,
		repos.UserRepository,
		repos.SessionRepository,
		deps.SessionCache,
		mailer,
		deps.AuditService,
		deps.DashboardService,
		deps.Tasks,
		avatarURL,
		lgr,
	)
	deps.SalaryService = appServices.NewStaffSalaryService(
		repos.StaffRepository,
		mailer,
		deps.AuditService,
		deps.DashboardService,
		deps.Tasks,
		avatarURL,
		lgr,
	)
	deps.ParentService = appServices.NewParentService(
		repos.ParentRepository,
		repos.StudentRepository,
		repos.UserRepository,
		repos.SessionRepository,
		deps.SessionCache,
		mailer,
		deps.AuditService,
		deps.DashboardService,
		deps.Tasks,
		avatarURL,
		lgr,
	)
	deps.StudentService = appServices.NewStudentService(
		repos.StudentRepository,
		repos.ParentRepository,
		repos.ClassRepository,
		repos.UserRepository,
		repos.SessionRepository,
		deps.SessionCache,
		mailer,
		deps.AuditService,
		deps.DashboardService,
		deps.Tasks,
		avatarURL,
		lgr,
	)
	deps.RoomService = appServices.NewRoomService(repos.RoomRepository, deps.Cache, deps.AuditService, deps.DashboardService, lgr)
	deps.ClassService = appServices.NewClassService(
		repos.ClassRepository,
		repos.RoomRepository,
		repos.StaffRepository,
		repos.StudentRepository,
		deps.AuditService,
		deps.DashboardService,
		avatarURL,
		lgr,
	)
	deps.LeaveTypeService = appServices.NewLeaveTypeService(repos.LeaveTypeRepository, deps.AuditService, deps.DashboardService)
	deps.FeeService = appServices.NewFeeService(
		repos.FeeStructureRepository,
		repos.ClassRepository,
		repos.StudentRepository,
		repos.ParentRepository,
		deps.AuditService,
	)
	deps.TimetableService = appServices.NewTimetableService(
		repos.TimetableRepository,
		repos.ClassRepository,
		repos.StaffRepository,
		repos.RoomRepository,
		deps.AuditService,
	)
	deps.NoticeService = appServices.NewNoticeService(
		repos.NoticeRepository,
		repos.UserRepository,
		deps.Hub,
		mailer,
		smsSender,
		deps.AuditService,
		deps.Tasks,
		lgr,
	)

	// HTTP layer
	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, deps.SessionCache)
	deps.LoginLimiter = appMiddleware.NewIPRateLimiter(cfg.RateLimit.LoginRPS, cfg.RateLimit.LoginBurst, loginLimiterClients)
	deps.WSHandler = websocket.NewHandler(deps.Hub, cfg.Server.CORSOrigins, lgr)

	deps.Controllers = &appRoutes.Controllers{
		Auth:      appControllers.NewAuthController(deps.AuthService),
		User:      appControllers.NewUserController(deps.UserService),
		Staff:     appControllers.NewStaffController(deps.StaffService, deps.SalaryService),
		Parent:    appControllers.NewParentController(deps.ParentService),
		Student:   appControllers.NewStudentController(deps.StudentService, deps.FeeService),
		Room:      appControllers.NewRoomController(deps.RoomService),
		Class:     appControllers.NewClassController(deps.ClassService),
		LeaveType: appControllers.NewLeaveTypeController(deps.LeaveTypeService),
		Fee:       appControllers.NewFeeController(deps.FeeService),
		Timetable: appControllers.NewTimetableController(deps.TimetableService),
		Notice:    appControllers.NewNoticeController(deps.NoticeService),
		Admin:     appControllers.NewAdminController(deps.AuditService, deps.DashboardService),
	}

	deps.Scheduler = jobs.NewScheduler(lgr)
	if cfg.Jobs.Enabled {
		if err := SetupJobs(cfg, deps); err != nil {
			return nil, err
		}
	}

	return deps, nil
}

// SetupJobs registers the maintenance jobs on the scheduler
func SetupJobs(cfg *config.Config, deps *Dependencies) error {
	if err := deps.Scheduler.Add(jobs.JobPurgeSessions, cfg.Jobs.SessionPurgeSpec,
		jobs.PurgeSessions(deps.Repos.SessionRepository, cfg.Jobs.SessionRetention, deps.Logger)); err != nil {
		return err
	}
	return deps.Scheduler.Add(jobs.JobPurgeResetTokens, cfg.Jobs.ResetTokenPurge,
		jobs.PurgeResetTokens(deps.Repos.PasswordResetRepository, deps.Logger))
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	if err := validation.RegisterGinValidators(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	router := gin.New()
	router.Use(
		appMiddleware.RequestID(),
		appMiddleware.Recovery(),
		appMiddleware.RequestLogger(),
		appMiddleware.Metrics(),
		appMiddleware.CORS(cfg.Server.CORSOrigins),
	)

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware, deps.LoginLimiter, deps.WSHandler)

	if local, ok := deps.Storage.(*filestorage.LocalStorage); ok {
		router.Static("/uploads", local.BasePath())
		lgr.Info().Str("path", local.BasePath()).Msg("Static file serving configured for uploads directory")
	}

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})
	router.GET("/health", healthHandler(dbPool, deps.CacheStore))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	return router, nil
}

type pinger interface {
	Ping(ctx context.Context) error
}

func healthHandler(database, cacheStore pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := gin.H{"database": "ok", "cache": "ok"}
		healthy := true
		if err := database.Ping(ctx); err != nil {
			status["database"] = "unavailable"
			healthy = false
		}
		if err := cacheStore.Ping(ctx); err != nil {
			status["cache"] = "unavailable"
		}

		if !healthy {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeDatabaseError, "Service unavailable").
				WithDetails("database is not reachable")
			c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse(errorDetail))
			return
		}
		c.JSON(http.StatusOK, dto.NewStructuredResponse(status, "ok"))
	}
}
