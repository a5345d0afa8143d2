package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	accountsapi "reno_server/server/accounts/api"
	accountsrepo "reno_server/server/accounts/repository"
	accountssvc "reno_server/server/accounts/service"
	commonauth "reno_server/server/common/auth"
	"reno_server/server/common/infra/cache"
	"reno_server/server/common/infra/db"
	"reno_server/server/common/infra/object"
	"reno_server/server/common/middleware"
	projectsapi "reno_server/server/projects/api"
	projectsrepo "reno_server/server/projects/repository"
	projectssvc "reno_server/server/projects/service"
	uploadsapi "reno_server/server/uploads/api"
	uploadssvc "reno_server/server/uploads/service"
)

type Config struct {
	Port           string
	PostgresDSN    string
	RedisAddr      string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	JWTSecret      string
	JWTTTL         time.Duration
	AllowedOrigins []string
	Production     bool
	RequireGrant   bool
	VerifyObject   bool
}

type Server struct {
	HTTPServer *http.Server
	DB         *pgxpool.Pool
	Redis      *redis.Client
}

func NewServer(cfg Config) (*Server, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	authSvc, err := commonauth.NewService(cfg.JWTSecret, cfg.JWTTTL, cfg.Production)
	if err != nil {
		return nil, fmt.Errorf("initialize token service: %w", err)
	}

	pool, err := db.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("initialize postgres: %w", err)
	}
	if err := db.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	redisClient := cache.NewClient(cfg.RedisAddr)
	if err := cache.Ping(ctx, redisClient); err != nil {
		pool.Close()
		return nil, fmt.Errorf("initialize redis: %w", err)
	}

	minioClient, err := object.NewClient(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("initialize object storage: %w", err)
	}
	if err := object.EnsureBucket(ctx, minioClient, cfg.MinioBucket); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure bucket %s: %w", cfg.MinioBucket, err)
	}

	userRepo := accountsrepo.NewUserRepository(pool)
	projectRepo := projectsrepo.NewProjectRepository(pool)

	accountSvc := accountssvc.NewAccountService(userRepo, authSvc)
	projectSvc := projectssvc.NewProjectService(projectRepo)
	grantTracker := uploadssvc.NewGrantTracker(redisClient)
	uploadSvc := uploadssvc.NewUploadService(minioClient, projectSvc, grantTracker, uploadssvc.Config{
		Bucket:        cfg.MinioBucket,
		PublicBaseURL: object.PublicBaseURL(minioClient, cfg.MinioBucket),
		RequireGrant:  cfg.RequireGrant,
		VerifyObject:  cfg.VerifyObject,
	})

	r := NewRouter(cfg.AllowedOrigins, authSvc, accountSvc, projectSvc, uploadSvc)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  20 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{HTTPServer: httpServer, DB: pool, Redis: redisClient}, nil
}

// NewRouter wires middleware and routes; split from NewServer so handler
// tests can build an engine without postgres, redis, or minio.
func NewRouter(
	allowedOrigins []string,
	authSvc *commonauth.Service,
	accountSvc *accountssvc.AccountService,
	projectSvc *projectssvc.ProjectService,
	uploadSvc *uploadssvc.UploadService,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(allowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	public := r.Group("")
	authed := r.Group("")
	authed.Use(middleware.AuthRequired(authSvc))

	accountsapi.NewHandler(accountSvc).RegisterRoutes(public, authed)
	projectsapi.NewHandler(projectSvc).RegisterRoutes(authed)
	uploadsapi.NewHandler(uploadSvc).RegisterRoutes(authed)

	return r
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.Redis != nil {
		defer s.Redis.Close()
	}
	if s.DB != nil {
		defer s.DB.Close()
	}
	return s.HTTPServer.Shutdown(ctx)
}
