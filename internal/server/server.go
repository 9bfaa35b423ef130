package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/D0Nater/organization-manager/internal/activity"
	activitydomain "github.com/D0Nater/organization-manager/internal/activity/domain"
	"github.com/D0Nater/organization-manager/internal/building"
	buildingdomain "github.com/D0Nater/organization-manager/internal/building/domain"
	"github.com/D0Nater/organization-manager/internal/config"
	"github.com/D0Nater/organization-manager/internal/observability"
	obsmiddleware "github.com/D0Nater/organization-manager/internal/observability/logger"
	obsmetrics "github.com/D0Nater/organization-manager/internal/observability/metrics"
	obstracing "github.com/D0Nater/organization-manager/internal/observability/tracing"
	"github.com/D0Nater/organization-manager/internal/organization"
	organizationdomain "github.com/D0Nater/organization-manager/internal/organization/domain"
)

var Module = fx.Module("http.server",
	config.Module,
	fx.Provide(registerGin),
	fx.Provide(newRedisClient),
	activity.Module,
	building.Module,
	organization.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(httpMetrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func newRedisClient(cfg config.Config) *redis.Client {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	runtimeCfg      *config.RuntimeConfigHolder
	db              *gorm.DB
	redis           *redis.Client
	activitySvc     activitydomain.Service
	buildingSvc     buildingdomain.Service
	organizationSvc organizationdomain.Service
	obsMetrics      *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	RuntimeCfg      *config.RuntimeConfigHolder
	DB              *gorm.DB
	Redis           *redis.Client `optional:"true"`
	ActivitySvc     activitydomain.Service
	BuildingSvc     buildingdomain.Service
	OrganizationSvc organizationdomain.Service
	ObsMetrics      *obsmetrics.Metrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		runtimeCfg:      p.RuntimeCfg,
		db:              p.DB,
		redis:           p.Redis,
		activitySvc:     p.ActivitySvc,
		buildingSvc:     p.BuildingSvc,
		organizationSvc: p.OrganizationSvc,
		obsMetrics:      p.ObsMetrics,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api/v1")
	api.Use(s.IdempotencyReplay())

	// -------- Organizations --------
	// Organization routes serve the public catalog and carry no token;
	// the taxonomy and building routes below take the bearer check.
	api.POST("/organizations", s.CreateOrganization)
	api.GET("/organizations", s.ListOrganizations)
	api.GET("/organizations/:organization_id", s.GetOrganizationByID)
	api.PUT("/organizations/:organization_id", s.UpdateOrganization)
	api.PATCH("/organizations/:organization_id", s.PatchOrganization)
	api.DELETE("/organizations/:organization_id", s.DeleteOrganization)

	// -------- Activities --------
	api.POST("/activities", s.TokenAuthRequired(), s.CreateActivity)
	api.GET("/activities", s.TokenAuthRequired(), s.ListActivities)
	api.GET("/activities/:activity_id", s.TokenAuthRequired(), s.GetActivityByID)
	api.PUT("/activities/:activity_id", s.TokenAuthRequired(), s.UpdateActivity)
	api.PATCH("/activities/:activity_id", s.TokenAuthRequired(), s.PatchActivity)
	api.DELETE("/activities/:activity_id", s.TokenAuthRequired(), s.DeleteActivity)

	// -------- Buildings --------
	api.POST("/buildings", s.TokenAuthRequired(), s.CreateBuilding)
	api.GET("/buildings", s.TokenAuthRequired(), s.ListBuildings)
	api.GET("/buildings/:building_id", s.TokenAuthRequired(), s.GetBuildingByID)
	api.PUT("/buildings/:building_id", s.TokenAuthRequired(), s.UpdateBuilding)
	api.PATCH("/buildings/:building_id", s.TokenAuthRequired(), s.PatchBuilding)
	api.DELETE("/buildings/:building_id", s.TokenAuthRequired(), s.DeleteBuilding)
}
