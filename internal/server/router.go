// Package server assembles the gin engine and owns the HTTP listener.
package server

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"bluemoon/internal/cascade"
	"bluemoon/internal/config"
	"bluemoon/internal/database"
	"bluemoon/internal/ledger"
	"bluemoon/internal/middleware"
	"bluemoon/internal/modules/auth"
	"bluemoon/internal/modules/billing"
	"bluemoon/internal/modules/parking"
	"bluemoon/internal/modules/realtime"
	"bluemoon/internal/modules/resident"
	"bluemoon/internal/pkg/password"
	"bluemoon/internal/pkg/session"
	"bluemoon/internal/pkg/validator"
	"bluemoon/internal/repository"
)

type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Sessions *session.Manager
	Hub      *realtime.Hub
	Log      *zap.Logger
}

// NewRouter wires repositories, engines and handlers under /api.
func NewRouter(d Deps) (*gin.Engine, error) {
	cfg := d.Config
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}

	scheme, err := password.ParseScheme(cfg.PasswordScheme)
	if err != nil {
		return nil, err
	}
	hasher := password.NewHasher(scheme)
	validator.Register()

	hub := d.Hub
	if hub == nil {
		hub = realtime.NewHub(log)
	}

	residents := repository.NewResidentRepository(d.DB)
	vehicles := repository.NewParkingRepository(d.DB)
	fees := repository.NewBillingRepository(d.DB)
	users := repository.NewUserRepository(d.DB)

	ledgerEngine := ledger.NewEngine(d.DB, hub, log)
	cascadeEngine := cascade.NewEngine(d.DB, hub, log)

	authHandler := auth.NewHandler(
		auth.NewService(users, hasher, d.Sessions, log),
		cfg.Session,
		cfg.Building,
		func() error { return database.Ping(d.DB) },
	)
	residentHandler := resident.NewHandler(resident.NewService(residents, cascadeEngine, hasher, log))
	parkingHandler := parking.NewHandler(parking.NewService(vehicles, residents, ledgerEngine, cascadeEngine, log))
	billingHandler := billing.NewHandler(billing.NewService(fees, ledgerEngine, cascadeEngine))
	realtimeHandler := realtime.NewHandler(hub, cfg.CORSAllowedOrigins)

	if cfg.IsProdLike() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	api := r.Group("/api")
	api.Use(middleware.Session(d.Sessions, cfg.Session.CookieName, log))
	{
		authHandler.RegisterPublicRoutes(api)

		authed := api.Group("")
		authed.Use(middleware.RequireAuth())
		authHandler.RegisterProtectedRoutes(authed)

		admin := authed.Group("")
		admin.Use(middleware.AdminOnly())

		residentHandler.RegisterRoutes(authed, admin)
		parkingHandler.RegisterRoutes(authed, admin)
		billingHandler.RegisterRoutes(authed, admin)
		realtimeHandler.RegisterRoutes(admin)
	}

	return r, nil
}
