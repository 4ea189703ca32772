package routes

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sijangmap/marketmap-backend/api/controllers"
	"github.com/sijangmap/marketmap-backend/api/middleware"
	"github.com/sijangmap/marketmap-backend/internal/admins"
	"github.com/sijangmap/marketmap-backend/internal/images"
	"github.com/sijangmap/marketmap-backend/internal/maps"
	"github.com/sijangmap/marketmap-backend/internal/searchlogs"
	"github.com/sijangmap/marketmap-backend/internal/stores"
	"github.com/sijangmap/marketmap-backend/pkg/auth/session"
	"github.com/sijangmap/marketmap-backend/pkg/config"
	"github.com/sijangmap/marketmap-backend/pkg/logger"
	"github.com/sijangmap/marketmap-backend/pkg/metrics"
)

// NewRouter assembles the HTTP surface: the public directory and search
// endpoints the kiosk consumes, and the admin API behind token auth.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	registry *prometheus.Registry,
	dbP controllers.Pinger,
	redisP controllers.Pinger,
	sessions *session.Manager,
	storeService stores.Service,
	imageService images.Service,
	mapService maps.Service,
	searchLogService searchlogs.Service,
	adminService admins.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(registry))
	}

	r.Route("/api/stores", func(r chi.Router) {
		r.Get("/", controllers.StoreList(storeService, logg))
		r.Get("/stats", controllers.StoreStats(storeService, logg))
		r.Get("/search", controllers.StoreSearch(storeService, logg))
		r.Get("/search/name", controllers.StoreSearchName(storeService, logg))
		r.Get("/search/phone", controllers.StoreSearchPhone(storeService, logg))
		r.Get("/search/location", controllers.StoreLocationSearch(storeService, logg))
		r.Get("/search/nearest", controllers.StoreNearest(storeService, logg))
		r.Get("/code/{code}", controllers.StoreByCode(storeService, logg))
		r.Get("/{storeID}", controllers.StoreByID(storeService, logg))
		r.Get("/{storeID}/images", controllers.StoreImages(imageService, logg))
	})

	r.Get("/api/keywords/popular", controllers.PopularKeywords(searchLogService, logg))
	r.Get("/api/map", controllers.ActiveMap(mapService, logg))

	r.Route("/api/admin", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", controllers.AdminLogin(adminService, sessions, cfg.JWT, logg))
			r.Post("/refresh", controllers.AdminRefresh(sessions, cfg.JWT, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminAuth(cfg.JWT, sessions, logg))

			r.Post("/auth/logout", controllers.AdminLogout(sessions, logg))
			r.Post("/auth/change-password", controllers.AdminChangePassword(adminService, logg))
			r.Get("/auth/me", controllers.AdminProfile(adminService, logg))

			r.Route("/stores", func(r chi.Router) {
				r.Post("/", controllers.AdminStoreCreate(storeService, imageService, logg))
				r.Get("/stats", controllers.StoreStats(storeService, logg))
				r.Get("/export", controllers.AdminStoreExport(storeService, logg))
				r.Put("/{storeID}", controllers.AdminStoreUpdate(storeService, logg))
				r.Delete("/{storeID}", controllers.AdminStoreDelete(storeService, logg))
				r.Delete("/{storeID}/purge", controllers.AdminStorePurge(storeService, logg))
				r.Post("/{storeID}/images", controllers.AdminImageUpload(imageService, logg))
			})
			r.Delete("/images/{imageID}", controllers.AdminImageDelete(imageService, logg))

			r.Route("/maps", func(r chi.Router) {
				r.Get("/", controllers.AdminMapList(mapService, logg))
				r.Post("/", controllers.AdminMapCreate(mapService, logg))
				r.Put("/{mapID}/active", controllers.AdminMapActivate(mapService, logg))
			})

			r.Route("/search-logs", func(r chi.Router) {
				r.Get("/", controllers.AdminRecentSearches(searchLogService, logg))
				r.Get("/stats", controllers.AdminSearchStatistics(searchLogService, logg))
				r.Get("/popular", controllers.PopularKeywords(searchLogService, logg))
				r.Get("/today", controllers.AdminSearchesToday(searchLogService, logg))
			})
		})
	})

	mountUploads(r, cfg.Upload)

	return r
}

// mountUploads serves saved store images from local disk under the
// configured public base path.
func mountUploads(r chi.Router, cfg config.UploadConfig) {
	base := strings.TrimSuffix(cfg.PublicBase, "/")
	if base == "" || cfg.Dir == "" {
		return
	}
	fs := http.StripPrefix(base+"/", http.FileServer(http.Dir(cfg.Dir)))
	r.Get(base+"/*", func(w http.ResponseWriter, req *http.Request) {
		fs.ServeHTTP(w, req)
	})
}
