package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/talgatbekov/bazarline-backend/api/controllers"
	"github.com/talgatbekov/bazarline-backend/api/middleware"
	checkoutsvc "github.com/talgatbekov/bazarline-backend/internal/checkout"
	"github.com/talgatbekov/bazarline-backend/internal/manager"
	marketsvc "github.com/talgatbekov/bazarline-backend/internal/market"
	"github.com/talgatbekov/bazarline-backend/internal/orderstatus"
	"github.com/talgatbekov/bazarline-backend/internal/poller"
	"github.com/talgatbekov/bazarline-backend/pkg/config"
	"github.com/talgatbekov/bazarline-backend/pkg/logger"
	"github.com/talgatbekov/bazarline-backend/pkg/shopapi"
)

// RouterParams carries everything the HTTP surface depends on.
type RouterParams struct {
	Config    *config.Config
	Logger    *logger.Logger
	Readiness map[string]controllers.Pinger
	Registry  *prometheus.Registry

	Checkout    checkoutsvc.Service
	Markets     *marketsvc.Service
	OrderStatus orderstatus.Service
	Gate        *manager.Gate
	Scheduler   *poller.Scheduler
	ShopAPI     *shopapi.Client
}

func NewRouter(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, params.Readiness))
	})

	if params.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(params.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", controllers.CheckoutSnapshot(params.Checkout, logg))
			r.Post("/begin", controllers.CheckoutBegin(params.Checkout, logg))
			r.Post("/address", controllers.CheckoutAddress(params.Checkout, logg))
			r.Post("/payment", controllers.CheckoutPayment(params.Checkout, logg))
			r.Post("/confirm", controllers.CheckoutConfirm(params.Checkout, logg))
			r.Post("/cancel", controllers.CheckoutCancel(params.Checkout, logg))
			r.Post("/ack", controllers.CheckoutAcknowledge(params.Checkout, logg))
		})

		r.Get("/market", controllers.MarketGet(params.Markets, logg))
		r.Put("/market", controllers.MarketPut(params.Markets, logg))

		r.Route("/manager", func(r chi.Router) {
			// Status is reachable before authorization settles; it is the
			// trigger that settles it.
			r.Get("/status", controllers.ManagerStatus(params.Gate, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireManager(params.Gate, logg))

				r.Route("/orders", func(r chi.Router) {
					r.Get("/", controllers.ManagerOrders(params.OrderStatus, params.Gate, logg))
					r.Get("/{orderId}", controllers.ManagerOrderDetail(params.OrderStatus, params.Gate, logg))
					r.Post("/{orderId}/status", controllers.ManagerSetOrderStatus(params.OrderStatus, params.Gate, logg))
					r.Post("/{orderId}/cancel", controllers.ManagerCancelOrder(params.OrderStatus, params.Gate, logg))
					r.Post("/{orderId}/resume", controllers.ManagerResumeOrder(params.OrderStatus, params.Gate, logg))
				})

				r.Route("/dashboard", func(r chi.Router) {
					r.Get("/stats", controllers.ManagerDashboardStats(params.ShopAPI, params.Gate, logg))
					r.Get("/revenue", controllers.ManagerDashboardRevenue(params.ShopAPI, params.Gate, logg))
				})

				r.Route("/polling", func(r chi.Router) {
					r.Post("/", controllers.ManagerPollingRearm(params.Scheduler, params.Gate, logg))
					r.Get("/latest", controllers.ManagerPollingLatest(params.Scheduler, logg))
					r.Delete("/", controllers.ManagerPollingStop(params.Scheduler, logg))
				})
			})
		})
	})

	return r
}
