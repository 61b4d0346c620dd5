package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gang93/pos-backend/api/controllers"
	ordercontrollers "github.com/gang93/pos-backend/api/controllers/orders"
	"github.com/gang93/pos-backend/api/middleware"
	"github.com/gang93/pos-backend/internal/catalog"
	"github.com/gang93/pos-backend/internal/customers"
	"github.com/gang93/pos-backend/internal/fulfillment"
	"github.com/gang93/pos-backend/internal/inventory"
	"github.com/gang93/pos-backend/internal/orders/history"
	"github.com/gang93/pos-backend/internal/sales"
	"github.com/gang93/pos-backend/pkg/config"
	"github.com/gang93/pos-backend/pkg/logger"
	pkgredis "github.com/gang93/pos-backend/pkg/redis"
)

// Params carries everything the HTTP surface depends on.
type Params struct {
	Config           *config.Config
	Logger           *logger.Logger
	DB               controllers.Pinger
	Redis            controllers.Pinger
	IdempotencyStore pkgredis.IdempotencyStore
	Gatherer         prometheus.Gatherer

	Catalog     catalog.Service
	Customers   customers.Service
	Fulfillment fulfillment.Service
	History     history.Service
	Inventory   inventory.Service
	Sales       sales.Service
}

func NewRouter(p Params) http.Handler {
	cfg, logg := p.Config, p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	idempotent := middleware.Idempotency(p.IdempotencyStore, cfg.Fulfillment.IdempotencyTTL, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, p.Redis))
	})

	if p.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/menu", controllers.ListMenu(p.Catalog, logg))
		r.Get("/menu/{id}", controllers.GetMenuItem(p.Catalog, logg))
		r.Get("/addons", controllers.ListAddOns(p.Catalog, logg))

		r.Route("/orders", func(r chi.Router) {
			r.With(idempotent).Post("/", ordercontrollers.Place(p.Fulfillment, logg))
			r.Get("/", ordercontrollers.List(p.History, logg))
			r.Get("/{id}", ordercontrollers.Detail(p.History, logg))
		})

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", controllers.ListCustomers(p.Customers, logg))
			r.With(idempotent).Post("/", controllers.CreateCustomer(p.Customers, logg))
			r.Get("/{id}", controllers.GetCustomer(p.Customers, logg))
			r.Get("/{id}/rewards", controllers.GetCustomerRewards(p.Customers, logg))
			r.With(idempotent).Put("/{id}/points", controllers.AdjustCustomerPoints(p.Customers, logg))
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", controllers.ListInventory(p.Inventory, logg))
			r.Get("/low-stock", controllers.LowStock(p.Inventory, logg))
			r.Get("/{id}", controllers.GetInventoryItem(p.Inventory, logg))
			r.Put("/{id}", controllers.SetInventoryQuantity(p.Inventory, logg))
		})

		r.Get("/sales", controllers.SalesReport(p.Sales, logg))
	})

	return r
}
