package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xfery/dropship-backend/api/controllers"
	"github.com/xfery/dropship-backend/api/middleware"
	"github.com/xfery/dropship-backend/internal/address"
	"github.com/xfery/dropship-backend/internal/cart"
	"github.com/xfery/dropship-backend/internal/feedback"
	"github.com/xfery/dropship-backend/internal/identity"
	"github.com/xfery/dropship-backend/internal/orders"
	"github.com/xfery/dropship-backend/internal/payments"
	"github.com/xfery/dropship-backend/internal/products"
	stripewebhook "github.com/xfery/dropship-backend/internal/webhooks/stripe"
	"github.com/xfery/dropship-backend/pkg/config"
	"github.com/xfery/dropship-backend/pkg/db"
	"github.com/xfery/dropship-backend/pkg/logger"
	"github.com/xfery/dropship-backend/pkg/redis"
	"github.com/xfery/dropship-backend/pkg/stripe"
)

type RouterParams struct {
	Config           *config.Config
	Logger           *logger.Logger
	DB               *db.Client
	Redis            *redis.Client
	Registry         *prometheus.Registry
	Identity         *identity.Service
	Address          *address.Service
	Products         *products.Service
	Cart             *cart.Service
	Payments         *payments.Service
	Orders           *orders.Service
	Feedback         *feedback.Service
	StripeClient     *stripe.Client
	WebhookService   *stripewebhook.Service
	IdempotencyGuard *stripewebhook.IdempotencyGuard
}

// NewRouter wires the legacy storefront paths onto the service layer. Path
// names are the external contract and must not be renamed.
func NewRouter(p RouterParams) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(p.Logger),
		middleware.RequestID(p.Logger),
		middleware.Logging(p.Logger),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(p.Config))
		r.Get("/ready", controllers.HealthReady(p.Config, p.Logger, p.DB, p.Redis))
	})
	if p.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{}))
	}

	r.Post("/register", controllers.Register(p.Identity, p.Logger))
	r.Get("/user/{id}", controllers.UserDetail(p.Identity, p.Logger))

	r.Get("/productList", controllers.ProductList(p.Products, p.Logger))
	r.Get("/querySearch", controllers.QuerySearch(p.Products, p.Logger))
	r.Get("/productDetails", controllers.ProductDetails(p.Products, p.Logger))
	r.Get("/variantPrice", controllers.VariantPrice(p.Products, p.Logger))
	r.Get("/variantIdPaid", controllers.VariantPaid(p.Products, p.Logger))

	r.Get("/addressInfo", controllers.AddressInfo(p.Address, p.Logger))
	r.Patch("/addressUpdate", controllers.AddressUpdate(p.Address, p.Logger))
	r.Get("/saveAddress", controllers.SaveAddress(p.Address, p.Logger))

	// Path name kept verbatim from the storefront contract, typo included.
	r.Patch("/addToCard", controllers.CartAdd(p.Cart, p.Logger))
	r.Get("/getCartProduct", controllers.CartProducts(p.Cart, p.Logger))
	r.Delete("/removeCart", controllers.CartRemove(p.Cart, p.Logger))

	r.Post("/checkoutPayment", controllers.CheckoutPayment(p.Payments, p.Logger))
	r.Get("/paidProductList", controllers.PaidProductList(p.Payments, p.Logger))
	r.Get("/paymentValidation", controllers.PaymentValidation(p.Payments, p.Logger))
	r.Get("/paymentValidationCreateOrder", controllers.PaymentValidationCreateOrder(p.Payments, p.Logger))

	r.Post("/checkOrderCreate", controllers.CheckOrderCreate(p.Orders, p.Logger))
	r.Post("/createOrder", controllers.CreateOrder(p.Orders, p.Logger))
	r.Get("/getOrders", controllers.GetOrders(p.Orders, p.Logger))
	r.Get("/orderTracking", controllers.OrderTracking(p.Orders, p.Logger))

	r.Post("/feedback", controllers.Feedback(p.Feedback, p.Logger))
	r.Post("/webhook", controllers.StripeWebhook(p.WebhookService, p.StripeClient, p.IdempotencyGuard, p.Logger))

	return r
}
