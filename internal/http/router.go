package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/pharma-portal/internal/http/handlers"
	"github.com/pribylovaa/pharma-portal/internal/http/middleware"
	"github.com/pribylovaa/pharma-portal/internal/portal"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger   *slog.Logger
	Timeout  time.Duration
	Session  middleware.SessionOptions
	Guard    middleware.GuardOptions
	BasePath string // префикс JSON API; по умолчанию "/api".
}

// NewRouter собирает http.Handler с chi: JSON API под BasePath и страницы на корне.
func NewRouter(reg *portal.Registry, opts Options) http.Handler {
	if opts.BasePath == "" {
		opts.BasePath = "/api"
	}
	if opts.Guard.SignInURL == "" {
		opts.Guard = middleware.DefaultGuard()
	}

	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),                  // безопасно ловим паники
		middleware.RequestID(),                // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger),       // кладём request-scoped логгер в контекст и логируем
		middleware.Session(reg, opts.Session), // cookie сессии -> портал в контексте
		middleware.Guard(opts.Guard),          // защищённые страницы и страницы входа
	)
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}

	h := handlers.New(reg)

	sub := chi.NewRouter()
	registerRoutes(sub, h)
	root.Mount(opts.BasePath, sub)

	registerPages(root, h)

	return root
}

// registerRoutes — единая точка регистрации всех REST-эндпойнтов.
func registerRoutes(r chi.Router, h *handlers.Handlers) {
	// auth
	r.Post("/auth/signin", h.SignIn)
	r.Post("/auth/signup", h.SignUp)
	r.Post("/auth/logout", h.Logout)
	r.Post("/auth/refresh", h.Refresh)
	r.Post("/auth/forgot-password", h.ForgotPassword)
	r.Post("/auth/reset-password", h.ResetPassword)
	r.Post("/auth/change-password", h.ChangePassword)
	r.Post("/auth/activate-account", h.ActivateAccount)
	r.Get("/auth/profile", h.Profile)
	r.Put("/auth/profile", h.UpdateProfile)
	r.Get("/auth/me", h.Me)

	// products
	r.Get("/products", h.ListProducts)
	r.Get("/products/search", h.SearchProducts)
	r.Get("/products/{id}", h.GetProduct)
	r.Get("/products/{id}/is-bookmarked", h.IsBookmarked)

	// cart
	r.Get("/cart", h.Cart)
	r.Post("/cart/items", h.AddToCart)
	r.Patch("/cart/items/{id}", h.UpdateCartItem)
	r.Delete("/cart/items/{id}", h.RemoveFromCart)
	r.Post("/cart/clear", h.ClearCart)
	r.Post("/checkout", h.Checkout)

	// bookmarks
	r.Get("/bookmarks", h.Bookmarks)
	r.Post("/bookmarks/{id}", h.AddBookmark)
	r.Delete("/bookmarks/{id}", h.RemoveBookmark)
	r.Get("/basket", h.Basket)

	// orders
	r.Get("/orders/history", h.OrderHistory)
	r.Get("/orders/all", h.AllOrders)
	r.Get("/orders/status/{status}", h.OrdersByStatus)
	r.Get("/orders/{id}", h.GetOrder)
	r.Patch("/orders/{id}/status", h.UpdateOrderStatus)

	// access programs
	r.Get("/programs", h.ListPrograms)
	r.Get("/programs/{id}", h.GetProgram)
	r.Get("/programs/{id}/patients", h.ProgramPatients)
	r.Get("/patients", h.ListPatients)
	r.Post("/patients", h.CreatePatient)
	r.Get("/patients/{id}", h.GetPatient)
	r.Patch("/patients/{id}", h.UpdatePatient)
	r.Delete("/patients/{id}", h.DeletePatient)
}

// registerPages — страницы: данные загружаются с политикой redirect.
func registerPages(r chi.Router, h *handlers.Handlers) {
	r.Get("/dashboard", h.DashboardPage)
	r.Get("/profile", h.ProfilePage)
	r.Get("/cart", h.CartPage)
	r.Get("/signin", h.SignInPage)
	r.Get("/signup", h.SignUpPage)
}
