package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/calebmorris/cartly-backend/api/controllers"
	"github.com/calebmorris/cartly-backend/api/middleware"
	authsvc "github.com/calebmorris/cartly-backend/internal/auth"
	cartsvc "github.com/calebmorris/cartly-backend/internal/cart"
	favsvc "github.com/calebmorris/cartly-backend/internal/favorites"
	listsvc "github.com/calebmorris/cartly-backend/internal/lists"
	recipesvc "github.com/calebmorris/cartly-backend/internal/recipes"
	searchsvc "github.com/calebmorris/cartly-backend/internal/search"
	usersvc "github.com/calebmorris/cartly-backend/internal/users"
	"github.com/calebmorris/cartly-backend/pkg/config"
	"github.com/calebmorris/cartly-backend/pkg/db"
	"github.com/calebmorris/cartly-backend/pkg/logger"
	"github.com/calebmorris/cartly-backend/pkg/redis"
)

// Services bundles everything the router mounts.
type Services struct {
	Auth      authsvc.Service
	Cart      cartsvc.Service
	Lists     listsvc.Service
	Recipes   recipesvc.Service
	Favorites favsvc.Service
	Search    searchsvc.Service
	Users     usersvc.Service
}

// NewRouter assembles the full HTTP surface. Health endpoints sit outside
// the identity middleware so liveness checks never touch the users table.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	svcs Services,
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
		r.Get("/ready", controllers.HealthReady(cfg, dbClient, redisClient))
	})

	signInPolicy := middleware.NewAuthRateLimitPolicy(
		"signin",
		cfg.AuthRateLimit.SignInWindow,
		cfg.AuthRateLimit.SignInIPLimit,
		cfg.AuthRateLimit.SignInEmailLimit,
	)
	signUpPolicy := middleware.NewAuthRateLimitPolicy(
		"signup",
		cfg.AuthRateLimit.SignUpWindow,
		cfg.AuthRateLimit.SignUpIPLimit,
		cfg.AuthRateLimit.SignUpEmailLimit,
	)

	r.Route("/api/auth", func(r chi.Router) {
		r.Get("/config", controllers.AuthConfig(svcs.Auth, logg))
		r.With(middleware.AuthRateLimit(signUpPolicy, redisClient, logg)).Post("/signup", controllers.SignUp(svcs.Auth, logg))
		r.With(middleware.AuthRateLimit(signInPolicy, redisClient, logg)).Post("/signin", controllers.SignIn(svcs.Auth, logg))
		r.Post("/signout", controllers.SignOut(svcs.Auth, logg))
		r.With(middleware.AuthRateLimit(signInPolicy, redisClient, logg)).Post("/forgot-password", controllers.ForgotPassword(svcs.Auth, logg))
		r.Post("/reset-password", controllers.ResetPassword(svcs.Auth, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Identity(svcs.Auth, logg))

		r.Get("/auth/me", controllers.Me(svcs.Auth, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(svcs.Cart, logg))
			r.Post("/add", controllers.CartAddItem(svcs.Cart, logg))
			r.Put("/quantity", controllers.CartUpdateQuantity(svcs.Cart, logg))
			r.Delete("/{itemId}", controllers.CartRemoveItem(svcs.Cart, logg))
			r.Delete("/", controllers.CartClear(svcs.Cart, logg))
			r.Post("/complete", controllers.CartComplete(svcs.Cart, logg))
			r.Post("/update-frequent", controllers.CartUpdateFrequent(svcs.Cart, logg))
		})

		r.Route("/lists", func(r chi.Router) {
			r.Get("/", controllers.ListsIndex(svcs.Lists, logg))
			r.Post("/auto-save", controllers.ListAutoSave(svcs.Lists, logg))
			r.Get("/today", controllers.ListToday(svcs.Lists, logg))
			r.Post("/tag", controllers.ListTag(svcs.Lists, logg))
			r.Post("/save", controllers.ListSaveAsNew(svcs.Lists, logg))
			r.Get("/{listId}", controllers.ListGet(svcs.Lists, logg))
			r.Post("/{listId}/load", controllers.ListLoad(svcs.Lists, logg))
			r.Delete("/{listId}", controllers.ListDelete(svcs.Lists, logg))
		})

		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", controllers.RecipesIndex(svcs.Recipes, logg))
			r.Post("/create", controllers.RecipeCreate(svcs.Recipes, logg))
			r.Post("/save-cart", controllers.RecipeSaveCart(svcs.Recipes, logg))
			r.Post("/parse", controllers.RecipeParse(svcs.Recipes, logg))
			r.Get("/{recipeId}", controllers.RecipeGet(svcs.Recipes, logg))
			r.Put("/{recipeId}", controllers.RecipeUpdateMeta(svcs.Recipes, logg))
			r.Delete("/{recipeId}", controllers.RecipeDelete(svcs.Recipes, logg))
			r.Post("/{recipeId}/items", controllers.RecipeAddItem(svcs.Recipes, logg))
			r.Put("/items/{itemId}/quantity", controllers.RecipeUpdateItemQuantity(svcs.Recipes, logg))
			r.Delete("/items/{itemId}", controllers.RecipeRemoveItem(svcs.Recipes, logg))
			r.Post("/{recipeId}/add-to-cart", controllers.RecipeAddToCart(svcs.Recipes, logg))
		})

		r.Get("/frequent", controllers.FrequentItems(svcs.Favorites, logg))

		r.Route("/favorites", func(r chi.Router) {
			r.Get("/", controllers.Favorites(svcs.Favorites, logg))
			r.Post("/add", controllers.StarFavorite(svcs.Favorites, logg))
			r.Delete("/{productName}", controllers.UnstarFavorite(svcs.Favorites, logg))
			r.Get("/check/{productName}", controllers.IsFavorite(svcs.Favorites, logg))
		})

		r.With(middleware.SearchRateLimit(
			redisClient,
			cfg.Search.RateLimitMax,
			cfg.Search.RateLimitWindow,
			logg,
		)).Post("/search", controllers.SearchProducts(svcs.Search, logg))

		r.Route("/store", func(r chi.Router) {
			r.Get("/", controllers.StoreGet(svcs.Users, logg))
			r.Put("/", controllers.StoreUpdate(svcs.Users, logg))
			r.Post("/switch-clear", controllers.StoreSwitchClear(svcs.Users, logg))
		})

		r.Get("/admin/anonymous-stats", controllers.AnonymousStats(svcs.Users, logg))
	})

	return r
}
