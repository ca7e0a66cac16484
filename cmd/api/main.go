package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/calebmorris/cartly-backend/api/routes"
	authsvc "github.com/calebmorris/cartly-backend/internal/auth"
	cartsvc "github.com/calebmorris/cartly-backend/internal/cart"
	favsvc "github.com/calebmorris/cartly-backend/internal/favorites"
	listsvc "github.com/calebmorris/cartly-backend/internal/lists"
	recipesvc "github.com/calebmorris/cartly-backend/internal/recipes"
	searchsvc "github.com/calebmorris/cartly-backend/internal/search"
	usersvc "github.com/calebmorris/cartly-backend/internal/users"
	"github.com/calebmorris/cartly-backend/pkg/algolia"
	"github.com/calebmorris/cartly-backend/pkg/config"
	"github.com/calebmorris/cartly-backend/pkg/db"
	"github.com/calebmorris/cartly-backend/pkg/logger"
	"github.com/calebmorris/cartly-backend/pkg/migrate"
	"github.com/calebmorris/cartly-backend/pkg/redis"
	"github.com/calebmorris/cartly-backend/pkg/supabase"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	supabaseClient, err := supabase.NewClient(cfg.Supabase)
	if err != nil {
		logg.Error(context.Background(), "failed to create supabase client", err)
		os.Exit(1)
	}

	algoliaClient, err := algolia.NewClient(cfg.Algolia)
	if err != nil {
		logg.Error(context.Background(), "failed to create algolia client", err)
		os.Exit(1)
	}

	gormDB := dbClient.DB()
	usersRepo := usersvc.NewRepository(gormDB)
	cartRepo := cartsvc.NewRepository(gormDB)
	listRepo := listsvc.NewRepository(gormDB)
	recipeRepo := recipesvc.NewRepository(gormDB)
	favoritesRepo := favsvc.NewRepository(gormDB)
	searchRepo := searchsvc.NewRepository(gormDB)

	authService, err := authsvc.NewService(authsvc.ServiceParams{
		Provider:     supabaseClient,
		Users:        usersRepo,
		Cache:        redisClient,
		Tx:           dbClient,
		Supabase:     cfg.Supabase,
		DefaultStore: cfg.Algolia.DefaultStore,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	cartService, err := cartsvc.NewService(cartRepo, dbClient, favoritesRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	listService, err := listsvc.NewService(listsvc.ServiceParams{
		Repo:     listRepo,
		CartRepo: cartRepo,
		Frequent: favoritesRepo,
		Tx:       dbClient,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create list service", err)
		os.Exit(1)
	}

	recipeService, err := recipesvc.NewService(recipesvc.ServiceParams{
		Repo:     recipeRepo,
		CartRepo: cartRepo,
		Tx:       dbClient,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create recipe service", err)
		os.Exit(1)
	}

	favoritesService, err := favsvc.NewService(favoritesRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create favorites service", err)
		os.Exit(1)
	}

	searchService, err := searchsvc.NewService(searchsvc.ServiceParams{
		Cache:    searchRepo,
		Provider: algoliaClient,
		Config:   cfg.Search,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create search service", err)
		os.Exit(1)
	}

	userService, err := usersvc.NewService(usersRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, routes.Services{
			Auth:      authService,
			Cart:      cartService,
			Lists:     listService,
			Recipes:   recipeService,
			Favorites: favoritesService,
			Search:    searchService,
			Users:     userService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
