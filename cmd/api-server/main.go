package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	"cuisinehub/internal/auth"
	"cuisinehub/internal/favorites"
	"cuisinehub/internal/generation"
	"cuisinehub/internal/middleware"
	"cuisinehub/internal/notify"
	"cuisinehub/internal/realtime"
	"cuisinehub/internal/recipes"
	"cuisinehub/internal/shopping"
	"cuisinehub/pkg/database"
	"cuisinehub/pkg/utils"
)

func main() {
	utils.LoadEnv()

	dbCfg := database.DefaultConfig()
	db := database.MustOpen(dbCfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	srvCfg := utils.LoadServerConfig()

	router := gin.Default()
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	limiter := middleware.NewRateLimiter(srvCfg.RateRPS, srvCfg.RateBurst)
	router.Use(limiter.Middleware())

	// Realtime feed: start TCP first so binding errors show up early
	hub := realtime.NewHub()
	router.GET("/ws", realtime.WSHandler(hub))
	tcpSrv := realtime.NewServer(srvCfg.FeedAddr, hub)

	// Push notify registry (UDP)
	registry := notify.NewRegistry()
	notifySrv := notify.NewServer(srvCfg.UDPAddr, registry, nil)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": dbCfg.Path})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":      "not_ready",
				"db_error":    err.Error(),
				"tcp_clients": stats.TCPClients,
				"ws_clients":  stats.WSClients,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":      "ready",
			"db":          "ok",
			"tcp_clients": stats.TCPClients,
			"ws_clients":  stats.WSClients,
		})
	})

	// Optional catalog cache
	var cache *recipes.Cache
	if srvCfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: srvCfg.RedisAddr})
		cache = recipes.NewCache(rdb)
		log.Printf("catalog cache enabled (redis at %s)", srvCfg.RedisAddr)
	}

	// Catalog (public reads)
	recipeRepo := recipes.NewRepo(db)
	recipeHandler := recipes.NewHandler(recipeRepo, cache)
	recipeHandler.RegisterPublicRoutes(router.Group("/"))

	// Auth
	authCfg := utils.LoadAuthConfig()
	tokenSvc := auth.TokenService{
		Secret:   []byte(authCfg.JWTSecret),
		Issuer:   authCfg.JWTIssuer,
		Duration: authCfg.JWTDuration,
	}
	authRepo := auth.NewRepo(db)
	authHandler := auth.NewHandler(authRepo, tokenSvc)
	authHandler.RegisterRoutes(router.Group("/api/v1/auth"))

	// Protected routes
	protected := router.Group("/")
	protected.Use(auth.AuthMiddleware(tokenSvc, authRepo))

	recipeHandler.RegisterAuthRoutes(protected)

	favHandler := favorites.NewHandler(favorites.NewRepo(db))
	favHandler.RegisterRoutes(protected)

	shoppingRepo := shopping.NewRepo(db)
	shoppingHandler := shopping.NewHandler(shoppingRepo, recipeRepo, hub)
	shoppingHandler.RegisterRoutes(protected)

	// Generation uses X-API-Key, not JWT: callers are trusted app
	// builds, not logged-in users.
	gen, err := generation.NewGenAIGenerator(context.Background(), os.Getenv("GEMINI_API_KEY"))
	if err != nil {
		log.Printf("generation disabled: %v", err)
	} else {
		genHandler := generation.NewHandler(gen, recipeRepo, notifySrv, hub, srvCfg.GenAPIKey)
		genHandler.RegisterRoutes(router)
	}

	httpSrv := &http.Server{
		Addr: srvCfg.HTTPAddr,
		Handler: cors.New(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type", "Authorization", "X-API-Key"},
			AllowCredentials: true,
		}).Handler(router),
	}

	errCh := make(chan error, 3)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := tcpSrv.Run(); err != nil {
			errCh <- err
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := notifySrv.Run(); err != nil {
			errCh <- err
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Printf("HTTP API server listening on %s", srvCfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("shutdown signal received: %s", sig)
	case err := <-errCh:
		log.Printf("server error: %v", err)
	}

	log.Println("shutting down servers")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
	if err := tcpSrv.Close(); err != nil {
		log.Printf("tcp shutdown error: %v", err)
	}
	if err := notifySrv.Close(); err != nil {
		log.Printf("udp shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("servers stopped")
}
