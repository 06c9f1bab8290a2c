package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	authhttp "github.com/AlibekovAA/nexus-admin/backend/internal/auth/http"
	authservice "github.com/AlibekovAA/nexus-admin/backend/internal/auth/service"
	"github.com/AlibekovAA/nexus-admin/backend/internal/common/bootstrap"
	commonhttp "github.com/AlibekovAA/nexus-admin/backend/internal/common/http"
	"github.com/AlibekovAA/nexus-admin/backend/internal/common/jwtverify"
	srv "github.com/AlibekovAA/nexus-admin/backend/internal/common/server"
	userhttp "github.com/AlibekovAA/nexus-admin/backend/internal/user/http"
	userservice "github.com/AlibekovAA/nexus-admin/backend/internal/user/service"
)

func main() {
	app, err := bootstrap.NewAuthApp(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start auth service: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	cfg := app.Config
	log := app.Log

	issuer := authservice.NewTokenIssuer(authservice.TokenIssuerConfig{
		AccessSecret:  cfg.JWTAccessSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
	}, app.IDGenerator, app.Clock)

	store := authservice.NewRefreshTokenStore(authservice.RefreshTokenStoreDeps{
		Repo:        app.RefreshTokenRepo,
		Hasher:      app.Hasher,
		IDGenerator: app.IDGenerator,
		Clock:       app.Clock,
		Breaker:     app.Breaker,
		Log:         log,
	})

	authService := authservice.NewAuthService(authservice.AuthServiceDeps{
		Users:       app.UserRepo,
		Store:       store,
		Issuer:      issuer,
		Hasher:      app.Hasher,
		IDGenerator: app.IDGenerator,
		Clock:       app.Clock,
		Breaker:     app.Breaker,
		Log:         log,
	})

	userService := userservice.NewService(userservice.Deps{
		Repo:        app.UserRepo,
		Hasher:      app.Hasher,
		IDGenerator: app.IDGenerator,
		Clock:       app.Clock,
		Breaker:     app.Breaker,
		Log:         log,
	})

	authHandler := authhttp.NewHandler(authService, authhttp.Config{
		Cookies: authhttp.CookieConfig{
			Secure:     cfg.IsProduction(),
			AccessTTL:  cfg.AccessTokenTTL,
			RefreshTTL: cfg.RefreshTokenTTL,
		},
		RequestTimeout: cfg.RequestTimeout,
	}, log)
	userHandler := userhttp.NewHandler(userService, cfg.RequestTimeout, log)

	routes := append(authHandler.Routes(issuer), userHandler.Routes()...)

	mux := http.NewServeMux()
	jwtverify.Mount(mux, routes, issuer, log)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.Handle("GET /health", commonhttp.HealthHandler(log, app.HealthChecks()))

	handler := commonhttp.BuildBaseHandler(log, commonhttp.CORSConfig{
		AllowedOrigins:   strings.Split(cfg.FrontendURL, ","),
		AllowCredentials: true,
	}, mux)

	server := srv.NewServer(srv.DefaultServerConfig(cfg.HTTPPort), handler)
	srv.StartWithGracefulShutdown(server, log, "auth")
}
