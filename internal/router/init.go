package router

import (
	app "github.com/khadamatapp/marketplace-api/internal/application"
	"github.com/khadamatapp/marketplace-api/internal/container"
	pginfra "github.com/khadamatapp/marketplace-api/internal/infrastructure/postgres"
	handlers "github.com/khadamatapp/marketplace-api/internal/interface/http"
	"github.com/khadamatapp/marketplace-api/internal/router/modules"
)

// InitModules constructs repositories, services and handlers from container
// singletons and registers every feature module with the registry. Called
// once during startup.
func InitModules(r *Registry) {
	pool := container.GetPGPool()
	cfg := container.GetConfig()
	logger := container.GetLogger()

	users := pginfra.NewUserRepository(pool)
	categories := pginfra.NewCategoryRepository(pool)
	providers := pginfra.NewProviderRepository(pool)
	services := pginfra.NewServiceRepository(pool)
	orders := pginfra.NewOrderRepository(pool)
	reviews := pginfra.NewReviewRepository(pool)

	var emailPub app.Publisher
	if p := container.GetEmailPub(); p != nil {
		emailPub = p
	}
	var reaggPub app.Publisher
	if p := container.GetReaggPub(); p != nil {
		reaggPub = p
	}

	authSvc := app.NewAuthService(users, container.GetJWT(), container.GetGCS(), cfg.GCSBucket, container.GetRedis(), logger, emailPub)
	catalogSvc := app.NewCatalogService(categories, services, providers, reviews, container.GetRedis(), logger, container.GetES(), cfg.ESServicesIndex, reaggPub)
	reviewSvc := app.NewReviewService(reviews, services, providers, logger, reaggPub)
	orderSvc := app.NewOrderService(orders, services, providers, users, logger, emailPub)

	authHandler := handlers.NewAuthHandler(authSvc, container.GetJWT(), logger, cfg.CookieDomain, cfg.CookieSecure)
	categoryHandler := handlers.NewCategoryHandler(catalogSvc, logger)
	serviceHandler := handlers.NewServiceHandler(catalogSvc, logger)
	providerHandler := handlers.NewProviderHandler(catalogSvc, reviewSvc, logger)
	orderHandler := handlers.NewOrderHandler(orderSvc, logger)
	reviewHandler := handlers.NewReviewHandler(reviewSvc, logger)

	r.Add(modules.NewAuthModule(authHandler, container.GetJWT()))
	r.Add(modules.NewCatalogModule(categoryHandler, serviceHandler, providerHandler, reviewHandler, container.GetJWT()))
	r.Add(modules.NewOrderModule(orderHandler, container.GetJWT()))
	r.Add(modules.NewReviewModule(reviewHandler, container.GetJWT()))
}
