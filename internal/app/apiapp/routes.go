package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mohammadarifzafra/topgrade-api/internal/config"
	authsvc "github.com/mohammadarifzafra/topgrade-api/internal/services/auth"
	bookmarksvc "github.com/mohammadarifzafra/topgrade-api/internal/services/bookmarks"
	catalogsvc "github.com/mohammadarifzafra/topgrade-api/internal/services/catalog"
	contentsvc "github.com/mohammadarifzafra/topgrade-api/internal/services/content"
	progresssvc "github.com/mohammadarifzafra/topgrade-api/internal/services/progress"
	purchasesvc "github.com/mohammadarifzafra/topgrade-api/internal/services/purchases"
	ratesvc "github.com/mohammadarifzafra/topgrade-api/internal/services/rate"
	"github.com/mohammadarifzafra/topgrade-api/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthService     *authsvc.Service
	CatalogService  *catalogsvc.Service
	PurchaseService *purchasesvc.Service
	ProgressService *progresssvc.Service
	BookmarkService *bookmarksvc.Service
	ContentService  *contentsvc.Service
	ReportLimiter   *ratesvc.Limiter
	Logger          *zap.Logger
	Config          config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(deps.AuthService)
	catalogHandler := handlers.NewCatalogHandler(deps.CatalogService)
	purchaseHandler := handlers.NewPurchaseHandler(deps.PurchaseService)
	var reportLimiter handlers.ReportLimiter
	if deps.ReportLimiter != nil {
		reportLimiter = deps.ReportLimiter
	}
	progressHandler := handlers.NewProgressHandler(deps.ProgressService, reportLimiter)
	bookmarkHandler := handlers.NewBookmarkHandler(deps.BookmarkService)
	contentHandler := handlers.NewContentHandler(deps.ContentService)
	authMW := AuthMiddleware(deps.AuthService, deps.Logger)

	r.Get("/healthz", healthHandler.Handle)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/catalog/categories", catalogHandler.Categories)
		r.Get("/catalog/{kind}/courses", catalogHandler.Courses)
		r.Get("/catalog/{kind}/courses/{id}", catalogHandler.Course)

		r.With(authMW).Post("/purchases", purchaseHandler.Create)
		r.With(authMW).Get("/purchases", purchaseHandler.List)
		r.With(authMW).Get("/courses/{kind}/{id}/access", purchaseHandler.Access)

		r.With(authMW).Post("/progress/report", progressHandler.Report)
		r.With(authMW).Get("/progress/{kind}/{id}", progressHandler.Course)

		r.With(authMW).Post("/bookmarks", bookmarkHandler.Create)
		r.With(authMW).Get("/bookmarks", bookmarkHandler.List)
		r.With(authMW).Delete("/bookmarks/{kind}/{id}", bookmarkHandler.Delete)

		r.With(authMW).Get("/topics/{kind}/{id}/video", contentHandler.VideoURL)

		r.With(authMW).Post("/auth/logout", authHandler.Logout)
	})
}
