// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"strings"

	"coursecraft/config"
	"coursecraft/internal/delivery/api/middleware"
	"coursecraft/internal/delivery/api/router/handler"
	"coursecraft/internal/domain/entity"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	ShellHandler        *handler.ShellHandler
	ProductHandler      *handler.ProductHandler
	DraftHandler        *handler.DraftHandler
	SiteEditorHandler   *handler.SiteEditorHandler
	SettingsHandler     *handler.SettingsHandler
	AnalyticsHandler    *handler.AnalyticsHandler
	LibraryHandler      *handler.LibraryHandler
	NotificationHandler *handler.NotificationHandler
	AffiliateHandler    *handler.AffiliateHandler
	StorefrontHandler   *handler.StorefrontHandler
	AssistantHandler    *handler.AssistantHandler
	AuthMiddleware      *middleware.AuthMiddleware
	Config              *config.Config
}

// router holds all the handlers that need to be registered.
type router struct {
	shellHandler        *handler.ShellHandler
	productHandler      *handler.ProductHandler
	draftHandler        *handler.DraftHandler
	siteEditorHandler   *handler.SiteEditorHandler
	settingsHandler     *handler.SettingsHandler
	analyticsHandler    *handler.AnalyticsHandler
	libraryHandler      *handler.LibraryHandler
	notificationHandler *handler.NotificationHandler
	affiliateHandler    *handler.AffiliateHandler
	storefrontHandler   *handler.StorefrontHandler
	assistantHandler    *handler.AssistantHandler
	authMiddleware      *middleware.AuthMiddleware
	config              *config.Config
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		shellHandler:        params.ShellHandler,
		productHandler:      params.ProductHandler,
		draftHandler:        params.DraftHandler,
		siteEditorHandler:   params.SiteEditorHandler,
		settingsHandler:     params.SettingsHandler,
		analyticsHandler:    params.AnalyticsHandler,
		libraryHandler:      params.LibraryHandler,
		notificationHandler: params.NotificationHandler,
		affiliateHandler:    params.AffiliateHandler,
		storefrontHandler:   params.StorefrontHandler,
		assistantHandler:    params.AssistantHandler,
		authMiddleware:      params.AuthMiddleware,
		config:              params.Config,
	}
}

// RegisterRoutes sets up all the routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.HealthCheck)

	// Public storefront
	e.GET("/store/:creatorId", r.storefrontHandler.Store)
	e.GET("/store/:creatorId/products/:productId", r.storefrontHandler.Product)
	e.GET(r.uploadsPath()+"/*", r.storefrontHandler.Upload)

	// Shell sessions; visitors hold one before signing in
	sessions := e.Group("/api/v1/sessions")
	{
		sessions.POST("", r.shellHandler.CreateSession)
		sessions.GET("/:id", r.shellHandler.GetSession)
		sessions.POST("/:id/auth", r.shellHandler.GoToAuth)
		sessions.POST("/:id/home", r.shellHandler.BackToHome)
		sessions.POST("/:id/sign-in", r.shellHandler.SignIn)
		sessions.POST("/:id/sign-up", r.shellHandler.SignUp)
	}

	e.POST("/api/v1/assistant/messages", r.assistantHandler.Send)

	apiV1 := e.Group("/api/v1")
	apiV1.Use(r.authMiddleware.Authenticate)

	shellGroup := apiV1.Group("/shell")
	{
		shellGroup.GET("/me", r.shellHandler.Me)
		shellGroup.POST("/onboarding", r.shellHandler.CompleteOnboarding)
		shellGroup.POST("/logout", r.shellHandler.Logout)
		shellGroup.POST("/navigate", r.shellHandler.Navigate)
		shellGroup.POST("/course/:productId", r.shellHandler.OpenCourse)
		shellGroup.DELETE("/course", r.shellHandler.CloseCourse)
	}

	libraryGroup := apiV1.Group("/library")
	{
		libraryGroup.GET("", r.libraryHandler.List)
		libraryGroup.GET("/:productId", r.libraryHandler.Course)
		libraryGroup.POST("/:productId/lessons/:lessonId/complete", r.libraryHandler.CompleteLesson)
		libraryGroup.GET("/:productId/certificate.png", r.libraryHandler.Certificate)
		libraryGroup.POST("/:productId/reviews", r.libraryHandler.AddReview)
		libraryGroup.POST("/:productId/claim", r.libraryHandler.ClaimFree)
	}

	notificationsGroup := apiV1.Group("/notifications")
	{
		notificationsGroup.GET("", r.notificationHandler.Feed)
		notificationsGroup.POST("/read-all", r.notificationHandler.MarkAllRead)
		notificationsGroup.POST("/:id/read", r.notificationHandler.MarkRead)
	}

	affiliateGroup := apiV1.Group("/affiliate", r.authMiddleware.RequireRole(entity.RoleAffiliate))
	{
		affiliateGroup.GET("/dashboard", r.affiliateHandler.Dashboard)
		affiliateGroup.POST("/links", r.affiliateHandler.CreateLink)
		affiliateGroup.GET("/links/qr", r.affiliateHandler.LinkQRCode)
	}

	r.registerCreatorRoutes(apiV1, r.authMiddleware.RequireRole(entity.RoleCreator))
}

// registerCreatorRoutes mounts the dashboard surface; every route requires
// the creator role.
func (r *router) registerCreatorRoutes(g *echo.Group, creatorOnly echo.MiddlewareFunc) {
	g.GET("/analytics/dashboard", r.analyticsHandler.Dashboard, creatorOnly)
	g.GET("/students", r.analyticsHandler.Students, creatorOnly)

	g.GET("/settings", r.settingsHandler.Get, creatorOnly)
	g.PUT("/settings", r.settingsHandler.Update, creatorOnly)

	products := g.Group("/products", creatorOnly)
	{
		products.GET("", r.productHandler.List)
		products.GET("/:id", r.productHandler.Get)
		products.PUT("/:id", r.productHandler.Put)
		products.DELETE("/:id", r.productHandler.Delete)
	}

	drafts := g.Group("/drafts", creatorOnly)
	{
		drafts.POST("", r.draftHandler.Open)
		drafts.GET("/:id", r.draftHandler.Get)
		drafts.PATCH("/:id", r.draftHandler.Update)
		drafts.DELETE("/:id", r.draftHandler.Cancel)
		drafts.POST("/:id/commit", r.draftHandler.Commit)

		drafts.POST("/:id/lessons", r.draftHandler.AddLesson)
		drafts.PATCH("/:id/lessons/:lessonId", r.draftHandler.EditLesson)
		drafts.DELETE("/:id/lessons/:lessonId", r.draftHandler.DeleteLesson)
		drafts.PUT("/:id/lessons/:lessonId/video", r.draftHandler.AttachLessonVideo)

		drafts.POST("/:id/days", r.draftHandler.AddSchoolDay)
		drafts.PATCH("/:id/days/:dayId", r.draftHandler.RenameSchoolDay)
		drafts.DELETE("/:id/days/:dayId", r.draftHandler.DeleteSchoolDay)
		drafts.POST("/:id/days/:dayId/lessons", r.draftHandler.AddLesson)
		drafts.PATCH("/:id/days/:dayId/lessons/:lessonId", r.draftHandler.EditLesson)
		drafts.DELETE("/:id/days/:dayId/lessons/:lessonId", r.draftHandler.DeleteLesson)
		drafts.PUT("/:id/days/:dayId/lessons/:lessonId/video", r.draftHandler.AttachLessonVideo)

		for _, scope := range []string{"", "/lessons/:lessonId", "/days/:dayId/lessons/:lessonId"} {
			base := "/:id" + scope + "/resources"
			drafts.POST(base, r.draftHandler.AddResource)
			drafts.PATCH(base+"/:resourceId", r.draftHandler.EditResource)
			drafts.DELETE(base+"/:resourceId", r.draftHandler.DeleteResource)
			drafts.PUT(base+"/:resourceId/file", r.draftHandler.AttachResourceFile)
		}

		drafts.PUT("/:id/image", r.draftHandler.SetImage)
		drafts.POST("/:id/image/crop", r.draftHandler.CropImage)
		drafts.POST("/:id/image/generate", r.draftHandler.GenerateImage)
		drafts.POST("/:id/description/generate", r.draftHandler.GenerateDescription)
		drafts.POST("/:id/certificate/generate", r.draftHandler.GenerateCertificate)
	}

	editor := g.Group("/site-editor", creatorOnly)
	{
		editor.POST("", r.siteEditorHandler.Open)
		editor.GET("/:id", r.siteEditorHandler.Get)
		editor.DELETE("/:id", r.siteEditorHandler.Discard)
		editor.GET("/:id/preview", r.siteEditorHandler.Preview)
		editor.GET("/:id/sections/:sectionId", r.siteEditorHandler.OpenSection)
		editor.PUT("/:id/section/fields/:field", r.siteEditorHandler.SetSectionField)
		editor.PUT("/:id/section/image", r.siteEditorHandler.SetSectionImage)
		editor.POST("/:id/section/image/generate", r.siteEditorHandler.GenerateSectionImage)
		editor.PUT("/:id/section/testimonials", r.siteEditorHandler.SetTestimonials)
		editor.PUT("/:id/section/faq", r.siteEditorHandler.SetFAQItems)
		editor.POST("/:id/section/save", r.siteEditorHandler.SaveSection)
		editor.POST("/:id/section/cancel", r.siteEditorHandler.CancelSection)
		editor.POST("/:id/template", r.siteEditorHandler.ApplyTemplate)
		editor.POST("/:id/generate", r.siteEditorHandler.Generate)
		editor.POST("/:id/save", r.siteEditorHandler.Save)
	}
}

func (r *router) uploadsPath() string {
	if r.config.Storage == nil || r.config.Storage.PublicPath == "" {
		return "/uploads"
	}

	return "/" + strings.Trim(r.config.Storage.PublicPath, "/")
}
