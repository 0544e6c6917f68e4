package main

import (
	"context"
	"log/slog"
	"os"

	"coursecraft/config"
	"coursecraft/internal/delivery"
	"coursecraft/internal/delivery/api"
	"coursecraft/internal/delivery/api/middleware"
	"coursecraft/internal/delivery/api/router/handler"
	"coursecraft/internal/delivery/worker"
	workerhandler "coursecraft/internal/delivery/worker/handler"
	"coursecraft/internal/domain/landing"
	"coursecraft/internal/infra/auth"
	"coursecraft/internal/infra/blobstore"
	"coursecraft/internal/infra/genai"
	"coursecraft/internal/infra/imaging"
	logs "coursecraft/internal/infra/log"
	"coursecraft/internal/infra/persistence/memory"
	"coursecraft/internal/infra/pubsub"
	"coursecraft/internal/infra/qrcode"
	"coursecraft/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle
	fx.Shutdowner

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		memory.Module,
		pubsub.Module,
		injectService(),
		injectUsecase(),
		injectMiddleware(),
		injectHandler(),
		injectDelivery(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewBcryptHasher,
			auth.NewJWTService,
			qrcode.NewQRCodeService,
			blobstore.NewObjectStore,
			genai.NewContentGenerator,
			imaging.NewImageProcessor,
			imaging.NewCertificateRenderer,
			landing.NewRenderer,
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewShellService,
			impl.NewProductService,
			impl.NewDraftService,
			impl.NewSiteEditorService,
			impl.NewSettingsService,
			impl.NewAnalyticsService,
			impl.NewLibraryService,
			impl.NewNotificationService,
			impl.NewAffiliateService,
			impl.NewStorefrontService,
			impl.NewAssistantService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewAuthMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewShellHandler,
			handler.NewProductHandler,
			handler.NewDraftHandler,
			handler.NewSiteEditorHandler,
			handler.NewSettingsHandler,
			handler.NewAnalyticsHandler,
			handler.NewLibraryHandler,
			handler.NewNotificationHandler,
			handler.NewAffiliateHandler,
			handler.NewStorefrontHandler,
			handler.NewAssistantHandler,
			workerhandler.NewPushHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				api.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
			fx.Annotate(
				newWorkerServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

// newWorkerServer serves the push endpoint in-process when the worker is enabled
func newWorkerServer(params worker.ServerParams) (delivery.Delivery, error) {
	if params.Cfg.Worker == nil || !params.Cfg.Worker.Enabled {
		return nil, nil
	}

	return worker.NewServer(params)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		if delivery == nil {
			continue
		}

		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))

				// Trigger graceful shutdown to execute all OnStop hooks
				if shutdownErr := params.Shutdown(); shutdownErr != nil {
					slog.Error("Failed to shutdown gracefully", slog.Any("error", shutdownErr))
					os.Exit(1)
				}
			}
		}()
	}
}
