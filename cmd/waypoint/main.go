package main

import (
	"context"
	"log/slog"
	"os"

	"waypoint/config"
	"waypoint/internal/delivery"
	"waypoint/internal/delivery/http"
	"waypoint/internal/delivery/http/router/handler"
	"waypoint/internal/infra/clock"
	"waypoint/internal/infra/geo"
	logs "waypoint/internal/infra/log"
	"waypoint/internal/infra/notification"
	"waypoint/internal/infra/persistence/kv"
	"waypoint/internal/infra/pubsub"
	"waypoint/internal/infra/qrcode"
	"waypoint/internal/usecase/impl"

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
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectHandler(),
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
		clock.New,
		kv.New,
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			geo.NewBridgeProvider,
			qrcode.NewQRCodeService,
			pubsub.NewEventPublisher,
			notification.NewLocalScheduler,
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewStateManager,
			impl.NewLocationService,
			impl.NewAddressService,
			impl.NewNotificationService,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewLocationHandler,
			handler.NewAddressHandler,
			handler.NewNotificationHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
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
