package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/sellerping/sellerping/internal/avito"
	"github.com/sellerping/sellerping/internal/boot"
	"github.com/sellerping/sellerping/internal/config"
	"github.com/sellerping/sellerping/internal/expiry"
	"github.com/sellerping/sellerping/internal/handlers"
	"github.com/sellerping/sellerping/internal/logger"
	"github.com/sellerping/sellerping/internal/notify"
	"github.com/sellerping/sellerping/internal/relay"
	"github.com/sellerping/sellerping/internal/server"
	"github.com/sellerping/sellerping/internal/version"
)

func newServeCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook relay server",
		RunE: func(_ *cobra.Command, _ []string) error {
			runServe(*configPath)
			return nil
		},
	}
}

func runServe(configPath string) {
	fx.New(
		fx.Provide(
			func() (config.Config, error) { return config.Load(configPath) },
			boot.ProvideRuntimeConfig,
			provideLogger,
			provideTokenSource,
			provideAccountResolver,
			provideAvitoClient,
			provideNotifier,
			provideRelayService,

			provideServerHandler(providePingHandler),
			provideServerHandler(provideWebhookHandler),
			provideServerHandler(provideSetupHandler),

			provideServer,
		),
		fx.Invoke(startServer),
		fx.WithLogger(func(log *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: log.With(slog.String("component", "fx"))}
		}),
	).Run()
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

func provideTokenSource(log *slog.Logger, rc *boot.RuntimeConfig) *avito.ClientCredentials {
	return avito.NewClientCredentials(log, rc.AvitoClientID, rc.AvitoClientSecret, rc.AvitoTokenURL, nil)
}

func provideAccountResolver(log *slog.Logger, rc *boot.RuntimeConfig, tokens *avito.ClientCredentials) *avito.AccountResolver {
	return avito.NewAccountResolver(log, tokens, nil, rc.AvitoBaseURL, rc.AvitoAccountID)
}

func provideAvitoClient(log *slog.Logger, rc *boot.RuntimeConfig, tokens *avito.ClientCredentials, accounts *avito.AccountResolver) *avito.Client {
	return avito.NewClient(log, rc.AvitoBaseURL, tokens, accounts, nil)
}

// provideNotifier assembles the operator channel from whatever is configured.
// Unset channels silently no-op; a configured but broken channel fails startup.
func provideNotifier(log *slog.Logger, rc *boot.RuntimeConfig) (notify.Notifier, error) {
	var sinks notify.Multi

	if rc.TelegramBotToken != "" {
		tg, err := notify.NewTelegram(log, rc.TelegramBotToken, rc.TelegramChatID)
		if err != nil {
			return nil, fmt.Errorf("telegram notifier: %w", err)
		}
		sinks = append(sinks, tg)
	}
	if rc.SlackToken != "" {
		sl, err := notify.NewSlack(log, rc.SlackToken, rc.SlackChannel)
		if err != nil {
			return nil, fmt.Errorf("slack notifier: %w", err)
		}
		sinks = append(sinks, sl)
	}

	if len(sinks) == 0 {
		log.Warn("no notification channel configured, operator messages will be dropped")
		return notify.Discard{}, nil
	}
	return sinks, nil
}

func provideRelayService(
	log *slog.Logger,
	rc *boot.RuntimeConfig,
	notifier notify.Notifier,
	client *avito.Client,
	accounts *avito.AccountResolver,
) *relay.Service {
	dedup := expiry.NewStore(rc.DedupTTL)
	cooldowns := expiry.NewStore(rc.ReplyCooldown)
	return relay.NewService(log, notifier, client, accounts, dedup, cooldowns, relay.Options{
		ReplyText:  rc.ReplyText,
		ForwardRaw: rc.ForwardRaw,
		ForceReply: rc.ForceReply,
	})
}

func providePingHandler(log *slog.Logger) *handlers.PingHandler {
	return handlers.NewPingHandler(log)
}

func provideWebhookHandler(log *slog.Logger, rc *boot.RuntimeConfig, svc *relay.Service) *handlers.WebhookHandler {
	return handlers.NewWebhookHandler(log, svc, rc.WebhookSecret)
}

func provideSetupHandler(log *slog.Logger, client *avito.Client, notifier notify.Notifier) *handlers.SetupHandler {
	return handlers.NewSetupHandler(log, client, notifier)
}

func provideServerHandler(fn any) any {
	return fx.Annotate(
		fn,
		fx.As(new(server.Handler)),
		fx.ResultTags(`group:"server_handlers"`),
	)
}

type serverParams struct {
	fx.In

	Logger         *slog.Logger
	RuntimeConfig  *boot.RuntimeConfig
	ServerHandlers []server.Handler `group:"server_handlers"`
}

func provideServer(params serverParams) *server.Server {
	return server.NewServer(params.Logger, params.RuntimeConfig.ServerAddr, params.ServerHandlers...)
}

func startServer(lc fx.Lifecycle, log *slog.Logger, srv *server.Server, shutdowner fx.Shutdowner) {
	fmt.Printf("Starting sellerping %s\n", version.GetInfo())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Start(); err != nil && err != http.ErrServerClosed {
					log.Error("server failed", slog.Any("error", err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Stop(ctx); err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("server stop: %w", err)
			}
			return nil
		},
	})
}
