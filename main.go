package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	_ "golang.org/x/crypto/x509roots/fallback"

	"github.com/siegedash/r6stats/internal/adapters/ubisoft"
	"github.com/siegedash/r6stats/internal/app"
	"github.com/siegedash/r6stats/internal/config"
	"github.com/siegedash/r6stats/internal/domain"
	"github.com/siegedash/r6stats/internal/logging"
	"github.com/siegedash/r6stats/internal/ports"
	"github.com/siegedash/r6stats/internal/reporting"
	"github.com/siegedash/r6stats/internal/telemetry"
)

const serviceName = "r6stats"

const invocationTimeout = 30 * time.Second

// The frontend treats stdout as the result and rejects on a nonzero exit status, so every
// outcome is written as a JSON document and the process exits 0.
func main() {
	startedAt := time.Now()
	invocationID := uuid.New().String()

	invocation := ports.ParseInvocation(os.Args[1:])
	if err := invocation.Validate(); err != nil {
		ports.WriteError(context.Background(), os.Stdout, err)
		return
	}

	conf, err := config.ConfigFromEnv()
	if err != nil {
		logger := logging.NewLogger(os.Stderr, slog.LevelWarn).With("invocationID", invocationID)
		logger.Error("Failed to load config", "error", err.Error())
		ports.WriteError(context.Background(), os.Stdout, err)
		return
	}

	logger := logging.NewLogger(os.Stderr, conf.LogLevel()).With("invocationID", invocationID)
	logger.Info("Loaded config", "config", conf.NonSensitiveString())

	flush, err := reporting.NewSentryOrMock(conf)
	if err != nil {
		logger.Error("Failed to initialize Sentry", "error", err.Error())
		flush = func() {}
	}
	defer flush()

	if conf.OTelEnabled() {
		shutdown, err := telemetry.SetupOTelSDK(context.Background(), serviceName)
		if err != nil {
			logger.Error("Failed to set up OpenTelemetry", "error", err.Error())
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					logger.Error("Failed to shut down OpenTelemetry", "error", err.Error())
				}
			}()
		}
	}

	httpClient := &http.Client{
		Timeout:   10 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	ubisoftClient := ubisoft.NewClient(httpClient, time.Now)

	openSession := func(ctx context.Context, credentials domain.Credentials) (app.StatsSession, error) {
		session, err := ubisoftClient.OpenSession(ctx, credentials)
		if err != nil {
			return nil, err
		}
		return session, nil
	}
	fetchPlayerStats := app.BuildFetchPlayerStats(openSession, time.Now)

	ctx, cancel := context.WithTimeout(context.Background(), invocationTimeout)
	defer cancel()
	ctx = logging.AddToContext(ctx, logger)
	ctx = reporting.NewContext(ctx, startedAt)
	ctx = reporting.AddTagsToContext(ctx, map[string]string{
		"invocationID": invocationID,
	})

	ctx, span := otel.Tracer(serviceName).Start(ctx, "r6stats.fetch")
	span.SetAttributes(attribute.String("platform", invocation.Platform))
	defer span.End()

	ports.RunStatsShim(ctx, os.Stdout, invocation, conf.Credentials(), fetchPlayerStats)

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		logger.Warn("Invocation deadline exceeded", "timeout", invocationTimeout.String())
	}
}
