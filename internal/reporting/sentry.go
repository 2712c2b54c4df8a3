package reporting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/siegedash/r6stats/internal/config"
	"github.com/siegedash/r6stats/internal/logging"
)

var uuidRx = regexp.MustCompile(`[0-9a-f]{8}-?([0-9a-f]{4}-?){3}[0-9a-f]{12}`)
var hostRx = regexp.MustCompile(`\[:{0,2}([0-9a-f]{0,4}:?){1,8}\]:\d+`)
var usernameRx = regexp.MustCompile(`nameOnPlatform=[^&"\s]+`)
var emailRx = regexp.MustCompile(`[^@\s"':]+@[^@\s"':/]+\.[a-zA-Z]{2,}`)

func sanitizeError(err string) string {
	err = uuidRx.ReplaceAllString(err, "<uuid>")
	err = hostRx.ReplaceAllString(err, "<host>")
	err = usernameRx.ReplaceAllString(err, "nameOnPlatform=<username>")
	err = emailRx.ReplaceAllString(err, "<email>")
	return err
}

func Report(ctx context.Context, err error, extras ...map[string]string) {
	hub := sentry.GetHubFromContext(ctx)
	logger := logging.FromContext(ctx)
	if hub == nil {
		logger.WarnContext(ctx, "Failed to get Sentry hub from context", "error", err, "extras", extras)
		return
	}

	if err == nil {
		err = errors.New("No error provided")
	}

	logger.ErrorContext(
		ctx,
		"Reporting error to Sentry",
		slog.String("error", err.Error()),
		slog.Any("extras", extras),
	)

	hub.WithScope(func(scope *sentry.Scope) {
		meta := MetaFromContext(ctx)
		scope.SetTags(meta.tags)
		for key, value := range meta.extras {
			scope.SetExtra(key, value)
		}
		scope.SetExtra("secondsSinceStart", time.Since(meta.startedAt).Seconds())

		for _, extra := range extras {
			if extra == nil {
				continue
			}
			for key, value := range extra {
				scope.SetExtra(key, value)
			}
		}

		scope.SetFingerprint([]string{"{{ default }}", sanitizeError(err.Error())})
		hub.CaptureException(err)
	})
}

// NewContext attaches a Sentry hub and the invocation start time to ctx
func NewContext(ctx context.Context, startedAt time.Time) context.Context {
	ctx = sentry.SetHubOnContext(ctx, sentry.CurrentHub().Clone())
	return setStartedAtInContext(ctx, startedAt)
}

func InitSentry(sentryDSN string, environment string) (func(), error) {
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              sentryDSN,
		Environment:      environment,
		EnableTracing:    true,
		TracesSampleRate: 1.0 / 100.0,
	})
	if err != nil {
		return nil, err
	}

	flush := func() {
		sentry.Flush(2 * time.Second)
	}

	return flush, nil
}

// NewSentryOrMock initializes Sentry when a DSN is configured. Without a DSN errors are
// only logged.
func NewSentryOrMock(conf config.Config) (func(), error) {
	if conf.SentryDSN() != "" {
		flush, err := InitSentry(conf.SentryDSN(), conf.Environment())
		if err != nil {
			return nil, fmt.Errorf("failed to initialize sentry: %w", err)
		}
		return flush, nil
	}

	return func() {}, nil
}
