package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/siegedash/r6stats/internal/domain"
	"github.com/siegedash/r6stats/internal/logging"
)

const sessionReleaseTimeout = 5 * time.Second

type FetchPlayerStats func(ctx context.Context, username string, platform string, credentials domain.Credentials) (domain.PlayerStats, error)

type StatsSession interface {
	GetPlayer(ctx context.Context, name string, platform string) (domain.Player, error)
	GetRankedProfile(ctx context.Context, player domain.Player) (domain.RankedProfile, error)
	GetProgression(ctx context.Context, player domain.Player) (domain.Progression, error)
	Close(ctx context.Context) error
}

type OpenSession func(ctx context.Context, credentials domain.Credentials) (StatsSession, error)

// releaseSession closes the session even when ctx is already done
func releaseSession(ctx context.Context, session StatsSession) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sessionReleaseTimeout)
	defer cancel()

	if err := session.Close(ctx); err != nil {
		// NOTE: Session implementations handle their own error reporting
		logging.FromContext(ctx).WarnContext(ctx, "Failed to release session", "error", err.Error())
	}
}

func externalServiceError(op string, err error) error {
	var serviceErr *domain.ExternalServiceError
	if errors.As(err, &serviceErr) {
		return err
	}
	return &domain.ExternalServiceError{Op: op, Err: err}
}

func BuildFetchPlayerStats(openSession OpenSession, nowFunc func() time.Time) FetchPlayerStats {
	return func(ctx context.Context, username string, platform string, credentials domain.Credentials) (domain.PlayerStats, error) {
		username = strings.TrimSpace(username)
		if username == "" {
			return domain.PlayerStats{}, domain.ErrMissingUsername
		}
		if !credentials.Complete() {
			return domain.PlayerStats{}, domain.ErrMissingCredentials
		}
		if platform == "" {
			platform = domain.DefaultPlatform
		}

		session, err := openSession(ctx, credentials)
		if err != nil {
			return domain.PlayerStats{}, externalServiceError("open session", err)
		}
		defer releaseSession(ctx, session)

		player, err := session.GetPlayer(ctx, username, platform)
		if errors.Is(err, domain.ErrPlayerNotFound) {
			return domain.PlayerStats{}, err
		} else if err != nil {
			return domain.PlayerStats{}, externalServiceError("resolve player", err)
		}

		ctx = logging.AddMetaToContext(ctx, slog.String("profileID", player.ProfileID))

		ranked, err := session.GetRankedProfile(ctx, player)
		if err != nil {
			return domain.PlayerStats{}, externalServiceError("load ranked profile", err)
		}

		progression, err := session.GetProgression(ctx, player)
		if err != nil {
			return domain.PlayerStats{}, externalServiceError("load progression", err)
		}

		return domain.PlayerStats{
			Player:      player,
			Ranked:      ranked,
			Progression: progression,
			QueriedAt:   nowFunc(),
		}, nil
	}
}
