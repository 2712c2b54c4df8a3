package ports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/siegedash/r6stats/internal/app"
	"github.com/siegedash/r6stats/internal/domain"
	"github.com/siegedash/r6stats/internal/logging"
	"github.com/siegedash/r6stats/internal/reporting"
)

const (
	missingUsernameMessage    = "Missing username"
	missingCredentialsMessage = "Missing Ubisoft credentials in .env.local"
	playerNotFoundMessage     = "Player not found"
	internalErrorMessage      = "internal error"
)

// Invocation holds the positional arguments `<username> [platform]`
type Invocation struct {
	Username string
	Platform string
}

// ParseInvocation reads the arguments following the program name
func ParseInvocation(args []string) Invocation {
	invocation := Invocation{Platform: domain.DefaultPlatform}
	if len(args) > 0 {
		invocation.Username = strings.TrimSpace(args[0])
	}
	if len(args) > 1 && strings.TrimSpace(args[1]) != "" {
		invocation.Platform = args[1]
	}
	return invocation
}

func (i Invocation) Validate() error {
	if i.Username == "" {
		return domain.ErrMissingUsername
	}
	return nil
}

type profileResponse struct {
	Username string  `json:"username"`
	ID       string  `json:"id"`
	Avatar   *string `json:"avatar"`
	Level    int     `json:"level"`
	Platform string  `json:"platform"`
}

type rankResponse struct {
	Name    string  `json:"name"`
	Icon    *string `json:"icon"`
	MMR     int     `json:"mmr"`
	MaxRank string  `json:"max_rank"`
	MaxMMR  int     `json:"max_mmr"`
}

type rankInfoResponse struct {
	Rank    rankResponse `json:"rank"`
	KD      float64      `json:"kd"`
	WinRate string       `json:"winRate"`
	Kills   int          `json:"kills"`
	Deaths  int          `json:"deaths"`
}

type statsGeneralResponse struct {
	KD      float64 `json:"kd"`
	Matches int     `json:"matches"`
	WinRate string  `json:"winRate"`
}

type statsResponse struct {
	Profile      profileResponse      `json:"profile"`
	RankInfo     rankInfoResponse     `json:"rank_info"`
	StatsGeneral statsGeneralResponse `json:"stats_general"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func statsToResponse(invocation Invocation, stats domain.PlayerStats) statsResponse {
	ranked := stats.Ranked
	return statsResponse{
		Profile: profileResponse{
			Username: stats.Player.Name,
			ID:       stats.Player.ProfileID,
			Avatar:   stats.Player.AvatarURL(),
			Level:    stats.Progression.Level,
			Platform: invocation.Platform,
		},
		RankInfo: rankInfoResponse{
			Rank: rankResponse{
				Name:    ranked.RankName(),
				Icon:    ranked.RankIconURL(),
				MMR:     ranked.RankPoints,
				MaxRank: ranked.MaxRankName(),
				MaxMMR:  ranked.MaxRankPoints,
			},
			KD:      ranked.KD(),
			WinRate: ranked.WinRate(),
			Kills:   ranked.Kills,
			Deaths:  ranked.Deaths,
		},
		StatsGeneral: statsGeneralResponse{
			KD:      ranked.KD(),
			Matches: ranked.Matches(),
			WinRate: ranked.WinRate(),
		},
	}
}

// ErrorMessage is the text shown to the frontend for err
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrMissingUsername):
		return missingUsernameMessage
	case errors.Is(err, domain.ErrMissingCredentials):
		return missingCredentialsMessage
	case errors.Is(err, domain.ErrPlayerNotFound):
		return playerNotFoundMessage
	}
	return err.Error()
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrMissingUsername):
		return "missing_username"
	case errors.Is(err, domain.ErrMissingCredentials):
		return "missing_credentials"
	case errors.Is(err, domain.ErrPlayerNotFound):
		return "player_not_found"
	}
	return "error"
}

// writeDocument writes v as one line of JSON with a single call to w
func writeDocument(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		data = []byte(`{"error":"` + internalErrorMessage + `"}`)
	}
	data = append(data, '\n')

	_, writeErr := w.Write(data)
	return errors.Join(err, writeErr)
}

// WriteError writes the error document for err
func WriteError(ctx context.Context, w io.Writer, err error) {
	if writeErr := writeDocument(w, errorResponse{Error: ErrorMessage(err)}); writeErr != nil {
		logging.FromContext(ctx).ErrorContext(ctx, "Failed to write error document", "error", writeErr.Error())
	}
}

// RunStatsShim fetches the stats for invocation and writes exactly one document to w
func RunStatsShim(
	ctx context.Context,
	w io.Writer,
	invocation Invocation,
	credentials domain.Credentials,
	fetchPlayerStats app.FetchPlayerStats,
) {
	start := time.Now()
	ctx = logging.AddMetaToContext(ctx,
		slog.String("username", invocation.Username),
		slog.String("platform", invocation.Platform),
	)
	ctx = reporting.AddTagsToContext(ctx, map[string]string{
		"platform": invocation.Platform,
	})
	logger := logging.FromContext(ctx)

	written := false
	outcome := "panic"
	defer func() {
		recordInvocation(ctx, outcome, time.Since(start))
	}()

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		err := fmt.Errorf("panic while fetching player stats: %v", r)
		logger.ErrorContext(ctx, err.Error())
		reporting.Report(ctx, err)
		if !written {
			written = true
			_ = writeDocument(w, errorResponse{Error: internalErrorMessage})
		}
	}()

	var document any
	stats, err := fetchPlayerStats(ctx, invocation.Username, invocation.Platform, credentials)
	if err != nil {
		// NOTE: Unexpected errors are reported where they originate
		logger.WarnContext(ctx, "Failed to fetch player stats", "error", err.Error())
		document = errorResponse{Error: ErrorMessage(err)}
	} else {
		document = statsToResponse(invocation, stats)
	}
	outcome = outcomeOf(err)

	written = true
	if err := writeDocument(w, document); err != nil {
		logger.ErrorContext(ctx, "Failed to write document", "error", err.Error())
		return
	}
	logger.InfoContext(ctx, "Wrote document", "outcome", outcome, "duration", time.Since(start).String())
}
