package ports_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/siegedash/r6stats/internal/app"
	"github.com/siegedash/r6stats/internal/domain"
	"github.com/siegedash/r6stats/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const profileID = "e3d4c5b6-1111-2222-3333-444455556666"

var credentials = domain.Credentials{Email: "player@example.com", Password: "hunter2"}

func requireSingleLineJSON(t *testing.T, expected string, output string) {
	t.Helper()

	require.True(t, strings.HasSuffix(output, "\n"), "output must end with a newline")
	require.Equal(t, 1, strings.Count(output, "\n"), "output must be exactly one line")
	require.JSONEq(t, expected, output)
}

func TestParseInvocation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		args     []string
		expected ports.Invocation
	}{
		{args: nil, expected: ports.Invocation{Username: "", Platform: "uplay"}},
		{args: []string{}, expected: ports.Invocation{Username: "", Platform: "uplay"}},
		{args: []string{"Beaulo.TSM"}, expected: ports.Invocation{Username: "Beaulo.TSM", Platform: "uplay"}},
		{args: []string{" Beaulo.TSM "}, expected: ports.Invocation{Username: "Beaulo.TSM", Platform: "uplay"}},
		{args: []string{"someone", "psn"}, expected: ports.Invocation{Username: "someone", Platform: "psn"}},
		{args: []string{"someone", "PC"}, expected: ports.Invocation{Username: "someone", Platform: "PC"}},
		{args: []string{"someone", ""}, expected: ports.Invocation{Username: "someone", Platform: "uplay"}},
		{args: []string{"someone", "xbl", "extra"}, expected: ports.Invocation{Username: "someone", Platform: "xbl"}},
	}

	for _, c := range cases {
		t.Run(fmt.Sprintf("%q", c.args), func(t *testing.T) {
			t.Parallel()

			invocation := ports.ParseInvocation(c.args)
			require.Equal(t, c.expected, invocation)
		})
	}

	require.ErrorIs(t, ports.ParseInvocation(nil).Validate(), domain.ErrMissingUsername)
	require.NoError(t, ports.ParseInvocation([]string{"x"}).Validate())
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Missing username", ports.ErrorMessage(domain.ErrMissingUsername))
	require.Equal(t, "Missing Ubisoft credentials in .env.local", ports.ErrorMessage(domain.ErrMissingCredentials))
	require.Equal(t, "Player not found", ports.ErrorMessage(domain.ErrPlayerNotFound))
	require.Equal(t, "Player not found", ports.ErrorMessage(fmt.Errorf("lookup: %w", domain.ErrPlayerNotFound)))
	require.Equal(
		t,
		"load ranked profile: boom",
		ports.ErrorMessage(&domain.ExternalServiceError{Op: "load ranked profile", Err: errors.New("boom")}),
	)
}

func TestWriteError(t *testing.T) {
	t.Parallel()

	var output bytes.Buffer
	ports.WriteError(t.Context(), &output, domain.ErrMissingUsername)
	requireSingleLineJSON(t, `{"error":"Missing username"}`, output.String())
	require.Equal(t, "{\"error\":\"Missing username\"}\n", output.String())
}

type countingWriter struct {
	bytes.Buffer
	writes int
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.writes++
	return w.Buffer.Write(p)
}

type failingWriter struct{}

func (w failingWriter) Write(p []byte) (int, error) {
	return 0, assert.AnError
}

func TestRunStatsShim(t *testing.T) {
	t.Parallel()

	stats := domain.PlayerStats{
		Player: domain.Player{
			ProfileID: profileID,
			Name:      "Beaulo.TSM",
			Platform:  "pc",
		},
		Ranked: domain.RankedProfile{
			SeasonID:      36,
			Rank:          30,
			RankPoints:    3844,
			MaxRank:       31,
			MaxRankPoints: 4012,
			Kills:         250,
			Deaths:        200,
			Wins:          27,
			Losses:        13,
			Abandons:      2,
		},
		Progression: domain.Progression{Level: 287, XP: 1234},
		QueriedAt:   time.Date(2026, time.October, 18, 12, 0, 0, 0, time.UTC),
	}

	buildFetch := func(t *testing.T, stats domain.PlayerStats, err error) (app.FetchPlayerStats, *int) {
		calls := 0
		return func(ctx context.Context, username string, platform string, creds domain.Credentials) (domain.PlayerStats, error) {
			calls++
			require.Equal(t, "Beaulo.TSM", username)
			require.Equal(t, "pc", platform)
			require.Equal(t, credentials, creds)
			return stats, err
		}, &calls
	}

	invocation := ports.Invocation{Username: "Beaulo.TSM", Platform: "pc"}

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		fetch, calls := buildFetch(t, stats, nil)
		output := &countingWriter{}

		ports.RunStatsShim(t.Context(), output, invocation, credentials, fetch)

		require.Equal(t, 1, *calls)
		require.Equal(t, 1, output.writes)
		requireSingleLineJSON(t, `{
			"profile": {
				"username": "Beaulo.TSM",
				"id": "`+profileID+`",
				"avatar": "https://ubisoft-avatars.akamaized.net/`+profileID+`/default_tall.png",
				"level": 287,
				"platform": "pc"
			},
			"rank_info": {
				"rank": {
					"name": "Emerald I",
					"icon": "https://staticctf.ubisoft.com/J3yJr34U2pZ2Ieem48Dwy9uqj5PNUQTn/3MJMvRW6zGBCKoXQdFGqyK/6e548cc8cad4108a0303fb4a10e3ae68/r6s-rank-emerald_i.png",
					"mmr": 3844,
					"max_rank": "Diamond V",
					"max_mmr": 4012
				},
				"kd": 1.25,
				"winRate": "67.5%",
				"kills": 250,
				"deaths": 200
			},
			"stats_general": {
				"kd": 1.25,
				"matches": 42,
				"winRate": "67.5%"
			}
		}`, output.String())
	})

	t.Run("unranked player", func(t *testing.T) {
		t.Parallel()

		fetch, _ := buildFetch(t, domain.PlayerStats{
			Player: domain.Player{ProfileID: profileID, Name: "Beaulo.TSM", Platform: "pc"},
		}, nil)
		var output bytes.Buffer

		ports.RunStatsShim(t.Context(), &output, invocation, credentials, fetch)

		requireSingleLineJSON(t, `{
			"profile": {
				"username": "Beaulo.TSM",
				"id": "`+profileID+`",
				"avatar": "https://ubisoft-avatars.akamaized.net/`+profileID+`/default_tall.png",
				"level": 0,
				"platform": "pc"
			},
			"rank_info": {
				"rank": {
					"name": "Unranked",
					"icon": "https://staticctf.ubisoft.com/J3yJr34U2pZ2Ieem48Dwy9uqj5PNUQTn/3MJMvRW6zGBCKoXQdFGqyK/6e548cc8cad4108a0303fb4a10e3ae68/r6s-rank-unranked.png",
					"mmr": 0,
					"max_rank": "Unranked",
					"max_mmr": 0
				},
				"kd": 0,
				"winRate": "0.0%",
				"kills": 0,
				"deaths": 0
			},
			"stats_general": {
				"kd": 0,
				"matches": 0,
				"winRate": "0.0%"
			}
		}`, output.String())
	})

	t.Run("unknown rank has no icon", func(t *testing.T) {
		t.Parallel()

		unknown := stats
		unknown.Ranked.Rank = 99
		fetch, _ := buildFetch(t, unknown, nil)
		var output bytes.Buffer

		ports.RunStatsShim(t.Context(), &output, invocation, credentials, fetch)

		require.Contains(t, output.String(), `"rank":{"name":"Unranked","icon":null,`)
	})

	errorCases := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "missing username", err: domain.ErrMissingUsername, expected: `{"error":"Missing username"}`},
		{name: "missing credentials", err: domain.ErrMissingCredentials, expected: `{"error":"Missing Ubisoft credentials in .env.local"}`},
		{name: "player not found", err: domain.ErrPlayerNotFound, expected: `{"error":"Player not found"}`},
		{
			name:     "external failure",
			err:      &domain.ExternalServiceError{Op: "open session", Err: fmt.Errorf("%w: Invalid credentials", domain.ErrInvalidCredentials)},
			expected: `{"error":"open session: invalid credentials: Invalid credentials"}`,
		},
		{
			name:     "html in message is kept as text",
			err:      errors.New("ubisoft profiles returned status code 500: <!DOCTYPE html>"),
			expected: `{"error":"ubisoft profiles returned status code 500: <!DOCTYPE html>"}`,
		},
	}

	for _, c := range errorCases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			fetch, calls := buildFetch(t, domain.PlayerStats{}, c.err)
			output := &countingWriter{}

			ports.RunStatsShim(t.Context(), output, invocation, credentials, fetch)

			require.Equal(t, 1, *calls)
			require.Equal(t, 1, output.writes)
			requireSingleLineJSON(t, c.expected, output.String())
		})
	}

	t.Run("panic is printed as an error document", func(t *testing.T) {
		t.Parallel()

		fetch := func(ctx context.Context, username string, platform string, creds domain.Credentials) (domain.PlayerStats, error) {
			panic("nil map")
		}
		output := &countingWriter{}

		require.NotPanics(t, func() {
			ports.RunStatsShim(t.Context(), output, invocation, credentials, fetch)
		})

		require.Equal(t, 1, output.writes)
		requireSingleLineJSON(t, `{"error":"internal error"}`, output.String())
	})

	t.Run("failing writer", func(t *testing.T) {
		t.Parallel()

		fetch, _ := buildFetch(t, stats, nil)
		require.NotPanics(t, func() {
			ports.RunStatsShim(t.Context(), failingWriter{}, invocation, credentials, fetch)
		})
	})
}
