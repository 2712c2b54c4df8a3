package ubisoft

import (
	"os"
	"testing"

	"github.com/siegedash/r6stats/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestPlayerFromProfilesResponse(t *testing.T) {
	t.Parallel()

	t.Run("uses requested name when the response has none", func(t *testing.T) {
		t.Parallel()

		player, err := playerFromProfilesResponse([]byte(`{"profiles":[{"profileId":"abc"}]}`), "Requested", "psn")
		require.NoError(t, err)
		require.Equal(t, domain.Player{ProfileID: "abc", Name: "Requested", Platform: "psn"}, player)
	})

	t.Run("missing profiles key", func(t *testing.T) {
		t.Parallel()

		_, err := playerFromProfilesResponse([]byte(`{}`), "x", "uplay")
		require.ErrorIs(t, err, domain.ErrPlayerNotFound)
	})

	t.Run("missing profile id", func(t *testing.T) {
		t.Parallel()

		_, err := playerFromProfilesResponse([]byte(`{"profiles":[{"nameOnPlatform":"x"}]}`), "x", "uplay")
		require.Error(t, err)
		require.NotErrorIs(t, err, domain.ErrPlayerNotFound)
	})

	t.Run("html", func(t *testing.T) {
		t.Parallel()

		_, err := playerFromProfilesResponse([]byte(`<!DOCTYPE html>`), "x", "uplay")
		require.Error(t, err)
	})
}

func TestRankedProfileFromFullProfilesResponse(t *testing.T) {
	t.Parallel()

	t.Run("empty response", func(t *testing.T) {
		t.Parallel()

		profile, err := rankedProfileFromFullProfilesResponse([]byte(`{}`), "pc")
		require.NoError(t, err)
		require.Equal(t, domain.RankedProfile{}, profile)
	})

	t.Run("ranked board without profiles", func(t *testing.T) {
		t.Parallel()

		data := `{"platform_families_full_profiles":[{"platform_family":"pc","board_ids_full_profiles":[{"board_id":"ranked","full_profiles":[]}]}]}`
		profile, err := rankedProfileFromFullProfilesResponse([]byte(data), "pc")
		require.NoError(t, err)
		require.Equal(t, domain.RankedProfile{}, profile)
	})

	t.Run("console board", func(t *testing.T) {
		t.Parallel()

		data := `{"platform_families_full_profiles":[
			{"platform_family":"pc","board_ids_full_profiles":[{"board_id":"ranked","full_profiles":[{"profile":{"rank":36},"season_statistics":{}}]}]},
			{"platform_family":"console","board_ids_full_profiles":[{"board_id":"ranked","full_profiles":[{"profile":{"rank":12,"rank_points":1900,"max_rank":13,"max_rank_points":2010,"season_id":35},"season_statistics":{"kills":5,"deaths":7,"match_outcomes":{"wins":1,"losses":2,"abandons":3}}}]}]}
		]}`
		profile, err := rankedProfileFromFullProfilesResponse([]byte(data), "console")
		require.NoError(t, err)
		require.Equal(t, domain.RankedProfile{
			SeasonID:      35,
			Rank:          12,
			RankPoints:    1900,
			MaxRank:       13,
			MaxRankPoints: 2010,
			Kills:         5,
			Deaths:        7,
			Wins:          1,
			Losses:        2,
			Abandons:      3,
		}, profile)
	})
}

func TestProgressionFromResponse(t *testing.T) {
	t.Parallel()

	t.Run("missing entry", func(t *testing.T) {
		t.Parallel()

		progression, err := progressionFromResponse([]byte(`{"player_profiles":[]}`), "abc")
		require.NoError(t, err)
		require.Equal(t, domain.Progression{}, progression)
	})

	t.Run("other profile is ignored", func(t *testing.T) {
		t.Parallel()

		progression, err := progressionFromResponse([]byte(`{"player_profiles":[{"profile_id":"other","level":9}]}`), "abc")
		require.NoError(t, err)
		require.Equal(t, domain.Progression{}, progression)
	})

	t.Run("wrong type", func(t *testing.T) {
		t.Parallel()

		_, err := progressionFromResponse([]byte(`{"player_profiles":[{"level":"high"}]}`), "abc")
		require.Error(t, err)
	})
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Invalid credentials", errorMessage([]byte(`{"message":"Invalid credentials"}`)))
	require.Equal(t, "<empty body>", errorMessage([]byte{}))
	require.Equal(t, "plain", errorMessage([]byte("plain")))

	long := make([]byte, 500)
	for i := range long {
		long[i] = 'a'
	}
	require.Len(t, errorMessage(long), maxErrorBodyLength+3)
}

func TestParseCapturedResponses(t *testing.T) {
	t.Parallel()

	const profileID = "e3d4c5b6-1111-2222-3333-444455556666"

	t.Run("full profiles", func(t *testing.T) {
		t.Parallel()

		data, err := os.ReadFile("testdata/full_profiles.json")
		require.NoError(t, err)

		profile, err := rankedProfileFromFullProfilesResponse(data, "pc")
		require.NoError(t, err)
		require.Equal(t, domain.RankedProfile{
			SeasonID:      36,
			Rank:          36,
			RankPoints:    4987,
			MaxRank:       36,
			MaxRankPoints: 5120,
			Kills:         1004,
			Deaths:        612,
			Wins:          79,
			Losses:        41,
			Abandons:      1,
		}, profile)
		require.Equal(t, "Champions", profile.RankName())

		profile, err = rankedProfileFromFullProfilesResponse(data, "console")
		require.NoError(t, err)
		require.Equal(t, domain.RankedProfile{}, profile)
	})

	t.Run("progressions", func(t *testing.T) {
		t.Parallel()

		data, err := os.ReadFile("testdata/progressions.json")
		require.NoError(t, err)

		progression, err := progressionFromResponse(data, profileID)
		require.NoError(t, err)
		require.Equal(t, domain.Progression{Level: 412, XP: 48213}, progression)
	})
}
