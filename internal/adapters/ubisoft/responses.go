package ubisoft

import (
	"encoding/json"
	"fmt"

	"github.com/siegedash/r6stats/internal/domain"
)

type profilesResponse struct {
	Profiles []profile `json:"profiles"`
}

type profile struct {
	ProfileID      string `json:"profileId"`
	UserID         string `json:"userId"`
	PlatformType   string `json:"platformType"`
	IDOnPlatform   string `json:"idOnPlatform"`
	NameOnPlatform string `json:"nameOnPlatform"`
}

func playerFromProfilesResponse(data []byte, name string, platform string) (domain.Player, error) {
	var response profilesResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return domain.Player{}, fmt.Errorf("failed to parse profiles response: %w", err)
	}

	if len(response.Profiles) == 0 {
		return domain.Player{}, domain.ErrPlayerNotFound
	}

	found := response.Profiles[0]
	if found.ProfileID == "" {
		return domain.Player{}, fmt.Errorf("profile in response is missing profileId")
	}

	displayName := found.NameOnPlatform
	if displayName == "" {
		displayName = name
	}

	return domain.Player{
		ProfileID: found.ProfileID,
		Name:      displayName,
		Platform:  platform,
	}, nil
}

type fullProfilesResponse struct {
	PlatformFamilies []platformFamilyFullProfiles `json:"platform_families_full_profiles"`
}

type platformFamilyFullProfiles struct {
	PlatformFamily string              `json:"platform_family"`
	Boards         []boardFullProfiles `json:"board_ids_full_profiles"`
}

type boardFullProfiles struct {
	BoardID      string        `json:"board_id"`
	FullProfiles []fullProfile `json:"full_profiles"`
}

type fullProfile struct {
	Profile          boardProfile     `json:"profile"`
	SeasonStatistics seasonStatistics `json:"season_statistics"`
}

type boardProfile struct {
	BoardID         string `json:"board_id"`
	ID              string `json:"id"`
	MaxRank         int    `json:"max_rank"`
	MaxRankPoints   int    `json:"max_rank_points"`
	PlatformFamily  string `json:"platform_family"`
	Rank            int    `json:"rank"`
	RankPoints      int    `json:"rank_points"`
	SeasonID        int    `json:"season_id"`
	TopRankPosition int    `json:"top_rank_position"`
}

type seasonStatistics struct {
	Deaths        int           `json:"deaths"`
	Kills         int           `json:"kills"`
	MatchOutcomes matchOutcomes `json:"match_outcomes"`
}

type matchOutcomes struct {
	Abandons int `json:"abandons"`
	Losses   int `json:"losses"`
	Wins     int `json:"wins"`
}

const rankedBoardID = "ranked"

func rankedProfileFromFullProfilesResponse(data []byte, platformFamily string) (domain.RankedProfile, error) {
	var response fullProfilesResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return domain.RankedProfile{}, fmt.Errorf("failed to parse full profiles response: %w", err)
	}

	for _, family := range response.PlatformFamilies {
		if family.PlatformFamily != platformFamily {
			continue
		}
		for _, board := range family.Boards {
			if board.BoardID != rankedBoardID || len(board.FullProfiles) == 0 {
				continue
			}
			full := board.FullProfiles[0]
			return domain.RankedProfile{
				SeasonID:      full.Profile.SeasonID,
				Rank:          full.Profile.Rank,
				RankPoints:    full.Profile.RankPoints,
				MaxRank:       full.Profile.MaxRank,
				MaxRankPoints: full.Profile.MaxRankPoints,

				Kills:    full.SeasonStatistics.Kills,
				Deaths:   full.SeasonStatistics.Deaths,
				Wins:     full.SeasonStatistics.MatchOutcomes.Wins,
				Losses:   full.SeasonStatistics.MatchOutcomes.Losses,
				Abandons: full.SeasonStatistics.MatchOutcomes.Abandons,
			}, nil
		}
	}

	return domain.RankedProfile{}, nil
}

type progressionsResponse struct {
	PlayerProfiles []playerProgression `json:"player_profiles"`
}

type playerProgression struct {
	ProfileID string `json:"profile_id"`
	Level     int    `json:"level"`
	XP        int    `json:"xp"`
}

func progressionFromResponse(data []byte, profileID string) (domain.Progression, error) {
	var response progressionsResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return domain.Progression{}, fmt.Errorf("failed to parse progression response: %w", err)
	}

	for _, progression := range response.PlayerProfiles {
		if progression.ProfileID == "" || progression.ProfileID == profileID {
			return domain.Progression{
				Level: progression.Level,
				XP:    progression.XP,
			}, nil
		}
	}

	return domain.Progression{}, nil
}
