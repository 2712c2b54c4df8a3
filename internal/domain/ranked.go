package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const unrankedName = "Unranked"

var rankTiers = []string{"Copper", "Bronze", "Silver", "Gold", "Platinum", "Emerald", "Diamond"}
var rankDivisions = []string{"V", "IV", "III", "II", "I"}

// Rank ids used by the ranked v2 boards: 0 is unranked, then five divisions per tier from
// Copper V upwards, and Champions last.
var rankNames = buildRankNames()

func buildRankNames() []string {
	names := make([]string, 0, 2+len(rankTiers)*len(rankDivisions))
	names = append(names, unrankedName)
	for _, tier := range rankTiers {
		for _, division := range rankDivisions {
			names = append(names, tier+" "+division)
		}
	}
	return append(names, "Champions")
}

const rankIconBaseURL = "https://staticctf.ubisoft.com/J3yJr34U2pZ2Ieem48Dwy9uqj5PNUQTn/3MJMvRW6zGBCKoXQdFGqyK/6e548cc8cad4108a0303fb4a10e3ae68"

func RankName(rank int) string {
	if rank < 0 || rank >= len(rankNames) {
		return unrankedName
	}
	return rankNames[rank]
}

// RankIconURL returns nil for rank ids outside the known table
func RankIconURL(rank int) *string {
	if rank < 0 || rank >= len(rankNames) {
		return nil
	}
	slug := strings.ReplaceAll(strings.ToLower(rankNames[rank]), " ", "_")
	url := fmt.Sprintf("%s/r6s-rank-%s.png", rankIconBaseURL, slug)
	return &url
}

type RankedProfile struct {
	SeasonID      int
	Rank          int
	RankPoints    int
	MaxRank       int
	MaxRankPoints int

	Kills    int
	Deaths   int
	Wins     int
	Losses   int
	Abandons int
}

func (r RankedProfile) RankName() string {
	return RankName(r.Rank)
}

func (r RankedProfile) MaxRankName() string {
	return RankName(r.MaxRank)
}

func (r RankedProfile) RankIconURL() *string {
	return RankIconURL(r.Rank)
}

func (r RankedProfile) KD() float64 {
	return KD(r.Kills, r.Deaths)
}

func (r RankedProfile) WinRate() string {
	return FormatWinRate(r.Wins, r.Losses)
}

func (r RankedProfile) Matches() int {
	return r.Wins + r.Losses + r.Abandons
}

// KD is kills per death rounded to two decimals. With no deaths the kill count is used.
func KD(kills, deaths int) float64 {
	if deaths == 0 {
		return float64(kills)
	}
	return math.Round(float64(kills)/float64(deaths)*100) / 100
}

// FormatWinRate formats wins / (wins + losses) as a percentage with one decimal, e.g. "67.5%"
func FormatWinRate(wins, losses int) string {
	rate := 0.0
	if total := wins + losses; total > 0 {
		rate = float64(wins) / float64(total) * 100
	}
	return strconv.FormatFloat(rate, 'f', 1, 64) + "%"
}
