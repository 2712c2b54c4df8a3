package domain

import (
	"fmt"
	"strings"
	"time"
)

const DefaultPlatform = "uplay"

type Player struct {
	ProfileID string
	Name      string
	// Platform as requested by the caller, echoed back verbatim
	Platform string
}

// AvatarURL returns the tall avatar, or nil if the player has no profile id
func (p Player) AvatarURL() *string {
	if p.ProfileID == "" {
		return nil
	}
	url := fmt.Sprintf("https://ubisoft-avatars.akamaized.net/%s/default_tall.png", p.ProfileID)
	return &url
}

type Progression struct {
	Level int
	XP    int
}

type PlayerStats struct {
	Player      Player
	Ranked      RankedProfile
	Progression Progression
	QueriedAt   time.Time
}

// APIPlatform maps the platform given on the command line to the platform type the stats
// service understands. "pc" is accepted as an alias of "uplay".
func APIPlatform(platform string) string {
	normalized := strings.ToLower(strings.TrimSpace(platform))
	switch normalized {
	case "", "pc":
		return DefaultPlatform
	}
	return normalized
}

// PlatformFamily groups platforms the way ranked boards are split: pc or console
func PlatformFamily(platform string) string {
	switch APIPlatform(platform) {
	case "psn", "xbl":
		return "console"
	}
	return "pc"
}
