package ubisoft

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/siegedash/r6stats/internal/domain"
	"github.com/siegedash/r6stats/internal/logging"
	"github.com/siegedash/r6stats/internal/reporting"
)

const RANKED_SPACE_ID = "0d2ae42d-4c27-4cb7-af6c-2099062302bb"

var spaceIDs = map[string]string{
	"uplay": "5172a557-50b5-4665-b7db-e3f2e8c5041d",
	"psn":   "05bfb3f7-6c21-4c42-be1f-97a33fb5cf66",
	"xbl":   "98a601e5-ca91-4440-b1c5-753f601a2c90",
}

var sandboxIDs = map[string]string{
	"uplay": "OSBOR_PC_LNCH_A",
	"psn":   "OSBOR_PS4_LNCH_A",
	"xbl":   "OSBOR_XBOXONE_LNCH_A",
}

// Session is an authenticated handle. It is not safe for concurrent use.
type Session struct {
	client     *Client
	ticket     string
	sessionID  string
	expiration string
	closed     bool
}

func (s *Session) authHeaders() map[string]string {
	return map[string]string{
		"Authorization": "Ubi_v1 t=" + s.ticket,
		"Ubi-SessionId": s.sessionID,
	}
}

func (s *Session) get(ctx context.Context, endpoint, url string) ([]byte, int, error) {
	if s.closed {
		return []byte{}, -1, fmt.Errorf("ubisoft %s: session is closed", endpoint)
	}
	return s.client.do(ctx, endpoint, http.MethodGet, url, s.authHeaders(), nil)
}

// getOK is get with non-200 responses turned into reported errors
func (s *Session) getOK(ctx context.Context, endpoint, url string) ([]byte, error) {
	data, statusCode, err := s.get(ctx, endpoint, url)
	if err != nil {
		// NOTE: do handles its own error reporting
		return nil, err
	}
	if err := checkStatus(endpoint, statusCode, data); err != nil {
		reporting.Report(ctx, err, map[string]string{
			"status": strconv.Itoa(statusCode),
			"data":   truncate(string(data)),
		})
		return nil, err
	}
	return data, nil
}

// GetPlayer resolves a player by name on the given platform.
// Returns domain.ErrPlayerNotFound when no profile matches.
func (s *Session) GetPlayer(ctx context.Context, name string, platform string) (domain.Player, error) {
	query := url.Values{
		"nameOnPlatform": {name},
		"platformType":   {domain.APIPlatform(platform)},
	}
	data, err := s.getOK(ctx, "profiles", fmt.Sprintf("%s/v3/profiles?%s", BASE_URL, query.Encode()))
	if err != nil {
		return domain.Player{}, err
	}

	player, err := playerFromProfilesResponse(data, name, platform)
	if errors.Is(err, domain.ErrPlayerNotFound) {
		return domain.Player{}, err
	} else if err != nil {
		reporting.Report(ctx, err, map[string]string{
			"data": truncate(string(data)),
		})
		return domain.Player{}, err
	}

	logging.FromContext(ctx).InfoContext(ctx, "Resolved player", "profileID", player.ProfileID)
	return player, nil
}

func (s *Session) rankedProfileURL(player domain.Player) string {
	query := url.Values{
		"platform_families": {domain.PlatformFamily(player.Platform)},
		"profile_ids":       {player.ProfileID},
	}
	return fmt.Sprintf("%s/v2/spaces/%s/title/r6s/skill/full_profiles?%s", BASE_URL, RANKED_SPACE_ID, query.Encode())
}

func (s *Session) progressionURL(player domain.Player) string {
	platform := domain.APIPlatform(player.Platform)
	spaceID, ok := spaceIDs[platform]
	if !ok {
		spaceID = spaceIDs[domain.DefaultPlatform]
	}
	sandboxID, ok := sandboxIDs[platform]
	if !ok {
		sandboxID = sandboxIDs[domain.DefaultPlatform]
	}

	query := url.Values{"profile_ids": {player.ProfileID}}
	return fmt.Sprintf(
		"%s/v1/spaces/%s/sandboxes/%s/r6playerprofile/playerprofile/progressions?%s",
		BASE_URL, spaceID, sandboxID, query.Encode(),
	)
}

// RawRankedProfile returns the unparsed ranked v2 payload and status code
func (s *Session) RawRankedProfile(ctx context.Context, player domain.Player) ([]byte, int, error) {
	return s.get(ctx, "ranked_profile", s.rankedProfileURL(player))
}

// RawProgression returns the unparsed progression payload and status code
func (s *Session) RawProgression(ctx context.Context, player domain.Player) ([]byte, int, error) {
	return s.get(ctx, "progression", s.progressionURL(player))
}

// GetRankedProfile loads the current season ranked board. A player without a ranked board
// gets an empty (unranked) profile.
func (s *Session) GetRankedProfile(ctx context.Context, player domain.Player) (domain.RankedProfile, error) {
	data, err := s.getOK(ctx, "ranked_profile", s.rankedProfileURL(player))
	if err != nil {
		return domain.RankedProfile{}, err
	}

	profile, err := rankedProfileFromFullProfilesResponse(data, domain.PlatformFamily(player.Platform))
	if err != nil {
		reporting.Report(ctx, err, map[string]string{
			"data": truncate(string(data)),
		})
		return domain.RankedProfile{}, err
	}

	return profile, nil
}

// GetProgression loads level and xp. A missing entry yields level 0.
func (s *Session) GetProgression(ctx context.Context, player domain.Player) (domain.Progression, error) {
	data, err := s.getOK(ctx, "progression", s.progressionURL(player))
	if err != nil {
		return domain.Progression{}, err
	}

	progression, err := progressionFromResponse(data, player.ProfileID)
	if err != nil {
		reporting.Report(ctx, err, map[string]string{
			"data": truncate(string(data)),
		})
		return domain.Progression{}, err
	}

	return progression, nil
}

// Close releases the session. Calling Close more than once is a no-op.
func (s *Session) Close(ctx context.Context) error {
	if s == nil || s.closed {
		return nil
	}
	s.closed = true

	defer func() {
		if closer, ok := s.client.httpClient.(interface{ CloseIdleConnections() }); ok {
			closer.CloseIdleConnections()
		}
	}()

	data, statusCode, err := s.client.do(ctx, "close_session", http.MethodDelete, BASE_URL+"/v3/profiles/sessions", s.authHeaders(), nil)
	if err != nil {
		return err
	}

	switch statusCode {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound, http.StatusUnauthorized:
		// Already expired sessions count as released
		return nil
	}

	err = checkStatus("close_session", statusCode, data)
	reporting.Report(ctx, err, map[string]string{
		"status": strconv.Itoa(statusCode),
	})
	return err
}
