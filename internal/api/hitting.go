package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// GetSeasonHitting fetches season hitting lines for all players.
func (c *Client) GetSeasonHitting(ctx context.Context, opts SeasonHittingOptions) (*SeasonHittingResponse, error) {
	sportID := opts.SportID
	if sportID == 0 {
		sportID = 1
	}
	limit := opts.Limit
	if limit == 0 {
		limit = 1000
	}

	query := url.Values{}
	query.Set("stats", "season")
	query.Set("group", "hitting")
	query.Set("sportId", strconv.Itoa(sportID))
	query.Set("limit", strconv.Itoa(limit))
	if opts.Season > 0 {
		query.Set("season", strconv.Itoa(opts.Season))
	}

	var resp SeasonHittingResponse
	if err := c.get(ctx, "/stats", query, &resp); err != nil {
		return nil, fmt.Errorf("get season hitting: %w", err)
	}

	if len(resp.Stats) == 0 {
		return nil, fmt.Errorf("get season hitting: %w: no stats block", ErrMalformedResponse)
	}

	return &resp, nil
}

// GetGameLog fetches a player's regular-season hitting game log.
func (c *Client) GetGameLog(ctx context.Context, playerID, season int) (*GameLogResponse, error) {
	query := url.Values{}
	query.Set("stats", "gameLog")
	query.Set("group", "hitting")
	query.Set("gameType", "R")
	if season > 0 {
		query.Set("season", strconv.Itoa(season))
	}

	var resp GameLogResponse
	path := "/people/" + strconv.Itoa(playerID) + "/stats"
	if err := c.get(ctx, path, query, &resp); err != nil {
		return nil, fmt.Errorf("get game log %d: %w", playerID, err)
	}

	return &resp, nil
}
