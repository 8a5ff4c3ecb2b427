package api

// StatsResponse is the envelope shared by the /stats and /people/{id}/stats endpoints.
type StatsResponse[S any] struct {
	Stats []StatGroup[S] `json:"stats"`
}

// StatGroup is one stats block (e.g., type "season" or "gameLog").
type StatGroup[S any] struct {
	Type        StatType `json:"type"`
	TotalSplits int      `json:"totalSplits"`
	Splits      []S      `json:"splits"`
}

// StatType names a stats block.
type StatType struct {
	DisplayName string `json:"displayName"`
}

// SeasonHittingResponse from GET /stats?stats=season&group=hitting
type SeasonHittingResponse = StatsResponse[SeasonSplit]

// GameLogResponse from GET /people/{id}/stats?stats=gameLog&group=hitting
type GameLogResponse = StatsResponse[GameLogSplit]

// SeasonSplit is one player's season hitting line.
type SeasonSplit struct {
	Season   string      `json:"season"`
	Stat     HittingStat `json:"stat"`
	Team     APITeam     `json:"team"`
	Player   APIPerson   `json:"player"`
	Position APIPosition `json:"position"`
}

// GameLogSplit is one game from a player's game log.
type GameLogSplit struct {
	Date   string      `json:"date"` // YYYY-MM-DD
	IsHome bool        `json:"isHome"`
	Stat   HittingStat `json:"stat"`
	Game   APIGame     `json:"game"`
}

// HittingStat holds hitting counters as the API names them.
type HittingStat struct {
	GamesPlayed int    `json:"gamesPlayed"`
	AtBats      int    `json:"atBats"`
	Hits        int    `json:"hits"`
	BaseOnBalls int    `json:"baseOnBalls"`
	Doubles     int    `json:"doubles"`
	Triples     int    `json:"triples"`
	HomeRuns    int    `json:"homeRuns"`
	Avg         string `json:"avg"` // ".312"
}

// APIPerson identifies a player.
type APIPerson struct {
	ID       int    `json:"id"`
	FullName string `json:"fullName"`
}

// APITeam identifies a club.
type APITeam struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
}

// APIPosition identifies a fielding position.
type APIPosition struct {
	Abbreviation string `json:"abbreviation"`
}

// APIGame identifies a game.
type APIGame struct {
	GamePk int `json:"gamePk"`
}

// SeasonHittingOptions configures a GetSeasonHitting request.
type SeasonHittingOptions struct {
	Season  int // 0 = current season
	SportID int // 0 = MLB (1)
	Limit   int // 0 = 1000
}
