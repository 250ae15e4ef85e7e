package domain

import (
	"strconv"
	"strings"
)

// WatchlistEntry est une entrée brute de la liste MAL (endpoint animelist).
// Seuls les champs renvoyés par l'endpoint liste sont présents ici;
// le reste vient de l'enrichissement (AnimeDetail).
type WatchlistEntry struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	PictureURL string `json:"pictureUrl,omitempty"`
}

// WatchlistSnapshot is the ordered list as fetched, plus its content
// fingerprint. Snapshot and fingerprint are persisted together.
type WatchlistSnapshot struct {
	Entries     []WatchlistEntry `json:"entries"`
	Fingerprint string           `json:"-"`
}

// Season describes when a show first aired.
type Season struct {
	Year   int    `json:"year,omitempty"`
	Season string `json:"season,omitempty"`
}

// Display renders the "season, year" form used for scored rows.
func (s Season) Display() string {
	if s.Season == "" && s.Year == 0 {
		return ""
	}
	if s.Season == "" {
		return strconv.Itoa(s.Year)
	}
	if s.Year == 0 {
		return s.Season
	}
	return s.Season + ", " + strconv.Itoa(s.Year)
}

// Theme is a named opening/ending of a show. The raw text from the remote
// catalog carries "#N: " prefixes and parenthetical annotations which get
// stripped before display (see CleanThemeTitle).
type Theme struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// AnimeDetail is the enriched record cached per watch-list item.
// Immutable once cached: it is never re-fetched while present on disk.
type AnimeDetail struct {
	ID            int      `json:"id"`
	Title         string   `json:"title"`
	Mean          float64  `json:"mean,omitempty"`
	Rank          int      `json:"rank,omitempty"`
	Popularity    int      `json:"popularity,omitempty"`
	Genres        []string `json:"genres,omitempty"`
	StartSeason   Season   `json:"startSeason,omitempty"`
	OpeningThemes []Theme  `json:"openingThemes,omitempty"`
}

// GenresDisplay flattens the genre list into the display string stored on
// scored rows.
func (d AnimeDetail) GenresDisplay() string {
	return strings.Join(d.Genres, ", ")
}
