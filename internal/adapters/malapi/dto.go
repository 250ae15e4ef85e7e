package malapi

import (
	"fmt"

	"github.com/xavion03/openings-tierlist/internal/domain"
)

// DTOs mirroring the MAL v2 payloads. Optional fields are pointers so a
// partially filled record can be told apart from a zero one.

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

type picture struct {
	Medium string `json:"medium"`
	Large  string `json:"large"`
}

type listNode struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	MainPicture *picture `json:"main_picture"`
}

type animeListResponse struct {
	Data []struct {
		Node listNode `json:"node"`
	} `json:"data"`
}

type genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type startSeason struct {
	Year   int    `json:"year"`
	Season string `json:"season"`
}

type themeSong struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

type animeDetailResponse struct {
	ID            int          `json:"id"`
	Title         string       `json:"title"`
	Mean          *float64     `json:"mean"`
	Rank          *int         `json:"rank"`
	Popularity    *int         `json:"popularity"`
	Genres        []genre      `json:"genres"`
	StartSeason   *startSeason `json:"start_season"`
	OpeningThemes []themeSong  `json:"opening_themes"`
}

func (n listNode) toDomain() (domain.WatchlistEntry, error) {
	if n.ID == 0 {
		return domain.WatchlistEntry{}, fmt.Errorf("list node without id")
	}
	e := domain.WatchlistEntry{ID: n.ID, Title: n.Title}
	if n.MainPicture != nil {
		e.PictureURL = n.MainPicture.Medium
		if e.PictureURL == "" {
			e.PictureURL = n.MainPicture.Large
		}
	}
	return e, nil
}

func (d animeDetailResponse) toDomain() (domain.AnimeDetail, error) {
	if d.ID == 0 || d.Title == "" {
		return domain.AnimeDetail{}, fmt.Errorf("detail without id or title")
	}
	out := domain.AnimeDetail{ID: d.ID, Title: d.Title}
	if d.Mean != nil {
		out.Mean = *d.Mean
	}
	if d.Rank != nil {
		out.Rank = *d.Rank
	}
	if d.Popularity != nil {
		out.Popularity = *d.Popularity
	}
	for _, g := range d.Genres {
		if g.Name != "" {
			out.Genres = append(out.Genres, g.Name)
		}
	}
	if d.StartSeason != nil {
		out.StartSeason = domain.Season{Year: d.StartSeason.Year, Season: d.StartSeason.Season}
	}
	for _, t := range d.OpeningThemes {
		out.OpeningThemes = append(out.OpeningThemes, domain.Theme{ID: t.ID, Text: t.Text})
	}
	return out, nil
}
