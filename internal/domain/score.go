package domain

import "fmt"

// Tier est le label dérivé de la somme des quatre scores.
type Tier string

const (
	TierS Tier = "S"
	TierA Tier = "A"
	TierB Tier = "B"
	TierC Tier = "C"
)

// ParseTier validates a tier label coming from the outside (API, CLI).
func ParseTier(s string) (Tier, error) {
	switch Tier(s) {
	case TierS, TierA, TierB, TierC:
		return Tier(s), nil
	}
	return "", fmt.Errorf("unknown tier %q", s)
}

// ComponentScores holds the four subjective scores, each in 1..10.
type ComponentScores struct {
	Visual       int `json:"visual"`
	Music        int `json:"music"`
	Narrative    int `json:"narrative"`
	Memorability int `json:"memorability"`
}

func (c ComponentScores) Sum() int {
	return c.Visual + c.Music + c.Narrative + c.Memorability
}

func (c ComponentScores) Validate() error {
	for _, v := range []int{c.Visual, c.Music, c.Narrative, c.Memorability} {
		if v < 1 || v > 10 {
			return fmt.Errorf("component score %d out of range 1..10", v)
		}
	}
	return nil
}

// TierForSum applique les seuils fixes. Monotone par construction.
func TierForSum(sum int) Tier {
	switch {
	case sum >= 36:
		return TierS
	case sum >= 30:
		return TierA
	case sum >= 24:
		return TierB
	default:
		return TierC
	}
}

// TierEntry is one scored opening, denormalized with its parent show's
// attributes at scoring time. SongTitle is the uniqueness key: scoring the
// same title twice is a conflict, never an overwrite.
type TierEntry struct {
	ID          int64           `json:"id"`
	SongTitle   string          `json:"songTitle"`
	ShowTitle   string          `json:"showTitle"`
	AnimeID     int             `json:"animeId"`
	MALScore    float64         `json:"malScore"`
	Rank        int             `json:"rank"`
	Popularity  int             `json:"popularity"`
	Genres      string          `json:"genres"`
	StartSeason string          `json:"startSeason"`
	Tier        Tier            `json:"tier"`
	Scores      ComponentScores `json:"scores"`
}
