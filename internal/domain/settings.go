package domain

// Settings pilote la synchro. Stocké en ligne unique côté sqlite,
// modifiable à chaud via l'API.
type Settings struct {
	// MAL username whose animelist gets synchronized.
	MALUsername string `json:"malUsername"`

	// Page size passed to the list endpoint.
	PageSize int `json:"pageSize"`

	// Fixed inter-request delays (throttling, not backoff).
	EnrichDelayMs int `json:"enrichDelayMs"`
	ImageDelayMs  int `json:"imageDelayMs"`
}

func DefaultSettings() Settings {
	return Settings{
		PageSize:      100,
		EnrichDelayMs: 500,
		ImageDelayMs:  350,
	}
}
