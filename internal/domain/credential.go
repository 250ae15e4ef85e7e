package domain

// Credential holds the MAL OAuth material. Rewritten in place on refresh;
// never deleted during normal operation.
type Credential struct {
	ClientID     string
	AccessToken  string
	RefreshToken string
}
