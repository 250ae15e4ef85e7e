package malapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/xavion03/openings-tierlist/internal/domain"
)

// ErrUnauthorized signale un token d'accès rejeté (401). C'est le
// déclencheur du refresh côté service credentials, jamais d'un retry ici.
var ErrUnauthorized = errors.New("malapi: unauthorized")

// StatusError carries a non-2xx status other than 401. 4xx means the
// specific request is wrong (skip the item), 5xx means the remote is in
// trouble (transient, never to be confused with an auth failure).
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return "malapi: http error: " + e.Status
}

func IsServerError(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode >= 500
}

func IsClientError(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode >= 400 && se.StatusCode < 500
}

const detailFields = "id,title,mean,rank,popularity,genres,start_season,opening_themes"

// Client is the stateless request layer against the MAL v2 API. The access
// token is a parameter on every call; token lifecycle lives elsewhere.
type Client struct {
	apiBase   string
	oauthBase string
	client    *http.Client
}

func NewClient() *Client {
	return &Client{
		apiBase:   "https://api.myanimelist.net/v2",
		oauthBase: "https://myanimelist.net/v1/oauth2",
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// WithBaseURLs overrides both endpoints, mainly for tests.
func (c *Client) WithBaseURLs(apiBase, oauthBase string) *Client {
	if strings.TrimSpace(apiBase) != "" {
		c.apiBase = strings.TrimRight(strings.TrimSpace(apiBase), "/")
	}
	if strings.TrimSpace(oauthBase) != "" {
		c.oauthBase = strings.TrimRight(strings.TrimSpace(oauthBase), "/")
	}
	return c
}

// ValidateToken probes the "who am I" endpoint. nil means the token is
// live; ErrUnauthorized means it is expired or invalid; a 5xx surfaces as
// StatusError so callers never mistake a server outage for a bad token.
func (c *Client) ValidateToken(ctx context.Context, accessToken string) error {
	resp, err := c.get(ctx, c.apiBase+"/users/@me", accessToken)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return checkStatus(resp)
}

// RefreshToken exchanges the refresh token for a fresh pair. A 400/401 from
// the oauth endpoint means the refresh token itself is dead and re-auth by
// a human is required.
func (c *Client) RefreshToken(ctx context.Context, clientID, refreshToken string) (domain.Credential, error) {
	form := url.Values{}
	form.Set("client_id", clientID)
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.oauthBase+"/token", strings.NewReader(form.Encode()))
	if err != nil {
		return domain.Credential{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.Credential{}, fmt.Errorf("malapi: token refresh: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		// L'endpoint oauth renvoie 400 sur refresh token invalide.
		if resp.StatusCode == http.StatusBadRequest {
			return domain.Credential{}, ErrUnauthorized
		}
		return domain.Credential{}, err
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return domain.Credential{}, fmt.Errorf("malapi: token refresh: %w", err)
	}
	if tok.AccessToken == "" || tok.RefreshToken == "" {
		return domain.Credential{}, fmt.Errorf("malapi: token refresh: empty token pair")
	}
	return domain.Credential{ClientID: clientID, AccessToken: tok.AccessToken, RefreshToken: tok.RefreshToken}, nil
}

// Watchlist fetches the user's animelist, one page of pageSize entries.
func (c *Client) Watchlist(ctx context.Context, accessToken, user string, pageSize int) ([]domain.WatchlistEntry, error) {
	if strings.TrimSpace(user) == "" {
		return nil, fmt.Errorf("malapi: empty user")
	}
	if pageSize <= 0 {
		pageSize = 100
	}

	u := c.apiBase + "/users/" + url.PathEscape(user) + "/animelist?limit=" + strconv.Itoa(pageSize)
	resp, err := c.get(ctx, u, accessToken)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var out animeListResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("malapi: watchlist decode: %w", err)
	}

	entries := make([]domain.WatchlistEntry, 0, len(out.Data))
	for _, d := range out.Data {
		e, err := d.Node.toDomain()
		if err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// AnimeDetail fetches the enriched record for one show.
func (c *Client) AnimeDetail(ctx context.Context, accessToken string, id int) (domain.AnimeDetail, error) {
	u := c.apiBase + "/anime/" + strconv.Itoa(id) + "?fields=" + url.QueryEscape(detailFields)
	resp, err := c.get(ctx, u, accessToken)
	if err != nil {
		return domain.AnimeDetail{}, err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return domain.AnimeDetail{}, err
	}

	var out animeDetailResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.AnimeDetail{}, fmt.Errorf("malapi: detail decode: %w", err)
	}
	return out.toDomain()
}

// Image downloads raw artwork bytes from an absolute URL (CDN, no auth).
func (c *Client) Image(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("malapi: image fetch: %w", err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("malapi: image read: %w", err)
	}
	return b, nil
}

func (c *Client) get(ctx context.Context, rawURL, accessToken string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "otl-server")
	if strings.TrimSpace(accessToken) != "" {
		req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(accessToken))
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("malapi: %w", err)
	}
	return resp, nil
}

func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode >= 400:
		return &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}
	return nil
}
