package mpesa

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// tokenValidity is the cached lifetime of a bearer token. The gateway
// issues tokens valid for 60 minutes; 55 leaves a safety margin.
const tokenValidity = 55 * time.Minute

// TokenSource supplies a bearer token for outbound gateway calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// cachedTokenSource fetches a token over HTTP Basic auth and caches it
// until shortly before the gateway expires it. Safe for concurrent use;
// a refresh race costs at most one extra fetch.
type cachedTokenSource struct {
	httpClient     *http.Client
	baseURL        string
	consumerKey    string
	consumerSecret string
	now            func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

func newCachedTokenSource(httpClient *http.Client, baseURL, key, secret string, now func() time.Time) *cachedTokenSource {
	if now == nil {
		now = time.Now
	}
	return &cachedTokenSource{
		httpClient:     httpClient,
		baseURL:        baseURL,
		consumerKey:    key,
		consumerSecret: secret,
		now:            now,
	}
}

func (s *cachedTokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && s.now().Before(s.expiresAt) {
		return s.token, nil
	}

	if s.consumerKey == "" || s.consumerSecret == "" {
		return "", ErrMissingCredentials
	}

	url := s.baseURL + "/oauth/v1/generate?grant_type=client_credentials"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenRequest, err)
	}

	credentials := base64.StdEncoding.EncodeToString([]byte(s.consumerKey + ":" + s.consumerSecret))
	req.Header.Set("Authorization", "Basic "+credentials)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: unexpected status %d", ErrTokenRequest, resp.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   string `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenRequest, err)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access_token", ErrTokenRequest)
	}

	s.token = body.AccessToken
	s.expiresAt = s.now().Add(tokenValidity)
	return s.token, nil
}
