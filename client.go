// ABOUTME: HTTP client for the Sophos Central identity, partner, and tenant APIs.
// ABOUTME: Handles client-credentials auth, whoami, scoped GETs, and paginated tenant/endpoint lists.

package main

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

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

// ErrNotPartner is returned by Authenticate when the credentials belong to a
// tenant or organization rather than a partner.
var ErrNotPartner = errors.New("this tool requires a partner account")

// APIError is a non-2xx response from a Sophos API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Sophos API error: %d - %s", e.StatusCode, e.Body)
}

type Credentials struct {
	ClientID     string
	ClientSecret string
}

type SophosClient struct {
	authURL    string
	apiBase    string
	pageSize   int
	creds      Credentials
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *zap.Logger
}

type WhoAmI struct {
	ID       string `json:"id"`
	IDType   string `json:"idType"`
	APIHosts struct {
		Global     string `json:"global"`
		DataRegion string `json:"dataRegion"`
	} `json:"apiHosts"`
}

type Tenant struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	DataRegion string `json:"dataRegion"`
	Status     string `json:"status"`
	APIHost    string `json:"apiHost"`
}

type Endpoint struct {
	ID         string     `json:"id"`
	Hostname   string     `json:"hostname"`
	OS         EndpointOS `json:"os"`
	LastSeenAt string     `json:"lastSeenAt"`
}

type EndpointOS struct {
	Name  string     `json:"name"`
	Build flexString `json:"build"`
}

// Session is an authenticated partner principal. It is read-only once
// Authenticate returns it; the token is used as-is for the life of the process.
type Session struct {
	client      *SophosClient
	token       string
	principal   WhoAmI
	partnerHost string
}

func NewSophosClient(cfg *Config, creds Credentials, log *zap.Logger) *SophosClient {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &SophosClient{
		authURL:    cfg.AuthURL,
		apiBase:    strings.TrimSuffix(cfg.APIBase, "/"),
		pageSize:   cfg.PageSize,
		creds:      creds,
		httpClient: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		limiter:    rate.NewLimiter(limit, 1),
		log:        log,
	}
}

// Authenticate exchanges the client credentials for a bearer token and
// resolves the principal behind it. Only partner principals get a session.
func (c *SophosClient) Authenticate(ctx context.Context) (*Session, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("authenticating: %w", err)
	}

	sess := &Session{client: c, token: token, partnerHost: c.apiBase}

	who, err := sess.WhoAmI(ctx)
	if err != nil {
		return nil, fmt.Errorf("whoami: %w", err)
	}
	if who.IDType != "partner" {
		return nil, fmt.Errorf("%w (authenticated as %s %s)", ErrNotPartner, who.IDType, who.ID)
	}

	sess.principal = who
	if who.APIHosts.Global != "" {
		sess.partnerHost = strings.TrimSuffix(who.APIHosts.Global, "/")
	}

	c.log.Debug("authenticated", zap.String("partner_id", who.ID), zap.String("api_host", sess.partnerHost))
	return sess, nil
}

func (c *SophosClient) accessToken(ctx context.Context) (string, error) {
	cc := clientcredentials.Config{
		ClientID:     c.creds.ClientID,
		ClientSecret: c.creds.ClientSecret,
		TokenURL:     c.authURL,
		Scopes:       []string{"token"},
		AuthStyle:    oauth2.AuthStyleInParams,
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	tok, err := cc.Token(ctx)
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

func (s *Session) PartnerID() string {
	return s.principal.ID
}

func (s *Session) WhoAmI(ctx context.Context) (WhoAmI, error) {
	var who WhoAmI
	err := s.getJSON(ctx, s.client.apiBase+"/whoami/v1", nil, scope{}, &who)
	return who, err
}

func (s *Session) Tenants(ctx context.Context) ([]Tenant, error) {
	get := func(ctx context.Context, page int) (listResponse[Tenant], error) {
		var resp listResponse[Tenant]
		params := url.Values{
			"page":     []string{strconv.Itoa(page)},
			"pageSize": []string{strconv.Itoa(s.client.pageSize)},
		}
		err := s.getJSON(ctx, s.partnerHost+"/partner/v1/tenants", params, partnerScope(s.PartnerID()), &resp)
		return resp, err
	}
	return walkPages(ctx, 1, countedPages(get))
}

func (s *Session) Endpoints(ctx context.Context, t Tenant) ([]Endpoint, error) {
	host := strings.TrimSuffix(t.APIHost, "/")
	get := func(ctx context.Context, key string) (listResponse[Endpoint], error) {
		var resp listResponse[Endpoint]
		params := url.Values{"pageSize": []string{strconv.Itoa(s.client.pageSize)}}
		if key != "" {
			params.Set("pageFromKey", key)
		}
		err := s.getJSON(ctx, host+"/endpoint/v1/endpoints", params, tenantScope(t.ID), &resp)
		return resp, err
	}
	return walkPages(ctx, "", keyedPages(get))
}

func (s *Session) HealthCheck(ctx context.Context, t Tenant) (*HealthCheck, error) {
	var doc HealthCheck
	host := strings.TrimSuffix(t.APIHost, "/")
	if err := s.getJSON(ctx, host+"/account-health-check/v1/health-check", nil, tenantScope(t.ID), &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// scope is the header that selects which partner or tenant a call acts on.
type scope struct {
	header string
	value  string
}

func partnerScope(id string) scope { return scope{header: "X-Partner-ID", value: id} }
func tenantScope(id string) scope  { return scope{header: "X-Tenant-ID", value: id} }

func (s *Session) getJSON(ctx context.Context, rawURL string, params url.Values, sc scope, out any) error {
	if err := s.client.limiter.Wait(ctx); err != nil {
		return err
	}

	fullURL := rawURL
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Accept", "application/json")
	if sc.header != "" {
		req.Header.Set(sc.header, sc.value)
	}

	start := time.Now()
	resp, err := s.client.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	s.client.log.Debug("API request",
		zap.String("method", req.Method),
		zap.String("url", fullURL),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s: %w", req.URL.Path, err)
	}
	return nil
}
