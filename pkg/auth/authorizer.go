// Package auth implements the interactive login flow of the connect
// services and owns the resulting token session.
//
// The identity provider has no token endpoint for third-party clients; the
// flow emulates the mobile app's embedded browser instead. It is an OAuth2
// authorization code grant with PKCE spread over four steps: the initial
// authorize request, the email form, the password form with its redirect
// chain back into the app scheme, and the final code exchange.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/vetraconnect/vetra/pkg/cryptox"
	"github.com/vetraconnect/vetra/pkg/jwtx"
	"golang.org/x/net/publicsuffix"
)

// Production endpoints and the identity the mobile app logs in as.
const (
	DefaultIdentityURL = "https://identity.vetra-group.io"
	DefaultAPIBase     = "https://api.connect.vetra.eu"

	ClientID    = "b2f64a21-6bdc-4f19-b318-71b2b1a4f7d4@apps_vetra-ag_com"
	RedirectURI = "myvetra://redirect/login/"
)

// scope is the fixed OIDC scope list the provider expects from this client.
const scope = "address badge birthdate cars driversLicense dealers email mileage mbb nationalIdentifier openid phone profession profile vin"

const (
	// expiryMargin renews tokens before they can expire mid-request.
	expiryMargin = 10 * time.Minute

	maxRefreshAttempts = 5
	maxRedirectHops    = 10
)

// Config configures an Authorizer. The zero value selects the production
// endpoints.
type Config struct {
	IdentityURL string
	APIBase     string
	ClientID    string
	RedirectURI string
	Timeout     time.Duration
	Log         *slog.Logger
}

// Authorizer drives the interactive login flow and owns the resulting
// session. It is safe for concurrent use; refreshes are serialized per
// instance so parallel callers trigger at most one network refresh.
type Authorizer struct {
	identityURL string
	apiBase     string
	clientID    string
	redirectURI string
	appScheme   string

	client *http.Client // follows redirects, shares the cookie jar
	bare   *http.Client // same jar, never follows redirects
	log    *slog.Logger
	nonce  func() (string, error)

	mu       sync.RWMutex
	session  *Session
	email    string
	password string
}

// New builds an Authorizer. Both HTTP clients share one cookie jar because
// the identity provider tracks the login session in cookies across hosts
// and redirects.
func New(cfg Config) (*Authorizer, error) {
	if cfg.IdentityURL == "" {
		cfg.IdentityURL = DefaultIdentityURL
	}
	if cfg.APIBase == "" {
		cfg.APIBase = DefaultAPIBase
	}
	if cfg.ClientID == "" {
		cfg.ClientID = ClientID
	}
	if cfg.RedirectURI == "" {
		cfg.RedirectURI = RedirectURI
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}

	scheme, _, ok := strings.Cut(cfg.RedirectURI, "://")
	if !ok {
		return nil, fmt.Errorf("redirect uri %q has no scheme", cfg.RedirectURI)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}

	return &Authorizer{
		identityURL: strings.TrimSuffix(cfg.IdentityURL, "/"),
		apiBase:     strings.TrimSuffix(cfg.APIBase, "/"),
		clientID:    cfg.ClientID,
		redirectURI: cfg.RedirectURI,
		appScheme:   scheme + "://",
		client:      &http.Client{Jar: jar, Timeout: cfg.Timeout},
		bare: &http.Client{
			Jar:     jar,
			Timeout: cfg.Timeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		log:   cfg.Log,
		nonce: cryptox.GenerateNonce,
	}, nil
}

// Authorize runs the full login flow and stores the resulting session. The
// credentials are kept so an invalidated refresh token can later be
// recovered with a fresh login.
func (a *Authorizer) Authorize(ctx context.Context, email, password string) (Session, error) {
	a.mu.Lock()
	a.email, a.password = email, password
	a.mu.Unlock()

	session, err := a.login(ctx, email, password)
	if err != nil {
		return Session{}, err
	}

	a.mu.Lock()
	a.session = session
	a.mu.Unlock()
	return *session, nil
}

// login performs the 4-step flow. Credentials are passed as arguments so it
// can run with the Authorizer's lock held during refresh recovery.
func (a *Authorizer) login(ctx context.Context, email, password string) (*Session, error) {
	// Random verifier whose hash travels with the initial request. The
	// provider checks during the final exchange that we know the preimage.
	verifier, err := a.nonce()
	if err != nil {
		return nil, fmt.Errorf("%w: generate verifier: %w", ErrAuthorizationFailed, err)
	}

	// Step 1: the authorize request redirects to the login form, which
	// embeds the initial CSRF state.
	state, err := a.initialAuthorize(ctx, verifier)
	if err != nil {
		return nil, wrapAuthorization("authorize", err)
	}

	// Step 2: submit the email address alone. The response rotates the
	// CSRF state.
	state, err = a.enterEmail(ctx, email, state)
	if err != nil {
		return nil, wrapAuthorization("enter email", err)
	}

	// Step 3: submit email and password, then walk the redirect chain by
	// hand until it leaves the web and hits the app scheme.
	grant, err := a.enterPassword(ctx, email, password, state)
	if err != nil {
		return nil, wrapAuthorization("enter password", err)
	}

	// Step 4: trade the one-time code and the verifier for tokens.
	session, err := a.exchangeCode(ctx, grant.code, verifier)
	if err != nil {
		return nil, wrapAuthorization("exchange code", err)
	}

	a.log.Debug("login complete")
	return session, nil
}

// wrapAuthorization folds step failures into ErrAuthorizationFailed while
// keeping the terms-and-conditions condition distinct, since that one is
// not resolvable by retrying.
func wrapAuthorization(step string, err error) error {
	if errors.Is(err, ErrTermsAndConditions) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrAuthorizationFailed, step, err)
}

func (a *Authorizer) initialAuthorize(ctx context.Context, verifier string) (*CSRFState, error) {
	nonce, err := a.nonce()
	if err != nil {
		return nil, err
	}

	query := url.Values{
		"client_id":             {a.clientID},
		"nonce":                 {nonce},
		"redirect_uri":          {a.redirectURI},
		"response_type":         {"code id_token"},
		"scope":                 {scope},
		"code_challenge":        {cryptox.CodeChallenge(verifier)},
		"code_challenge_method": {"s256"},
		"prompt":                {"login"},
	}

	page, err := a.getPage(ctx, a.identityURL+"/oidc/v1/authorize?"+query.Encode())
	if err != nil {
		return nil, err
	}
	return extractCSRF(page)
}

func (a *Authorizer) enterEmail(ctx context.Context, email string, state *CSRFState) (*CSRFState, error) {
	form := url.Values{
		"relayState": {state.TemplateModel.RelayState},
		"email":      {email},
		"hmac":       {state.TemplateModel.Hmac},
		"_csrf":      {state.CSRF},
	}

	page, err := a.postForm(ctx, a.signinURL("identifier"), form)
	if err != nil {
		return nil, err
	}
	return extractCSRF(page)
}

// authorizationGrant is the one-time grant extracted from the final
// app-scheme redirect.
type authorizationGrant struct {
	code    string
	idToken string
}

func (a *Authorizer) enterPassword(ctx context.Context, email, password string, state *CSRFState) (*authorizationGrant, error) {
	form := url.Values{
		"relayState": {state.TemplateModel.RelayState},
		"email":      {email},
		"password":   {password},
		"hmac":       {state.TemplateModel.Hmac},
		"_csrf":      {state.CSRF},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.signinURL("authenticate"), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.bare.Do(req)
	if err != nil {
		return nil, err
	}
	resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	loc, err := resp.Location()
	if err != nil {
		return nil, fmt.Errorf("authenticate response: %w", err)
	}

	// The provider redirects a few times within itself before finally
	// redirecting into the app scheme with the grant in the fragment.
	for hop := 0; ; hop++ {
		if hop >= maxRedirectHops {
			return nil, fmt.Errorf("redirect chain exceeded %d hops", maxRedirectHops)
		}

		target := loc.String()
		switch {
		case strings.Contains(target, "terms-and-conditions"):
			// Following it would start an acceptance session this
			// client cannot finish.
			return nil, ErrTermsAndConditions
		case strings.HasPrefix(target, a.appScheme):
			return parseGrantFragment(loc)
		}

		hopReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, err
		}
		hopResp, err := a.bare.Do(hopReq)
		if err != nil {
			return nil, err
		}
		hopResp.Body.Close()

		loc, err = hopResp.Location()
		if err != nil {
			// The chain ended on a web page instead of the app
			// scheme. Wrong credentials land here.
			return nil, fmt.Errorf("no further redirect from %s: %w", target, err)
		}
	}
}

func parseGrantFragment(loc *url.URL) (*authorizationGrant, error) {
	values, err := url.ParseQuery(loc.Fragment)
	if err != nil {
		return nil, fmt.Errorf("parse redirect fragment: %w", err)
	}

	grant := &authorizationGrant{
		code:    values.Get("code"),
		idToken: values.Get("id_token"),
	}
	if grant.code == "" || grant.idToken == "" {
		return nil, errors.New("redirect fragment misses code or id_token")
	}
	return grant, nil
}

func (a *Authorizer) exchangeCode(ctx context.Context, code, verifier string) (*Session, error) {
	body, err := json.Marshal(map[string]string{
		"code":        code,
		"redirectUri": a.redirectURI,
		"verifier":    verifier,
	})
	if err != nil {
		return nil, err
	}

	session := &Session{}
	if err := a.postJSON(ctx, a.apiBase+"/api/v1/authentication/exchange-authorization-code?tokenType=CONNECT", body, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (a *Authorizer) refreshOnce(ctx context.Context, refreshToken string) (*Session, error) {
	body, err := json.Marshal(map[string]string{"token": refreshToken})
	if err != nil {
		return nil, err
	}

	session := &Session{}
	if err := a.postJSON(ctx, a.apiBase+"/api/v1/authentication/refresh-token?tokenType=CONNECT", body, session); err != nil {
		return nil, err
	}
	return session, nil
}

// IsTokenExpired reports whether the access token needs renewing. The exp
// claim is read without verifying the signature: the token came straight
// from the provider over TLS and is only inspected here, never trusted for
// authorization decisions.
func (a *Authorizer) IsTokenExpired() (bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.tokenExpired()
}

// tokenExpired needs at least a read lock held.
func (a *Authorizer) tokenExpired() (bool, error) {
	if a.session == nil {
		return false, ErrNotAuthorized
	}

	expiry, err := jwtx.ExpiresAt(a.session.AccessToken)
	if err != nil {
		return false, fmt.Errorf("inspect access token: %w", err)
	}
	return time.Now().Add(expiryMargin).After(expiry), nil
}

// GetAccessToken returns a valid access token, refreshing first when the
// current one is about to expire. This is the only sanctioned way for other
// components to obtain a token.
func (a *Authorizer) GetAccessToken(ctx context.Context) (string, error) {
	a.mu.RLock()
	expired, err := a.tokenExpired()
	if err == nil && !expired {
		token := a.session.AccessToken
		a.mu.RUnlock()
		return token, nil
	}
	a.mu.RUnlock()
	if err != nil {
		return "", err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.refreshLocked(ctx); err != nil {
		return "", err
	}
	return a.session.AccessToken, nil
}

// RefreshToken renews the session using the refresh token. Transient
// failures are retried a few times; once the budget is exhausted the stored
// credentials are used for a full fresh login, because refresh tokens can
// be invalidated server side at any time and losing session continuity
// should not be fatal while the credentials still work.
func (a *Authorizer) RefreshToken(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.refreshLocked(ctx)
}

// refreshLocked needs the write lock held. It re-checks expiry so that the
// losers of a refresh race return without a second network call.
func (a *Authorizer) refreshLocked(ctx context.Context) error {
	expired, err := a.tokenExpired()
	if err != nil {
		return err
	}
	if !expired {
		return nil
	}

	for attempt := 1; attempt <= maxRefreshAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		session, err := a.refreshOnce(ctx, a.session.RefreshToken)
		if err == nil {
			a.session = session
			return nil
		}
		a.log.Warn("token refresh failed",
			"attempt", attempt,
			"max_attempts", maxRefreshAttempts,
			"error", err)
	}

	a.log.Info("refresh attempts exhausted, logging in again")
	session, err := a.login(ctx, a.email, a.password)
	if err != nil {
		return fmt.Errorf("refresh exhausted and re-login failed: %w", err)
	}
	a.session = session
	a.log.Info("session recovered by fresh login")
	return nil
}

// Session returns a copy of the current token session.
func (a *Authorizer) Session() (Session, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.session == nil {
		return Session{}, ErrNotAuthorized
	}
	return *a.session, nil
}

// Restore adopts a previously persisted session together with the
// credentials that produced it. The next token use refreshes or re-logs-in
// as needed, so a stale cached session is fine.
func (a *Authorizer) Restore(email, password string, session Session) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.email, a.password = email, password
	a.session = &session
}

func (a *Authorizer) signinURL(step string) string {
	return fmt.Sprintf("%s/signin-service/v1/%s/login/%s", a.identityURL, a.clientID, step)
}

func (a *Authorizer) getPage(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return "", err
	}
	return readPage(resp)
}

func (a *Authorizer) postForm(ctx context.Context, formURL string, form url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, formURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", err
	}
	return readPage(resp)
}

func readPage(resp *http.Response) (string, error) {
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// postJSON talks to the token endpoints, which never redirect.
func (a *Authorizer) postJSON(ctx context.Context, endpoint string, body []byte, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.bare.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode token response: %w", err)
	}
	return nil
}
