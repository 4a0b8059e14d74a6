// Package vetra is the high-level client for the Vetra Connect service. It
// ties the authorization state machine, the REST API and the event broker
// together: Connect logs in and opens the event stream, command methods
// pair each REST call with a wait for the matching completion event, and
// incoming service events keep a per-vehicle data cache fresh.
package vetra

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/vetraconnect/vetra/pkg/auth"
	"github.com/vetraconnect/vetra/pkg/event"
	"github.com/vetraconnect/vetra/pkg/model"
	"github.com/vetraconnect/vetra/pkg/mqtt"
	"github.com/vetraconnect/vetra/pkg/rest"
	"github.com/vetraconnect/vetra/pkg/slogx"
)

var (
	// ErrEventsDisabled reports use of an event stream feature on a client
	// built with DisableEvents.
	ErrEventsDisabled = errors.New("vetra: event stream disabled")

	// ErrUnknownVehicle reports a vin that is not in the local cache.
	ErrUnknownVehicle = errors.New("vetra: unknown vehicle")

	// ErrUnknownEndpoint reports a fixture endpoint name that matches no
	// read endpoint.
	ErrUnknownEndpoint = errors.New("vetra: unknown endpoint")
)

// Config carries the optional knobs for a Client. The zero value selects
// the production endpoints with the event stream enabled.
type Config struct {
	IdentityURL string
	APIBase     string
	Broker      string

	// DisableEvents skips the broker connection. Commands then return as
	// soon as the REST call is accepted, without awaiting completion.
	DisableEvents bool

	TLSConfig  *tls.Config
	HTTPClient *http.Client
	Limiter    *rate.Limiter

	// OperationTimeout bounds command completion waits when the caller's
	// context has no deadline of its own.
	OperationTimeout time.Duration

	Log *slog.Logger
}

// Client is the top-level Vetra Connect client. Build one with New, log in
// with Connect or Resume, and hand it around; it is safe for concurrent
// use.
type Client struct {
	log       *slog.Logger
	auth      *auth.Authorizer
	api       *rest.Client
	stream    *mqtt.Client
	opTimeout time.Duration
	refresh   *refreshers

	mu          sync.Mutex
	user        *model.User
	userFetched time.Time
	vehicles    map[string]*Vehicle
	updates     map[string][]func()
	runCtx      context.Context
	runCancel   context.CancelFunc
}

// New builds a disconnected Client.
func New(cfg Config) (*Client, error) {
	if cfg.Log == nil {
		cfg.Log = slogx.Discard()
	}
	if cfg.OperationTimeout <= 0 {
		cfg.OperationTimeout = mqtt.DefaultOperationTimeout
	}

	authorizer, err := auth.New(auth.Config{
		IdentityURL: cfg.IdentityURL,
		APIBase:     cfg.APIBase,
		Log:         cfg.Log,
	})
	if err != nil {
		return nil, err
	}

	api := rest.New(authorizer, rest.Config{
		BaseURL:    cfg.APIBase,
		HTTPClient: cfg.HTTPClient,
		Limiter:    cfg.Limiter,
		Log:        cfg.Log,
	})

	c := &Client{
		log:       cfg.Log,
		auth:      authorizer,
		api:       api,
		opTimeout: cfg.OperationTimeout,
		refresh:   newRefreshers(),
		vehicles:  make(map[string]*Vehicle),
		updates:   make(map[string][]func()),
	}

	if !cfg.DisableEvents {
		c.stream = mqtt.New(authorizer, mqtt.Config{
			Broker:    cfg.Broker,
			TLSConfig: cfg.TLSConfig,
			Log:       cfg.Log,
		})
		c.stream.Subscribe(c.onEvent)
	}

	return c, nil
}

// Connect runs the interactive login and, unless events are disabled,
// opens the broker connection for all vehicles in the account's garage.
func (c *Client) Connect(ctx context.Context, email, password string) error {
	if _, err := c.auth.Authorize(ctx, email, password); err != nil {
		return err
	}
	c.log.Debug("authorization successful")
	return c.finishConnect(ctx)
}

// Resume adopts a previously persisted session instead of logging in
// interactively. The credentials back the session up: an expired or
// invalidated session is refreshed or re-logged-in transparently on first
// use.
func (c *Client) Resume(ctx context.Context, email, password string, session auth.Session) error {
	c.auth.Restore(email, password, session)
	return c.finishConnect(ctx)
}

func (c *Client) finishConnect(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(context.Background())
	c.mu.Lock()
	if c.runCancel != nil {
		c.runCancel()
	}
	c.runCtx, c.runCancel = runCtx, cancel
	c.mu.Unlock()

	if c.stream == nil {
		return nil
	}

	user, err := c.User(ctx)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	vins, err := c.api.ListVehicles(ctx)
	if err != nil {
		return fmt.Errorf("list vehicles: %w", err)
	}

	return c.stream.Connect(ctx, user.ID, vins)
}

// Disconnect closes the broker connection and stops all background
// refreshes. The REST side keeps working.
func (c *Client) Disconnect() {
	if c.stream != nil {
		c.stream.Disconnect()
	}
	c.refresh.stop()

	c.mu.Lock()
	if c.runCancel != nil {
		c.runCancel()
		c.runCtx, c.runCancel = nil, nil
	}
	c.mu.Unlock()
}

// Session returns the current token session, for persisting between runs.
func (c *Client) Session() (auth.Session, error) {
	return c.auth.Session()
}

// SubscribeEvents registers a callback for every decoded broker event.
func (c *Client) SubscribeEvents(fn func(event.Event)) error {
	if c.stream == nil {
		return ErrEventsDisabled
	}
	c.stream.Subscribe(fn)
	return nil
}

// SubscribeUpdates registers a callback invoked whenever the cached data
// for vin changes.
func (c *Client) SubscribeUpdates(vin string, fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updates[vin] = append(c.updates[vin], fn)
}

// WaitForOperation exposes the correlation engine directly: it registers
// intent to observe the next completion of the named operation. Most
// callers want the command methods instead, which pair this with the
// triggering REST call.
func (c *Client) WaitForOperation(name event.OperationName) (*mqtt.OperationWait, error) {
	if c.stream == nil {
		return nil, ErrEventsDisabled
	}
	return c.stream.WaitForOperation(name), nil
}

// ListVehicleVins lists the vins of all vehicles in the account's garage.
func (c *Client) ListVehicleVins(ctx context.Context) ([]string, error) {
	return c.api.ListVehicles(ctx)
}

// User returns the logged-in account's profile, cached for a day because
// it effectively never changes.
func (c *Client) User(ctx context.Context) (*model.User, error) {
	c.mu.Lock()
	if c.user != nil && time.Since(c.userFetched) < userCacheAge {
		user := *c.user
		c.mu.Unlock()
		return &user, nil
	}
	c.mu.Unlock()

	user, err := c.api.User(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.user = user
	c.userFetched = time.Now()
	c.mu.Unlock()
	return user, nil
}

// Garage returns the account's garage listing.
func (c *Client) Garage(ctx context.Context) (*model.Garage, error) {
	return c.api.Garage(ctx)
}

// Info returns the basic vehicle information for vin.
func (c *Client) Info(ctx context.Context, vin string) (*model.Info, error) {
	return c.api.Info(ctx, vin)
}

// Charging returns the charging state for vin.
func (c *Client) Charging(ctx context.Context, vin string) (*model.Charging, error) {
	return c.api.Charging(ctx, vin)
}

// Status returns the parked-state overview for vin.
func (c *Client) Status(ctx context.Context, vin string) (*model.Status, error) {
	return c.api.Status(ctx, vin)
}

// AirConditioning returns the climate control state for vin.
func (c *Client) AirConditioning(ctx context.Context, vin string) (*model.AirConditioning, error) {
	return c.api.AirConditioning(ctx, vin)
}

// AuxiliaryHeating returns the auxiliary heater state for vin.
func (c *Client) AuxiliaryHeating(ctx context.Context, vin string) (*model.AuxiliaryHeating, error) {
	return c.api.AuxiliaryHeating(ctx, vin)
}

// Positions returns the last known positions for vin.
func (c *Client) Positions(ctx context.Context, vin string) (*model.Positions, error) {
	return c.api.Positions(ctx, vin)
}

// DrivingRange returns the range estimate for vin.
func (c *Client) DrivingRange(ctx context.Context, vin string) (*model.DrivingRange, error) {
	return c.api.DrivingRange(ctx, vin)
}

// TripStatistics returns the current week's trip statistics for vin.
func (c *Client) TripStatistics(ctx context.Context, vin string) (*model.TripStatistics, error) {
	return c.api.TripStatistics(ctx, vin)
}

// Maintenance returns the maintenance report for vin.
func (c *Client) Maintenance(ctx context.Context, vin string) (*model.Maintenance, error) {
	return c.api.Maintenance(ctx, vin)
}

// Health returns the warning-light report for vin.
func (c *Client) Health(ctx context.Context, vin string) (*model.Health, error) {
	return c.api.Health(ctx, vin)
}

// DepartureTimers returns the departure timers for vin.
func (c *Client) DepartureTimers(ctx context.Context, vin string) (*model.DepartureInfo, error) {
	return c.api.DepartureTimers(ctx, vin)
}

// VerifySpin checks the S-PIN against the backend without triggering any
// vehicle action.
func (c *Client) VerifySpin(ctx context.Context, spin string) (*model.VerifySpinReport, error) {
	return c.api.VerifySpin(ctx, spin)
}

// notify runs the registered update callbacks for vin.
func (c *Client) notify(vin string) {
	c.mu.Lock()
	callbacks := append([]func()(nil), c.updates[vin]...)
	c.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}

// background returns the context bounding background refresh work.
func (c *Client) background() context.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.runCtx != nil {
		return c.runCtx
	}
	return context.Background()
}
