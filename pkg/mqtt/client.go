// Package mqtt maintains the persistent connection to the Vetra Connect
// event broker. It decodes incoming messages into typed events, fans them
// out to subscribers and resolves pending operation waits.
package mqtt

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/vetraconnect/vetra/pkg/event"
	"github.com/vetraconnect/vetra/pkg/idx"
	"github.com/vetraconnect/vetra/pkg/slogx"
)

// DefaultBroker is the production event broker.
const DefaultBroker = "ssl://mqtt.messagehub.vetra.eu:8883"

const (
	keepAlive      = 15 * time.Second
	connectTimeout = 30 * time.Second

	// Reconnect backoff doubles from the base up to the cap.
	reconnectDelay    = 5 * time.Second
	reconnectMaxDelay = 5 * time.Minute

	// Milliseconds granted to flush in-flight traffic on disconnect.
	disconnectQuiesce = 250
)

// TokenSource supplies the broker password, which is the account's current
// access token. The authorization state machine implements it.
type TokenSource interface {
	GetAccessToken(ctx context.Context) (string, error)
}

// Config carries the optional knobs for a Client. The zero value selects
// the production broker.
type Config struct {
	Broker    string
	TLSConfig *tls.Config
	Log       *slog.Logger
}

// Client owns the broker connection for one account. A background loop
// keeps it connected, fetching a fresh access token for every attempt
// because the previous one is usually expired by the time a long-lived
// connection drops.
type Client struct {
	broker    string
	tlsConfig *tls.Config
	tokens    TokenSource
	log       *slog.Logger
	ops       *operations
	lost      chan error

	mu          sync.Mutex
	subscribers []func(event.Event)
	userID      string
	vins        []string
	cancel      context.CancelFunc
	done        chan struct{}
}

// New builds a disconnected Client. WaitForOperation and Subscribe work
// immediately; events flow once Connect succeeds.
func New(tokens TokenSource, cfg Config) *Client {
	if cfg.Broker == "" {
		cfg.Broker = DefaultBroker
	}
	if cfg.Log == nil {
		cfg.Log = slogx.Discard()
	}

	return &Client{
		broker:    cfg.Broker,
		tlsConfig: cfg.TLSConfig,
		tokens:    tokens,
		log:       cfg.Log,
		ops:       newOperations(cfg.Log),
		lost:      make(chan error, 1),
	}
}

// Connect opens the broker connection for the given user and vehicles and
// keeps it alive in the background until Disconnect. It returns once the
// initial subscriptions are in place, or with ctx's error if that takes
// too long.
func (c *Client) Connect(ctx context.Context, userID string, vins []string) error {
	c.mu.Lock()
	if c.cancel != nil {
		c.mu.Unlock()
		return errors.New("mqtt: already connected")
	}
	runCtx, cancel := context.WithCancel(context.Background())
	c.userID = userID
	c.vins = append([]string(nil), vins...)
	c.cancel = cancel
	c.done = make(chan struct{})
	done := c.done
	c.mu.Unlock()

	c.log.Info("connecting to event broker", "user_id", userID, "vehicles", len(vins))

	ready := make(chan struct{})
	var once sync.Once
	go c.run(runCtx, done, func() { once.Do(func() { close(ready) }) })

	select {
	case <-ready:
		return nil
	case <-done:
		return errors.New("mqtt: connection loop stopped before subscribing")
	case <-ctx.Done():
		c.Disconnect()
		return ctx.Err()
	}
}

// Disconnect stops the background connection loop and waits for it to shut
// down. Pending operation waits are not failed; their own deadlines still
// apply.
func (c *Client) Disconnect() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel = nil
	c.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Subscribe registers a callback invoked for every decoded event. Callbacks
// run on the broker client's network goroutine and should return quickly.
func (c *Client) Subscribe(fn func(event.Event)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribers = append(c.subscribers, fn)
}

// WaitForOperation registers intent to observe the next completion of the
// named operation. Register before issuing the triggering command so the
// completion event cannot arrive unobserved.
func (c *Client) WaitForOperation(name event.OperationName) *OperationWait {
	return c.ops.register(name)
}

// run is the reconnect loop. Each pass dials, subscribes and blocks until
// the connection drops, then backs off before trying again.
func (c *Client) run(ctx context.Context, done chan struct{}, ready func()) {
	defer close(done)

	delay := reconnectDelay
	for {
		established, err := c.connectOnce(ctx, ready)
		if ctx.Err() != nil {
			return
		}
		if established {
			delay = reconnectDelay
		}

		c.log.Info("connection lost, reconnecting", "error", err, "delay", delay)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return
		}

		delay = min(2*delay, reconnectMaxDelay)
	}
}

// connectOnce performs a single connection attempt and, on success, serves
// it until the connection is lost or ctx ends. It reports whether the
// subscriptions were established, so the caller can reset its backoff.
func (c *Client) connectOnce(ctx context.Context, ready func()) (bool, error) {
	// Drop any loss notification left over from the previous connection.
	select {
	case <-c.lost:
	default:
	}

	token, err := c.tokens.GetAccessToken(ctx)
	if err != nil {
		return false, fmt.Errorf("broker credentials: %w", err)
	}

	c.mu.Lock()
	userID, vins := c.userID, c.vins
	c.mu.Unlock()

	opts := paho.NewClientOptions().
		AddBroker(c.broker).
		SetClientID(idx.New().String()).
		SetUsername(userID).
		SetPassword(token).
		SetKeepAlive(keepAlive).
		SetCleanSession(true).
		SetAutoReconnect(false).
		SetConnectTimeout(connectTimeout).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			select {
			case c.lost <- err:
			default:
			}
		})
	if c.tlsConfig != nil {
		opts.SetTLSConfig(c.tlsConfig)
	}

	conn := paho.NewClient(opts)
	if err := waitToken(conn.Connect(), "connect"); err != nil {
		return false, err
	}
	defer conn.Disconnect(disconnectQuiesce)

	for _, topic := range topicsFor(userID, vins) {
		if err := waitToken(conn.Subscribe(topic, 0, c.onMessage), "subscribe "+topic); err != nil {
			return false, err
		}
	}

	c.log.Info("connected to event broker")
	ready()

	select {
	case err := <-c.lost:
		return true, err
	case <-ctx.Done():
		return true, nil
	}
}

// waitToken turns paho's asynchronous token into a plain error.
func waitToken(t paho.Token, what string) error {
	if !t.WaitTimeout(connectTimeout) {
		return fmt.Errorf("%s: timed out", what)
	}
	if err := t.Error(); err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	return nil
}

func (c *Client) onMessage(_ paho.Client, msg paho.Message) {
	c.handleMessage(msg.Topic(), msg.Payload())
}

// handleMessage decodes one raw broker message and fans it out. Malformed
// payloads are logged and dropped; a bad message must not take down the
// stream.
func (c *Client) handleMessage(topic string, payload []byte) {
	if len(payload) == 0 {
		return
	}

	ev, err := event.Decode(topic, payload)
	if err != nil {
		c.log.Warn("dropping undecodable message", "topic", topic, "error", err)
		return
	}

	meta := ev.EventMeta()
	c.log.Debug("event received", "type", meta.Type, "vin", meta.Vin, "trace_id", meta.TraceID)

	c.mu.Lock()
	subscribers := append([]func(event.Event)(nil), c.subscribers...)
	c.mu.Unlock()

	for _, fn := range subscribers {
		c.deliver(fn, ev)
	}

	if op, ok := ev.(*event.OperationEvent); ok {
		c.ops.handle(op)
	}
}

// deliver invokes one subscriber, keeping its panic from stopping delivery
// to the rest or to the correlation engine.
func (c *Client) deliver(fn func(event.Event), ev event.Event) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("event subscriber panicked", "panic", r)
		}
	}()
	fn(ev)
}
