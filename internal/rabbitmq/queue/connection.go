// Package queue owns the gateway's RabbitMQ connection, topology and publishing.
//
// The connection is long-lived and reconnects on its own. Topology is declared again on
// every transition into StateConnected because broker-side objects may not survive the
// failure that dropped the connection.
package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
)

// ErrNotConnected is returned while there is no usable broker channel.
var ErrNotConnected = errors.New("rabbitmq: not connected")

// Channel is the subset of *amqp.Channel used by the gateway.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	Confirm(noWait bool) error
	PublishWithDeferredConfirmWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) (*amqp.DeferredConfirmation, error)
	Qos(prefetchCount, prefetchSize int, global bool) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	NotifyClose(receiver chan *amqp.Error) chan *amqp.Error
	Close() error
}

// Conn is the subset of *amqp.Connection used by the gateway.
type Conn interface {
	Channel() (Channel, error)
	NotifyClose(receiver chan *amqp.Error) chan *amqp.Error
	NotifyBlocked(receiver chan amqp.Blocking) chan amqp.Blocking
	Close() error
}

// Dialer opens a broker connection.
type Dialer func(url string) (Conn, error)

type amqpConn struct {
	*amqp.Connection
}

func (c amqpConn) Channel() (Channel, error) {
	ch, err := c.Connection.Channel()
	if err != nil {
		return nil, err
	}
	return ch, nil
}

// DialAMQP dials a real broker.
func DialAMQP(url string) (Conn, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	return amqpConn{Connection: conn}, nil
}

// State is the connection state.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// Connection is a self-healing broker connection with one confirm-mode publishing channel.
type Connection struct {
	url      string
	dial     Dialer
	topology Topology
	strategy retry.Strategy

	mu      sync.RWMutex
	state   State
	conn    Conn
	ch      Channel
	blocked bool
	ready   chan struct{} // closed while connected
}

// ConnOption configures a Connection.
type ConnOption func(*Connection)

// WithDialer replaces DialAMQP.
func WithDialer(d Dialer) ConnOption {
	return func(c *Connection) { c.dial = d }
}

// NewConnection creates a disconnected Connection. Call Run to connect.
func NewConnection(url string, topology Topology, strategy retry.Strategy, opts ...ConnOption) *Connection {
	c := &Connection{
		url:      url,
		dial:     DialAMQP,
		topology: topology.WithDefaults(),
		strategy: strategy,
		state:    StateDisconnected,
		ready:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type session struct {
	conn       Conn
	ch         Channel
	connClosed chan *amqp.Error
	chClosed   chan *amqp.Error
}

// Run connects and keeps the connection alive until ctx is done.
func (c *Connection) Run(ctx context.Context) {
	defer c.teardown()

	for {
		c.setState(StateConnecting)

		var s *session
		err := retry.DoContext(ctx, c.strategy, func() error {
			var err error
			s, err = c.connect()
			if err != nil {
				zlog.Logger.Warn().Err(err).Msg("rabbitmq connect attempt failed")
			}
			return err
		})
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			c.setState(StateDisconnected)
			zlog.Logger.Error().Err(err).Msg("failed to connect to rabbitmq, backing off")
			if !pause(ctx, c.strategy.Delay) {
				return
			}
			continue
		}

		c.attach(s)
		zlog.Logger.Info().Str("exchange", c.topology.Exchange).Msg("connected to rabbitmq, topology declared")

		select {
		case <-ctx.Done():
			return
		case amqpErr := <-s.connClosed:
			zlog.Logger.Warn().Interface("reason", amqpErr).Msg("rabbitmq connection closed")
		case amqpErr := <-s.chClosed:
			zlog.Logger.Warn().Interface("reason", amqpErr).Msg("rabbitmq channel closed")
		}

		c.detach()
	}
}

func (c *Connection) connect() (*session, error) {
	conn, err := c.dial(c.url)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := c.topology.Declare(ch); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("enable publisher confirms: %w", err)
	}

	s := &session{
		conn:       conn,
		ch:         ch,
		connClosed: conn.NotifyClose(make(chan *amqp.Error, 1)),
		chClosed:   ch.NotifyClose(make(chan *amqp.Error, 1)),
	}

	blocked := conn.NotifyBlocked(make(chan amqp.Blocking, 1))
	go c.watchBlocked(blocked)

	return s, nil
}

func (c *Connection) watchBlocked(blocked <-chan amqp.Blocking) {
	for b := range blocked {
		c.mu.Lock()
		c.blocked = b.Active
		c.mu.Unlock()

		if b.Active {
			zlog.Logger.Warn().Str("reason", b.Reason).Msg("rabbitmq connection blocked")
		} else {
			zlog.Logger.Info().Msg("rabbitmq connection unblocked")
		}
	}
}

func (c *Connection) attach(s *session) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.conn = s.conn
	c.ch = s.ch
	c.blocked = false
	c.state = StateConnected
	close(c.ready)
}

func (c *Connection) detach() {
	c.mu.Lock()
	conn, ch := c.conn, c.ch
	c.conn, c.ch = nil, nil
	c.state = StateDisconnected
	c.ready = make(chan struct{})
	c.mu.Unlock()

	if ch != nil {
		_ = ch.Close()
	}
	if conn != nil {
		_ = conn.Close()
	}
}

func (c *Connection) teardown() {
	c.mu.RLock()
	connected := c.state == StateConnected
	c.mu.RUnlock()

	if connected {
		c.detach()
		return
	}
	c.setState(StateDisconnected)
}

func (c *Connection) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// State returns the current connection state.
func (c *Connection) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Blocked reports whether the broker has blocked publishing on this connection.
func (c *Connection) Blocked() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.blocked
}

// Channel returns the publishing channel without waiting.
func (c *Connection) Channel() (Channel, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.state != StateConnected || c.ch == nil {
		return nil, ErrNotConnected
	}
	return c.ch, nil
}

// WaitConnected blocks until the connection is up or ctx is done.
func (c *Connection) WaitConnected(ctx context.Context) error {
	c.mu.RLock()
	ready := c.ready
	c.mu.RUnlock()

	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// OpenChannel waits for the connection and opens a dedicated channel on it.
func (c *Connection) OpenChannel(ctx context.Context) (Channel, error) {
	if err := c.WaitConnected(ctx); err != nil {
		return nil, err
	}

	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		return nil, ErrNotConnected
	}

	return conn.Channel()
}

func pause(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		d = time.Second
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
