package mqtt

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/sweeney/desk-alarm/internal/notify"
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
)

// RealClient publishes to an actual MQTT broker and serves commands
// arriving on the command topic. Messages published while the broker is
// unreachable are buffered and replayed on reconnect.
type RealClient struct {
	client  paho.Client
	topics  Topics
	handler CommandHandler
	logger  *zap.SugaredLogger

	connected atomic.Bool
	everUp    atomic.Bool

	mu  sync.Mutex
	buf *ringBuffer
}

// NewRealClient creates a client for broker. The connection is retried in
// the background; a broker that is down at startup is not an error. h may
// be nil, in which case no command topic is subscribed.
func NewRealClient(broker, clientID string, topics Topics, h CommandHandler, logger *zap.SugaredLogger) (*RealClient, error) {
	c := newClient(topics, h, logger)

	will, err := FormatSystemPayload(SystemEvent{Timestamp: time.Now(), Event: "OFFLINE"})
	if err != nil {
		return nil, fmt.Errorf("format will: %w", err)
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOrderMatters(false).
		SetBinaryWill(topics.System, will, 1, true).
		SetOnConnectHandler(c.onConnect).
		SetConnectionLostHandler(c.onConnectionLost)

	c.client = paho.NewClient(opts)
	token := c.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		logger.Warnw("mqtt broker not reachable yet, retrying in background", "broker", broker)
		return c, nil
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}
	return c, nil
}

func newClient(topics Topics, h CommandHandler, logger *zap.SugaredLogger) *RealClient {
	return &RealClient{
		topics:  topics,
		handler: h,
		logger:  logger,
		buf:     newRingBuffer(DefaultBufferSize, logger),
	}
}

func (c *RealClient) onConnect(client paho.Client) {
	c.connected.Store(true)
	reconnect := c.everUp.Swap(true)
	c.logger.Infow("mqtt connected", "reconnect", reconnect)

	if c.handler != nil {
		// Subscriptions do not survive a clean session.
		token := client.Subscribe(c.topics.Command, 1, c.onCommand)
		if token.WaitTimeout(publishTimeout) && token.Error() != nil {
			c.logger.Warnw("mqtt subscribe failed", "topic", c.topics.Command, "error", token.Error())
		}
	}

	c.mu.Lock()
	msgs, dropped := c.buf.drainAll()
	c.mu.Unlock()
	if len(msgs) > 0 || dropped > 0 {
		c.logger.Infow("mqtt replaying buffered messages", "count", len(msgs), "dropped", dropped)
	}
	for _, m := range msgs {
		if err := c.publish(m); err != nil {
			c.logger.Warnw("mqtt replay failed", "topic", m.topic, "error", err)
		}
	}

	if reconnect {
		payload, _ := FormatSystemPayload(SystemEvent{Timestamp: time.Now(), Event: "RECONNECTED"})
		if err := c.publish(bufferedMsg{topic: c.topics.System, payload: payload, qos: 1}); err != nil {
			c.logger.Warnw("mqtt reconnect event failed", "error", err)
		}
	}
}

func (c *RealClient) onConnectionLost(_ paho.Client, err error) {
	c.connected.Store(false)
	c.logger.Warnw("mqtt connection lost", "error", err)
}

func (c *RealClient) onCommand(_ paho.Client, msg paho.Message) {
	body := HandleCommand(c.handler, msg.Payload())
	c.logger.Debugw("mqtt command", "payload", string(msg.Payload()), "response", body)
	if err := c.publish(bufferedMsg{topic: c.topics.Response, payload: []byte(body)}); err != nil {
		c.logger.Warnw("mqtt response failed", "error", err)
	}
}

// publish sends m, or buffers it while disconnected.
func (c *RealClient) publish(m bufferedMsg) error {
	if !c.connected.Load() {
		c.mu.Lock()
		c.buf.push(m)
		c.mu.Unlock()
		return nil
	}

	token := c.client.Publish(m.topic, m.qos, m.retained, m.payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish %s: timeout", m.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", m.topic, err)
	}
	return nil
}

// Publish sends a notification transition to the broker.
func (c *RealClient) Publish(tr notify.Transition) error {
	payload, err := FormatPayload(tr)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	// QoS 0 (at-most-once), not retained
	return c.publish(bufferedMsg{topic: c.topics.Events, payload: payload})
}

// PublishSystem sends a system lifecycle event to the broker.
func (c *RealClient) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	// QoS 1 (at-least-once) so lifecycle events are not lost
	return c.publish(bufferedMsg{topic: c.topics.System, payload: payload, qos: 1, retained: event.Retained})
}

// IsConnected reports whether the broker connection is up. Unlike the
// paho client it is false while a reconnect is in progress.
func (c *RealClient) IsConnected() bool {
	return c.connected.Load()
}

// Buffered returns the number of messages waiting for a connection.
func (c *RealClient) Buffered() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.len()
}

// Close disconnects from the broker.
func (c *RealClient) Close() error {
	c.connected.Store(false)
	c.client.Disconnect(1000) // 1 second quiesce
	return nil
}
