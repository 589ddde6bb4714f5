package mqtt

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/sweeney/footswitch/internal/bridge"
)

const (
	bufferCapacity = 256
	publishTimeout = 5 * time.Second

	// OfflineEvent is the retained last-will message on the system topic.
	OfflineEvent = "OFFLINE"
)

// Config holds the broker connection settings.
type Config struct {
	Broker      string
	ClientID    string
	TopicPrefix string
}

// RealPublisher publishes to an actual MQTT broker. Messages produced while
// the connection is down are held in a bounded buffer and replayed in order
// once paho connects or reconnects. Nothing on the poll path waits for the
// broker.
type RealPublisher struct {
	client      paho.Client
	eventTopic  string
	systemTopic string

	mu     sync.Mutex
	buffer *ringBuffer
}

// NewRealPublisher starts connecting to the configured broker and returns
// without waiting. paho retries until the broker answers.
func NewRealPublisher(cfg Config) (*RealPublisher, error) {
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = DefaultTopicPrefix
	}

	p := &RealPublisher{buffer: newRingBuffer(bufferCapacity)}
	p.eventTopic, p.systemTopic = Topics(cfg.TopicPrefix)

	will, err := FormatSystemPayload(SystemEvent{Timestamp: time.Now(), Event: OfflineEvent})
	if err != nil {
		return nil, fmt.Errorf("format will: %w", err)
	}

	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetBinaryWill(p.systemTopic, will, 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.WithError(err).Warn("mqtt connection lost")
		})

	fields := log.Fields{
		"broker":    cfg.Broker,
		"client_id": clientID,
		"topic":     p.eventTopic,
	}

	p.client = paho.NewClient(opts)
	token := p.client.Connect()
	go func() {
		// With connect retry on, the token completes on the first successful
		// connection or when Close aborts the attempt.
		<-token.Done()
		if err := token.Error(); err != nil {
			log.WithFields(fields).WithError(err).Warn("mqtt connect abandoned")
			return
		}
		log.WithFields(fields).Info("mqtt connected")
	}()

	return p, nil
}

// onConnect replays anything buffered while the connection was down.
func (p *RealPublisher) onConnect(c paho.Client) {
	p.mu.Lock()
	pending := p.buffer.drainAll()
	p.mu.Unlock()

	if len(pending) == 0 {
		return
	}
	log.WithField("count", len(pending)).Info("mqtt replaying buffered messages")
	for _, msg := range pending {
		token := c.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
		if !token.WaitTimeout(publishTimeout) || token.Error() != nil {
			log.WithField("topic", msg.topic).Warn("mqtt replay failed, message dropped")
		}
	}
}

// IsConnected reports whether the client currently has a live connection.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Publish sends a switch event to the MQTT broker.
func (p *RealPublisher) Publish(event bridge.Event) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	// QoS 0 (at-most-once), not retained. Delivery is confirmed off the poll
	// goroutine; failures are logged.
	token := p.send(bufferedMsg{topic: p.eventTopic, payload: payload})
	if token != nil {
		go func() {
			if err := wait(token, p.eventTopic); err != nil {
				log.WithError(err).Warn("mqtt publish")
			}
		}()
	}
	return nil
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	// QoS 1 for lifecycle events, waited for so SHUTDOWN lands before Close.
	token := p.send(bufferedMsg{topic: p.systemTopic, payload: payload, qos: 1, retained: event.Retained})
	if token == nil {
		return nil
	}
	return wait(token, p.systemTopic)
}

// send publishes msg, or buffers it and returns nil while disconnected.
func (p *RealPublisher) send(msg bufferedMsg) paho.Token {
	// The check and push share the lock with onConnect's drain so nothing is
	// stranded in the buffer across a reconnect.
	p.mu.Lock()
	if !p.client.IsConnectionOpen() {
		p.buffer.push(msg)
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	return p.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
}

func wait(token paho.Token, topic string) error {
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish %s timeout", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// buffered reports how many messages are waiting for a connection.
func (p *RealPublisher) buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buffer.len()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
