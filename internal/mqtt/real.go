package mqtt

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/sweeney/anybutton/internal/panel"
)

// bufferCapacity bounds how many messages are kept while disconnected.
const bufferCapacity = 256

// RealPublisher publishes to an actual MQTT broker.
// Messages published while the connection is down are buffered and
// replayed in order once it comes back.
type RealPublisher struct {
	client   paho.Client
	clientID string

	mu        sync.Mutex
	buf       *ringBuffer
	connected bool // at least one successful connect so far
	replaying bool // onConnect is draining buf
}

func newRealPublisher(client paho.Client, clientID string) *RealPublisher {
	return &RealPublisher{
		client:   client,
		clientID: clientID,
		buf:      newRingBuffer(bufferCapacity),
	}
}

// NewRealPublisher creates a publisher for the given broker.
// It waits briefly for the first connection; if the broker is not reachable
// yet, it keeps retrying in the background and buffers until it is.
func NewRealPublisher(broker, clientID string) (*RealPublisher, error) {
	if broker == "" {
		return nil, fmt.Errorf("no broker configured")
	}
	p := newRealPublisher(nil, clientID)

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetWill(TopicSystem(clientID), string(WillPayload()), 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Printf("mqtt: connection lost: %v", err)
		})

	p.client = paho.NewClient(opts)
	token := p.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		log.Printf("mqtt: %s not reachable yet, buffering until connected", broker)
		return p, nil
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}
	return p, nil
}

// onConnect replays buffered messages oldest first. Messages published
// meanwhile join the buffer and go out in the same pass.
// Runs on paho's goroutine.
func (p *RealPublisher) onConnect(c paho.Client) {
	p.mu.Lock()
	reconnect := p.connected
	p.connected = true
	p.replaying = true
	p.mu.Unlock()

	replayed := 0
	for {
		p.mu.Lock()
		msgs := p.buf.drainAll()
		if len(msgs) == 0 {
			p.replaying = false
			p.mu.Unlock()
			break
		}
		p.mu.Unlock()

		for _, m := range msgs {
			token := c.Publish(m.topic, m.qos, m.retained, m.payload)
			if token.WaitTimeout(5*time.Second) && token.Error() != nil {
				log.Printf("mqtt: replay to %s: %v", m.topic, token.Error())
			}
		}
		replayed += len(msgs)
	}

	if reconnect {
		log.Printf("mqtt: reconnected, replayed %d buffered messages", replayed)
		payload, _ := FormatSystemPayload(SystemEvent{Timestamp: time.Now(), Event: "RECONNECTED"})
		c.Publish(TopicSystem(p.clientID), 1, false, payload)
	} else if replayed > 0 {
		log.Printf("mqtt: connected, sent %d buffered messages", replayed)
	}
}

// Publish sends a button event to the MQTT broker.
func (p *RealPublisher) Publish(event panel.Event) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	// QoS 1: a missed button press matters more than a duplicate.
	return p.publish(bufferedMsg{topic: Topic(p.clientID), payload: payload, qos: 1})
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	return p.publish(bufferedMsg{topic: TopicSystem(p.clientID), payload: payload, qos: 1, retained: event.Retained})
}

func (p *RealPublisher) publish(m bufferedMsg) error {
	p.mu.Lock()
	if p.replaying || p.buf.len() > 0 || !p.client.IsConnectionOpen() {
		p.buf.push(m)
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	token := p.client.Publish(m.topic, m.qos, m.retained, m.payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	return nil
}

// Buffered returns the number of messages waiting for a connection.
func (p *RealPublisher) Buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buf.len()
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
