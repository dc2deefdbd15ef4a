package mqtt

import (
	"github.com/sweeney/anybutton/internal/panel"
)

// FakePublisher records what would have gone to the broker.
// Payloads and SystemPayloads hold the encoded form of Events and
// SystemEvents, index for index.
type FakePublisher struct {
	Events         []panel.Event
	Payloads       [][]byte
	SystemEvents   []SystemEvent
	SystemPayloads [][]byte

	PublishError error // returned by Publish, nothing recorded
	Connected    bool  // reported by IsConnected
	Closed       bool
}

func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

func (f *FakePublisher) Publish(event panel.Event) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	payload, err := FormatPayload(event)
	if err != nil {
		return err
	}
	f.Events = append(f.Events, event)
	f.Payloads = append(f.Payloads, payload)
	return nil
}

func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemEvents = append(f.SystemEvents, event)
	f.SystemPayloads = append(f.SystemPayloads, payload)
	return nil
}

func (f *FakePublisher) IsConnected() bool { return f.Connected }

func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}
