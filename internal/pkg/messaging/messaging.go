package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"
)

var (
	// ErrUnsupported is returned when a feature is not supported by the selected driver.
	ErrUnsupported = errors.New("messaging: unsupported operation")
	// ErrSubjectRequired is returned when the subject is empty.
	ErrSubjectRequired = errors.New("messaging: subject is required")
	// ErrHandlerRequired is returned when Consume is called with a nil handler.
	ErrHandlerRequired = errors.New("messaging: handler is required")
)

// Messaging is a driver-agnostic client that can publish and consume messages.
type Messaging interface {
	io.Closer

	Publisher
	Consumer
}

// Publisher publishes messages to a subject.
type Publisher interface {
	Publish(ctx context.Context, subject string, msg OutgoingMessage) (PublishResult, error)
}

// Consumer consumes messages from a subject. Consume blocks until ctx is done.
type Consumer interface {
	Consume(ctx context.Context, subject string, handler Handler, opts ...ConsumeOption) error
}

// Handler processes a received message.
//
// With WithAutoAck the message is acked on nil and nacked on error. Drivers
// without redelivery treat a nack as a drop.
type Handler func(ctx context.Context, msg Message) error

// OutgoingMessage is a message to be published.
type OutgoingMessage struct {
	Body    []byte
	Headers []Header

	// Delay is used for deferred delivery (when supported).
	Delay time.Duration
}

// Header is a key/value pair used for message headers.
type Header struct {
	Key   string
	Value []byte
}

// PublishResult carries what the driver reports about an accepted message.
type PublishResult struct {
	Subject   string
	Timestamp time.Time
}

// Message is a received message.
type Message interface {
	Body() []byte
	Headers() []Header
	Subject() string
	Timestamp() time.Time

	// Ack acknowledges successful processing.
	Ack(ctx context.Context) error
}

// Nackable can request a message redelivery.
type Nackable interface {
	Nack(ctx context.Context) error
}

// RawCarrier exposes the underlying driver message type.
type RawCarrier interface {
	Raw() any
}

// PublishJSON encodes v and publishes it with a JSON content type header.
func PublishJSON(ctx context.Context, p Publisher, subject string, v any, headers ...Header) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("messaging: encode %s: %w", subject, err)
	}

	_, err = p.Publish(ctx, subject, OutgoingMessage{
		Body:    body,
		Headers: append([]Header{{Key: "Content-Type", Value: []byte("application/json")}}, headers...),
	})

	return err
}

// DecodeJSON unmarshals the body of msg into T.
func DecodeJSON[T any](msg Message) (T, error) {
	var out T
	if err := json.Unmarshal(msg.Body(), &out); err != nil {
		return out, fmt.Errorf("messaging: decode %s: %w", msg.Subject(), err)
	}

	return out, nil
}
