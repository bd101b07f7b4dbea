package nats

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/saviobatista/launch-dashboard/internal/types"
)

const (
	SubjectSelections = "dashboard.selections"
	StreamSelections  = "DASHBOARD_SELECTIONS"
)

// Client represents a NATS client
type Client struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// New creates a new NATS client and makes sure the selection stream exists
func New(url string) (*Client, error) {
	nc, err := nats.Connect(url, nats.Name("launch-dashboard"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to get JetStream context: %w", err)
	}

	_, err = js.AddStream(&nats.StreamConfig{
		Name:     StreamSelections,
		Subjects: []string{SubjectSelections},
		Storage:  nats.FileStorage,
		MaxAge:   7 * 24 * time.Hour,
	})
	if err != nil && !strings.Contains(err.Error(), "stream name already in use") {
		nc.Close()
		return nil, fmt.Errorf("failed to create stream: %w", err)
	}

	return &Client{
		conn: nc,
		js:   js,
	}, nil
}

// PublishSelection publishes a dashboard selection event
func (c *Client) PublishSelection(event *types.SelectionEvent) error {
	if event == nil {
		return errors.New("selection event is nil")
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal selection event: %w", err)
	}

	if _, err := c.js.Publish(SubjectSelections, data); err != nil {
		return fmt.Errorf("failed to publish selection event: %w", err)
	}
	return nil
}

// SubscribeSelections delivers every selection event to handler.
// Undecodable messages are logged and skipped.
func (c *Client) SubscribeSelections(handler func(*types.SelectionEvent)) error {
	if handler == nil {
		return errors.New("selection handler is nil")
	}
	_, err := c.js.Subscribe(SubjectSelections, func(msg *nats.Msg) {
		event, err := decodeSelection(msg.Data)
		if err != nil {
			log.Printf("Error decoding selection event: %v", err)
			return
		}
		handler(event)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}
	return nil
}

func decodeSelection(data []byte) (*types.SelectionEvent, error) {
	var event types.SelectionEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	if event.ID == "" {
		return nil, errors.New("selection event has no id")
	}
	return &event, nil
}

// Close closes the NATS connection
func (c *Client) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
}
