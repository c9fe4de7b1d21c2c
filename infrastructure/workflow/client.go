package workflow

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"

	"paybill-connector/infrastructure/queue"
)

const (
	createInstanceSubject = "workflow.command.create-instance"

	headerCorrelationKey = "Correlation-Key"
	headerTimeToLive     = "Ttl-Millis"

	defaultCommandTimeout = 10 * time.Second
)

type createInstanceCommand struct {
	ProcessID string         `json:"processId"`
	Variables map[string]any `json:"variables"`
}

type createInstanceReply struct {
	InstanceID string `json:"instanceId"`
	Error      string `json:"error,omitempty"`
}

type correlationMessage struct {
	Name           string         `json:"name"`
	CorrelationKey string         `json:"correlationKey"`
	Variables      map[string]any `json:"variables"`
}

// Client talks to the workflow engine over the shared NATS connection:
// instance creation is a request/reply command, correlation messages are
// published to the engine's JetStream stream with their time-to-live in
// a header.
type Client struct {
	queue   *queue.WorkflowQueue
	timeout time.Duration
}

func NewClient(q *queue.WorkflowQueue) *Client {
	return &Client{queue: q, timeout: defaultCommandTimeout}
}

func (c *Client) CreateInstance(ctx context.Context, processID string, variables map[string]any) (string, error) {
	payload, err := json.Marshal(createInstanceCommand{ProcessID: processID, Variables: variables})
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	msg, err := c.queue.NatsConn.RequestWithContext(ctx, createInstanceSubject, payload)
	if err != nil {
		return "", err
	}

	var reply createInstanceReply
	if err := json.Unmarshal(msg.Data, &reply); err != nil {
		return "", err
	}
	if reply.Error != "" {
		return "", errors.New(reply.Error)
	}
	if reply.InstanceID == "" {
		return "", errors.New("workflow engine returned no instance id")
	}
	return reply.InstanceID, nil
}

func (c *Client) PublishMessage(
	ctx context.Context, name, correlationKey string, ttl time.Duration, variables map[string]any,
) error {
	payload, err := json.Marshal(correlationMessage{
		Name:           name,
		CorrelationKey: correlationKey,
		Variables:      variables,
	})
	if err != nil {
		return err
	}

	msg := nats.NewMsg(fmt.Sprintf("%s.%s", c.queue.MessageSubjectRoot, name))
	msg.Header.Set(headerCorrelationKey, correlationKey)
	msg.Header.Set(headerTimeToLive, strconv.FormatInt(ttl.Milliseconds(), 10))
	msg.Data = payload

	_, err = c.queue.JetStream.PublishMsg(msg, nats.Context(ctx))
	return err
}
