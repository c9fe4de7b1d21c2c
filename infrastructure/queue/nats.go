package queue

import (
	"os"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/nats-io/nats.go"
)

const (
	messageSubjectRoot = "workflow.message"
	streamName         = "Workflow-Messages"
)

// WorkflowQueue holds the NATS connection shared with the workflow
// engine: correlation messages go through JetStream, commands over core
// request/reply.
type WorkflowQueue struct {
	JetStream          nats.JetStreamContext
	NatsConn           *nats.Conn
	MessageSubjectRoot string
	StreamName         string
}

func NewWorkflowQueue() (*WorkflowQueue, error) {
	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = nats.DefaultURL
	}

	natsConn, err := nats.Connect(natsURL)
	if err != nil {
		return nil, err
	}

	js, err := natsConn.JetStream()
	if err != nil {
		return nil, err
	}

	queue := &WorkflowQueue{
		NatsConn:           natsConn,
		JetStream:          js,
		MessageSubjectRoot: messageSubjectRoot,
		StreamName:         streamName,
	}

	if err = queue.createStream(); err != nil {
		return nil, err
	}
	return queue, nil
}

func (q *WorkflowQueue) createStream() error {
	now := time.Now().UTC()
	streamCfg := nats.StreamConfig{
		Name:      streamName,
		Subjects:  []string{messageSubjectRoot + ".>"},
		Retention: nats.WorkQueuePolicy,
		Storage:   nats.MemoryStorage,
		Replicas:  0,
	}
	stream, err := q.JetStream.AddStream(&streamCfg)
	if err != nil {
		return err
	}

	if stream.Created.After(now) {
		log.Info("Stream created")
	}
	return nil
}
