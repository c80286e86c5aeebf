package messaging

import (
	"context"
	"time"
)

// CommandKind identifies the downstream worker that executes a command.
type CommandKind string

const (
	CommandSendEmail   CommandKind = "send_email"
	CommandGeneratePDF CommandKind = "generate_pdf"
)

// Command is the envelope published for email and PDF workers.
// Target is the recipient (or document owner) and doubles as the partition key.
type Command struct {
	Kind      CommandKind    `json:"kind"`
	Target    string         `json:"target"`
	Template  string         `json:"template"`
	Subject   string         `json:"subject,omitempty"`
	From      string         `json:"from,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Publisher hands commands off to the outbound pipeline.
type Publisher interface {
	Publish(ctx context.Context, cmd Command) error
	Close() error
}
