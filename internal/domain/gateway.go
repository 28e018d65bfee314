package domain

import (
	"context"
	"errors"
	"iter"
)

// Role identifies who authored a chat message
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Message is one turn of a chat exchange sent to the model
type Message struct {
	Role    Role
	Content string
}

// ErrStreamConsumed is yielded when a ChunkStream is ranged over a second time.
var ErrStreamConsumed = errors.New("chunk stream already consumed")

// ChunkStream yields text fragments in the order the provider produced them.
// The request starts on the first iteration; breaking out of the loop cancels it.
// A stream can be ranged over once.
type ChunkStream = iter.Seq2[string, error]

// ModelGateway is the port to a hosted generative language model.
// Implementations hold only immutable configuration and are safe for concurrent use.
type ModelGateway interface {
	// Generate waits for the whole response. With jsonMode set the provider is
	// asked for a strict JSON object.
	Generate(ctx context.Context, messages []Message, jsonMode bool) (string, error)

	// GenerateStream returns the response incrementally.
	GenerateStream(ctx context.Context, messages []Message) ChunkStream

	// Model returns the model identifier requests are sent to.
	Model() string
}
