// Package widget implements the chat widget controller: it owns the conversation transcript,
// renders turns into a View and runs one backend exchange per submitted message.
package widget

import (
	"context"
	"strings"
	"sync"

	"github.com/deepgram/chatdesk/internal/services/chat/models"
	"github.com/deepgram/chatdesk/pkg/logger"
	"github.com/rs/zerolog"
)

type Option func(*Controller)

// WithSingleFlight makes Submit refuse new messages while a reply is pending. Without it,
// overlapping submissions each get their own typing indicator and exchange.
func WithSingleFlight() Option {
	return func(c *Controller) {
		c.singleFlight = true
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) {
		c.log = l
	}
}

// Controller mediates between user input, the rendered message list and the chat backend.
// One controller lives as long as one page session; its transcript is never cleared.
type Controller struct {
	mu           sync.Mutex
	transcript   []Turn
	pending      int
	view         View
	backend      Backend
	singleFlight bool
	log          zerolog.Logger
	wg           sync.WaitGroup
}

func NewController(view View, backend Backend, opts ...Option) *Controller {
	c := &Controller{
		view:    view,
		backend: backend,
		log:     logger.For(logger.WIDGET),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit sends text as a user message. Blank text is ignored. It returns once the user turn
// and typing indicator are rendered; the reply arrives asynchronously. The return value
// reports whether an exchange was started.
func (c *Controller) Submit(ctx context.Context, text string) bool {
	message := strings.TrimSpace(text)
	if message == "" {
		return false
	}

	c.mu.Lock()
	if c.singleFlight && c.pending > 0 {
		c.mu.Unlock()
		c.log.Debug().Msg("Submission refused while a reply is pending")
		return false
	}

	c.appendLocked(Turn{Role: RoleUser, Content: message})
	c.view.ClearInput()
	c.view.AppendTypingIndicator()
	c.view.ScrollToBottom()

	// history is taken after the local append, so it ends with this message
	req := models.ChatRequest{
		Message: message,
		History: c.snapshotLocked(),
	}
	c.pending++
	c.wg.Add(1)
	c.mu.Unlock()

	go c.exchange(ctx, req)
	return true
}

func (c *Controller) exchange(ctx context.Context, req models.ChatRequest) {
	defer c.wg.Done()

	reply, err := c.backend.Send(ctx, req)
	if err != nil {
		c.log.Error().Err(err).Msg("Chat exchange failed")
		reply = FallbackReply
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.pending--
	c.view.RemoveTypingIndicator()
	c.appendLocked(Turn{Role: RoleAssistant, Content: reply})
}

func (c *Controller) appendLocked(turn Turn) {
	c.transcript = append(c.transcript, turn)
	c.view.AppendMessage(turn)
	c.view.ScrollToBottom()
}

func (c *Controller) snapshotLocked() []Turn {
	out := make([]Turn, len(c.transcript))
	copy(out, c.transcript)
	return out
}

// Transcript returns a copy of the conversation so far.
func (c *Controller) Transcript() []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Pending is the number of exchanges still waiting for a reply.
func (c *Controller) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Wait blocks until every started exchange has rendered its reply.
func (c *Controller) Wait() {
	c.wg.Wait()
}
