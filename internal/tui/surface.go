package tui

import (
	"sync/atomic"

	"github.com/deepgram/chatdesk/internal/widget"
)

// surface is the controller's View inside the terminal. Mutations may come from the
// exchange goroutines, so they only signal; the bubbletea loop does the redrawing.
type surface struct {
	*widget.MessageList
	clearRequested atomic.Bool
	changes        chan struct{}
}

func newSurface() *surface {
	s := &surface{
		MessageList: widget.NewMessageList(),
		changes:     make(chan struct{}, 1),
	}
	s.OnChange(s.signal)
	return s
}

func (s *surface) ClearInput() {
	s.clearRequested.Store(true)
	s.signal()
}

// takeClear reports whether the controller asked for the input to be cleared since last call.
func (s *surface) takeClear() bool {
	return s.clearRequested.Swap(false)
}

func (s *surface) signal() {
	select {
	case s.changes <- struct{}{}:
	default:
	}
}
