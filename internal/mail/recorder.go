package mail

import (
	"context"
	"sync"
)

// Recorder is an in-memory Sender that keeps every message it accepts.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
	// Err, when set, is returned by Send and nothing is recorded.
	Err error
}

func (r *Recorder) Send(_ context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.messages = append(r.messages, msg)
	return nil
}

// Messages returns a copy of the recorded messages.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}
