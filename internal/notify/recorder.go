package notify

import (
	"context"
	"sync"
)

// Recorder captures messages instead of sending them. Useful for tests and
// for asserting that anti-enumeration paths trigger no email at all.
type Recorder struct {
	mu   sync.Mutex
	sent []Message
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Send(ctx context.Context, msg Message) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return nil
}

// Sent returns a copy of the captured messages.
func (r *Recorder) Sent() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.sent))
	copy(out, r.sent)
	return out
}
