// Package mailtest provides an in-memory mail.Sender for tests.
package mailtest

import (
	"context"
	"sync"

	"github.com/aussiebroadwan/scribe/internal/scribe/mail"
)

// Recorder keeps every message it is asked to send. After SetErr every send
// fails once recorded.
type Recorder struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (r *Recorder) Send(_ context.Context, msg mail.Message) error {
	if _, err := mail.Render(msg); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return r.err
}

func (r *Recorder) Messages() []mail.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]mail.Message(nil), r.sent...)
}

// Last returns the most recent message of kind sent to recipient.
func (r *Recorder) Last(kind mail.Kind, to string) (mail.Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.sent) - 1; i >= 0; i-- {
		if r.sent[i].Kind == kind && r.sent[i].To == to {
			return r.sent[i], true
		}
	}
	return mail.Message{}, false
}

func (r *Recorder) SetErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}
