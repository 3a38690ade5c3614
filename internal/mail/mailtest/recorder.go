// Package mailtest provides a Mailer that records messages for tests.
package mailtest

import (
	"context"
	"sync"

	"github.com/yukikurage/project-management-api/internal/mail"
)

// Recorder stores every sent message. When Err is set, Send records the
// message and then fails with Err.
type Recorder struct {
	mu       sync.Mutex
	messages []mail.Message
	Err      error
}

func (r *Recorder) Send(_ context.Context, msg mail.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.messages = append(r.messages, msg)
	return r.Err
}

// Messages returns a copy of the recorded messages.
func (r *Recorder) Messages() []mail.Message {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]mail.Message(nil), r.messages...)
}

// Last returns the most recent message and whether there was one.
func (r *Recorder) Last() (mail.Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.messages) == 0 {
		return mail.Message{}, false
	}
	return r.messages[len(r.messages)-1], true
}
