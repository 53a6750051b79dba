// Package emailtest provides an in-memory email.Sender for tests.
package emailtest

import (
	"context"
	"regexp"
	"sync"

	"cashtrackr/internal/email"
)

var tokenPattern = regexp.MustCompile(`código: (?:<b>)?([0-9]{6})`)

// Recorder records every message it is asked to send. It is safe for
// concurrent use.
type Recorder struct {
	mu       sync.Mutex
	messages []email.Message
	err      error
}

// New returns an empty Recorder.
func New() *Recorder {
	return &Recorder{}
}

// Send implements email.Sender. When FailWith has set an error, the message
// is not recorded and the error is returned.
func (r *Recorder) Send(_ context.Context, msg email.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.messages = append(r.messages, msg)
	return nil
}

// FailWith makes subsequent sends fail with err. Pass nil to recover.
func (r *Recorder) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// Messages returns a copy of the recorded messages.
func (r *Recorder) Messages() []email.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]email.Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// LastTokenFor returns the code in the most recent message sent to addr.
func (r *Recorder) LastTokenFor(addr string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.messages) - 1; i >= 0; i-- {
		if r.messages[i].To != addr {
			continue
		}
		if m := tokenPattern.FindStringSubmatch(r.messages[i].TextBody); m != nil {
			return m[1]
		}
	}
	return ""
}

// LastToken returns the code in the most recent message.
func (r *Recorder) LastToken() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return ""
	}
	if m := tokenPattern.FindStringSubmatch(r.messages[len(r.messages)-1].TextBody); m != nil {
		return m[1]
	}
	return ""
}

// Reset forgets every recorded message.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = nil
}
