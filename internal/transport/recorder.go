package transport

import (
	"context"
	"sync"
)

// Call is one Responder invocation captured by Recorder.
type Call struct {
	Method    string
	Token     string
	Content   string
	MessageID string
	Reply     Reply
}

// Recorder is a Responder that captures calls. It is used by the CLI for
// offline rendering and by tests.
type Recorder struct {
	mu    sync.Mutex
	Calls []Call

	// Err, when set, is returned by every method for the named call.
	Err map[string]error
}

var _ Responder = (*Recorder)(nil)

func (r *Recorder) record(c Call) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls = append(r.Calls, c)
	return r.Err[c.Method]
}

// PromptChoice implements Responder.
func (r *Recorder) PromptChoice(_ context.Context, token string) error {
	return r.record(Call{Method: "PromptChoice", Token: token})
}

// PromptAmount implements Responder.
func (r *Recorder) PromptAmount(_ context.Context, token string) error {
	return r.record(Call{Method: "PromptAmount", Token: token})
}

// Resolve implements Responder.
func (r *Recorder) Resolve(_ context.Context, content string) error {
	return r.record(Call{Method: "Resolve", Content: content})
}

// EditMessage implements Responder.
func (r *Recorder) EditMessage(_ context.Context, messageID, content string) error {
	return r.record(Call{Method: "EditMessage", MessageID: messageID, Content: content})
}

// Reply implements Responder.
func (r *Recorder) Reply(_ context.Context, rep Reply) error {
	return r.record(Call{Method: "Reply", Content: rep.Content, Reply: rep})
}

// Last returns the most recent call, or the zero Call.
func (r *Recorder) Last() Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Calls) == 0 {
		return Call{}
	}
	return r.Calls[len(r.Calls)-1]
}

// Methods returns the method names in call order.
func (r *Recorder) Methods() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.Calls))
	for i, c := range r.Calls {
		out[i] = c.Method
	}
	return out
}
