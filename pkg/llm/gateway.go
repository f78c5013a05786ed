// Package llm provides the text-generation capability behind reply,
// suggestion, summary and query generation. Failures never surface as
// errors: every completion yields a Result, degraded or not, so a flaky
// upstream can never lose a user's turn or block a state transition.
package llm

import "context"

// Result is the outcome of a completion. When Degraded is true the
// upstream call failed and Text carries an error-describing fallback;
// callers persist Text either way and may inspect Degraded for
// observability.
type Result struct {
	Text     string
	Degraded bool
}

// Gateway is an abstract completion capability with session-scoped
// conversational memory: calls sharing a session ID see each other's
// turns without the caller resending history. An empty session ID marks
// the call as one-shot: no memory is read or retained for it. Forget
// releases a session's memory once the caller is done with it.
type Gateway interface {
	Complete(ctx context.Context, session, system, prompt string) Result
	Forget(session string)
}
