package transition

import "errors"

// Failure kinds for a transition attempt. Everything here aborts the call
// with no partial mutation persisted; summarization failure is deliberately
// absent because enrichment is non-fatal and happens after commit.
var (
	ErrUnauthenticated   = errors.New("no authenticated actor")
	ErrUnauthorized      = errors.New("actor is not permitted to perform this action")
	ErrNotFound          = errors.New("project or milestone not found")
	ErrInvalidTransition = errors.New("action not permitted from current milestone state")
	ErrConflict          = errors.New("project was modified concurrently")
)

// ValidationError reports an action-specific payload problem. Msg is safe to
// show to the caller.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// Outcome maps an ApplyTransition error to a metrics label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrUnauthenticated), errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrConflict):
		return "conflict"
	default:
		var ve *ValidationError
		if errors.As(err, &ve) {
			return "validation_error"
		}
		return "error"
	}
}
