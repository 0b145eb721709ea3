package pipeline

// State is a candidate rule's position in the generate-validate-retry
// state machine.
type State string

const (
	// StateGenerated is the initial state: the candidate has source code
	// from generation attempt 1 and has never been validated.
	StateGenerated State = "GENERATED"

	// StateValidating means the candidate's source has been submitted to
	// the sandbox and the outcome is pending.
	StateValidating State = "VALIDATING"

	// StateRetry means validation failed with budget remaining; the
	// candidate is being regenerated with validator feedback.
	StateRetry State = "RETRY"

	// StatePassed is terminal: the candidate validated and is active.
	StatePassed State = "PASSED"

	// StateExhausted is terminal: the candidate burned its whole attempt
	// budget without passing. It is retained inactive.
	StateExhausted State = "EXHAUSTED"
)

// Terminal reports whether the state ends the candidate's run.
func (s State) Terminal() bool {
	return s == StatePassed || s == StateExhausted
}
