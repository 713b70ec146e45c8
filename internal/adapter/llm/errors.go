package llm

import "fmt"

// TransportError reports a network failure, a non-success HTTP status or a
// provider error envelope. Callers may retry with another model.
type TransportError struct {
	Model      string
	StatusCode int
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("llm transport error (model %s) [%d]: %s", e.Model, e.StatusCode, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("llm transport error (model %s): %v", e.Model, e.Err)
	}
	return fmt.Sprintf("llm transport error (model %s): %s", e.Model, e.Message)
}

func (e *TransportError) Unwrap() error { return e.Err }

// MalformedResponseError reports a success response whose body lacks the
// expected choice/message/content.
type MalformedResponseError struct {
	Model  string
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed llm response (model %s): %s: %v", e.Model, e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed llm response (model %s): %s", e.Model, e.Reason)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }
