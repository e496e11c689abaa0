package greeter

import (
	"encoding/json"
	"fmt"
)

// Result is the outcome of a greet call. It holds exactly one of a success
// message or a failure error text and is immutable once constructed.
type Result struct {
	message string
	err     string
	ok      bool
}

// Success builds a successful Result carrying msg.
func Success(msg string) Result {
	return Result{message: msg, ok: true}
}

// Failure builds a failed Result carrying the user-facing error text.
func Failure(errText string) Result {
	return Result{err: errText}
}

// IsSuccess reports whether r is a Success.
func (r Result) IsSuccess() bool { return r.ok }

// Message returns the success message, or "" for a Failure.
func (r Result) Message() string { return r.message }

// ErrorMessage returns the failure text, or "" for a Success.
func (r Result) ErrorMessage() string { return r.err }

func (r Result) String() string {
	if r.ok {
		return fmt.Sprintf("Success{%q}", r.message)
	}
	return fmt.Sprintf("Failure{%q}", r.err)
}

// Envelope is the wire shape of a Result: exactly one field is set.
type Envelope struct {
	Message *string `json:"message,omitempty"`
	Error   *string `json:"error,omitempty"`
}

// Envelope converts r into its wire shape.
func (r Result) Envelope() Envelope {
	if r.ok {
		msg := r.message
		return Envelope{Message: &msg}
	}
	errText := r.err
	return Envelope{Error: &errText}
}

func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Envelope())
}

func (r *Result) UnmarshalJSON(data []byte) error {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}

	res, err := env.Result()
	if err != nil {
		return err
	}

	*r = res
	return nil
}

// Result converts the envelope back into a Result. It fails if neither or
// both fields are set.
func (e Envelope) Result() (Result, error) {
	switch {
	case e.Message != nil && e.Error != nil:
		return Result{}, fmt.Errorf("invalid result envelope: both message and error are set")
	case e.Message != nil:
		return Success(*e.Message), nil
	case e.Error != nil:
		return Failure(*e.Error), nil
	default:
		return Result{}, fmt.Errorf("invalid result envelope: neither message nor error is set")
	}
}
