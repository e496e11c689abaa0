package gateway

import (
	"errors"

	"github.com/genmcp/safe-greeter/pkg/greeter"
)

// Outcome classifies the result of one invocation.
type Outcome string

const (
	OutcomeSuccess      Outcome = "success"
	OutcomeRejected     Outcome = "rejected"
	OutcomeUnknownTool  Outcome = "unknown_tool"
	OutcomeBadArguments Outcome = "bad_arguments"
	OutcomeFailed       Outcome = "failed"
)

// Classify maps the return values of Invoke to an Outcome.
func Classify(res greeter.Result, err error) Outcome {
	switch {
	case errors.Is(err, ErrUnknownTool):
		return OutcomeUnknownTool
	case errors.Is(err, ErrBadArguments):
		return OutcomeBadArguments
	case err != nil:
		return OutcomeFailed
	case res.IsSuccess():
		return OutcomeSuccess
	default:
		return OutcomeRejected
	}
}
