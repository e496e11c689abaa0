// Package greeter holds the whitelist validation behind the greet tool.
//
// Input is accepted only if it matches a known-safe pattern; anything else,
// including markup and control characters, is rejected with a fixed message.
// Rejection is returned as a Failure Result, never as a panic or Go error.
package greeter

import "regexp"

const (
	// NamePattern is the whitelist for names: 1 to 30 ASCII letters or spaces.
	NamePattern = `^[A-Za-z ]{1,30}$`

	// InvalidNameMessage is returned for every rejected name.
	InvalidNameMessage = "Invalid name — only letters and spaces allowed."
)

var nameRegexp = regexp.MustCompile(NamePattern)

// Validate checks name against NamePattern as a full-string match.
// It is pure and safe for concurrent use.
func Validate(name string) Result {
	if !nameRegexp.MatchString(name) {
		return Failure(InvalidNameMessage)
	}

	return Success("Hello, " + name + "!")
}

// Greet is the handler body of the greet tool.
func Greet(name string) Result {
	return Validate(name)
}
