package policy

import (
	"strings"

	"github.com/pkg/errors"
)

// Mode decides how eligible pairs are confirmed. It is fixed for a run.
type Mode int

const (
	// ModePrompt asks the user about every eligible pair.
	ModePrompt Mode = iota
	// ModeAlwaysYes links every eligible pair.
	ModeAlwaysYes
	// ModeAlwaysNo never links.
	ModeAlwaysNo
)

func (m Mode) String() string {
	switch m {
	case ModePrompt:
		return "prompt"
	case ModeAlwaysYes:
		return "yes"
	case ModeAlwaysNo:
		return "no"
	}
	return "unknown"
}

// Default returns the fixed answer of the mode, or false for ok when the
// user has to be asked.
func (m Mode) Default() (answer bool, ok bool) {
	switch m {
	case ModeAlwaysYes:
		return true, true
	case ModeAlwaysNo:
		return false, true
	default:
		return false, false
	}
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "prompt":
		return ModePrompt, nil
	case "yes", "default-yes":
		return ModeAlwaysYes, nil
	case "no", "default-no":
		return ModeAlwaysNo, nil
	}
	return ModePrompt, errors.Errorf("unknown mode %q (expected prompt, yes or no)", s)
}
