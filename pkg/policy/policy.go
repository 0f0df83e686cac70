package policy

import (
	"fmt"

	"github.com/autobrr/hldup/pkg/fileid"
)

// Prompter asks the user a yes/no question.
type Prompter interface {
	Confirm(msg string) bool
}

// Policy decides whether two byte-identical files should be hardlinked.
type Policy struct {
	mode     Mode
	prompter Prompter
	stat     func(string) (fileid.Info, error)
}

// New returns a policy for mode. prompter may be nil unless mode is
// ModePrompt.
func New(mode Mode, prompter Prompter) *Policy {
	return &Policy{
		mode:     mode,
		prompter: prompter,
		stat:     fileid.Stat,
	}
}

func (p *Policy) Mode() Mode {
	return p.mode
}

// Check decides whether right may be replaced by a hardlink to left.
func (p *Policy) Check(left, right string) (Decision, error) {
	leftInfo, err := p.stat(left)
	if err != nil {
		return Decision{}, err
	}
	rightInfo, err := p.stat(right)
	if err != nil {
		return Decision{}, err
	}

	if leftInfo.SameInode(rightInfo) {
		return notEligible(Reason{Kind: ReasonAlreadyLinked}), nil
	}

	if !leftInfo.SameDevice(rightInfo) {
		return notEligible(DifferentFilesystems(leftInfo.ID.Device, rightInfo.ID.Device)), nil
	}

	if !p.confirm(left, right) {
		return notEligible(Reason{Kind: ReasonUserDeclined}), nil
	}

	return eligible(), nil
}

func (p *Policy) confirm(left, right string) bool {
	if answer, ok := p.mode.Default(); ok {
		return answer
	}

	if p.prompter == nil {
		return false
	}

	return p.prompter.Confirm(fmt.Sprintf("Found candidates %s and %s. Should we hard-link them?", left, right))
}
