package notification

import (
	"time"
)

type Action int

const (
	ActionLink Action = iota + 1
	ActionFailure
)

type Sender interface {
	CanSend() bool
	Send(title string, description string, runTime time.Duration, fields []Field, dryRun bool) error
	BuildField(action Action, options BuildOptions) Field
	Name() string
}

type Field struct {
	Name  string
	Value string
}

type BuildOptions struct {
	Left  string
	Right string
	Size  int64

	// Reclaimed reports whether linking freed the right file's old inode.
	Reclaimed bool

	// Error is the failure text for ActionFailure fields.
	Error string
}
