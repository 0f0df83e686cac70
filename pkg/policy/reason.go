package policy

import "fmt"

type ReasonKind int

const (
	ReasonNone ReasonKind = iota
	// ReasonDifferentFilesystems carries both device ids in the Reason.
	ReasonDifferentFilesystems
	ReasonAlreadyLinked
	ReasonUserDeclined
)

// Reason explains why two identical files are not linked.
type Reason struct {
	Kind ReasonKind

	LeftDevice  uint64
	RightDevice uint64
}

func DifferentFilesystems(left, right uint64) Reason {
	return Reason{Kind: ReasonDifferentFilesystems, LeftDevice: left, RightDevice: right}
}

func (r Reason) String() string {
	switch r.Kind {
	case ReasonDifferentFilesystems:
		return fmt.Sprintf("The files are on different filesystems (devices %d and %d).", r.LeftDevice, r.RightDevice)
	case ReasonAlreadyLinked:
		return "The files are already hard-linked to each other."
	case ReasonUserDeclined:
		return "The user said no."
	}
	return ""
}

// Decision is the outcome of an eligibility check. Reason is only set when
// Eligible is false.
type Decision struct {
	Eligible bool
	Reason   Reason
}

func eligible() Decision {
	return Decision{Eligible: true}
}

func notEligible(r Reason) Decision {
	return Decision{Reason: r}
}
