package dedup

import (
	"context"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/autobrr/hldup/pkg/fileid"
	"github.com/autobrr/hldup/pkg/hashcache"
	"github.com/autobrr/hldup/pkg/policy"
)

type Verifier interface {
	SameContent(left, right string) (bool, error)
}

type Policy interface {
	Check(left, right string) (policy.Decision, error)
}

type Replacer interface {
	Replace(left, right string) error
}

type Options struct {
	// DryRun reports eligible pairs without linking them.
	DryRun bool
}

// Link describes one pair that was (or in dry-run mode would have been)
// merged into a single inode.
type Link struct {
	Pair
	Size int64
	// Reclaimed is true when right's old inode had no other links.
	Reclaimed bool
}

// Failure is a pair that could not be compared, checked or linked.
type Failure struct {
	Pair
	Err error
}

type Result struct {
	Groups     int
	Pairs      int
	Mismatched int
	Ineligible int
	Failed     int
	Linked     int

	ReclaimedBytes uint64
	Links          []Link
	Failures       []Failure
}

func (r *Result) fail(p Pair, err error) {
	r.Failed++
	r.Failures = append(r.Failures, Failure{Pair: p, Err: err})
}

// Deduper walks duplicate groups pair by pair: verify, check eligibility,
// replace. A failing pair never stops the run.
type Deduper struct {
	verifier Verifier
	policy   Policy
	replacer Replacer
	opts     Options
	log      *logrus.Entry

	stat func(string) (fileid.Info, error)
}

func New(verifier Verifier, policy Policy, replacer Replacer, log *logrus.Entry, opts Options) *Deduper {
	return &Deduper{
		verifier: verifier,
		policy:   policy,
		replacer: replacer,
		opts:     opts,
		log:      log,
		stat:     fileid.Stat,
	}
}

// Run processes every duplicate group of cache. It returns early, between
// pairs, only when ctx is cancelled.
func (d *Deduper) Run(ctx context.Context, cache *hashcache.Cache) Result {
	var res Result

	groups := cache.Duplicates()
	d.log.Infof("Found %d possible duplicate groups", len(groups))

	for _, group := range groups {
		res.Groups++

		for _, pair := range Pairs(group) {
			if err := ctx.Err(); err != nil {
				d.log.WithError(err).Warn("Stopping before all pairs were processed")
				return res
			}

			res.Pairs++
			d.processPair(pair, &res)
		}
	}

	return res
}

func (d *Deduper) processPair(p Pair, res *Result) {
	log := d.log.WithFields(logrus.Fields{
		"left":  p.Left,
		"right": p.Right,
	})

	same, err := d.verifier.SameContent(p.Left, p.Right)
	if err != nil {
		log.WithError(err).Errorf("Error comparing files %q and %q", p.Left, p.Right)
		res.fail(p, err)
		return
	}
	if !same {
		log.Infof("Fingerprint collision, contents differ: %q and %q", p.Left, p.Right)
		res.Mismatched++
		return
	}

	log.Infof("Found candidates %q and %q", p.Left, p.Right)

	decision, err := d.policy.Check(p.Left, p.Right)
	if err != nil {
		log.WithError(err).Errorf("IO error checking candidacy of %q and %q", p.Left, p.Right)
		res.fail(p, err)
		return
	}
	if !decision.Eligible {
		log.Infof("Not linking %q and %q. Reason: %s", p.Left, p.Right, decision.Reason)
		res.Ineligible++
		return
	}

	link := Link{Pair: p}
	if info, err := d.stat(p.Right); err == nil {
		link.Size = info.Size
		link.Reclaimed = info.Nlink == 1
	} else {
		log.WithError(err).Debug("Could not stat right file before linking")
	}

	if d.opts.DryRun {
		log.Warn("Dry-run enabled, skipping link...")
	} else if err := d.replacer.Replace(p.Left, p.Right); err != nil {
		log.WithError(err).Errorf("Failed linking files %q and %q", p.Left, p.Right)
		res.fail(p, err)
		return
	} else {
		log.WithField("size", humanize.IBytes(uint64(link.Size))).
			Infof("Linked files %q and %q", p.Left, p.Right)
	}

	res.Linked++
	res.Links = append(res.Links, link)
	if link.Reclaimed {
		res.ReclaimedBytes += uint64(link.Size)
	}
}
