package dedup

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/hldup/pkg/fileid"
	"github.com/autobrr/hldup/pkg/fingerprint"
	"github.com/autobrr/hldup/pkg/hashcache"
	"github.com/autobrr/hldup/pkg/policy"
)

type fakeVerifier struct {
	results map[Pair]bool
	errs    map[Pair]error
	calls   []Pair
}

func (f *fakeVerifier) SameContent(left, right string) (bool, error) {
	p := Pair{left, right}
	f.calls = append(f.calls, p)
	if err := f.errs[p]; err != nil {
		return false, err
	}
	return f.results[p], nil
}

type fakePolicy struct {
	decisions map[Pair]policy.Decision
	errs      map[Pair]error
}

func (f *fakePolicy) Check(left, right string) (policy.Decision, error) {
	p := Pair{left, right}
	if err := f.errs[p]; err != nil {
		return policy.Decision{}, err
	}
	if d, ok := f.decisions[p]; ok {
		return d, nil
	}
	return policy.Decision{Eligible: true}, nil
}

type fakeReplacer struct {
	errs  map[Pair]error
	calls []Pair
}

func (f *fakeReplacer) Replace(left, right string) error {
	p := Pair{left, right}
	f.calls = append(f.calls, p)
	return f.errs[p]
}

func newTestDeduper(v Verifier, p Policy, r Replacer, opts Options) (*Deduper, *test.Hook) {
	l, hook := test.NewNullLogger()
	l.SetLevel(logrus.TraceLevel)

	d := New(v, p, r, logrus.NewEntry(l), opts)
	d.stat = func(string) (fileid.Info, error) {
		return fileid.Info{Size: 100, Nlink: 1}, nil
	}
	return d, hook
}

func cacheWith(groups ...[]string) *hashcache.Cache {
	c := hashcache.New()
	for i, group := range groups {
		for _, p := range group {
			c.Insert(p, fingerprint.Fingerprint{Hash: uint64(i), Size: 100})
		}
	}
	return c
}

func TestRun_ContinuesPastFailures(t *testing.T) {
	ab := Pair{"/a", "/b"}
	ac := Pair{"/a", "/c"}
	bc := Pair{"/b", "/c"}
	de := Pair{"/d", "/e"}
	fg := Pair{"/f", "/g"}
	hi := Pair{"/h", "/i"}

	v := &fakeVerifier{
		results: map[Pair]bool{ab: true, ac: false, de: true, fg: true, hi: true},
		errs:    map[Pair]error{bc: errors.New("read failed")},
	}
	p := &fakePolicy{
		decisions: map[Pair]policy.Decision{
			de: {Reason: policy.Reason{Kind: policy.ReasonAlreadyLinked}},
		},
		errs: map[Pair]error{hi: errors.New("stat failed")},
	}
	r := &fakeReplacer{errs: map[Pair]error{fg: errors.New("link failed")}}

	d, hook := newTestDeduper(v, p, r, Options{})
	res := d.Run(context.Background(), cacheWith(
		[]string{"/c", "/b", "/a"},
		[]string{"/d", "/e"},
		[]string{"/f", "/g"},
		[]string{"/h", "/i"},
		[]string{"/single"},
	))

	assert.Equal(t, 4, res.Groups)
	assert.Equal(t, 6, res.Pairs)
	assert.Equal(t, 1, res.Mismatched)
	assert.Equal(t, 1, res.Ineligible)
	assert.Equal(t, 3, res.Failed)
	assert.Equal(t, 1, res.Linked)
	assert.Equal(t, uint64(100), res.ReclaimedBytes)
	require.Len(t, res.Links, 1)
	assert.Equal(t, ab, res.Links[0].Pair)

	require.Len(t, res.Failures, 3)
	var failed []Pair
	for _, f := range res.Failures {
		assert.Error(t, f.Err)
		failed = append(failed, f.Pair)
	}
	assert.ElementsMatch(t, []Pair{bc, fg, hi}, failed)

	assert.ElementsMatch(t, []Pair{ab, fg}, r.calls)
	assert.Len(t, v.calls, 6)

	var errorsLogged int
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.ErrorLevel {
			errorsLogged++
		}
	}
	assert.Equal(t, 3, errorsLogged)
}

func TestRun_DryRunDoesNotReplace(t *testing.T) {
	ab := Pair{"/a", "/b"}
	v := &fakeVerifier{results: map[Pair]bool{ab: true}}
	r := &fakeReplacer{}

	d, _ := newTestDeduper(v, &fakePolicy{}, r, Options{DryRun: true})
	res := d.Run(context.Background(), cacheWith([]string{"/a", "/b"}))

	assert.Empty(t, r.calls)
	assert.Equal(t, 1, res.Linked)
}

func TestRun_SharedInodeNotReclaimed(t *testing.T) {
	ab := Pair{"/a", "/b"}
	v := &fakeVerifier{results: map[Pair]bool{ab: true}}

	d, _ := newTestDeduper(v, &fakePolicy{}, &fakeReplacer{}, Options{})
	d.stat = func(string) (fileid.Info, error) {
		return fileid.Info{Size: 100, Nlink: 3}, nil
	}

	res := d.Run(context.Background(), cacheWith([]string{"/a", "/b"}))
	assert.Equal(t, 1, res.Linked)
	assert.Zero(t, res.ReclaimedBytes)
	assert.False(t, res.Links[0].Reclaimed)
}

func TestRun_Cancelled(t *testing.T) {
	v := &fakeVerifier{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d, _ := newTestDeduper(v, &fakePolicy{}, &fakeReplacer{}, Options{})
	res := d.Run(ctx, cacheWith([]string{"/a", "/b"}))

	assert.Zero(t, res.Pairs)
	assert.Empty(t, v.calls)
}
