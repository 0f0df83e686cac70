//go:build !windows

package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/hldup/pkg/fileid"
)

type fakePrompter struct {
	answer   bool
	messages []string
}

func (f *fakePrompter) Confirm(msg string) bool {
	f.messages = append(f.messages, msg)
	return f.answer
}

func pair(t *testing.T, link bool) (string, string) {
	t.Helper()
	dir := t.TempDir()
	left := filepath.Join(dir, "left")
	right := filepath.Join(dir, "right")

	require.NoError(t, os.WriteFile(left, []byte("same"), 0o644))
	if link {
		require.NoError(t, os.Link(left, right))
	} else {
		require.NoError(t, os.WriteFile(right, []byte("same"), 0o644))
	}
	return left, right
}

func TestCheck_Modes(t *testing.T) {
	tests := []struct {
		name           string
		mode           Mode
		answer         bool
		expected       Decision
		expectPrompted bool
	}{
		{"always_yes", ModeAlwaysYes, false, Decision{Eligible: true}, false},
		{"always_no", ModeAlwaysNo, true, Decision{Reason: Reason{Kind: ReasonUserDeclined}}, false},
		{"prompt_yes", ModePrompt, true, Decision{Eligible: true}, true},
		{"prompt_no", ModePrompt, false, Decision{Reason: Reason{Kind: ReasonUserDeclined}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			left, right := pair(t, false)
			prompter := &fakePrompter{answer: tt.answer}

			d, err := New(tt.mode, prompter).Check(left, right)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, d)

			if tt.expectPrompted {
				require.Len(t, prompter.messages, 1)
				assert.Contains(t, prompter.messages[0], left)
				assert.Contains(t, prompter.messages[0], right)
			} else {
				assert.Empty(t, prompter.messages)
			}
		})
	}
}

func TestCheck_AlreadyLinkedInEveryMode(t *testing.T) {
	for _, mode := range []Mode{ModePrompt, ModeAlwaysYes, ModeAlwaysNo} {
		left, right := pair(t, true)
		prompter := &fakePrompter{answer: true}

		d, err := New(mode, prompter).Check(left, right)
		require.NoError(t, err)
		assert.False(t, d.Eligible)
		assert.Equal(t, ReasonAlreadyLinked, d.Reason.Kind, "mode %s", mode)
		assert.Empty(t, prompter.messages)
	}
}

func TestCheck_DifferentFilesystems(t *testing.T) {
	devices := map[string]fileid.Info{
		"/mnt/a/file": {ID: fileid.FileID{Device: 41, Inode: 7}},
		"/mnt/b/file": {ID: fileid.FileID{Device: 42, Inode: 7}},
	}

	p := New(ModeAlwaysYes, nil)
	p.stat = func(path string) (fileid.Info, error) {
		return devices[path], nil
	}

	d, err := p.Check("/mnt/a/file", "/mnt/b/file")
	require.NoError(t, err)
	assert.False(t, d.Eligible)
	assert.Equal(t, DifferentFilesystems(41, 42), d.Reason)
	assert.Contains(t, d.Reason.String(), "41")
	assert.Contains(t, d.Reason.String(), "42")
}

func TestCheck_StatError(t *testing.T) {
	left, _ := pair(t, false)

	_, err := New(ModeAlwaysYes, nil).Check(left, filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func TestCheck_PromptWithoutPrompterDeclines(t *testing.T) {
	left, right := pair(t, false)

	d, err := New(ModePrompt, nil).Check(left, right)
	require.NoError(t, err)
	assert.Equal(t, ReasonUserDeclined, d.Reason.Kind)
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in       string
		expected Mode
		wantErr  bool
	}{
		{"", ModePrompt, false},
		{"prompt", ModePrompt, false},
		{"YES", ModeAlwaysYes, false},
		{"default-yes", ModeAlwaysYes, false},
		{"no", ModeAlwaysNo, false},
		{"default-no", ModeAlwaysNo, false},
		{"maybe", ModePrompt, true},
	}

	for _, tt := range tests {
		m, err := ParseMode(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.expected, m, tt.in)
	}
}

func TestReason_String(t *testing.T) {
	assert.Equal(t, "The files are already hard-linked to each other.", Reason{Kind: ReasonAlreadyLinked}.String())
	assert.Equal(t, "The user said no.", Reason{Kind: ReasonUserDeclined}.String())
	assert.Empty(t, Reason{}.String())
}
