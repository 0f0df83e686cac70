package prompt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsole_Confirm(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"y", "y\n", true},
		{"Y", "Y\n", true},
		{"yes", "yes\n", true},
		{"Yes", "Yes\n", true},
		{"YES", "YES\n", true},
		{"padded", "  yes \r\n", true},
		{"no_trailing_newline", "y", true},
		{"mixed_case", "yEs\n", false},
		{"n", "n\n", false},
		{"empty_line", "\n", false},
		{"eof", "", false},
		{"other", "sure\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			c := NewConsole(strings.NewReader(tt.input), &out)

			assert.Equal(t, tt.expected, c.Confirm("Link a and b?"))
			assert.Equal(t, "Link a and b? [y/N]\n", out.String())
		})
	}
}

func TestConsole_ConfirmReadsOneLinePerCall(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(strings.NewReader("y\nn\nyes\n"), &out)

	assert.True(t, c.Confirm("first"))
	assert.False(t, c.Confirm("second"))
	assert.True(t, c.Confirm("third"))
	assert.False(t, c.Confirm("fourth"))
}
