package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/hldup/pkg/runtime"
)

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	c := VersionCommand()
	c.SetOut(&out)
	c.SetArgs(nil)

	require.NoError(t, c.Execute())
	assert.Equal(t, "hldup version: "+runtime.Version+" commit: "+runtime.GitCommit+" built at: "+runtime.Timestamp+"\n", out.String())
}
