package cmd

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/autobrr/hldup/pkg/policy"
)

// modeValue is a boolean flag that stores its mode into a shared target when
// set, so the last mode flag on the command line wins.
type modeValue struct {
	target *string
	mode   policy.Mode
}

func (m *modeValue) String() string {
	if m.target == nil {
		return "false"
	}
	return strconv.FormatBool(*m.target == m.mode.String())
}

func (m *modeValue) Set(s string) error {
	on, err := strconv.ParseBool(s)
	if err != nil {
		return errors.Wrapf(err, "invalid value %q", s)
	}
	if on {
		*m.target = m.mode.String()
	}
	return nil
}

func (m *modeValue) Type() string {
	return "bool"
}

func (m *modeValue) IsBoolFlag() bool {
	return true
}

// AddModeFlags registers --prompt, --default-yes and --default-no on fs.
func AddModeFlags(fs *pflag.FlagSet, target *string) {
	for _, f := range []struct {
		name  string
		mode  policy.Mode
		usage string
	}{
		{"prompt", policy.ModePrompt, "Ask before linking each pair (default)"},
		{"default-yes", policy.ModeAlwaysYes, "Link every eligible pair without asking"},
		{"default-no", policy.ModeAlwaysNo, "Never link, only report candidates"},
	} {
		flag := fs.VarPF(&modeValue{target: target, mode: f.mode}, f.name, "", f.usage)
		flag.NoOptDefVal = "true"
	}
}
