package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
)

var yesResponses = map[string]struct{}{
	"y":   {},
	"Y":   {},
	"yes": {},
	"Yes": {},
	"YES": {},
}

// Console asks yes/no questions on a line-oriented terminal.
type Console struct {
	mu  sync.Mutex
	in  *bufio.Reader
	out io.Writer
}

func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// Confirm writes msg with a yes/no cue and reads one line. Only an explicit
// yes answers true; empty input, EOF and read errors answer false.
func (c *Console) Confirm(msg string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(c.out, "%s [y/N]\n", msg)

	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}

	_, yes := yesResponses[strings.TrimSpace(line)]
	return yes
}
