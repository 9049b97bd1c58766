package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jwalitptl/directory-admin/internal/store"
)

// stdinConfirmer asks y/N on the terminal. Anything but y or yes declines.
type stdinConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

func newStdinConfirmer(in io.Reader, out io.Writer) *stdinConfirmer {
	return &stdinConfirmer{in: bufio.NewReader(in), out: out}
}

func (c *stdinConfirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	fmt.Fprintf(c.out, "%s [y/N]: ", prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

var _ store.Confirmer = (*stdinConfirmer)(nil)

// termNotifier prints success messages. Failures come back as the command's
// error and are printed once by main.
type termNotifier struct {
	out io.Writer
}

func (n termNotifier) NotifySuccess(_ context.Context, msg string) {
	fmt.Fprintln(n.out, msg)
}

func (n termNotifier) NotifyError(context.Context, string) {}
