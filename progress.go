// ABOUTME: Spinner shown on stderr while tenants are being queried.
// ABOUTME: Only runs when stderr is a terminal; otherwise every method is a no-op.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"golang.org/x/term"
)

type progress struct {
	s *spinner.Spinner
}

func newProgress() *progress {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return &progress{}
	}
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Prefix = "["
	return &progress{s: s}
}

func (p *progress) start(msg string) {
	if p == nil || p.s == nil {
		return
	}
	p.s.Suffix = "] " + msg
	p.s.Start()
}

// tenant reports the tenant being fetched; it is a progressFunc.
func (p *progress) tenant(n, total int, t Tenant) {
	if p == nil || p.s == nil {
		return
	}
	p.s.Lock()
	p.s.Suffix = fmt.Sprintf("] %d/%d tenants: %s...", n, total, orNA(t.Name))
	p.s.Unlock()
}

func (p *progress) stop() {
	if p == nil || p.s == nil {
		return
	}
	p.s.Stop()
}
