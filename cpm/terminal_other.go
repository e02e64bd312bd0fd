//go:build !unix

package cpm

import (
	"os"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/term"
)

// Terminal puts a console window in raw mode and feeds its keys into a
// Console. Reads block, so Stop returns without waiting for the reader.
type Terminal struct {
	console      *Console
	file         *os.File
	fd           int
	stopCh       chan struct{}
	stopped      sync.Once
	oldTermState *term.State
}

func NewTerminal(console *Console, f *os.File) *Terminal {
	return &Terminal{
		console: console,
		file:    f,
		fd:      int(f.Fd()),
		stopCh:  make(chan struct{}),
	}
}

func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func (t *Terminal) Start() error {
	oldState, err := term.MakeRaw(t.fd)
	if err != nil {
		return errors.Wrap(err, "terminal: raw mode")
	}
	t.oldTermState = oldState

	go func() {
		buf := make([]byte, 1)
		for {
			select {
			case <-t.stopCh:
				return
			default:
			}
			n, err := t.file.Read(buf)
			if err != nil || n == 0 {
				t.console.CloseInput()
				return
			}
			b := buf[0]
			if b == 0x7F {
				b = 0x08
			}
			t.console.Feed(b)
		}
	}()
	return nil
}

func (t *Terminal) Stop() {
	t.stopped.Do(func() {
		close(t.stopCh)
	})
	if t.oldTermState != nil {
		_ = term.Restore(t.fd, t.oldTermState)
		t.oldTermState = nil
	}
}
