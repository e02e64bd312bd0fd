//go:build unix

package cpm

import (
	"os"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// Terminal puts a TTY in raw mode and feeds its keys into a Console.
type Terminal struct {
	console      *Console
	fd           int
	stopCh       chan struct{}
	done         chan struct{}
	stopped      sync.Once
	nonblockSet  bool
	oldTermState *term.State
}

func NewTerminal(console *Console, f *os.File) *Terminal {
	return &Terminal{
		console: console,
		fd:      int(f.Fd()),
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
	}
}

func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Start switches to raw mode and begins reading. Call Stop to restore the
// terminal.
func (t *Terminal) Start() error {
	oldState, err := term.MakeRaw(t.fd)
	if err != nil {
		close(t.done)
		return errors.Wrap(err, "terminal: raw mode")
	}
	t.oldTermState = oldState

	if err := unix.SetNonblock(t.fd, true); err != nil {
		_ = term.Restore(t.fd, t.oldTermState)
		t.oldTermState = nil
		close(t.done)
		return errors.Wrap(err, "terminal: nonblocking stdin")
	}
	t.nonblockSet = true

	go t.readLoop()
	return nil
}

func (t *Terminal) readLoop() {
	defer close(t.done)
	buf := make([]byte, 1)
	fds := []unix.PollFd{{Fd: int32(t.fd), Events: unix.POLLIN}}

	for {
		select {
		case <-t.stopCh:
			return
		default:
		}

		// short timeout so stopCh is noticed
		ready, err := unix.Poll(fds, 5)
		if err == unix.EINTR || ready == 0 {
			continue
		}
		if err != nil {
			return
		}

		n, err := unix.Read(t.fd, buf)
		if err == unix.EAGAIN || err == unix.EINTR {
			continue
		}
		if err != nil || n == 0 {
			t.console.CloseInput()
			return
		}
		b := buf[0]
		// Backspace arrives as DEL
		if b == 0x7F {
			b = 0x08
		}
		t.console.Feed(b)
	}
}

func (t *Terminal) Stop() {
	t.stopped.Do(func() {
		close(t.stopCh)
	})
	<-t.done
	if t.nonblockSet {
		_ = unix.SetNonblock(t.fd, false)
		t.nonblockSet = false
	}
	if t.oldTermState != nil {
		_ = term.Restore(t.fd, t.oldTermState)
		t.oldTermState = nil
	}
}
