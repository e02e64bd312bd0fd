package cpm

import (
	"bufio"
	"context"
	"io"
	"sync"
)

// Console is the CP/M console device. Output goes straight to a writer;
// input is a queue fed by a reader or a raw terminal.
type Console struct {
	out  io.Writer
	keys chan byte

	eofOnce sync.Once
	eof     chan struct{}
}

func NewConsole(out io.Writer) *Console {
	return &Console{
		out:  out,
		keys: make(chan byte, 4096),
		eof:  make(chan struct{}),
	}
}

func (c *Console) WriteByte(b byte) error {
	_, err := c.out.Write([]byte{b})
	return err
}

// Feed queues one key. It blocks while the queue is full and reports
// false, dropping the key, once the input is closed.
func (c *Console) Feed(b byte) bool {
	select {
	case <-c.eof:
		return false
	default:
	}
	select {
	case c.keys <- b:
		return true
	case <-c.eof:
		return false
	}
}

// CloseInput marks the end of input. Queued keys can still be read.
func (c *Console) CloseInput() {
	c.eofOnce.Do(func() { close(c.eof) })
}

// FeedFrom queues everything r produces as keyboard input, turning LF
// into the CR a terminal would send, and closes the input at EOF. It
// gives up on r once CloseInput is called.
func (c *Console) FeedFrom(r io.Reader) {
	go func() {
		defer c.CloseInput()
		br := bufio.NewReader(r)
		for {
			b, err := br.ReadByte()
			if err != nil {
				return
			}
			if b == '\n' {
				b = '\r'
			}
			if !c.Feed(b) {
				return
			}
		}
	}()
}

func (c *Console) Pending() bool {
	return len(c.keys) > 0
}

// Poll returns a queued key without blocking.
func (c *Console) Poll() (byte, bool) {
	select {
	case b := <-c.keys:
		return b, true
	default:
		return 0, false
	}
}

// Read waits for a key. It returns io.EOF once the input is closed and
// drained.
func (c *Console) Read(ctx context.Context) (byte, error) {
	select {
	case b := <-c.keys:
		return b, nil
	case <-c.eof:
		if b, ok := c.Poll(); ok {
			return b, nil
		}
		return 0, io.EOF
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}
