package chat

import (
	"bufio"
	"context"
	"io"
)

const inputBuffer = 16

// Lines reads raw input lines from r into a bounded channel. The channel
// closes when r reaches EOF or the context is cancelled. A cancel during
// a blocking read takes effect after one more line arrives; callers
// reading stdin exit the process right after, so the window is harmless.
func Lines(ctx context.Context, r io.Reader) <-chan string {
	ch := make(chan string, inputBuffer)
	go func() {
		defer close(ch)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case ch <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}
