package hal

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

const (
	DefaultWidth  = 320
	DefaultHeight = 320
)

// Options sizes the host HAL.
type Options struct {
	Width  int
	Height int

	// FixedDelta, when non-zero, replaces wall-clock frame deltas.
	FixedDelta time.Duration

	// Log receives logger output. Defaults to stdout.
	Log io.Writer
}

type hostHAL struct {
	logger *hostLogger
	fb     *hostFramebuffer
	kbd    *hostKeyboard
	clk    *hostClock
}

// New returns a host HAL implementation.
func New(opts Options) HAL {
	return newHost(opts)
}

func newHost(opts Options) *hostHAL {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	if opts.Log == nil {
		opts.Log = os.Stdout
	}
	return &hostHAL{
		logger: &hostLogger{w: opts.Log},
		fb:     newHostFramebuffer(opts.Width, opts.Height),
		kbd:    newHostKeyboard(),
		clk:    newHostClock(opts.FixedDelta),
	}
}

func (h *hostHAL) Logger() Logger   { return h.logger }
func (h *hostHAL) Display() Display { return hostDisplay{fb: h.fb} }
func (h *hostHAL) Input() Input     { return hostInput{kbd: h.kbd} }
func (h *hostHAL) Clock() Clock     { return h.clk }

type hostDisplay struct {
	fb *hostFramebuffer
}

func (d hostDisplay) Framebuffer() Framebuffer { return d.fb }

type hostInput struct {
	kbd *hostKeyboard
}

func (in hostInput) Keyboard() Keyboard { return in.kbd }

type hostLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}
