package trigger

import (
	"context"
	"fmt"
	"io"
	"os"
	"unicode"

	"golang.org/x/term"

	"github.com/conneroisu/cloudsync/internal/logging"
)

const (
	keyCtrlC = 0x03
	keyCtrlD = 0x04
)

// KeySource fires each time the trigger key is read from its input.
//
// When the input is a terminal it is switched to raw mode so single key
// presses arrive without Enter. Ctrl+C then no longer raises SIGINT, so
// the source reports it as ErrInterrupted.
type KeySource struct {
	in     io.Reader
	key    rune
	onRaw  func(raw bool)
	logger logging.Logger
}

// KeyOption configures a KeySource.
type KeyOption func(*KeySource)

// WithRawModeHook is called with true after the terminal enters raw mode
// and with false once it has been restored.
func WithRawModeHook(fn func(raw bool)) KeyOption {
	return func(s *KeySource) { s.onRaw = fn }
}

func NewKeySource(in io.Reader, key rune, logger logging.Logger, opts ...KeyOption) *KeySource {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	s := &KeySource{
		in:     in,
		key:    unicode.ToLower(key),
		logger: logger.WithComponent("trigger"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *KeySource) Name() string { return "manual-save" }

func (s *KeySource) Banner() string {
	return fmt.Sprintf("Press the key `%c` to save and upload to cloud", s.key)
}

type readResult struct {
	data []byte
	err  error
}

func (s *KeySource) Run(ctx context.Context, fire FireFunc) error {
	if restore := s.enterRawMode(ctx); restore != nil {
		defer restore()
	}

	// Reads block without honouring ctx, so they happen on their own
	// goroutine. It ends with the process once stdin closes.
	reads := make(chan readResult)
	go func() {
		buf := make([]byte, 64)
		for {
			n, err := s.in.Read(buf)
			chunk := append([]byte(nil), buf[:n]...)
			select {
			case reads <- readResult{data: chunk, err: err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case r := <-reads:
			for _, b := range r.data {
				switch {
				case b == keyCtrlC:
					return ErrInterrupted
				case b == keyCtrlD:
					return nil
				case unicode.ToLower(rune(b)) == s.key:
					fire(fmt.Sprintf("key %q", s.key))
				}
			}
			if r.err == io.EOF {
				return nil
			}
			if r.err != nil {
				return fmt.Errorf("failed to read input: %w", r.err)
			}
		}
	}
}

func (s *KeySource) enterRawMode(ctx context.Context) func() {
	f, ok := s.in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return nil
	}

	fd := int(f.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		s.logger.Warn(ctx, err, "Could not switch terminal to raw mode")
		return nil
	}
	if s.onRaw != nil {
		s.onRaw(true)
	}

	return func() {
		if err := term.Restore(fd, state); err != nil {
			s.logger.Warn(ctx, err, "Could not restore terminal")
		}
		if s.onRaw != nil {
			s.onRaw(false)
		}
	}
}
