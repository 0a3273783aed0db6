package resource

import (
	"context"
	"io/fs"
	"log/slog"
	"path"
)

// Handle is a placeholder for an externally loadable resource. It is
// valid and usable immediately after Loader.Load returns, while the
// underlying bytes may still be in flight.
//
// The zero Handle is invalid.
type Handle struct {
	path string
	st   *state
}

type state struct {
	done chan struct{}
	data []byte
	err  error
}

// NewHandle creates a pending handle for path together with the resolve
// function a Loader implementation calls exactly once when the bytes (or
// the failure) are known.
func NewHandle(p string) (Handle, func(data []byte, err error)) {
	st := &state{done: make(chan struct{})}
	resolve := func(data []byte, err error) {
		st.data = data
		st.err = err
		close(st.done)
	}
	return Handle{path: p, st: st}, resolve
}

// Path returns the resolved path the handle was created for.
func (h Handle) Path() string { return h.path }

// Valid reports whether the handle refers to a resource at all.
func (h Handle) Valid() bool { return h.st != nil }

// Ready reports whether the resource bytes have arrived (or the load has
// failed), without blocking.
func (h Handle) Ready() bool {
	if h.st == nil {
		return false
	}
	select {
	case <-h.st.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the resource bytes are available, the load fails, or
// ctx is done, and returns the outcome.
func (h Handle) Wait(ctx context.Context) ([]byte, error) {
	if h.st == nil {
		return nil, fs.ErrInvalid
	}
	select {
	case <-h.st.done:
		return h.st.data, h.st.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (h Handle) String() string {
	if h.st == nil {
		return "resource://invalid"
	}
	return "resource://" + h.path
}

// Loader hands out handles for resource paths. Load must return
// immediately; implementations schedule the actual read themselves.
type Loader interface {
	Load(ctx context.Context, path string) Handle
}

// Resolve resolves a reference string against the directory containing
// the source document. Paths use slash separators as in io/fs.
//
//	Resolve("assets/protos/sword.proto.json", "../icons/foo.png")
//	// => "assets/icons/foo.png"
func Resolve(source, ref string) string {
	return path.Join(path.Dir(source), ref)
}

// FSLoader loads resources from an fs.FS, reading each requested file on
// its own goroutine so callers never block on I/O.
type FSLoader struct {
	fsys   fs.FS
	logger *slog.Logger
}

// FSOption configures an FSLoader.
type FSOption func(*FSLoader)

// WithLogger sets the structured logger used for failed reads.
func WithLogger(logger *slog.Logger) FSOption {
	return func(l *FSLoader) {
		l.logger = logger
	}
}

// NewFSLoader creates a Loader backed by fsys.
func NewFSLoader(fsys fs.FS, opts ...FSOption) *FSLoader {
	l := &FSLoader{fsys: fsys, logger: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns a handle for path and starts reading it in the
// background. Read failures surface through Handle.Wait and are logged.
func (l *FSLoader) Load(ctx context.Context, p string) Handle {
	h, resolve := NewHandle(p)

	go func() {
		data, err := fs.ReadFile(l.fsys, p)
		if err != nil {
			l.logger.Warn("resource read failed",
				"path", p,
				"error", err)
		}
		resolve(data, err)
	}()

	return h
}
