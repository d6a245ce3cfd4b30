package nativemsg

import (
	"bufio"
	"context"
	"io"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/router"
	"github.com/quantumauth-io/quantum-go-utils/log"
	"golang.org/x/sync/errgroup"
)

// Dispatcher turns one raw request into one response.
type Dispatcher interface {
	Dispatch(ctx context.Context, raw []byte) router.Response
}

type Host struct {
	dispatcher Dispatcher
	inflight   int
}

type Option func(*Host)

// WithInflight lets up to n requests run at once. Responses may then be
// written out of order and callers must correlate them by id.
func WithInflight(n int) Option {
	return func(h *Host) {
		if n > 0 {
			h.inflight = n
		}
	}
}

func NewHost(d Dispatcher, opts ...Option) *Host {
	h := &Host{dispatcher: d, inflight: 1}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Serve reads frames from in until EOF or ctx is done and writes one response
// frame per request to out. It returns nil on a clean EOF.
func (h *Host) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	reader := bufio.NewReaderSize(in, bufferSize)
	writer := bufio.NewWriterSize(out, bufferSize)
	var writeMu sync.Mutex

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(h.inflight)

	write := func(resp router.Response) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return WriteFrame(writer, resp)
	}

	var readErr error
	for {
		if egCtx.Err() != nil {
			break
		}
		payload, err := ReadFrame(reader)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				readErr = err
			}
			break
		}

		eg.Go(func() error {
			if err := write(h.dispatcher.Dispatch(egCtx, payload)); err != nil {
				return errors.Wrap(err, "write response")
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		log.Error("nativemsg: host stopped", "error", err)
		return err
	}
	if readErr != nil {
		log.Error("nativemsg: read failed", "error", readErr)
		return readErr
	}
	return nil
}
