package cluster

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"os"
	"time"
)

// Conn frames JSON values over a stream connection, one value per line.
// A Conn is not safe for concurrent writers or concurrent readers.
type Conn struct {
	raw net.Conn
	w   *bufio.Writer
	enc *json.Encoder
	dec *json.Decoder
}

// NewConn wraps raw in a JSON frame codec.
func NewConn(raw net.Conn) *Conn {
	w := bufio.NewWriter(raw)
	return &Conn{
		raw: raw,
		w:   w,
		enc: json.NewEncoder(w),
		dec: json.NewDecoder(bufio.NewReader(raw)),
	}
}

// Write encodes v and flushes it to the peer.
func (c *Conn) Write(ctx context.Context, v any) error {
	stop := c.watch(ctx)
	defer stop()

	if err := c.enc.Encode(v); err != nil {
		return c.fail(ctx, err)
	}
	if err := c.w.Flush(); err != nil {
		return c.fail(ctx, err)
	}
	return nil
}

// Read decodes the next frame into v.
func (c *Conn) Read(ctx context.Context, v any) error {
	stop := c.watch(ctx)
	defer stop()

	if err := c.dec.Decode(v); err != nil {
		return c.fail(ctx, err)
	}
	return nil
}

// RemoteAddr reports the peer address.
func (c *Conn) RemoteAddr() string {
	return c.raw.RemoteAddr().String()
}

// SetDeadline bounds every pending and future read and write.
func (c *Conn) SetDeadline(t time.Time) error {
	return c.raw.SetDeadline(t)
}

// CloseWrite half-closes the link so the peer reads EOF once everything
// already flushed has been consumed.
func (c *Conn) CloseWrite() error {
	if hc, ok := c.raw.(interface{ CloseWrite() error }); ok {
		return hc.CloseWrite()
	}
	return nil
}

// Drain discards anything the peer still sends until it closes its side or
// timeout elapses.
func (c *Conn) Drain(timeout time.Duration) error {
	if err := c.raw.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return err
	}
	_, err := io.Copy(io.Discard, c.raw)
	return err
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.raw.Close()
}

// watch unblocks pending I/O when ctx is cancelled.
func (c *Conn) watch(ctx context.Context) func() bool {
	if ctx.Done() == nil {
		return func() bool { return true }
	}
	return context.AfterFunc(ctx, func() {
		_ = c.raw.SetDeadline(time.Now())
	})
}

func (c *Conn) fail(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, os.ErrDeadlineExceeded) {
		return ctxErr
	}
	return err
}
