// Package uplink buffers status reports and ships them to navlane-groundlink
// over HTTP. The link to the ground station drops routinely in flight, so
// reports queue in memory and the newest data wins when the buffer fills.
package uplink

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/navlane/navlane/monitor/internal/config"
	"github.com/navlane/navlane/pkg/wire"
)

const (
	backoffInitial    = 1 * time.Second
	backoffMax        = 60 * time.Second
	backoffMultiplier = 2.0
	sendTimeout       = 10 * time.Second

	// maxBatch bounds how many queued reports one POST carries.
	maxBatch = 64

	ingestPath = "/ingest/v1/reports"
)

// Uplink buffers wire.StatusReports and ships them to groundlink.
// Ship() is non-blocking; when the buffer is full the oldest report is
// evicted. Run() must be called in a goroutine to drain the buffer and
// handle retries.
type Uplink struct {
	cfg    config.MonitorConfig
	buf    chan wire.StatusReport
	client *http.Client
}

// New creates an Uplink using the given monitor config.
func New(cfg config.MonitorConfig) (*Uplink, error) {
	client, err := buildClient(cfg.GroundlinkAuth)
	if err != nil {
		return nil, fmt.Errorf("uplink: build http client: %w", err)
	}
	return &Uplink{
		cfg:    cfg,
		buf:    make(chan wire.StatusReport, cfg.BufferSize),
		client: client,
	}, nil
}

// Ship enqueues a report. If the buffer is full the oldest entry is evicted
// to make room.
func (u *Uplink) Ship(r wire.StatusReport) {
	select {
	case u.buf <- r:
	default:
		// Buffer full: drop the oldest report, keep the newest.
		select {
		case <-u.buf:
			slog.Warn("uplink: buffer full, evicted oldest report",
				"lane", r.LaneID, "buffer_cap", cap(u.buf))
		default:
		}
		u.buf <- r
	}
}

// Run drains the buffer, posting report batches to groundlink. It retries
// with exponential backoff when the endpoint is unreachable. Run blocks
// until ctx is cancelled.
func (u *Uplink) Run(ctx context.Context) {
	bo := newBackoff()

	for {
		batch := u.collect(ctx)
		if batch == nil {
			return
		}

		err := u.send(ctx, batch)
		if err == nil {
			bo.reset()
			continue
		}
		if ctx.Err() != nil {
			return
		}

		if isPermanent(err) {
			slog.Error("uplink: permanent send error, discarding batch",
				"reports", len(batch), "err", err)
			bo.reset()
			continue
		}

		// Transient: requeue what fits and back off before the next attempt.
		u.requeue(batch)
		wait := bo.next()
		slog.Warn("uplink: send failed, will retry",
			"endpoint", u.cfg.GroundlinkEndpoint, "err", err, "retry_in", wait)
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

// collect blocks for the first queued report, then greedily drains up to
// maxBatch. Returns nil when ctx is cancelled.
func (u *Uplink) collect(ctx context.Context) []wire.StatusReport {
	var batch []wire.StatusReport
	select {
	case <-ctx.Done():
		return nil
	case r := <-u.buf:
		batch = append(batch, r)
	}
	for len(batch) < maxBatch {
		select {
		case r := <-u.buf:
			batch = append(batch, r)
		default:
			return batch
		}
	}
	return batch
}

// send posts one batch to the groundlink ingest endpoint.
func (u *Uplink) send(ctx context.Context, batch []wire.StatusReport) error {
	body, err := json.Marshal(wire.ReportBatch{Reports: batch})
	if err != nil {
		return &permanentError{fmt.Errorf("marshal batch: %w", err)}
	}

	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(sendCtx, http.MethodPost,
		u.cfg.GroundlinkEndpoint+ingestPath, bytes.NewReader(body))
	if err != nil {
		return &permanentError{fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	auth := u.cfg.GroundlinkAuth
	switch auth.Mode {
	case "apikey":
		req.Header.Set(auth.Header, auth.Key())
	case "bearer":
		req.Header.Set("Authorization", "Bearer "+auth.Token())
	case "basic":
		req.SetBasicAuth(auth.Username, auth.Password())
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return fmt.Errorf("post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("unexpected status %d", resp.StatusCode)
		// Client errors mean the batch itself is bad or we are not
		// authorized; retrying the same bytes will not help. Overload and
		// timeout statuses stay retryable.
		if resp.StatusCode >= 400 && resp.StatusCode < 500 &&
			resp.StatusCode != http.StatusRequestTimeout &&
			resp.StatusCode != http.StatusTooManyRequests {
			return &permanentError{err}
		}
		return err
	}

	var ack wire.IngestResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&ack); err != nil {
		slog.Warn("uplink: unreadable ingest ack", "err", err)
		return nil
	}
	if ack.Accepted != len(batch) {
		slog.Warn("uplink: groundlink accepted partial batch",
			"sent", len(batch), "accepted", ack.Accepted, "message", ack.Message)
	} else {
		slog.Debug("uplink: batch delivered", "reports", len(batch))
	}
	return nil
}

// requeue puts unsent reports back in the buffer. Reports that no longer
// fit are lost; the next report cycle refreshes the picture anyway.
func (u *Uplink) requeue(batch []wire.StatusReport) {
	for _, r := range batch {
		select {
		case u.buf <- r:
		default:
			return
		}
	}
}

// permanentError marks a send failure that must not be retried.
type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

func isPermanent(err error) bool {
	_, ok := err.(*permanentError)
	return ok
}

// buildClient constructs the HTTP client for the groundlink auth config.
func buildClient(auth config.AuthConfig) (*http.Client, error) {
	tlsCfg := &tls.Config{}

	if auth.Mode == "mtls" {
		cert, err := tls.LoadX509KeyPair(auth.CertFile, auth.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("load client cert: %w", err)
		}
		tlsCfg.Certificates = []tls.Certificate{cert}

		if auth.CAFile != "" {
			caPEM, err := os.ReadFile(auth.CAFile)
			if err != nil {
				return nil, fmt.Errorf("read ca file: %w", err)
			}
			pool := x509.NewCertPool()
			if !pool.AppendCertsFromPEM(caPEM) {
				return nil, fmt.Errorf("no valid certs in ca file %q", auth.CAFile)
			}
			tlsCfg.RootCAs = pool
		}
	}

	return &http.Client{
		Transport: &http.Transport{TLSClientConfig: tlsCfg},
		Timeout:   sendTimeout,
	}, nil
}

// backoff implements truncated exponential backoff with jitter.
type backoff struct {
	current time.Duration
}

func newBackoff() *backoff {
	return &backoff{current: backoffInitial}
}

// next returns the current backoff duration and advances the internal state.
func (b *backoff) next() time.Duration {
	d := b.current
	// Apply ±25 % jitter.
	jitter := time.Duration(float64(b.current) * 0.25 * (rand.Float64()*2 - 1)) //nolint:gosec // not crypto
	d += jitter
	if d < 0 {
		d = 0
	}

	// Advance for next call.
	b.current = time.Duration(float64(b.current) * backoffMultiplier)
	if b.current > backoffMax {
		b.current = backoffMax
	}
	return d
}

func (b *backoff) reset() {
	b.current = backoffInitial
}
