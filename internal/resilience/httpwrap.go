package resilience

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// StatusError is returned when every attempt ended in a retryable status.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("resilience: upstream responded %s", e.Status)
}

// HTTPClient sends requests through a Breaker, retrying transport errors,
// 429 and 5xx responses with exponential backoff. Timeout caps the whole
// exchange, including reading the returned body.
type HTTPClient struct {
	Client      *http.Client
	Breaker     *Breaker
	BaseBackoff time.Duration
	MaxAttempts int
	Jitter      float64
	Timeout     time.Duration
}

func (cl HTTPClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if cl.Client == nil {
		return nil, errors.New("resilience: http client not configured")
	}
	body, err := snapshotBody(req)
	if err != nil {
		return nil, fmt.Errorf("resilience: read request body: %w", err)
	}

	cancel := context.CancelFunc(func() {})
	if cl.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, cl.Timeout)
	}
	resp, err := cl.attempt(ctx, req, body)
	if err != nil {
		cancel()
		return nil, err
	}
	resp.Body = &releaseOnClose{ReadCloser: resp.Body, release: cancel}
	return resp, nil
}

func (cl HTTPClient) attempt(ctx context.Context, req *http.Request, body []byte) (*http.Response, error) {
	attempts := max(cl.MaxAttempts, 1)
	var lastErr error
	for n := 1; n <= attempts; n++ {
		if !cl.Breaker.Allow(ctx) {
			return nil, ErrOpenCircuit
		}

		try := req.Clone(ctx)
		if body != nil {
			try.Body = io.NopCloser(bytes.NewReader(body))
			try.ContentLength = int64(len(body))
		}
		resp, err := cl.Client.Do(try)

		var wait time.Duration
		switch {
		case err != nil:
			lastErr = err
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			lastErr = &StatusError{Code: resp.StatusCode, Status: resp.Status}
			wait = retryAfter(resp.Header.Get("Retry-After"))
			discard(resp)
		default:
			cl.Breaker.Report(ctx, true)
			return resp, nil
		}
		cl.Breaker.Report(ctx, false)

		if n == attempts {
			break
		}
		if wait <= 0 {
			wait = Backoff(cl.BaseBackoff, n, cl.Jitter)
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, errors.Join(lastErr, ctx.Err())
		case <-t.C:
		}
	}
	return nil, lastErr
}

// snapshotBody drains req.Body so every attempt can resend it.
func snapshotBody(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	defer req.Body.Close()
	return io.ReadAll(req.Body)
}

// retryAfter parses a delay-seconds Retry-After value, capped at 30s.
func retryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	return min(time.Duration(secs)*time.Second, 30*time.Second)
}

func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}

type releaseOnClose struct {
	io.ReadCloser
	release context.CancelFunc
}

func (r *releaseOnClose) Close() error {
	err := r.ReadCloser.Close()
	r.release()
	return err
}
