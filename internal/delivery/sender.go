package delivery

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

// Sender delivers one serialized batch (a JSON array of events) to the
// collector. Implementations own transport-level policy: auth, compression,
// and any retrying beyond the worker's tick cadence.
type Sender interface {
	Send(ctx context.Context, token string, batch []byte) error
}

// HTTPSender posts batches to a collector endpoint. A nil Client falls back
// to http.DefaultClient; callers wanting timeouts supply their own.
type HTTPSender struct {
	URL    string
	Client *http.Client
}

// Send posts the batch. Any non-2xx response is an error, so the worker
// keeps the batch spooled.
func (s *HTTPSender) Send(ctx context.Context, token string, batch []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(batch))
	if err != nil {
		return fmt.Errorf("build collector request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Spool-Batch", token)

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("post batch: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("collector returned %s", resp.Status)
	}
	return nil
}
