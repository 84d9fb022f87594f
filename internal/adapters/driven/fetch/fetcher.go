// Package fetch downloads web pages for URL mode.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/custodia-labs/docchat/internal/adapters/driven/retry"
	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
	"github.com/custodia-labs/docchat/internal/logger"
	"github.com/custodia-labs/docchat/internal/normalisers"
)

// Ensure Fetcher implements the interface.
var _ driven.Fetcher = (*Fetcher)(nil)

// Default configuration values.
const (
	DefaultTimeout   = 30 * time.Second
	DefaultMaxBytes  = 5 << 20
	DefaultUserAgent = "docchat/1.0 (+https://github.com/custodia-labs/docchat)"
)

// Config holds configuration for the fetcher.
type Config struct {
	// Timeout is the per-request timeout (default: 30s).
	Timeout time.Duration

	// MaxBytes caps the body size (default: 5 MiB).
	MaxBytes int64

	// UserAgent is sent with every request.
	UserAgent string

	// Retry bounds retries of transport failures and 5xx responses.
	Retry retry.Policy
}

// Fetcher performs HTTP GET requests.
type Fetcher struct {
	client    *http.Client
	maxBytes  int64
	userAgent string
	retry     retry.Policy
}

// New creates a fetcher.
func New(cfg Config) *Fetcher {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxBytes == 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	return &Fetcher{
		client:    &http.Client{Timeout: cfg.Timeout},
		maxBytes:  cfg.MaxBytes,
		userAgent: cfg.UserAgent,
		retry:     cfg.Retry,
	}
}

// Fetch downloads rawURL. Any failure, including a non-2xx status, is
// returned as a *domain.FetchError.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*domain.RawDocument, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, &domain.FetchError{URL: rawURL, Err: fmt.Errorf("%w: not an http(s) URL", domain.ErrInvalidInput)}
	}

	logger.Debug("fetching %s", rawURL)

	var doc *domain.RawDocument
	err = retry.Do(ctx, f.retry, "fetch "+u.Host, func() error {
		var getErr error
		doc, getErr = f.get(ctx, u.String())
		return getErr
	})
	if err != nil {
		var status *retry.StatusError
		if errors.As(err, &status) {
			return nil, &domain.FetchError{URL: rawURL, StatusCode: status.StatusCode}
		}
		return nil, &domain.FetchError{URL: rawURL, Err: err}
	}

	logger.Debug("fetched %s (%s, %d bytes)", rawURL, doc.MIMEType, len(doc.Content))
	return doc, nil
}

func (f *Fetcher) get(ctx context.Context, target string) (*domain.RawDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,text/plain,application/pdf;q=0.9,*/*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &retry.StatusError{Provider: "fetch", StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, retry.Permanent(fmt.Errorf("response exceeds %d bytes", f.maxBytes))
	}

	mimeType := normalisers.BaseMIMEType(resp.Header.Get("Content-Type"))
	if mimeType == "" {
		mimeType = normalisers.BaseMIMEType(http.DetectContentType(body))
	}

	return &domain.RawDocument{
		ID:       target,
		URI:      resp.Request.URL.String(),
		MIMEType: mimeType,
		Content:  body,
		Metadata: map[string]any{
			domain.MetadataURL: target,
		},
	}, nil
}
