package network

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/url"
	"sync"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
	fhttpcookiejar "github.com/bogdanfinn/fhttp/cookiejar"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"golang.org/x/time/rate"
)

var ErrRequestFailed = errors.New("request failed")

// StatusError is returned for responses outside the 2xx range.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.Code, e.URL)
}

func (e *StatusError) Unwrap() error {
	return ErrRequestFailed
}

// Options tune request pacing and failure handling.
type Options struct {
	TimeoutSeconds    int
	RequestsPerSecond float64
	Retries           int
	RetryDelay        time.Duration
}

func DefaultOptions() Options {
	return Options{
		TimeoutSeconds:    30,
		RequestsPerSecond: 2,
		Retries:           0,
		RetryDelay:        500 * time.Millisecond,
	}
}

type Client struct {
	newHTTP    func(proxy string) (tls_client.HttpClient, error)
	rotator    *Rotator
	limiter    *rate.Limiter
	retries    int
	retryDelay time.Duration
	userAgents []string

	// clients holds one tls-client per proxy URL ("" is the direct
	// connection). A client's proxy is fixed at construction so concurrent
	// requests never share a mutable proxy setting.
	clientsMu sync.Mutex
	clients   map[string]tls_client.HttpClient

	mu   sync.Mutex
	rand *rand.Rand
}

func NewClient(rotator *Rotator, opts Options) (*Client, error) {
	jar, _ := fhttpcookiejar.New(nil)

	timeout := opts.TimeoutSeconds
	if timeout <= 0 {
		timeout = DefaultOptions().TimeoutSeconds
	}

	newHTTP := func(proxy string) (tls_client.HttpClient, error) {
		options := []tls_client.HttpClientOption{
			tls_client.WithClientProfile(profiles.Chrome_120),
			tls_client.WithTimeoutSeconds(timeout),
			tls_client.WithCookieJar(jar),
		}
		if proxy != "" {
			options = append(options, tls_client.WithProxyUrl(proxy))
		}
		return tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
	}

	c := &Client{
		newHTTP:    newHTTP,
		rotator:    rotator,
		retryDelay: opts.RetryDelay,
		userAgents: append([]string{}, userAgents...),
		clients:    map[string]tls_client.HttpClient{},
		rand:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if opts.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	if opts.Retries > 0 {
		c.retries = opts.Retries
	}

	if _, err := c.httpFor(nil); err != nil {
		return nil, err
	}
	return c, nil
}

// Get fetches target and returns the response body. Transport failures,
// 429 and 5xx responses are retried up to the configured count with a
// doubling delay.
func (c *Client) Get(ctx context.Context, target string, headers map[string]string) ([]byte, error) {
	var lastErr error
	delay := c.retryDelay
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		body, err := c.get(ctx, target, headers)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !Retryable(err) {
			break
		}
	}
	return nil, lastErr
}

// Download implements resource.Downloader.
func (c *Client) Download(ctx context.Context, target string) ([]byte, error) {
	return c.Get(ctx, target, map[string]string{"accept": "*/*"})
}

func (c *Client) get(ctx context.Context, target string, headers map[string]string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := fhttp.NewRequestWithContext(ctx, fhttp.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	applyHeaders(req, headers)

	resp, err := c.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, URL: target}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrRequestFailed, err)
	}
	return body, nil
}

// Do sends req through the next available proxy, or directly when no
// rotator is configured. A 403 or 429 benches the proxy that carried req.
func (c *Client) Do(req *fhttp.Request) (*fhttp.Response, error) {
	var proxy *url.URL
	if c.rotator != nil {
		next, err := c.rotator.Next()
		if err != nil {
			return nil, err
		}
		proxy = next
	}

	httpClient, err := c.httpFor(proxy)
	if err != nil {
		return nil, err
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.randomUA())
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if proxy != nil {
		c.rotator.Report(proxy, resp.StatusCode)
	}
	return resp, nil
}

// Retryable reports whether a failed Get is worth another attempt.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code == fhttp.StatusTooManyRequests || statusErr.Code >= 500
	}
	return errors.Is(err, ErrRequestFailed)
}

func (c *Client) httpFor(proxy *url.URL) (tls_client.HttpClient, error) {
	key := ""
	if proxy != nil {
		key = proxy.String()
	}

	c.clientsMu.Lock()
	defer c.clientsMu.Unlock()
	if existing, ok := c.clients[key]; ok {
		return existing, nil
	}
	created, err := c.newHTTP(key)
	if err != nil {
		return nil, err
	}
	c.clients[key] = created
	return created, nil
}

func (c *Client) randomUA() string {
	if len(c.userAgents) == 0 {
		return ""
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userAgents[c.rand.Intn(len(c.userAgents))]
}

func applyHeaders(req *fhttp.Request, headers map[string]string) {
	if _, ok := headers["accept"]; !ok {
		req.Header.Set("accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	}
	if _, ok := headers["accept-language"]; !ok {
		req.Header.Set("accept-language", "en-US,en;q=0.9")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
}

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
}
