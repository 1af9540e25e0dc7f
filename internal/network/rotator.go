package network

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
)

var ErrNoProxies = errors.New("no proxies available")

type proxyEntry struct {
	url         *url.URL
	bannedUntil time.Time
}

// Rotator hands out proxies round-robin. A proxy answered with 403 or 429 is
// benched for banDuration.
type Rotator struct {
	mu          sync.Mutex
	entries     []*proxyEntry
	next        int
	banDuration time.Duration
	now         func() time.Time
}

func NewRotator(raw []string, banDuration time.Duration) (*Rotator, error) {
	r := &Rotator{banDuration: banDuration, now: time.Now}
	for _, value := range raw {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		u, err := url.Parse(value)
		if err != nil {
			return nil, fmt.Errorf("proxy %q: %w", value, err)
		}
		if u.Host == "" {
			return nil, fmt.Errorf("proxy %q: missing host", value)
		}
		r.entries = append(r.entries, &proxyEntry{url: u})
	}
	return r, nil
}

// Len returns the number of configured proxies, banned or not.
func (r *Rotator) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Next returns the next proxy that is not benched.
func (r *Rotator) Next() (*url.URL, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for range r.entries {
		entry := r.entries[r.next]
		r.next = (r.next + 1) % len(r.entries)
		if !now.Before(entry.bannedUntil) {
			return entry.url, nil
		}
	}
	return nil, ErrNoProxies
}

// Report benches proxy when status signals the site is blocking it.
func (r *Rotator) Report(proxy *url.URL, status int) {
	if proxy == nil || (status != fhttp.StatusForbidden && status != fhttp.StatusTooManyRequests) {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, entry := range r.entries {
		if entry.url.String() == proxy.String() {
			entry.bannedUntil = r.now().Add(r.banDuration)
		}
	}
}
