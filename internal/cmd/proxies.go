package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jimezsa/jobminer/internal/config"
	"github.com/jimezsa/jobminer/internal/network"
	"golang.org/x/sync/errgroup"
)

type ProxiesCmd struct {
	Check ProxyCheckCmd `cmd:"" help:"Check that each proxy can reach the job board."`
}

type ProxyCheckCmd struct {
	Target      string `help:"URL to request through each proxy (default: the configured job board)."`
	Timeout     int    `help:"Timeout in seconds." default:"15"`
	Concurrency int    `help:"Proxies checked in parallel." default:"4"`
	Proxies     string `help:"Comma-separated proxy URLs." env:"JOBMINER_PROXIES"`
}

type ProxyCheckResult struct {
	Proxy     string `json:"proxy"`
	Status    string `json:"status"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

// proxyProbe requests target through a single proxy.
type proxyProbe func(ctx context.Context, proxy string, target string) error

func (p *ProxyCheckCmd) Run(ctx *Context) error {
	proxies, err := config.LoadProxies(p.Proxies)
	if err != nil {
		return err
	}
	if len(proxies) == 0 {
		return fmt.Errorf("no proxies configured")
	}

	target := p.Target
	if target == "" {
		target = resolveBaseURL("", "", ctx.Config)
	}

	probe := func(runCtx context.Context, proxy string, target string) error {
		rotator, err := network.NewRotator([]string{proxy}, proxyBanDuration)
		if err != nil {
			return err
		}
		opts := network.DefaultOptions()
		opts.TimeoutSeconds = p.Timeout
		opts.RequestsPerSecond = 0
		client, err := network.NewClient(rotator, opts)
		if err != nil {
			return err
		}
		_, err = client.Get(runCtx, target, nil)
		return err
	}

	results := checkProxies(context.Background(), proxies, target, time.Duration(p.Timeout)*time.Second, p.Concurrency, probe)
	return writeProxyResults(ctx, results)
}

// checkProxies probes every proxy and returns results in input order.
func checkProxies(ctx context.Context, proxies []string, target string, timeout time.Duration, concurrency int, probe proxyProbe) []ProxyCheckResult {
	if concurrency < 1 {
		concurrency = 1
	}
	results := make([]ProxyCheckResult, len(proxies))

	g := new(errgroup.Group)
	g.SetLimit(concurrency)
	for i, proxy := range proxies {
		i, proxy := i, proxy
		g.Go(func() error {
			probeCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			start := time.Now()
			err := probe(probeCtx, proxy, target)
			results[i] = proxyResult(proxy, time.Since(start), err)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func proxyResult(proxy string, latency time.Duration, err error) ProxyCheckResult {
	result := ProxyCheckResult{Proxy: proxy, Status: "200", LatencyMS: latency.Milliseconds()}
	if err == nil {
		return result
	}

	var statusErr *network.StatusError
	if errors.As(err, &statusErr) {
		result.Status = strconv.Itoa(statusErr.Code)
		return result
	}
	result.Status = "error"
	result.LatencyMS = 0
	result.Error = err.Error()
	return result
}

func writeProxyResults(ctx *Context, results []ProxyCheckResult) error {
	if ctx.JSONOutput {
		enc := json.NewEncoder(ctx.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if ctx.PlainText {
		for _, res := range results {
			fmt.Fprintln(ctx.Out, strings.Join([]string{res.Proxy, res.Status, strconv.FormatInt(res.LatencyMS, 10), res.Error}, "\t"))
		}
		return nil
	}

	tw := tabwriter.NewWriter(ctx.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "proxy\tstatus\tlatency_ms\terror")
	for _, res := range results {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", res.Proxy, res.Status, res.LatencyMS, res.Error)
	}
	return tw.Flush()
}
