// Package fetch provides the HTTP+HTML fetch collaborator used by site
// plugins: a cookie/UA-aware client with a simple retry policy that parses
// responses into goquery documents.
package fetch

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"os"
	"strings"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/brogergvhs/noveld/internal/ui"
)

// Options configures a Client.
type Options struct {
	Timeout    time.Duration
	UserAgent  string
	Cookie     string
	CookieFile string

	// ResponseHeaderLimit bounds the bytes spent on a response's headers.
	// Some sites emit abnormally many headers; plugins raise this per
	// extraction via WithResponseHeaderLimit instead of mutating any
	// global state. Zero means the net/http default.
	ResponseHeaderLimit int64

	// Transport overrides the default transport. Injected transports are
	// used as-is: no Cloudflare bypass wrapping, no header limit.
	Transport http.RoundTripper

	Logger *ui.Logger
}

// Client fetches and parses pages.
type Client struct {
	hc   *http.Client
	opts Options
	log  *ui.Logger
}

// New builds a Client. The default transport is wrapped with the
// Cloudflare bypass round tripper since the supported sites sit behind it.
func New(opts Options) (*Client, error) {
	jar, _ := cookiejar.New(nil)

	log := opts.Logger
	if log == nil {
		log = ui.NewLogger(false)
	}

	var baseTransport http.RoundTripper
	if opts.Transport != nil {
		baseTransport = opts.Transport
	} else {
		baseTransport = cloudflarebp.AddCloudFlareByPass(&http.Transport{
			Proxy:                  http.ProxyFromEnvironment,
			MaxIdleConns:           100,
			MaxConnsPerHost:        100,
			MaxIdleConnsPerHost:    100,
			ForceAttemptHTTP2:      true,
			MaxResponseHeaderBytes: opts.ResponseHeaderLimit,
		})
	}

	hc := &http.Client{
		Timeout: opts.Timeout,
		Transport: roundTripper{
			base:         baseTransport,
			ua:           opts.UserAgent,
			cookieHeader: joinCookies(opts.Cookie, opts.CookieFile),
			log:          log,
		},
		Jar: jar,
	}

	log.Debugf("HTTP client initialized (timeout=%s, ua=%q, headerLimit=%d)\n",
		opts.Timeout, opts.UserAgent, opts.ResponseHeaderLimit)

	return &Client{hc: hc, opts: opts, log: log}, nil
}

// Logger returns the client's logger, never nil.
func (c *Client) Logger() *ui.Logger {
	return c.log
}

// WithResponseHeaderLimit derives a client whose transport accepts up to n
// bytes of response headers. The receiver is left untouched, so concurrent
// extractions never observe each other's limits.
func (c *Client) WithResponseHeaderLimit(n int64) *Client {
	if c.opts.ResponseHeaderLimit == n || c.opts.Transport != nil {
		return c
	}

	opts := c.opts
	opts.ResponseHeaderLimit = n

	derived, err := New(opts)
	if err != nil {
		return c
	}
	return derived
}

type roundTripper struct {
	base         http.RoundTripper
	ua           string
	cookieHeader string
	log          *ui.Logger
}

func (rt roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if rt.ua != "" {
		req.Header.Set("User-Agent", rt.ua)
	}

	if rt.cookieHeader != "" {
		if req.Header.Get("Cookie") == "" {
			req.Header.Set("Cookie", rt.cookieHeader)
		}
	}

	if rt.log != nil {
		rt.log.Debugf("HTTP %s %s\n", req.Method, req.URL.String())
	}

	return rt.base.RoundTrip(req)
}

func joinCookies(inline, file string) string {
	s := strings.TrimSpace(inline)
	if file != "" {
		if b, err := os.ReadFile(file); err == nil {
			// first non-empty line
			sc := bufio.NewScanner(strings.NewReader(string(b)))
			for sc.Scan() {
				line := strings.TrimSpace(sc.Text())
				if line != "" {
					if s == "" {
						s = line
					} else {
						s = s + "; " + line
					}
					break
				}
			}
		}
	}

	return s
}

// Document fetches a page and parses it.
func (c *Client) Document(ctx context.Context, target string) (*goquery.Document, error) {
	resp, err := c.Get(ctx, target)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	return goquery.NewDocumentFromReader(resp.Body)
}

// Get fetches a URL with the retry policy and fails on error statuses.
// The caller owns the response body.
func (c *Client) Get(ctx context.Context, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}

	resp, err := doWithRetry(c.hc, req, 3, 500*time.Millisecond)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, target)
	}

	return resp, nil
}

// doWithRetry executes the request with a simple retry policy: server
// errors and transport errors are retried with linear backoff.
func doWithRetry(c *http.Client, req *http.Request, attempts int, backoff time.Duration) (*http.Response, error) {
	var resp *http.Response
	var err error

	for i := 1; i <= attempts; i++ {
		resp, err = c.Do(req)
		if err == nil && resp.StatusCode >= 200 && resp.StatusCode < 500 {
			return resp, nil
		}

		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}

		time.Sleep(backoff * time.Duration(i))
	}

	if err == nil && resp != nil {
		return resp, fmt.Errorf("HTTP %d after %d attempts", resp.StatusCode, attempts)
	}

	return nil, err
}

// PickUserAgent returns the override when set, else a browser UA.
func PickUserAgent(override string) string {
	if override != "" {
		return override
	}

	return "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
}
