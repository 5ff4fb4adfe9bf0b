package infinitecraft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http/cookiejar"
	"time"

	"infinite-craft/lib/paircache"
	"infinite-craft/lib/ratelimit"
	"infinite-craft/lib/restyutil"
	"infinite-craft/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("infinitecraft.client")

const (
	DefaultBaseURL   = "https://neal.fun"
	DefaultRateLimit = 400

	pairEndpoint = "/api/infinite-craft/pair"
)

var (
	ErrNotStarted     = errors.New("session has not been started yet")
	ErrAlreadyStarted = errors.New("session is already running")
	ErrSessionClosed  = errors.New("session is closed")
	ErrUnnamedElement = errors.New("element has no name")
)

type sessionState int

const (
	stateUnstarted sessionState = iota
	stateOpen
	stateClosed
)

type ClientOptions struct {
	// BaseURL of the upstream API. Defaults to DefaultBaseURL.
	BaseURL string
	// RateLimit is the requests-per-minute ceiling enforced over a
	// rolling window. 0 uses DefaultRateLimit, negative disables
	// limiting entirely.
	RateLimit int
	// Store configures discovery persistence.
	Store StoreOptions
	// Headers are merged over the default browser headers.
	Headers map[string]string
	// Cache, when non-nil, answers repeat pairings without touching
	// the network or the rate limiter.
	Cache *paircache.Store
	// InstrumentOutput receives request transcripts when slog runs
	// at debug level.
	InstrumentOutput restyutil.InstrumentOutput
}

// Client is a session against the Infinite Craft API. It owns the
// HTTP connection, the rate limit gate and the discovery store.
// Lifecycle is unstarted -> open -> closed; closed is terminal.
//
// A Client is not safe for concurrent use without external
// synchronization.
type Client struct {
	opts    ClientOptions
	state   sessionState
	http    *resty.Client
	limiter *ratelimit.Limiter
	store   *Store
}

func New(opts ClientOptions) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	limit := opts.RateLimit
	if limit == 0 {
		limit = DefaultRateLimit
	}
	if limit < 0 {
		limit = 0
	}
	return &Client{
		opts:    opts,
		limiter: ratelimit.New(limit),
	}
}

// headers the game's web frontend sends, the API refuses requests
// that look too unlike a browser
func defaultHeaders() map[string]string {
	return map[string]string{
		"accept":          "*/*",
		"accept-language": "en-US,en;q=0.9",
		"cache-control":   "no-cache",
		"pragma":          "no-cache",
		"referer":         "https://neal.fun/infinite-craft/",
		"user-agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36",
	}
}

// Start opens the session: it builds the HTTP client and loads the
// discovery file, creating it with the default elements when absent.
// Starting an open session returns ErrAlreadyStarted; a closed
// session cannot be restarted.
func (c *Client) Start(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "client:Start")
	defer span.End()

	switch c.state {
	case stateOpen:
		span.SetStatus(codes.Error, ErrAlreadyStarted.Error())
		return ErrAlreadyStarted
	case stateClosed:
		span.SetStatus(codes.Error, ErrSessionClosed.Error())
		return ErrSessionClosed
	}

	store, err := OpenStore(c.opts.Store)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to open discovery store")
		return err
	}

	client := resty.New()
	client.SetBaseURL(c.opts.BaseURL)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	for k, v := range defaultHeaders() {
		client.SetHeader(k, v)
	}
	for k, v := range c.opts.Headers {
		client.SetHeader(k, v)
	}
	client.SetTimeout(time.Second * 30)

	restyutil.InstrumentClient(client, tracer, c.opts.InstrumentOutput)

	c.http = client
	c.store = store
	c.state = stateOpen

	slog.DebugContext(
		ctx, "started session",
		"base_url", c.opts.BaseURL,
		"rate_limit", c.limiter.Limit(),
		"discoveries", store.Path(),
	)
	return nil
}

// Close ends the session and releases the HTTP connection. Closing
// before Start returns ErrNotStarted, closing twice returns
// ErrSessionClosed.
func (c *Client) Close() error {
	switch c.state {
	case stateUnstarted:
		return ErrNotStarted
	case stateClosed:
		return ErrSessionClosed
	}

	c.http.GetClient().CloseIdleConnections()
	c.state = stateClosed
	slog.Debug("closed session")
	return nil
}

// Stop is an alias for Close.
func (c *Client) Stop() error {
	return c.Close()
}

// Closed reports whether the session has been closed.
func (c *Client) Closed() bool {
	return c.state == stateClosed
}

// Discoveries exposes the session's discovery store. It is nil until
// Start succeeds.
func (c *Client) Discoveries() *Store {
	return c.store
}

func (c *Client) ensureOpen() error {
	switch c.state {
	case stateUnstarted:
		return ErrNotStarted
	case stateClosed:
		return ErrSessionClosed
	}
	return nil
}

// Ping measures round-trip latency with a throwaway Fire + Water
// pairing. Unlike Pair, an upstream rejection is an error here.
func (c *Client) Ping(ctx context.Context) (time.Duration, error) {
	ctx, span := tracer.Start(ctx, "client:Ping")
	defer span.End()

	err := c.ensureOpen()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	err = c.limiter.Wait(ctx)
	if err != nil {
		return 0, err
	}

	start := time.Now()
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("first", "Fire").
		SetQueryParam("second", "Water").
		Get(pairEndpoint)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "ping request failed")
		return 0, err
	}
	latency := time.Since(start)

	if res.IsError() {
		err := fmt.Errorf("ping rejected with status %s", res.Status())
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	slog.DebugContext(ctx, "api response time", "latency", latency)
	return latency, nil
}

// Pair combines two elements and records the result in the discovery
// store when it is novel. Upstream failure (network error, bad
// status, malformed payload, "Nothing" result) is not an error: the
// returned Element is the empty sentinel, check IsEmpty. Errors are
// reserved for lifecycle misuse, unnamed inputs, context
// cancellation and discovery store I/O.
func (c *Client) Pair(ctx context.Context, first, second Element) (Element, error) {
	return c.pair(ctx, first, second, true)
}

// PairEphemeral pairs without touching the discovery store.
func (c *Client) PairEphemeral(ctx context.Context, first, second Element) (Element, error) {
	return c.pair(ctx, first, second, false)
}

// Merge is an alias for Pair.
func (c *Client) Merge(ctx context.Context, first, second Element) (Element, error) {
	return c.Pair(ctx, first, second)
}

// Combine is an alias for Pair.
func (c *Client) Combine(ctx context.Context, first, second Element) (Element, error) {
	return c.Pair(ctx, first, second)
}

type pairResponse struct {
	Result string `json:"result"`
	Emoji  string `json:"emoji"`
	IsNew  bool   `json:"isNew"`
}

func (c *Client) pair(ctx context.Context, first, second Element, store bool) (Element, error) {
	ctx, span := tracer.Start(ctx, "client:Pair")
	defer span.End()

	err := c.ensureOpen()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return Element{}, err
	}
	if first.Name == "" || second.Name == "" {
		span.SetStatus(codes.Error, ErrUnnamedElement.Error())
		return Element{}, ErrUnnamedElement
	}

	span.SetAttributes(
		attribute.String("first", first.Name),
		attribute.String("second", second.Name),
	)
	slog.DebugContext(ctx, "pairing", "first", first.String(), "second", second.String())

	result, cached := c.cachedResult(ctx, first, second)
	if !cached {
		err = c.limiter.Wait(ctx)
		if err != nil {
			return Element{}, err
		}

		result, err = c.fetchPair(ctx, first, second)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return Element{}, err
		}
		if !result.IsEmpty() {
			c.cacheResult(ctx, first, second, result)
		}
	}

	if result.IsEmpty() {
		slog.DebugContext(ctx, "unable to mix", "first", first.String(), "second", second.String())
		return Element{}, nil
	}

	slog.DebugContext(
		ctx, "pairing result",
		"result", result.String(),
		"first_discovery", result.IsFirstDiscovery,
	)

	if store {
		_, err = c.store.Add(result)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to record discovery")
			return Element{}, err
		}
		_, err = c.store.Discoveries(DiscoveriesOptions{SetValue: true})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to reload discoveries")
			return Element{}, err
		}
	}

	return result, nil
}

// fetchPair performs the upstream request. Only context errors
// propagate; everything else collapses into the empty sentinel.
func (c *Client) fetchPair(ctx context.Context, first, second Element) (Element, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("first", first.Name).
		SetQueryParam("second", second.Name).
		Get(pairEndpoint)
	if err != nil {
		if ctx.Err() != nil {
			return Element{}, ctx.Err()
		}
		slog.WarnContext(ctx, "pair request failed", "err", err)
		return Element{}, nil
	}
	if res.IsError() {
		slog.WarnContext(ctx, "upstream rejected pairing", "status", res.Status())
		return Element{}, nil
	}

	var payload pairResponse
	err = json.Unmarshal(res.Body(), &payload)
	if err != nil {
		slog.WarnContext(ctx, "malformed pair response", "err", err)
		return Element{}, nil
	}

	// the upstream's way of saying the combination does not exist
	if payload.Result == "Nothing" && payload.Emoji == "" && !payload.IsNew {
		return Element{}, nil
	}

	return Element{
		Name:             payload.Result,
		Emoji:            payload.Emoji,
		IsFirstDiscovery: payload.IsNew,
	}, nil
}

func (c *Client) cachedResult(ctx context.Context, first, second Element) (Element, bool) {
	if c.opts.Cache == nil {
		return Element{}, false
	}
	cached, ok, err := c.opts.Cache.Get(ctx, first.Name, second.Name)
	if err != nil {
		slog.WarnContext(ctx, "pair cache read failed", "err", err)
		return Element{}, false
	}
	if !ok {
		return Element{}, false
	}
	slog.DebugContext(ctx, "pair cache hit", "first", first.Name, "second", second.Name)
	return Element{
		Name:             cached.Name,
		Emoji:            cached.Emoji,
		IsFirstDiscovery: cached.IsFirstDiscovery,
	}, true
}

func (c *Client) cacheResult(ctx context.Context, first, second, result Element) {
	if c.opts.Cache == nil {
		return
	}
	err := c.opts.Cache.Put(ctx, first.Name, second.Name, paircache.Result{
		Name:             result.Name,
		Emoji:            result.Emoji,
		IsFirstDiscovery: result.IsFirstDiscovery,
	})
	if err != nil {
		slog.WarnContext(ctx, "pair cache write failed", "err", err)
	}
}
