package httpclient

import (
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultTimeout bounds a whole request when no timeout is configured
const DefaultTimeout = 30 * time.Second

// PoolOptions configures a Pool. Zero values select one client, DefaultTimeout
// and the request method as span name prefix.
type PoolOptions struct {
	Size       int
	Timeout    time.Duration
	SpanPrefix string
}

// Pool hands out *http.Client values that share one instrumented transport.
// Clients taken from a closed or drained pool are built on demand.
type Pool struct {
	clients   chan *http.Client
	transport http.RoundTripper
	timeout   time.Duration

	mu     sync.RWMutex
	closed bool
}

// NewPool creates a pool and fills it
func NewPool(opts PoolOptions) *Pool {
	if opts.Size < 1 {
		opts.Size = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	base := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        opts.Size * 4,
		MaxIdleConnsPerHost: opts.Size,
		IdleConnTimeout:     90 * time.Second,
	}
	prefix := opts.SpanPrefix
	p := &Pool{
		clients: make(chan *http.Client, opts.Size),
		timeout: opts.Timeout,
		transport: otelhttp.NewTransport(base,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if prefix == "" {
					return r.Method + " " + r.URL.Path
				}
				return prefix + " " + r.Method + " " + r.URL.Path
			}),
		),
	}
	for i := 0; i < opts.Size; i++ {
		p.clients <- p.newClient()
	}
	return p
}

func (p *Pool) newClient() *http.Client {
	return &http.Client{Timeout: p.timeout, Transport: p.transport}
}

// Get takes a client from the pool
func (p *Pool) Get() *http.Client {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return p.newClient()
	}
	select {
	case c := <-p.clients:
		return c
	default:
		return p.newClient()
	}
}

// Put returns a client. Extra clients are dropped.
func (p *Pool) Put(c *http.Client) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed || c == nil {
		return
	}
	select {
	case p.clients <- c:
	default:
	}
}

// Do sends req with a pooled client
func (p *Pool) Do(req *http.Request) (*http.Response, error) {
	c := p.Get()
	defer p.Put(c)
	return c.Do(req)
}

// Close stops pooling. It is safe to call more than once.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	close(p.clients)
}
