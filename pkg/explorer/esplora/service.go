package esplora

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/tdex-network/bitcoin-wallet/pkg/circuitbreaker"
	"github.com/tdex-network/bitcoin-wallet/pkg/explorer"
	"go.uber.org/ratelimit"
)

const (
	// DefaultRequestTimeout is used when ServiceOpts.RequestTimeout is zero
	DefaultRequestTimeout = 30 * time.Second
	// DefaultRateLimit is the max number of requests per second
	DefaultRateLimit = 10
)

// ServiceOpts is the struct given to NewService method
type ServiceOpts struct {
	// APIURL is the esplora REST endpoint, ie. https://blockstream.info/api
	APIURL string
	// FeeURL is the mempool.space recommended fees endpoint. Defaults to
	// APIURL + /v1/fees/recommended
	FeeURL string
	// ExplorerURL is the web explorer used to link txs in history entries
	ExplorerURL    string
	RequestTimeout time.Duration
	RateLimit      int
}

func (o ServiceOpts) validate() error {
	if o.APIURL == "" {
		return fmt.Errorf("missing explorer api url")
	}
	if o.RequestTimeout < 0 {
		return fmt.Errorf("request timeout must not be negative")
	}
	if o.RateLimit < 0 {
		return fmt.Errorf("rate limit must not be negative")
	}
	return nil
}

type esplora struct {
	apiURL      string
	feeURL      string
	explorerURL string

	client  *http.Client
	cb      *gobreaker.CircuitBreaker
	limiter ratelimit.Limiter
}

// NewService returns a new esplora service as an explorer.Service interface.
// Every request goes through a rate limiter and a circuit breaker, none is
// ever retried.
func NewService(opts ServiceOpts) (explorer.Service, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	apiURL := strings.TrimSuffix(opts.APIURL, "/")
	feeURL := opts.FeeURL
	if feeURL == "" {
		feeURL = fmt.Sprintf("%s/v1/fees/recommended", apiURL)
	}
	explorerURL := strings.TrimSuffix(opts.ExplorerURL, "/")
	if explorerURL == "" {
		explorerURL = strings.TrimSuffix(apiURL, "/api")
	}
	timeout := opts.RequestTimeout
	if timeout == 0 {
		timeout = DefaultRequestTimeout
	}
	rateLimit := opts.RateLimit
	if rateLimit == 0 {
		rateLimit = DefaultRateLimit
	}

	return &esplora{
		apiURL:      apiURL,
		feeURL:      feeURL,
		explorerURL: explorerURL,
		client:      &http.Client{Timeout: timeout},
		cb:          circuitbreaker.NewCircuitBreaker("explorer"),
		limiter:     ratelimit.New(rateLimit),
	}, nil
}

// request performs the HTTP request and returns the response body. Transport
// failures, non 200 responses and open circuit are all returned as
// *explorer.NetworkError.
func (e *esplora) request(
	ctx context.Context, op, method, url, body string,
	headers map[string]string,
) (string, error) {
	res, err := e.cb.Execute(func() (interface{}, error) {
		e.limiter.Take()

		var reqBody io.Reader
		if body != "" {
			reqBody = strings.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
		if err != nil {
			return nil, &explorer.NetworkError{Op: op, Err: err}
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := e.client.Do(req)
		if err != nil {
			return nil, &explorer.NetworkError{Op: op, Err: err}
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, &explorer.NetworkError{Op: op, Err: err}
		}
		if resp.StatusCode != http.StatusOK {
			return nil, &explorer.NetworkError{
				Op:         op,
				StatusCode: resp.StatusCode,
				Err:        errors.New(strings.TrimSpace(string(data))),
			}
		}
		return string(data), nil
	})
	if err != nil {
		var netErr *explorer.NetworkError
		if !errors.As(err, &netErr) {
			// gobreaker.ErrOpenState or ErrTooManyRequests
			err = &explorer.NetworkError{Op: op, Err: err}
		}
		log.WithError(err).Debugf("explorer request %s failed", op)
		return "", err
	}
	return res.(string), nil
}

func (e *esplora) get(ctx context.Context, op, url string) (string, error) {
	return e.request(ctx, op, http.MethodGet, url, "", nil)
}
