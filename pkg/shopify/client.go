package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ecotrackhq/ecotrack-backend/pkg/config"
	pkgerrors "github.com/ecotrackhq/ecotrack-backend/pkg/errors"
	"github.com/sethvargo/go-retry"
)

const (
	accessTokenHeader     = "X-Shopify-Access-Token"
	responseBodyReadLimit = 2048
	defaultRetryBase      = 500 * time.Millisecond
	defaultMaxRetries     = 3
	throttledErrorCode    = "THROTTLED"
)

var errShopDomainRequired = errors.New("shopify shop domain is required")

// Client wraps the Shopify Admin GraphQL API.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	shopDomain  string
	accessToken string
	apiVersion  string
	maxRetries  int
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the admin API base URL, used by tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// NewClient builds the Admin API client for the configured shop.
func NewClient(cfg config.ShopifyConfig, opts ...Option) (*Client, error) {
	domain := cfg.NormalizedShopDomain()
	if domain == "" {
		return nil, errShopDomainRequired
	}
	if strings.TrimSpace(cfg.AccessToken) == "" {
		return nil, errors.New("shopify access token is required")
	}

	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	client := &Client{
		httpClient:  &http.Client{Timeout: timeout},
		shopDomain:  domain,
		accessToken: cfg.AccessToken,
		apiVersion:  cfg.APIVersion,
		maxRetries:  maxRetries,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors,omitempty"`
}

// GraphQLError is a top-level error returned by the Admin API.
type GraphQLError struct {
	Message    string `json:"message"`
	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
}

// UserError is a field-level mutation error. These abort the operation but are
// reported as structured results rather than exceptions crossing boundaries.
type UserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

func (e UserError) String() string {
	if len(e.Field) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", strings.Join(e.Field, "."), e.Message)
}

// execute posts a GraphQL document, retrying throttled requests with backoff.
func (c *Client) execute(ctx context.Context, query string, variables map[string]any, dest any) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "shopify client not configured")
	}

	payload, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal graphql request")
	}

	backoff := retry.WithMaxRetries(uint64(c.maxRetries), retry.NewExponential(defaultRetryBase))

	var raw json.RawMessage
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		data, doErr := c.post(ctx, payload)
		if doErr != nil {
			return doErr
		}
		raw = data
		return nil
	})
	if err != nil {
		return err
	}

	if dest != nil {
		if err := json.Unmarshal(raw, dest); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode graphql data")
		}
	}
	return nil
}

func (c *Client) post(ctx context.Context, payload []byte) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build graphql request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(accessTokenHeader, c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute graphql request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, retry.RetryableError(pkgerrors.New(
			pkgerrors.CodeDependency,
			fmt.Sprintf("shopify throttled: %s", strings.TrimSpace(string(msg))),
		))
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, pkgerrors.Wrap(
			pkgerrors.CodeDependency,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
			"shopify request failed",
		)
	}

	var gqlResp graphQLResponse
	if err := json.NewDecoder(resp.Body).Decode(&gqlResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode graphql response")
	}

	if len(gqlResp.Errors) > 0 {
		if isThrottled(gqlResp.Errors) {
			return nil, retry.RetryableError(pkgerrors.New(pkgerrors.CodeDependency, "shopify throttled"))
		}
		messages := make([]string, 0, len(gqlResp.Errors))
		for _, gqlErr := range gqlResp.Errors {
			messages = append(messages, gqlErr.Message)
		}
		return nil, pkgerrors.New(
			pkgerrors.CodeDependency,
			fmt.Sprintf("graphql errors: %s", strings.Join(messages, "; ")),
		)
	}

	return gqlResp.Data, nil
}

func isThrottled(errs []GraphQLError) bool {
	for _, e := range errs {
		if strings.EqualFold(e.Extensions.Code, throttledErrorCode) {
			return true
		}
	}
	return false
}

func (c *Client) endpoint() string {
	if c.baseURL != "" {
		return fmt.Sprintf("%s/admin/api/%s/graphql.json", strings.TrimRight(c.baseURL, "/"), c.apiVersion)
	}
	return fmt.Sprintf("https://%s/admin/api/%s/graphql.json", c.shopDomain, c.apiVersion)
}

// ShopDomain returns the normalized shop domain the client is bound to.
func (c *Client) ShopDomain() string {
	return c.shopDomain
}
