package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"nexora/internal/models"
	"nexora/internal/repositories"

	"github.com/guonaihong/gout"
	"github.com/guonaihong/gout/dataflow"
)

const (
	adminProductsPath = "/api/admin/add-product"
	adminDeletePath   = "/api/admin/delete-product"
)

// TokenSource supplies the bearer token attached to admin requests.
// *auth.State satisfies it.
type TokenSource interface {
	Token() string
}

// HTTPClient is a Client that talks to a running server's admin API.
type HTTPClient struct {
	baseURL string
	tokens  TokenSource
	http    *http.Client
}

// NewHTTPClient creates an HTTPClient for the server at baseURL. A nil
// httpClient falls back to http.DefaultClient.
func NewHTTPClient(baseURL string, tokens TokenSource, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		http:    httpClient,
	}
}

// envelope is the union of the admin API's response bodies.
type envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Error   string            `json:"error"`
	Details string            `json:"details"`
	Hint    string            `json:"hint"`
	Code    string            `json:"code"`
	Errors  map[string]string `json:"errors"`
}

// FetchAll lists every product through the admin API.
func (c *HTTPClient) FetchAll(ctx context.Context) ([]models.Product, error) {
	env, err := c.do(ctx, http.MethodGet, adminProductsPath, nil)
	if err != nil {
		return nil, err
	}
	products := make([]models.Product, 0)
	if len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, &products); err != nil {
			return nil, &UnexpectedError{Err: fmt.Errorf("decode product list: %w", err)}
		}
	}
	return products, nil
}

// Insert posts the draft and returns the record the server stored.
func (c *HTTPClient) Insert(ctx context.Context, draft models.ProductDraft) (*models.Product, error) {
	env, err := c.do(ctx, http.MethodPost, adminProductsPath, draft)
	if err != nil {
		return nil, err
	}
	var inserted []models.Product
	if err := json.Unmarshal(env.Data, &inserted); err != nil {
		return nil, &UnexpectedError{Err: fmt.Errorf("decode inserted product: %w", err)}
	}
	if len(inserted) == 0 {
		return nil, &UnexpectedError{Err: fmt.Errorf("insert returned no product")}
	}
	return &inserted[0], nil
}

// Remove deletes the product with the given id.
func (c *HTTPClient) Remove(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, adminDeletePath, map[string]int64{"id": id})
	return err
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body any) (*envelope, error) {
	headers := gout.H{"Cache-Control": "no-cache"}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			headers["Authorization"] = "Bearer " + token
		}
	}

	var (
		raw  []byte
		code int
	)
	flow := c.request(method, c.baseURL+path).WithContext(ctx).SetHeader(headers)
	if body != nil {
		flow = flow.SetJSON(body)
	}
	if err := flow.BindBody(&raw).Code(&code).Do(); err != nil {
		return nil, &repositories.StoreError{
			Message: "request to product store failed",
			Details: err.Error(),
			Code:    "NETWORK",
			Err:     err,
		}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &UnexpectedError{Err: fmt.Errorf("decode %s %s response (status %d): %w", method, path, code, err)}
	}

	switch {
	case code >= 200 && code < 300:
		return &env, nil
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return nil, fmt.Errorf("%w: %s", ErrUnauthorized, env.Error)
	case code == http.StatusBadRequest:
		return nil, validationFromEnvelope(&env)
	case env.Error != "":
		return nil, &repositories.StoreError{
			Message: env.Error,
			Details: env.Details,
			Hint:    env.Hint,
			Code:    env.Code,
		}
	default:
		return nil, &UnexpectedError{Err: fmt.Errorf("%s %s returned status %d", method, path, code)}
	}
}

func (c *HTTPClient) request(method, url string) *dataflow.DataFlow {
	g := gout.New(c.http)
	switch method {
	case http.MethodPost:
		return g.POST(url)
	case http.MethodDelete:
		return g.DELETE(url)
	default:
		return g.GET(url)
	}
}

func validationFromEnvelope(env *envelope) *ValidationError {
	if len(env.Errors) == 0 {
		return &ValidationError{Message: env.Error}
	}
	fields := make([]string, 0, len(env.Errors))
	for field := range env.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return &ValidationError{Field: fields[0], Message: env.Errors[fields[0]]}
}
