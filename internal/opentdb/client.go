package opentdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"trivia-quiz/internal/domain"
)

// DefaultBaseURL is the public Open Trivia DB endpoint.
const DefaultBaseURL = "https://opentdb.com"

// Upstream response codes. 2 (invalid parameter) and 3 (token not found) fall
// through to the generic non-success handling.
const (
	codeSuccess        = 0
	codeNoResults      = 1
	codeTokenExhausted = 4
)

// Client talks to the trivia service over HTTP. It maps upstream response
// codes onto the domain error taxonomy; it never retries on its own.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type questionsResponse struct {
	ResponseCode int                  `json:"response_code"`
	Results      []domain.RawQuestion `json:"results"`
}

type tokenResponse struct {
	ResponseCode int    `json:"response_code"`
	Token        string `json:"token"`
}

type categoriesResponse struct {
	TriviaCategories []domain.Category `json:"trivia_categories"`
}

// FetchQuestions requests a question set. Filters set to domain.Random are
// omitted so the upstream picks freely.
func (c *Client) FetchQuestions(ctx context.Context, opts domain.Options, token string) ([]domain.RawQuestion, error) {
	params := url.Values{}
	params.Set("amount", strconv.Itoa(opts.QuestionCount))
	if token != "" {
		params.Set("token", token)
	}
	if opts.Category != "" && opts.Category != domain.Random {
		params.Set("category", opts.Category)
	}
	if opts.Difficulty != "" && opts.Difficulty != domain.Random {
		params.Set("difficulty", opts.Difficulty)
	}
	if opts.Type != "" && opts.Type != domain.Random {
		params.Set("type", opts.Type)
	}

	var resp questionsResponse
	if err := c.getJSON(ctx, "/api.php", params, &resp); err != nil {
		return nil, err
	}
	switch resp.ResponseCode {
	case codeSuccess:
		return resp.Results, nil
	case codeTokenExhausted:
		return nil, domain.ErrTokenExhausted
	default:
		return nil, fmt.Errorf("%w (response_code %d)", domain.ErrInsufficientQuestions, resp.ResponseCode)
	}
}

// RequestToken mints a fresh session token.
func (c *Client) RequestToken(ctx context.Context) (string, error) {
	return c.token(ctx, "request", "")
}

// ResetToken invalidates the given token server-side and reissues it.
func (c *Client) ResetToken(ctx context.Context, token string) (string, error) {
	return c.token(ctx, "reset", token)
}

func (c *Client) token(ctx context.Context, command, current string) (string, error) {
	params := url.Values{}
	params.Set("command", command)
	if current != "" {
		params.Set("token", current)
	}
	var resp tokenResponse
	if err := c.getJSON(ctx, "/api_token.php", params, &resp); err != nil {
		return "", err
	}
	if resp.ResponseCode != codeSuccess {
		return "", fmt.Errorf("%w: token %s failed (response_code %d)", domain.ErrUpstreamUnavailable, command, resp.ResponseCode)
	}
	if resp.Token == "" {
		return "", fmt.Errorf("%w: token %s returned no token", domain.ErrMalformedResponse, command)
	}
	return resp.Token, nil
}

// Categories lists the upstream categories, sorted by name.
func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	var resp categoriesResponse
	if err := c.getJSON(ctx, "/api_category.php", nil, &resp); err != nil {
		return nil, err
	}
	categories := resp.TriviaCategories
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].Name < categories[j].Name
	})
	return categories, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, v any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned %s", domain.ErrUpstreamUnavailable, path, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: decode %s: %v", domain.ErrMalformedResponse, path, err)
	}
	return nil
}
