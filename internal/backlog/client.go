// Package backlog is a minimal client for the remote tracker's v2 API.
//
// Only the calls the sync engine needs are implemented: issue listing
// with a status filter, the authenticated user, and project lookup.
// Authentication is an API key passed as a query parameter. Every call
// honors its context and carries a per-request timeout so one
// unreachable workspace cannot stall a whole sync round.
package backlog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/projectlens/lens/internal/ratelimit"
	"github.com/projectlens/lens/internal/types"
)

// DefaultStatusFilter is the non-terminal status set synced by
// default: open (1), in progress (2) and resolved (3). Closed (4) is
// always excluded.
var DefaultStatusFilter = []int{1, 2, 3}

const (
	defaultTimeout = 15 * time.Second
	issuePageSize  = 100
	requestsPerSec = 2
	requestBurst   = 5
)

// APIError is a non-2xx response from the tracker. The body is kept
// for diagnostics; the tracker reports error detail as JSON text.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api request failed: status %d: %s", e.StatusCode, e.Body)
}

// Client talks to one workspace's tracker account.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the derived https://{domain}/api/v2 base URL.
// Used by tests to point the client at a local server.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// NewClient creates a client for the given connection domain and API
// key. Requests are paced by a small client-side limiter so a
// workspace with many tracked projects does not burn through the
// remote's rate-limit window in one tick.
func NewClient(domain, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: fmt.Sprintf("https://%s/api/v2", domain),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: defaultTimeout},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSec), requestBurst),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListIssues fetches the issues of one project restricted to the given
// status ids, sorted by remote update time descending. The project may
// be identified by key or numeric id; keys are resolved to the numeric
// id first. The rate-limit window of the response is returned alongside
// the issues.
func (c *Client) ListIssues(ctx context.Context, projectIDOrKey string, statusIDs []int) ([]types.Issue, types.RateLimitWindow, error) {
	projectID, err := c.resolveProjectID(ctx, projectIDOrKey)
	if err != nil {
		return nil, types.RateLimitWindow{}, fmt.Errorf("failed to resolve project %q: %w", projectIDOrKey, err)
	}

	q := url.Values{}
	q.Set("projectId[]", strconv.FormatInt(projectID, 10))
	for _, id := range statusIDs {
		q.Add("statusId[]", strconv.Itoa(id))
	}
	q.Set("sort", "updated")
	q.Set("order", "desc")
	q.Set("count", strconv.Itoa(issuePageSize))

	var issues []types.Issue
	header, err := c.get(ctx, "/issues", q, &issues)
	if err != nil {
		return nil, types.RateLimitWindow{}, err
	}
	return issues, ratelimit.FromHeader(header), nil
}

// Myself fetches the authenticated principal.
func (c *Client) Myself(ctx context.Context) (types.User, error) {
	var me types.User
	if _, err := c.get(ctx, "/users/myself", nil, &me); err != nil {
		return types.User{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return me, nil
}

// Projects lists the projects visible to the authenticated user.
func (c *Client) Projects(ctx context.Context) ([]types.Project, error) {
	var projects []types.Project
	if _, err := c.get(ctx, "/projects", nil, &projects); err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// GetProject looks up one project by key or numeric id.
func (c *Client) GetProject(ctx context.Context, projectIDOrKey string) (types.Project, error) {
	var project types.Project
	if _, err := c.get(ctx, "/projects/"+url.PathEscape(projectIDOrKey), nil, &project); err != nil {
		return types.Project{}, fmt.Errorf("failed to get project %q: %w", projectIDOrKey, err)
	}
	return project, nil
}

// resolveProjectID passes numeric identifiers through and resolves
// project keys via the lookup call.
func (c *Client) resolveProjectID(ctx context.Context, projectIDOrKey string) (int64, error) {
	if id, err := strconv.ParseInt(projectIDOrKey, 10, 64); err == nil {
		return id, nil
	}
	project, err := c.GetProject(ctx, projectIDOrKey)
	if err != nil {
		return 0, err
	}
	return project.ID, nil
}

// get performs one authenticated GET and decodes the JSON response
// into out. Returns the response headers for rate-limit extraction.
// Any non-2xx status is an *APIError carrying the body.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) (http.Header, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	if query == nil {
		query = url.Values{}
	}
	query.Set("apiKey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Bounded read: diagnostics only, never the whole payload.
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return resp.Header, nil
}
