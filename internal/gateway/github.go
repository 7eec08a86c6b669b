// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v84/github"
	"github.com/shurcooL/githubv4"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/naka-gawa/repo-catalog/internal/domain"
)

// API kinds accepted by Options.API.
const (
	APIREST    = "rest"
	APIGraphQL = "graphql"
)

// Fetcher defines the read operations the application needs from the repository host.
type Fetcher interface {
	// ListAll returns the organization's repositories in upstream order.
	ListAll(ctx context.Context) ([]domain.Repository, error)
	// GetOne returns a single repository of the organization by name.
	GetOne(ctx context.Context, name string) (domain.Repository, error)
}

// Options configures the gateway.
type Options struct {
	Org      string
	API      string
	BaseURL  string
	Token    string
	PerPage  int
	MaxPages int
}

// RESTGateway implements Fetcher on top of the REST API.
type RESTGateway struct {
	client   *github.Client
	org      string
	perPage  int
	maxPages int
	logger   *zap.Logger
}

// New is a constructor that creates the Fetcher selected by opts.API.
func New(opts Options, logger *zap.Logger) (Fetcher, error) {
	if opts.Org == "" {
		return nil, fmt.Errorf("organization is required")
	}
	httpClient, err := newHTTPClient(opts.Token)
	if err != nil {
		return nil, err
	}

	switch opts.API {
	case "", APIREST:
		client := github.NewClient(httpClient)
		if opts.BaseURL != "" {
			baseURL, err := url.Parse(strings.TrimSuffix(opts.BaseURL, "/") + "/")
			if err != nil {
				return nil, fmt.Errorf("invalid API base URL %q: %w", opts.BaseURL, err)
			}
			client.BaseURL = baseURL
		}
		return newRESTGateway(client, opts, logger), nil
	case APIGraphQL:
		if opts.Token == "" {
			return nil, fmt.Errorf("the GraphQL API requires a token")
		}
		var client *githubv4.Client
		if opts.BaseURL == "" || strings.HasPrefix(opts.BaseURL, "https://api.github.com") {
			client = githubv4.NewClient(httpClient)
		} else {
			client = githubv4.NewEnterpriseClient(strings.TrimSuffix(opts.BaseURL, "/")+"/graphql", httpClient)
		}
		return newGraphQLGateway(client, opts, logger), nil
	default:
		return nil, fmt.Errorf("unknown API kind %q", opts.API)
	}
}

// newHTTPClient stacks the secondary rate limit waiter under an optional token transport.
func newHTTPClient(token string) (*http.Client, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	if token == "" {
		return &http.Client{Transport: rateLimitWaiter}, nil
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}, nil
}

func newRESTGateway(client *github.Client, opts Options, logger *zap.Logger) *RESTGateway {
	perPage := opts.PerPage
	if perPage <= 0 || perPage > 100 {
		perPage = 100
	}
	maxPages := opts.MaxPages
	if maxPages <= 0 {
		maxPages = 1
	}
	return &RESTGateway{
		client:   client,
		org:      opts.Org,
		perPage:  perPage,
		maxPages: maxPages,
		logger:   logger,
	}
}

// ListAll fetches the organization's repositories sorted by last update,
// following pagination links up to the configured page cap.
func (g *RESTGateway) ListAll(ctx context.Context) ([]domain.Repository, error) {
	g.logger.Debug("listing organization repositories", zap.String("org", g.org), zap.String("api", APIREST))
	opts := &github.RepositoryListByOrgOptions{
		Sort:        "updated",
		ListOptions: github.ListOptions{PerPage: g.perPage},
	}
	repos := make([]domain.Repository, 0, g.perPage)
	for page := 1; ; page++ {
		result, resp, err := g.client.Repositories.ListByOrg(ctx, g.org, opts)
		if err != nil {
			return nil, classifyRESTError(resp, err)
		}
		for _, r := range result {
			repos = append(repos, normalize(fromREST(r)))
		}
		if resp.NextPage == 0 || page >= g.maxPages {
			break
		}
		opts.Page = resp.NextPage
		g.logger.Debug("fetching next page of repositories", zap.Int("page", resp.NextPage))
	}
	g.logger.Info("listed organization repositories", zap.String("org", g.org), zap.Int("count", len(repos)))
	return repos, nil
}

// GetOne fetches a single repository of the organization.
func (g *RESTGateway) GetOne(ctx context.Context, name string) (domain.Repository, error) {
	g.logger.Debug("fetching repository", zap.String("org", g.org), zap.String("name", name))
	r, resp, err := g.client.Repositories.Get(ctx, g.org, name)
	if err != nil {
		return domain.Repository{}, classifyRESTError(resp, err)
	}
	return normalize(fromREST(r)), nil
}

// classifyRESTError maps a go-github failure onto the gateway error taxonomy.
func classifyRESTError(resp *github.Response, err error) error {
	if resp != nil && resp.Response != nil && (resp.StatusCode < 200 || resp.StatusCode > 299) {
		return newAPIError(resp.Response)
	}
	return &TransportError{Err: err}
}
