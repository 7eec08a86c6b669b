package gateway

import (
	"context"

	"github.com/shurcooL/githubv4"
	"go.uber.org/zap"

	"github.com/naka-gawa/repo-catalog/internal/domain"
)

// GraphQLGateway implements Fetcher on top of the GraphQL API.
type GraphQLGateway struct {
	client   *githubv4.Client
	org      string
	maxPages int
	logger   *zap.Logger
}

// repositoryNode selects the fields of a Repository needed for a canonical record.
type repositoryNode struct {
	DatabaseID      int64 `graphql:"databaseId"`
	Name            string
	NameWithOwner   string
	Description     *string
	URL             string
	PrimaryLanguage *struct {
		Name string
	}
	ForkCount      int
	StargazerCount int
	Watchers       struct {
		TotalCount int
	}
	Issues struct {
		TotalCount int
	} `graphql:"issues(states: OPEN)"`
	CreatedAt        githubv4.DateTime
	UpdatedAt        githubv4.DateTime
	RepositoryTopics struct {
		Nodes []struct {
			Topic struct {
				Name string
			}
		}
	} `graphql:"repositoryTopics(first: 20)"`
	IsPrivate   bool
	IsArchived  bool
	LicenseInfo *struct {
		Name string
	}
}

// orgRepositoriesQuery pages through the organization's repositories, newest update first.
type orgRepositoriesQuery struct {
	Organization struct {
		Repositories struct {
			PageInfo struct {
				HasNextPage bool
				EndCursor   githubv4.String
			}
			Nodes []repositoryNode
		} `graphql:"repositories(first: 100, after: $cursor, orderBy: {field: UPDATED_AT, direction: DESC})"`
	} `graphql:"organization(login: $org)"`
}

type repositoryQuery struct {
	Repository repositoryNode `graphql:"repository(owner: $owner, name: $name)"`
}

func newGraphQLGateway(client *githubv4.Client, opts Options, logger *zap.Logger) *GraphQLGateway {
	maxPages := opts.MaxPages
	if maxPages <= 0 {
		maxPages = 1
	}
	return &GraphQLGateway{client: client, org: opts.Org, maxPages: maxPages, logger: logger}
}

// ListAll fetches the organization's repositories using cursor pagination.
func (g *GraphQLGateway) ListAll(ctx context.Context) ([]domain.Repository, error) {
	g.logger.Debug("listing organization repositories", zap.String("org", g.org), zap.String("api", APIGraphQL))
	variables := map[string]interface{}{
		"org":    githubv4.String(g.org),
		"cursor": (*githubv4.String)(nil),
	}
	var repos []domain.Repository
	for page := 1; ; page++ {
		var q orgRepositoriesQuery
		if err := g.client.Query(ctx, &q, variables); err != nil {
			return nil, classifyGraphQLError(err)
		}
		for _, node := range q.Organization.Repositories.Nodes {
			repos = append(repos, normalize(node.raw()))
		}
		if !q.Organization.Repositories.PageInfo.HasNextPage || page >= g.maxPages {
			break
		}
		variables["cursor"] = githubv4.NewString(q.Organization.Repositories.PageInfo.EndCursor)
		g.logger.Debug("fetching next page of repositories", zap.Int("page", page+1))
	}
	if repos == nil {
		repos = []domain.Repository{}
	}
	g.logger.Info("listed organization repositories", zap.String("org", g.org), zap.Int("count", len(repos)))
	return repos, nil
}

// GetOne fetches a single repository of the organization.
func (g *GraphQLGateway) GetOne(ctx context.Context, name string) (domain.Repository, error) {
	g.logger.Debug("fetching repository", zap.String("org", g.org), zap.String("name", name))
	variables := map[string]interface{}{
		"owner": githubv4.String(g.org),
		"name":  githubv4.String(name),
	}
	var q repositoryQuery
	if err := g.client.Query(ctx, &q, variables); err != nil {
		return domain.Repository{}, classifyGraphQLError(err)
	}
	return normalize(q.Repository.raw()), nil
}

func (n repositoryNode) raw() rawRepository {
	raw := rawRepository{
		ID:              n.DatabaseID,
		Name:            n.Name,
		FullName:        n.NameWithOwner,
		Description:     n.Description,
		HTMLURL:         n.URL,
		ForksCount:      n.ForkCount,
		OpenIssuesCount: n.Issues.TotalCount,
		WatchersCount:   n.Watchers.TotalCount,
		StargazersCount: n.StargazerCount,
		CreatedAt:       n.CreatedAt.Time,
		UpdatedAt:       n.UpdatedAt.Time,
		Private:         n.IsPrivate,
		Archived:        n.IsArchived,
	}
	if n.PrimaryLanguage != nil {
		raw.Language = &n.PrimaryLanguage.Name
	}
	if n.LicenseInfo != nil {
		raw.LicenseName = &n.LicenseInfo.Name
	}
	for _, t := range n.RepositoryTopics.Nodes {
		raw.Topics = append(raw.Topics, t.Topic.Name)
	}
	return raw
}
