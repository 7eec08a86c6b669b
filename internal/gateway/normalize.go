package gateway

import (
	"time"

	"github.com/google/go-github/v84/github"
	"github.com/naka-gawa/repo-catalog/internal/domain"
)

// rawRepository is the upstream record shape shared by the REST and GraphQL
// paths before normalization. Nullable upstream fields stay pointers.
type rawRepository struct {
	ID              int64
	Name            string
	FullName        string
	Description     *string
	HTMLURL         string
	Language        *string
	ForksCount      int
	OpenIssuesCount int
	WatchersCount   int
	StargazersCount int
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Topics          []string
	Private         bool
	Archived        bool
	LicenseName     *string
}

// normalize maps a raw record to the canonical record: missing description and
// language become placeholders, a missing license stays nil and missing topics
// become an empty list.
func normalize(raw rawRepository) domain.Repository {
	repo := domain.Repository{
		ID:              raw.ID,
		Name:            raw.Name,
		FullName:        raw.FullName,
		Description:     orDefault(raw.Description, domain.NoDescription),
		HTMLURL:         raw.HTMLURL,
		Language:        orDefault(raw.Language, domain.NoLanguage),
		ForksCount:      raw.ForksCount,
		OpenIssuesCount: raw.OpenIssuesCount,
		WatchersCount:   raw.WatchersCount,
		StargazersCount: raw.StargazersCount,
		CreatedAt:       isoTimestamp(raw.CreatedAt),
		UpdatedAt:       isoTimestamp(raw.UpdatedAt),
		Topics:          raw.Topics,
		IsPrivate:       raw.Private,
		IsArchived:      raw.Archived,
	}
	if repo.Topics == nil {
		repo.Topics = []string{}
	}
	if raw.LicenseName != nil && *raw.LicenseName != "" {
		name := *raw.LicenseName
		repo.License = &name
	}
	return repo
}

func fromREST(r *github.Repository) rawRepository {
	raw := rawRepository{
		ID:              r.GetID(),
		Name:            r.GetName(),
		FullName:        r.GetFullName(),
		Description:     r.Description,
		HTMLURL:         r.GetHTMLURL(),
		Language:        r.Language,
		ForksCount:      r.GetForksCount(),
		OpenIssuesCount: r.GetOpenIssuesCount(),
		WatchersCount:   r.GetWatchersCount(),
		StargazersCount: r.GetStargazersCount(),
		CreatedAt:       r.GetCreatedAt().Time,
		UpdatedAt:       r.GetUpdatedAt().Time,
		Topics:          r.Topics,
		Private:         r.GetPrivate(),
		Archived:        r.GetArchived(),
	}
	if r.License != nil {
		raw.LicenseName = r.License.Name
	}
	return raw
}

func orDefault(s *string, placeholder string) string {
	if s == nil || *s == "" {
		return placeholder
	}
	return *s
}

func isoTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
