// Package domain contains the core data structures and domain logic for the application.
package domain

// Placeholders substituted for fields the upstream API leaves empty.
const (
	NoDescription = "No description available"
	NoLanguage    = "Not specified"
)

// Repository is the canonical repository record consumed by every
// UI-facing component. It is never mutated after normalization.
type Repository struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	FullName        string   `json:"fullName"`
	Description     string   `json:"description"`
	HTMLURL         string   `json:"htmlUrl"`
	Language        string   `json:"language"`
	ForksCount      int      `json:"forksCount"`
	OpenIssuesCount int      `json:"openIssuesCount"`
	WatchersCount   int      `json:"watchersCount"`
	StargazersCount int      `json:"stargazersCount"`
	CreatedAt       string   `json:"createdAt"`
	UpdatedAt       string   `json:"updatedAt"`
	Topics          []string `json:"topics"`
	IsPrivate       bool     `json:"isPrivate"`
	IsArchived      bool     `json:"isArchived"`
	License         *string  `json:"license"`
}

// HasLanguage reports whether the repository declares a primary language.
// The NoLanguage placeholder counts as absent.
func (r Repository) HasLanguage() bool {
	return r.Language != "" && r.Language != NoLanguage
}

// LicenseName returns the license display name, or "" when there is none.
func (r Repository) LicenseName() string {
	if r.License == nil {
		return ""
	}
	return *r.License
}

// Bookmark is a repository saved by the user, tagged with the time it was saved.
type Bookmark struct {
	Repository
	BookmarkedAt string `json:"bookmarkedAt"`
}

// RepositoryView is a repository joined with its bookmark state, used by the detail path.
type RepositoryView struct {
	Repository
	Bookmarked bool `json:"bookmarked"`
}
