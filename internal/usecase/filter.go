package usecase

import (
	"strings"

	"github.com/naka-gawa/repo-catalog/internal/domain"
)

// Filter returns the subsequence of repos whose name, description or language
// contains term, ignoring case. A blank term matches everything and returns
// repos itself.
func Filter(repos []domain.Repository, term string) []domain.Repository {
	if strings.TrimSpace(term) == "" {
		return repos
	}
	needle := strings.ToLower(term)
	filtered := make([]domain.Repository, 0, len(repos))
	for _, repo := range repos {
		if matches(repo, needle) {
			filtered = append(filtered, repo)
		}
	}
	return filtered
}

func matches(repo domain.Repository, needle string) bool {
	return strings.Contains(strings.ToLower(repo.Name), needle) ||
		strings.Contains(strings.ToLower(repo.Description), needle) ||
		strings.Contains(strings.ToLower(repo.Language), needle)
}
