// Package export turns repository collections into downloadable CSV and JSON
// documents and computes aggregate statistics over them.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/naka-gawa/repo-catalog/internal/domain"
)

// Format selects the export document type.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// DefaultBase is the file name stem used when none is given.
const DefaultBase = "repositories"

// ErrNothingToExport is returned by Write for an empty collection.
var ErrNothingToExport = errors.New("no repositories to export")

// CSVHeader is the fixed column set of the CSV export.
var CSVHeader = []string{
	"ID",
	"Name",
	"Full Name",
	"Description",
	"URL",
	"Stars",
	"Forks",
	"Watchers",
	"Open Issues",
	"Language",
	"Private",
	"Archived",
	"Created",
	"Updated",
	"License",
	"Topics",
}

// Envelope is the JSON export document.
type Envelope struct {
	ExportDate        string              `json:"exportDate"`
	TotalRepositories int                 `json:"totalRepositories"`
	Repositories      []domain.Repository `json:"repositories"`
}

// ToCSV renders repos as CSV with a header row. Fields containing commas,
// quotes or newlines are quoted and inner quotes are doubled.
func ToCSV(repos []domain.Repository) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(CSVHeader); err != nil {
		return "", fmt.Errorf("writing csv header: %w", err)
	}
	for _, r := range repos {
		record := []string{
			strconv.FormatInt(r.ID, 10),
			r.Name,
			r.FullName,
			r.Description,
			r.HTMLURL,
			strconv.Itoa(r.StargazersCount),
			strconv.Itoa(r.ForksCount),
			strconv.Itoa(r.WatchersCount),
			strconv.Itoa(r.OpenIssuesCount),
			r.Language,
			strconv.FormatBool(r.IsPrivate),
			strconv.FormatBool(r.IsArchived),
			r.CreatedAt,
			r.UpdatedAt,
			r.LicenseName(),
			strings.Join(r.Topics, ","),
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("writing csv row for %s: %w", r.FullName, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flushing csv: %w", err)
	}
	return buf.String(), nil
}

// ToJSON renders repos as an indented Envelope stamped with now.
func ToJSON(repos []domain.Repository, now time.Time) ([]byte, error) {
	if repos == nil {
		repos = []domain.Repository{}
	}
	env := Envelope{
		ExportDate:        now.UTC().Format(time.RFC3339Nano),
		TotalRepositories: len(repos),
		Repositories:      repos,
	}
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling export: %w", err)
	}
	return data, nil
}

// Stats aggregates counts and sums over repos. Languages only counts
// repositories that declare a language; the "Not specified" placeholder is excluded.
func Stats(repos []domain.Repository) domain.ExportStats {
	s := domain.ExportStats{
		TotalRepos: len(repos),
		Languages:  make(map[string]int),
	}
	stars := make([]float64, 0, len(repos))
	for _, r := range repos {
		if r.IsPrivate {
			s.PrivateRepos++
		}
		if r.IsArchived {
			s.ArchivedRepos++
		}
		if r.HasLanguage() {
			s.Languages[r.Language]++
		}
		s.TotalStars += r.StargazersCount
		s.TotalForks += r.ForksCount
		s.TotalIssues += r.OpenIssuesCount
		stars = append(stars, float64(r.StargazersCount))
	}
	s.PublicRepos = s.TotalRepos - s.PrivateRepos

	// Mean and Median return NaN for empty input; the averages stay zero then.
	if len(stars) > 0 {
		s.MeanStars, _ = stats.Mean(stars)
		s.MedianStars, _ = stats.Median(stars)
	}
	return s
}

// Filename returns "<base>_<yyyy-mm-dd>.<ext>" for the UTC date of now.
func Filename(base string, format Format, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", base, now.UTC().Format("2006-01-02"), format)
}

// Write renders repos in the given format into dir and returns the file path.
func Write(dir, base string, format Format, repos []domain.Repository, now time.Time) (string, error) {
	if len(repos) == 0 {
		return "", ErrNothingToExport
	}
	if base == "" {
		base = DefaultBase
	}
	var data []byte
	switch format {
	case FormatCSV:
		text, err := ToCSV(repos)
		if err != nil {
			return "", err
		}
		data = []byte(text)
	case FormatJSON:
		var err error
		data, err = ToJSON(repos, now)
		if err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("unsupported export format %q", format)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	path := filepath.Join(dir, Filename(base, format, now))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
