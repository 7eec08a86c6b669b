package domain

// ExportStats holds aggregate figures over a set of repositories.
type ExportStats struct {
	TotalRepos    int            `json:"totalRepos"`
	PublicRepos   int            `json:"publicRepos"`
	PrivateRepos  int            `json:"privateRepos"`
	ArchivedRepos int            `json:"archivedRepos"`
	Languages     map[string]int `json:"languages"`
	TotalStars    int            `json:"totalStars"`
	TotalForks    int            `json:"totalForks"`
	TotalIssues   int            `json:"totalIssues"`
	MeanStars     float64        `json:"meanStars"`
	MedianStars   float64        `json:"medianStars"`
}
