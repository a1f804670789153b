package models

// TypeCount is the number of items of one kind.
type TypeCount struct {
	Kind  Kind   `json:"type"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// MonthBucket counts items created in one calendar month (UTC).
type MonthBucket struct {
	Month       string `json:"month"` // YYYY-MM
	Label       string `json:"label"` // Jan 2006
	Commit      int    `json:"commit"`
	PullRequest int    `json:"pull_request"`
	Issue       int    `json:"issue"`
	Total       int    `json:"total"`
}

// Contributor is an author ranked by number of items.
type Contributor struct {
	Login         string `json:"name"`
	Contributions int    `json:"contributions"`
}

// Activity summarizes a sequence of timeline items.
type Activity struct {
	ByType          []TypeCount   `json:"activityByType"`
	Monthly         []MonthBucket `json:"monthlyActivity"`
	TopContributors []Contributor `json:"contributors"`
}
