package models

import (
	"fmt"
	"net/url"
	"strings"
)

// Repository identifies a GitHub repository by owner and name.
type Repository struct {
	Owner string `json:"owner"`
	Name  string `json:"repo"`
}

// FullName returns "owner/repo".
func (r Repository) FullName() string {
	return r.Owner + "/" + r.Name
}

// Validate checks that both owner and name are present.
func (r Repository) Validate() error {
	if r.Owner == "" || r.Name == "" {
		return fmt.Errorf("%w: owner and repo are required", ErrInvalidRequest)
	}
	return nil
}

// ParseRepoString parses free-form user input into a Repository.
// Accepted forms, first match wins:
//
//	owner/repo
//	https://github.com/owner/repo[/anything...]
func ParseRepoString(input string) (Repository, error) {
	input = strings.TrimSpace(input)

	if parts := strings.Split(input, "/"); len(parts) == 2 {
		if parts[0] != "" && parts[1] != "" && !strings.ContainsAny(input, " \t") {
			return Repository{Owner: parts[0], Name: parts[1]}, nil
		}
		return Repository{}, fmt.Errorf("%w: %q is not in owner/repo form", ErrInvalidRequest, input)
	}

	u, err := url.Parse(input)
	if err == nil && u.Scheme != "" && u.Hostname() == "github.com" {
		var segments []string
		for _, s := range strings.Split(u.Path, "/") {
			if s != "" {
				segments = append(segments, s)
			}
		}
		if len(segments) >= 2 {
			return Repository{
				Owner: segments[0],
				Name:  strings.TrimSuffix(segments[1], ".git"),
			}, nil
		}
	}

	return Repository{}, fmt.Errorf("%w: %q is not a GitHub repository", ErrInvalidRequest, input)
}
