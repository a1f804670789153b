package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/TNTKien/repo-timeline/internal/models"
	"github.com/TNTKien/repo-timeline/internal/timeline"
)

// FetchCommand prints a single timeline page as JSON
type FetchCommand struct {
	Page    int
	PerPage int
	Filter  string
	Remote  bool
	Server  string

	// Can be replaced in tests
	Fetcher timeline.Fetcher
	Out     io.Writer
}

func (c *FetchCommand) Register(parent *cobra.Command) {
	command := &cobra.Command{
		Use:   "fetch <repository>",
		Short: "Fetch one page of a repository timeline",
		Long: `Fetch one page of commits, pull requests and issues and print it as JSON.

Example:
  timeline fetch golang/go
  timeline fetch https://github.com/golang/go --page 2 --filter issue`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cobraCmd *cobra.Command, args []string) error {
			if c.Fetcher != nil {
				return nil
			}
			var err error
			c.Fetcher, _, err = newFetcher(c.Remote || c.Server != "", c.Server)
			return err
		},
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			if c.Out == nil {
				c.Out = cobraCmd.OutOrStdout()
			}
			return c.Run(cobraCmd.Context(), args[0])
		},
	}

	command.Flags().IntVar(&c.Page, "page", models.DefaultPage, "page number, starting at 1")
	command.Flags().IntVar(&c.PerPage, "per-page", models.DefaultPerPage, "items per collection per page")
	command.Flags().StringVar(&c.Filter, "filter", string(models.FilterAll), "all, commit, pull_request or issue")
	command.Flags().BoolVar(&c.Remote, "remote", false, "go through a running timeline server instead of calling GitHub")
	command.Flags().StringVar(&c.Server, "server", "", "timeline server base URL, implies --remote")

	parent.AddCommand(command)
}

// Run executes the command
func (c *FetchCommand) Run(ctx context.Context, input string) error {
	repo, err := models.ParseRepoString(input)
	if err != nil {
		return err
	}
	filter, err := models.ParseFilter(c.Filter)
	if err != nil {
		return err
	}

	snapshot, err := c.Fetcher.FetchPage(ctx, models.PageRequest{
		Repository: repo,
		Page:       c.Page,
		PerPage:    c.PerPage,
		Filter:     filter,
	})
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", repo.FullName(), err)
	}
	return writeJSON(c.Out, snapshot)
}
