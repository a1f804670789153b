package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/TNTKien/repo-timeline/internal/activity"
	"github.com/TNTKien/repo-timeline/internal/models"
	"github.com/TNTKien/repo-timeline/internal/timeline"
)

// BrowseCommand loads several pages into one session and prints the
// accumulated timeline together with its activity summary
type BrowseCommand struct {
	Pages   int
	PerPage int
	Filter  string
	Top     int
	Remote  bool
	Server  string

	// Can be replaced in tests
	Fetcher timeline.Fetcher
	Log     *zap.SugaredLogger
	Out     io.Writer
}

type browseOutput struct {
	Timeline *models.Snapshot `json:"timeline"`
	Activity models.Activity  `json:"activity"`
}

func (c *BrowseCommand) Register(parent *cobra.Command) {
	command := &cobra.Command{
		Use:   "browse <repository>",
		Short: "Load several timeline pages and summarize activity",
		Long: `Load the first page and keep loading more until --pages pages are loaded
or the repository runs out of history. Items seen on several pages are
kept once.

Example:
  timeline browse golang/go --pages 3 --filter pull_request`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cobraCmd *cobra.Command, args []string) error {
			if c.Fetcher != nil {
				return nil
			}
			var err error
			c.Fetcher, c.Log, err = newFetcher(c.Remote || c.Server != "", c.Server)
			return err
		},
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			if c.Out == nil {
				c.Out = cobraCmd.OutOrStdout()
			}
			return c.Run(cobraCmd.Context(), args[0])
		},
	}

	command.Flags().IntVar(&c.Pages, "pages", 1, "maximum number of pages to load")
	command.Flags().IntVar(&c.PerPage, "per-page", models.DefaultPerPage, "items per collection per page")
	command.Flags().StringVar(&c.Filter, "filter", string(models.FilterAll), "all, commit, pull_request or issue")
	command.Flags().IntVar(&c.Top, "top", activity.DefaultTopContributors, "number of top contributors to report")
	command.Flags().BoolVar(&c.Remote, "remote", false, "go through a running timeline server instead of calling GitHub")
	command.Flags().StringVar(&c.Server, "server", "", "timeline server base URL, implies --remote")

	parent.AddCommand(command)
}

// Run executes the command
func (c *BrowseCommand) Run(ctx context.Context, input string) error {
	if c.Log == nil {
		c.Log = zap.NewNop().Sugar()
	}
	if c.Pages < 1 {
		return fmt.Errorf("%w: --pages must be at least 1", models.ErrInvalidRequest)
	}

	repo, err := models.ParseRepoString(input)
	if err != nil {
		return err
	}
	filter, err := models.ParseFilter(c.Filter)
	if err != nil {
		return err
	}

	s := timeline.NewSession(c.Fetcher, repo, c.PerPage)
	res, err := s.Load(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", repo.FullName(), err)
	}

	for loaded := 1; loaded < c.Pages && res.Timeline.Pagination.HasNextPage; loaded++ {
		res, err = s.LoadMore(ctx)
		if err != nil {
			return fmt.Errorf("failed to load page %d of %s: %w", loaded+1, repo.FullName(), err)
		}
		c.Log.Debugw("loaded page", "repository", repo.FullName(), "page", loaded+1, "added", res.Added)
		if res.Added == 0 {
			break
		}
	}

	view := s.View()
	return writeJSON(c.Out, browseOutput{
		Timeline: view,
		Activity: activity.Summarize(view.Items, c.Top),
	})
}
