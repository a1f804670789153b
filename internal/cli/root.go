// Package cli implements the repo-timeline command line tool.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/TNTKien/repo-timeline/internal/client"
	"github.com/TNTKien/repo-timeline/internal/config"
	"github.com/TNTKien/repo-timeline/internal/logger"
	"github.com/TNTKien/repo-timeline/internal/timeline"
	"github.com/TNTKien/repo-timeline/internal/upstream"
)

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "timeline",
		Short: "Browse a GitHub repository's activity timeline",
		Long: `timeline fetches commits, pull requests and issues of a GitHub
repository and prints them as one timeline, newest first.

Repositories may be given as owner/repo or as a github.com URL.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	commands := []Command{
		&FetchCommand{},
		&BrowseCommand{},
	}
	for _, c := range commands {
		c.Register(root)
	}
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute(ctx context.Context) {
	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// newFetcher returns a client for a running timeline server when remote is
// set, otherwise a service that talks to GitHub directly. An empty server
// falls back to client.base_url.
func newFetcher(remote bool, server string) (timeline.Fetcher, *zap.SugaredLogger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.Logging.Level)
	if err != nil {
		return nil, nil, err
	}

	if remote {
		if server == "" {
			server = cfg.Client.BaseURL
		}
		log.Debugw("using timeline server", "base_url", server)
		return client.NewClient(server, cfg.Client.Timeout), log, nil
	}

	gh, err := upstream.NewClient(upstream.Config{
		Token:   cfg.GitHub.Token,
		BaseURL: cfg.GitHub.BaseURL,
		Timeout: cfg.GitHub.Timeout,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create github client: %w", err)
	}
	return timeline.NewService(gh, log), log, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
