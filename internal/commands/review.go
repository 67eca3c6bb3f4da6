package commands

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/stmtimport/internal/review"
)

func newReviewCommand() *cobra.Command {
	reviewCmd := &cobra.Command{
		Use:   "review",
		Short: "Inspect transactions awaiting a duplicate decision",
	}
	reviewCmd.AddCommand(newReviewListCommand())
	return reviewCmd
}

func newReviewListCommand() *cobra.Command {
	var repoDir string
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queued review items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			absDir, err := filepath.Abs(repoDir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			return runReviewList(cmd.OutOrStdout(), absDir, all)
		},
	}

	cmd.Flags().StringVar(&repoDir, "repo", ".", "project directory")
	cmd.Flags().BoolVar(&all, "all", false, "include items that are no longer pending")

	return cmd
}

func runReviewList(out io.Writer, repoRoot string, all bool) error {
	q := review.NewQueue(repoRoot)

	var (
		items []review.Item
		err   error
	)
	if all {
		items, err = q.List()
	} else {
		items, err = q.Pending()
	}
	if err != nil {
		return err
	}

	if len(items) == 0 {
		fmt.Fprintln(out, "No items awaiting review.")
		return nil
	}

	for _, it := range items {
		fmt.Fprintf(out, "%s  %s  %10s  %-7s %s\n",
			shortID(it.ID), it.Date.Format("2006-01-02"), it.Amount.StringFixed(2), it.Type, it.Description)
		fmt.Fprintf(out, "          %s (%s, %s)\n", it.Reason, it.Source, it.Status)
	}
	fmt.Fprintf(out, "%d item(s)\n", len(items))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
