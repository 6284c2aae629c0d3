package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/finnet/internal/cli"
	"github.com/Veraticus/finnet/internal/common"
	"github.com/Veraticus/finnet/internal/model"
	"github.com/Veraticus/finnet/internal/report"
	"github.com/Veraticus/finnet/internal/storage"
	"github.com/spf13/cobra"
)

func reviewsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reviews",
		Short: "Work the manual review queue",
	}

	cmd.AddCommand(reviewsListCmd())
	cmd.AddCommand(reviewDecisionCmd("approve", true))
	cmd.AddCommand(reviewDecisionCmd("reject", false))

	return cmd
}

func reviewsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List results waiting for manual review",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}

			store, err := openStorage(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			pending, err := store.ListPendingReviews(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(pending) == 0 {
				fmt.Fprintln(out, cli.FormatSuccess("Review queue is empty"))
				return nil
			}

			results := make([]model.ClassificationResult, 0, len(pending))
			batches := make(map[string]struct{})
			for _, r := range pending {
				results = append(results, r.ClassificationResult)
				batches[r.BatchID] = struct{}{}
			}

			fmt.Fprintln(out, report.RenderTable(results))
			fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("%d result(s) across %d batch(es) awaiting review", len(pending), len(batches))))
			for _, r := range pending {
				fmt.Fprintf(out, "  %s %s\n", r.BatchID, r.TransactionID)
			}
			return nil
		},
	}
}

func reviewDecisionCmd(use string, approved bool) *cobra.Command {
	short := "Approve a result as classified"
	if !approved {
		short = "Reject a result, optionally with a corrected category and ITRS code"
	}

	cmd := &cobra.Command{
		Use:   use + " <batch-id> <transaction-id>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reviewer, _ := cmd.Flags().GetString("reviewer")
			note, _ := cmd.Flags().GetString("note")
			// Only reject defines these; approve reads them as empty.
			category, _ := cmd.Flags().GetString("category")
			code, _ := cmd.Flags().GetString("code")

			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}

			store, err := openStorage(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			decision := &model.ReviewDecision{
				BatchID:        args[0],
				TransactionID:  args[1],
				Reviewer:       reviewer,
				Approved:       approved,
				Category:       category,
				RegulatoryCode: code,
				Note:           note,
				ReviewedAt:     time.Now(),
			}

			if err := store.RecordReview(cmd.Context(), decision); err != nil {
				switch {
				case errors.Is(err, storage.ErrNotFound):
					return common.NewUserError(fmt.Sprintf("No result %s in batch %s", args[1], args[0]), err)
				case errors.Is(err, storage.ErrReviewNotRequired), errors.Is(err, storage.ErrInvalidReview):
					return common.NewUserError("Review rejected", err)
				default:
					return err
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Recorded %s for transaction %s", use, args[1])))
			return nil
		},
	}

	cmd.Flags().String("reviewer", defaultReviewer(), "reviewer name")
	cmd.Flags().String("note", "", "review note")
	if !approved {
		cmd.Flags().String("category", "", "corrected category")
		cmd.Flags().String("code", "", "corrected ITRS code")
	}

	return cmd
}
