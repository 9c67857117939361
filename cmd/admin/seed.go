package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kemalcalak/Resume-Builder/internal/document"
)

type seedOptions struct {
	owner string
	name  string
	email string
	title string
}

func newSeedCommand(root *rootOptions) *cobra.Command {
	opts := &seedOptions{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create a sample resume for an owner",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.owner == "" {
				return errors.New("--owner is required")
			}
			_, db, err := openDatabase()
			if err != nil {
				return err
			}

			ctx := context.Background()
			logger := root.logger()
			store := document.NewStore(db, logger)

			doc, err := store.CreateDocument(ctx, document.Owner{ID: opts.owner, Name: opts.name, Email: opts.email}, opts.title)
			if err != nil {
				return err
			}
			draft, err := document.LoadDraft(ctx, store, opts.owner, doc.ExternalID)
			if err != nil {
				return err
			}
			document.FillSample(draft)
			if _, err := draft.Commit(ctx); err != nil {
				return fmt.Errorf("commit sample: %w", err)
			}

			logger.Info("sample resume created", "owner_id", opts.owner, "document_id", doc.ExternalID)
			fmt.Fprintln(cmd.OutOrStdout(), doc.ExternalID)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.owner, "owner", "", "owner id (token sub)")
	cmd.Flags().StringVar(&opts.name, "name", "", "author name")
	cmd.Flags().StringVar(&opts.email, "email", "", "author email")
	cmd.Flags().StringVar(&opts.title, "title", "Sample resume", "document title")
	return cmd
}
