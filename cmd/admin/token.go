package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kemalcalak/Resume-Builder/internal/auth"
	"github.com/kemalcalak/Resume-Builder/internal/config"
)

type tokenOptions struct {
	subject    string
	givenName  string
	familyName string
	email      string
	ttl        time.Duration
}

// newTokenCommand mints a bearer token with the development private key, for
// local testing without the identity provider.
func newTokenCommand(root *rootOptions) *cobra.Command {
	opts := &tokenOptions{}

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.subject == "" {
				return errors.New("--subject is required")
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cfg.Auth.PrivateKeyPath == "" {
				return errors.New("AUTH_PRIVATE_KEY_PATH is not set")
			}
			pem, err := os.ReadFile(cfg.Auth.PrivateKeyPath)
			if err != nil {
				return fmt.Errorf("read private key: %w", err)
			}

			ttl := opts.ttl
			if ttl <= 0 {
				ttl = cfg.Auth.TokenTTL
			}
			issuer, err := auth.NewIssuer(pem, cfg.Auth.Issuer, ttl)
			if err != nil {
				return err
			}
			token, err := issuer.Issue(auth.Identity{
				Subject:    opts.subject,
				GivenName:  opts.givenName,
				FamilyName: opts.familyName,
				Email:      opts.email,
			})
			if err != nil {
				return err
			}

			root.logger().Debug("token issued", "subject", opts.subject, "ttl", ttl)
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.subject, "subject", "", "owner id placed in the sub claim")
	cmd.Flags().StringVar(&opts.givenName, "given-name", "", "given_name claim")
	cmd.Flags().StringVar(&opts.familyName, "family-name", "", "family_name claim")
	cmd.Flags().StringVar(&opts.email, "email", "", "email claim")
	cmd.Flags().DurationVar(&opts.ttl, "ttl", 0, "token lifetime (defaults to AUTH_TOKEN_TTL)")
	return cmd
}
