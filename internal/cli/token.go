package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/procount/internal/auth"
	"github.com/roach88/procount/internal/domain"
)

// TokenOptions holds flags for the token command.
type TokenOptions struct {
	*RootOptions
	Tenant  string
	Subject string
	TTL     time.Duration

	// Clock overrides the issue time (for testing).
	Clock domain.Clock
}

// NewTokenCommand creates the token command.
func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TokenOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a sync token for a tenant",
		Long: `Sign a bearer token with PROCOUNT_JWT_SECRET that lets a client sync as
the given tenant. Set it as PROCOUNT_API_TOKEN on the client.

Example:
  procount token --tenant c1 --subject till-1 --ttl 720h`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToken(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Tenant, "tenant", "", "tenant (company id) the token is scoped to (required)")
	cmd.Flags().StringVar(&opts.Subject, "subject", "", "token subject, e.g. a device name")
	cmd.Flags().DurationVar(&opts.TTL, "ttl", 0, "lifetime; 0 never expires")
	_ = cmd.MarkFlagRequired("tenant")

	return cmd
}

func runToken(opts *TokenOptions, cmd *cobra.Command) error {
	secret := opts.Config.Remote.JWTSecret
	if secret == "" {
		return NewExitError(ExitCommandError, "PROCOUNT_JWT_SECRET is not set")
	}
	clock := opts.Clock
	if clock == nil {
		clock = domain.SystemClock{}
	}

	token, err := auth.IssueToken([]byte(secret), opts.Tenant, opts.Subject, clock.Now(), opts.TTL)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to issue token", err)
	}
	return opts.formatter(cmd).Text(map[string]string{"token": token, "tenantId": opts.Tenant}, token+"\n")
}
