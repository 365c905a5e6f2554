package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/procount/internal/store"
)

// SeedOptions holds flags for the seed command.
type SeedOptions struct {
	*RootOptions
	Catalog string
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the product catalog",
		Long: `Insert a product catalog into an empty store. A store that already holds
products is left alone. Seeded products are not queued for sync.

Example:
  procount seed --db ./shop.db
  procount seed --catalog ./catalog.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "YAML catalog file (default: built-in demo catalog)")

	return cmd
}

func runSeed(opts *SeedOptions, cmd *cobra.Command) error {
	products, err := store.DefaultCatalog()
	if opts.Catalog != "" {
		data, readErr := os.ReadFile(opts.Catalog)
		if readErr != nil {
			return WrapExitError(ExitCommandError, "failed to read catalog", readErr)
		}
		products, err = store.LoadCatalog(data)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid catalog", err)
	}

	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer opts.closeStore(st)

	n, err := st.Seed(context.Background(), products)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to seed store", err)
	}

	text := fmt.Sprintf("Seeded %d products.\n", n)
	if n == 0 {
		text = "Store already has products; nothing seeded.\n"
	}
	return opts.formatter(cmd).Text(map[string]int{"seeded": n}, text)
}
