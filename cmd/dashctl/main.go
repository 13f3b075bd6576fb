package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dashctl",
		Short: "Operate the lead dashboard store",
		Long: `dashctl inspects and seeds the lead dashboard.

Available commands:
  classify - Print the delayed-lead report for a lead file
  import   - Replace the stored leads or pipeline stages
  operator - Manage dashboard operators`,
		SilenceUsage: true,
	}
	rootCmd.AddCommand(newClassifyCmd(), newImportCmd(), newOperatorCmd())
	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
