package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cmdStatus = &cobra.Command{
	Use:   "status",
	Short: "Show the node's event head and audit mode",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		status, err := nodeClient().Status(cmd.Context(), flagStatus.VerifyChain)
		if err != nil {
			return err
		}

		return printJSON(cmd.OutOrStdout(), status)
	},
}

var flagStatus struct {
	VerifyChain bool
}

var cmdSnapshot = &cobra.Command{
	Use:   "snapshot <out-file>",
	Short: "Download an attested state snapshot for -restore",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Create(args[0])
		if err != nil {
			return fmt.Errorf("create %s:\n%w", args[0], err)
		}

		if err := nodeClient().Snapshot(cmd.Context(), f); err != nil {
			f.Close()
			os.Remove(args[0])
			return err
		}

		return f.Close()
	},
}

func init() {
	cmdMain.AddCommand(cmdStatus, cmdSnapshot)

	cmdStatus.Flags().BoolVar(&flagStatus.VerifyChain, "verify-chain", false, "Have the node walk its event chain")
}
