package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"DocLedger/client"
)

var cmdHash = &cobra.Command{
	Use:   "hash <file>",
	Short: "Print the SHA-256 fingerprint of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fp, err := client.HashFile(args[0])
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), fp.Hex())

		return nil
	},
}

func init() {
	cmdMain.AddCommand(cmdHash)
}
