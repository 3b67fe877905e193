package main

import (
	"github.com/spf13/cobra"
)

var cmdRegister = &cobra.Command{
	Use:   "register <file|fingerprint>",
	Short: "Register a document as owned by the wallet",
	Args:  cobra.ExactArgs(1),
	RunE:  register,
}

func init() {
	cmdMain.AddCommand(cmdRegister)
}

func register(cmd *cobra.Command, args []string) error {
	fp, err := resolveFingerprint(args[0])
	if err != nil {
		return err
	}

	w, err := loadWallet()
	if err != nil {
		return err
	}

	e, err := nodeClient().Register(cmd.Context(), w, fp)
	if err != nil {
		return err
	}

	return printJSON(cmd.OutOrStdout(), e)
}
