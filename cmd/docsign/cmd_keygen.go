package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"DocLedger/client"
)

var cmdKeygen = &cobra.Command{
	Use:   "keygen",
	Short: "Create a wallet key file",
	Args:  cobra.NoArgs,
	RunE:  keygen,
}

var flagKeygen struct {
	Force bool
}

func init() {
	cmdMain.AddCommand(cmdKeygen)

	cmdKeygen.Flags().BoolVar(&flagKeygen.Force, "force", false, "Overwrite an existing key file")
}

func keygen(cmd *cobra.Command, _ []string) error {
	if _, err := os.Stat(flagMain.Key); err == nil && !flagKeygen.Force {
		return fmt.Errorf("%s already exists, use --force to overwrite", flagMain.Key)
	}

	w, err := client.GenerateWallet()
	if err != nil {
		return err
	}

	if err := w.Save(flagMain.Key); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), w.Address().Hex())

	return nil
}
