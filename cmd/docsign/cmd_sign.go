package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"DocLedger/internal/ethsig"
)

var cmdSign = &cobra.Command{
	Use:   "sign <file|fingerprint>",
	Short: "Sign a registered document with the wallet",
	Args:  cobra.ExactArgs(1),
	RunE:  sign,
}

var flagSign struct {
	Signature string
	Offline   bool
}

func init() {
	cmdMain.AddCommand(cmdSign)

	cmdSign.Flags().StringVar(&flagSign.Signature, "signature", "", "Submit a signature produced by another wallet app")
	cmdSign.Flags().BoolVar(&flagSign.Offline, "offline", false, "Print the signature without submitting it")
}

func sign(cmd *cobra.Command, args []string) error {
	fp, err := resolveFingerprint(args[0])
	if err != nil {
		return err
	}

	w, err := loadWallet()
	if err != nil {
		return err
	}

	if flagSign.Offline {
		sig, err := w.SignFingerprint(fp)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), ethsig.EncodeHex(sig))

		return nil
	}

	if flagSign.Signature == "" {
		e, err := nodeClient().Sign(cmd.Context(), w, fp)
		if err != nil {
			return err
		}

		return printJSON(cmd.OutOrStdout(), e)
	}

	sig, err := ethsig.ParseHex(flagSign.Signature)
	if err != nil {
		return fmt.Errorf("signature:\n%w", err)
	}

	e, err := nodeClient().SubmitSignature(cmd.Context(), w, fp, sig)
	if err != nil {
		return err
	}

	return printJSON(cmd.OutOrStdout(), e)
}
