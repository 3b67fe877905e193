package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"DocLedger/internal/api"
	"DocLedger/internal/ethsig"
)

var cmdVerify = &cobra.Command{
	Use:   "verify <file|fingerprint> <signer> [signature]",
	Short: "Check a signature over a document",
	Long: "Checks that signature recovers to signer. Without a signature the one " +
		"recorded on the node for signer is checked.",
	Args: cobra.RangeArgs(2, 3),
	RunE: verify,
}

var flagVerify struct {
	Audit bool
}

func init() {
	cmdMain.AddCommand(cmdVerify)

	cmdVerify.Flags().BoolVar(&flagVerify.Audit, "audit", false, "Have the node record the verification")
}

func verify(cmd *cobra.Command, args []string) error {
	fp, err := resolveFingerprint(args[0])
	if err != nil {
		return err
	}

	signer, err := ethsig.ParseAddress(args[1])
	if err != nil {
		return err
	}

	c := nodeClient()

	var sig []byte

	if len(args) == 3 {
		if sig, err = ethsig.ParseHex(args[2]); err != nil {
			return fmt.Errorf("signature:\n%w", err)
		}
	} else {
		rec, err := c.GetSignature(cmd.Context(), fp, signer)
		if err != nil {
			return err
		}

		if !rec.Signed {
			return fmt.Errorf("%s has not signed %s", signer.Hex(), fp.Hex())
		}

		if sig, err = ethsig.ParseHex(rec.Signature); err != nil {
			return fmt.Errorf("recorded signature:\n%w", err)
		}
	}

	if !flagVerify.Audit {
		valid, err := c.Verify(cmd.Context(), fp, signer, sig)
		if err != nil {
			return err
		}

		return printJSON(cmd.OutOrStdout(), api.VerifyJSON{Valid: valid})
	}

	w, err := loadWallet()
	if err != nil {
		return err
	}

	resp, err := c.AuditVerify(cmd.Context(), w, fp, signer, sig)
	if err != nil {
		return err
	}

	return printJSON(cmd.OutOrStdout(), resp)
}
