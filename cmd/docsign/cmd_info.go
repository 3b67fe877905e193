package main

import (
	"github.com/spf13/cobra"

	"DocLedger/internal/api"
)

var cmdInfo = &cobra.Command{
	Use:   "info <file|fingerprint>",
	Short: "Show a document and its signers",
	Args:  cobra.ExactArgs(1),
	RunE:  info,
}

// documentInfo is the output of info.
type documentInfo struct {
	api.DocumentJSON
	Signers []string `json:"signers"`
}

func init() {
	cmdMain.AddCommand(cmdInfo)
}

func info(cmd *cobra.Command, args []string) error {
	fp, err := resolveFingerprint(args[0])
	if err != nil {
		return err
	}

	c := nodeClient()

	doc, err := c.GetDocument(cmd.Context(), fp)
	if err != nil {
		return err
	}

	signers, err := c.GetSigners(cmd.Context(), fp)
	if err != nil {
		return err
	}

	out := documentInfo{DocumentJSON: doc, Signers: make([]string, len(signers))}
	for i, s := range signers {
		out.Signers[i] = s.Hex()
	}

	return printJSON(cmd.OutOrStdout(), out)
}
