// Command docsign registers, signs and verifies documents on a DocLedger node.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"DocLedger/client"
	"DocLedger/internal/ledger"
)

var cmdMain = &cobra.Command{
	Use:           "docsign",
	Short:         "DocLedger document signing client",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var flagMain struct {
	Node string
	Key  string
}

func init() {
	cmdMain.PersistentFlags().StringVarP(&flagMain.Node, "node", "n", "127.0.0.1:8080", "Node HTTP address")
	cmdMain.PersistentFlags().StringVarP(&flagMain.Key, "key", "k", "docsign.key", "Wallet key file")
}

func main() {
	if err := cmdMain.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// nodeClient returns a client for the --node address.
func nodeClient() *client.Client {
	return client.NewClient(flagMain.Node)
}

// loadWallet reads the --key file.
func loadWallet() (*client.Wallet, error) {
	w, err := client.LoadWalletFile(flagMain.Key)
	if err != nil {
		return nil, fmt.Errorf("load wallet %s (run docsign keygen):\n%w", flagMain.Key, err)
	}

	return w, nil
}

// resolveFingerprint accepts a 0x-prefixed fingerprint or a file to hash.
func resolveFingerprint(arg string) (ledger.Fingerprint, error) {
	if strings.HasPrefix(arg, "0x") && len(arg) == 66 {
		return ledger.ParseFingerprint(arg)
	}

	return client.HashFile(arg)
}

// printJSON writes v indented.
func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}
