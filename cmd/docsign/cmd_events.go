package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"DocLedger/internal/api"
	"DocLedger/internal/ethsig"
	"DocLedger/internal/events"
	"DocLedger/internal/network"
)

var cmdEvents = &cobra.Command{
	Use:   "events",
	Short: "List ledger events, or follow them live over the QUIC feed",
	Args:  cobra.NoArgs,
	RunE:  listEvents,
}

var flagEvents struct {
	From   uint64
	Limit  int
	Follow bool
	Feed   string
}

func init() {
	cmdMain.AddCommand(cmdEvents)

	cmdEvents.Flags().Uint64Var(&flagEvents.From, "from", 1, "First sequence number")
	cmdEvents.Flags().IntVar(&flagEvents.Limit, "limit", 0, "Page size (node default when 0)")
	cmdEvents.Flags().BoolVarP(&flagEvents.Follow, "follow", "f", false, "Stream events as they are committed")
	cmdEvents.Flags().StringVar(&flagEvents.Feed, "feed", "127.0.0.1:9000", "Node QUIC feed address for --follow")
}

func listEvents(cmd *cobra.Command, _ []string) error {
	if flagEvents.Follow {
		return followEvents(cmd)
	}

	page, err := nodeClient().Events(cmd.Context(), flagEvents.From, flagEvents.Limit)
	if err != nil {
		return err
	}

	return printJSON(cmd.OutOrStdout(), page)
}

// followEvents replays from --from then prints live events, one JSON
// object per line, until interrupted.
func followEvents(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	head, err := startHead(ctx, flagEvents.From)
	if err != nil {
		return err
	}

	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return fmt.Errorf("generate feed identity:\n%w", err)
	}

	node, err := network.NewNode(network.Config{PrivateKey: key})
	if err != nil {
		return err
	}
	defer node.Close()

	enc := json.NewEncoder(cmd.OutOrStdout())

	follower := network.NewFollower(node, head, func(e events.Event) error {
		return enc.Encode(api.NewEventJSON(e))
	})

	err = follower.Run(ctx, flagEvents.Feed)
	if errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}

// startHead returns the chain position just before seq from, read over HTTP
// so the follower can check the first event it receives.
func startHead(ctx context.Context, from uint64) (events.Head, error) {
	if from <= 1 {
		return events.Head{}, nil
	}

	page, err := nodeClient().Events(ctx, from-1, 1)
	if err != nil {
		return events.Head{}, err
	}

	if len(page.Events) == 0 {
		return events.Head{}, fmt.Errorf("event %d not found, node head is %d", from-1, page.Head)
	}

	raw, err := ethsig.ParseHex(page.Events[0].Hash)
	if err != nil || len(raw) != 32 {
		return events.Head{}, fmt.Errorf("event %d: malformed hash %q", from-1, page.Events[0].Hash)
	}

	head := events.Head{Seq: page.Events[0].Seq}
	copy(head.Hash[:], raw)

	return head, nil
}
