package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"DocLedger/internal/api"
	"DocLedger/internal/auth"
	"DocLedger/internal/events"
	"DocLedger/internal/ledger"
	"DocLedger/internal/logger"
	"DocLedger/internal/network"
	"DocLedger/internal/snapshot"
	"DocLedger/internal/storage"
)

// Node represents a running DocLedger node.
type Node struct {
	cfg         *Config
	storage     *storage.Storage
	log         *events.Log
	ledger      *ledger.Ledger
	guard       *auth.Guard
	snapshotKey *snapshot.KeyPair
	network     *network.Node
	feed        *network.Feed
	api         *api.Server
}

// NewNode creates and initializes a new node.
func NewNode(cfg *Config) (*Node, error) {
	n := &Node{cfg: cfg}

	if err := n.initStorage(); err != nil {
		n.Close()
		return nil, err
	}

	if err := n.initLedger(); err != nil {
		n.Close()
		return nil, err
	}

	if err := n.initNetwork(); err != nil {
		n.Close()
		return nil, err
	}

	n.api = api.New(cfg.HTTPAddress, n.ledger, n.log, n.guard, snapshot.NewExporter(n.storage, n.snapshotKey))

	return n, nil
}

// initStorage opens Pebble and applies -restore before anything reads it.
func (n *Node) initStorage() error {
	if err := os.MkdirAll(n.cfg.DataPath, 0755); err != nil {
		return fmt.Errorf("create data directory:\n%w", err)
	}

	db, err := storage.Open(filepath.Join(n.cfg.DataPath, "db"), storage.Options{AsyncBatches: n.cfg.AsyncWrites})
	if err != nil {
		return fmt.Errorf("init storage:\n%w", err)
	}

	n.storage = db

	if n.cfg.RestorePath != "" {
		return n.restore()
	}

	return nil
}

// restore loads the configured snapshot into the empty store.
func (n *Node) restore() error {
	start := time.Now()

	data, err := os.ReadFile(n.cfg.RestorePath)
	if err != nil {
		return fmt.Errorf("read snapshot:\n%w", err)
	}

	info, err := snapshot.Restore(data, n.storage, n.cfg.RestoreKey)
	if err != nil {
		return fmt.Errorf("restore %s:\n%w", n.cfg.RestorePath, err)
	}

	logger.Info("snapshot restored",
		"path", n.cfg.RestorePath,
		"head", info.Head.Seq,
		"pairs", info.Pairs,
		"checksum", fmt.Sprintf("%x", info.Checksum[:8]),
		logger.Timed(start),
	)

	return nil
}

// initLedger recovers the event head and builds the ledger over it.
func (n *Node) initLedger() error {
	log, err := events.Open(n.storage)
	if err != nil {
		return fmt.Errorf("open event log:\n%w", err)
	}

	key, err := snapshot.DeriveKey(n.cfg.PrivateKey)
	if err != nil {
		return fmt.Errorf("derive snapshot key:\n%w", err)
	}

	n.log = log
	n.snapshotKey = key
	n.ledger = ledger.New(n.storage, log, ledger.Config{AuditVerifications: n.cfg.AuditVerify})
	n.guard = auth.NewGuard(n.cfg.AuthWindow, nil)

	return nil
}

// initNetwork creates the QUIC feed endpoint unless it is disabled.
func (n *Node) initNetwork() error {
	if n.cfg.QUICAddress == "" {
		return nil
	}

	node, err := network.NewNode(network.Config{
		PrivateKey: n.cfg.PrivateKey,
		ListenAddr: n.cfg.QUICAddress,
	})
	if err != nil {
		return fmt.Errorf("init network:\n%w", err)
	}

	node.OnConnect(func(p *network.Peer) {
		logger.Info("feed subscriber connected", "addr", p.Address())
	})
	node.OnDisconnect(func(p *network.Peer) {
		logger.Debug("feed subscriber left", "addr", p.Address())
	})

	n.network = node
	n.feed = network.NewFeed(node, n.log)

	return nil
}

// Run starts the node and blocks until shutdown signal.
func (n *Node) Run() error {
	if n.network != nil {
		if err := n.network.Start(); err != nil {
			n.Close()
			return fmt.Errorf("start network:\n%w", err)
		}

		n.feed.Start(context.Background())
	}

	if err := n.api.Start(); err != nil {
		n.Close()
		return fmt.Errorf("start api:\n%w", err)
	}

	return n.waitForShutdown()
}

// waitForShutdown blocks until SIGINT or SIGTERM is received.
func (n *Node) waitForShutdown() error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", "signal", sig.String())

	return n.Close()
}

// Close shuts down all node components gracefully.
// HTTP stops first so no call commits after the feed and store are gone.
func (n *Node) Close() error {
	if n.api != nil {
		n.api.Stop()
	}

	if n.feed != nil {
		n.feed.Stop()
	}

	if n.network != nil {
		n.network.Close()
	}

	if n.guard != nil {
		n.guard.Close()
	}

	if n.storage != nil {
		return n.storage.Close()
	}

	return nil
}
