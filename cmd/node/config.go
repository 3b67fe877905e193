package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"DocLedger/internal/auth"
	"DocLedger/internal/logger"
)

// Config holds the node configuration.
type Config struct {
	// DataPath is the directory for persistent storage.
	DataPath string

	// HTTPAddress is the HTTP API listen address.
	HTTPAddress string

	// QUICAddress is the event feed listen address. Empty disables the feed.
	QUICAddress string

	// KeyPath holds the hex ed25519 seed. It is created on first start.
	KeyPath string

	// PrivateKey is the node's Ed25519 identity key.
	PrivateKey ed25519.PrivateKey

	// AuditVerify enables recorded verifications.
	AuditVerify bool

	// AsyncWrites lets commits return before the WAL is synced.
	AsyncWrites bool

	// RestorePath is a snapshot to load into an empty data directory.
	RestorePath string

	// RestoreKey is the BLS public key the snapshot must be attested by.
	RestoreKey []byte

	// LogLevel filters log output.
	LogLevel slog.Level

	// AuthWindow bounds envelope clock drift.
	AuthWindow time.Duration
}

// parseFlags parses command-line arguments into Config.
func parseFlags(args []string) (*Config, error) {
	cfg := &Config{}
	flags := flag.NewFlagSet("docledger-node", flag.ContinueOnError)

	var logLevel, restoreKey string

	flags.StringVar(&cfg.DataPath, "data", "./data", "Data directory path")
	flags.StringVar(&cfg.HTTPAddress, "http", ":8080", "HTTP API address")
	flags.StringVar(&cfg.QUICAddress, "quic", ":9000", "QUIC event feed address (empty disables)")
	flags.StringVar(&cfg.KeyPath, "key", "", "Hex ed25519 seed file (created if missing)")
	flags.BoolVar(&cfg.AuditVerify, "audit-verify", false, "Record audited verifications as events")
	flags.BoolVar(&cfg.AsyncWrites, "async-writes", false, "Answer calls before their batch reaches disk")
	flags.StringVar(&cfg.RestorePath, "restore", "", "Snapshot file to restore into an empty data directory")
	flags.StringVar(&restoreKey, "restore-key", "", "Hex BLS public key the snapshot must be attested by")
	flags.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flags.DurationVar(&cfg.AuthWindow, "auth-window", auth.DefaultWindow, "Accepted envelope clock drift")

	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	level, err := logger.ParseLevel(logLevel)
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	if restoreKey != "" {
		if cfg.RestorePath == "" {
			return nil, fmt.Errorf("-restore-key requires -restore")
		}

		cfg.RestoreKey, err = hex.DecodeString(strings.TrimPrefix(restoreKey, "0x"))
		if err != nil {
			return nil, fmt.Errorf("restore key:\n%w", err)
		}
	}

	if cfg.AuthWindow <= 0 {
		return nil, fmt.Errorf("auth window must be positive, got %s", cfg.AuthWindow)
	}

	return cfg, nil
}

// loadOrGenerateKey returns the node key stored at keyPath as a hex
// seed, creating the file on first start. An empty path yields a key
// that lives only as long as the process.
func loadOrGenerateKey(keyPath string) (ed25519.PrivateKey, error) {
	if keyPath == "" {
		return newNodeKey()
	}

	data, err := os.ReadFile(keyPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		key, err := newNodeKey()
		if err != nil {
			return nil, err
		}

		seed := hex.EncodeToString(key.Seed()) + "\n"
		if err := os.WriteFile(keyPath, []byte(seed), 0600); err != nil {
			return nil, fmt.Errorf("save key to %s:\n%w", keyPath, err)
		}

		return key, nil
	case err != nil:
		return nil, fmt.Errorf("read key file:\n%w", err)
	}

	seed, err := hex.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("key file %s:\n%w", keyPath, err)
	}

	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("key file %s: seed is %d bytes, want %d", keyPath, len(seed), ed25519.SeedSize)
	}

	return ed25519.NewKeyFromSeed(seed), nil
}

func newNodeKey() (ed25519.PrivateKey, error) {
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate key:\n%w", err)
	}

	return key, nil
}
