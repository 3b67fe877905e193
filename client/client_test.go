package client

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"DocLedger/internal/api"
	"DocLedger/internal/auth"
	"DocLedger/internal/events"
	"DocLedger/internal/ledger"
	"DocLedger/internal/storage"
)

// newTestNode serves a fresh ledger over httptest and returns a client for it.
func newTestNode(t *testing.T, audit bool) *Client {
	t.Helper()

	db, err := storage.New(filepath.Join(t.TempDir(), "db"))
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	log, err := events.Open(db)
	if err != nil {
		t.Fatalf("open events: %v", err)
	}

	l := ledger.New(db, log, ledger.Config{AuditVerifications: audit})

	guard := auth.NewGuard(0, nil)
	t.Cleanup(guard.Close)

	srv := httptest.NewServer(api.New("", l, log, guard, nil).Handler())
	t.Cleanup(srv.Close)

	return NewClient(srv.URL)
}

func newTestWallet(t *testing.T) *Wallet {
	t.Helper()

	w, err := GenerateWallet()
	if err != nil {
		t.Fatalf("generate wallet: %v", err)
	}

	return w
}

func mustHash(t *testing.T, s string) ledger.Fingerprint {
	t.Helper()

	fp, err := HashReader(strings.NewReader(s))
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	return fp
}

// TestNewClient_Address verifies bare host:port gets a scheme.
func TestNewClient_Address(t *testing.T) {
	if c := NewClient("127.0.0.1:8080"); c.baseURL != "http://127.0.0.1:8080" {
		t.Errorf("baseURL = %q", c.baseURL)
	}

	if c := NewClient("https://node.example/"); c.baseURL != "https://node.example" {
		t.Errorf("baseURL = %q", c.baseURL)
	}
}

// TestHashReader verifies fingerprints are plain SHA-256.
func TestHashReader(t *testing.T) {
	fp := mustHash(t, "abc")

	want := "0xba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if fp.Hex() != want {
		t.Errorf("fingerprint = %s, want %s", fp.Hex(), want)
	}
}

// TestHashFile verifies file hashing matches reader hashing.
func TestHashFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contract.txt")
	w := newTestWallet(t)

	// Any file works; reuse the key file writer.
	if err := w.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	fp, err := HashFile(path)
	if err != nil {
		t.Fatalf("hash file: %v", err)
	}

	if fp != mustHash(t, w.KeyHex()+"\n") {
		t.Error("file fingerprint differs from reader fingerprint")
	}

	if _, err := HashFile(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing file")
	}
}

// TestWallet_SaveLoad verifies a saved key reloads to the same address.
func TestWallet_SaveLoad(t *testing.T) {
	w := newTestWallet(t)
	path := filepath.Join(t.TempDir(), "key")

	if err := w.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := LoadWalletFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if loaded.Address() != w.Address() {
		t.Errorf("address = %s, want %s", loaded.Address().Hex(), w.Address().Hex())
	}

	if _, err := LoadWallet("0xnothex"); err == nil {
		t.Error("expected error for malformed key")
	}
}

// TestClient_RegisterAndSign exercises the full document flow.
func TestClient_RegisterAndSign(t *testing.T) {
	c := newTestNode(t, false)
	ctx := context.Background()

	owner := newTestWallet(t)
	signer := newTestWallet(t)
	fp := mustHash(t, "lease agreement")

	reg, err := c.Register(ctx, owner, fp)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if reg.Kind != "DocumentRegistered" || reg.Actor != owner.Address().Hex() {
		t.Errorf("register event = %+v", reg)
	}

	if _, err := c.Sign(ctx, signer, fp); err != nil {
		t.Fatalf("sign: %v", err)
	}

	doc, err := c.GetDocument(ctx, fp)
	if err != nil {
		t.Fatalf("get document: %v", err)
	}

	if !doc.Registered || doc.Owner != owner.Address().Hex() || doc.SignerCount != 1 {
		t.Errorf("document = %+v", doc)
	}

	signers, err := c.GetSigners(ctx, fp)
	if err != nil || len(signers) != 1 || signers[0] != signer.Address() {
		t.Errorf("signers = %v, %v", signers, err)
	}

	rec, err := c.GetSignature(ctx, fp, signer.Address())
	if err != nil || !rec.Signed {
		t.Fatalf("signature = %+v, %v", rec, err)
	}

	none, err := c.GetSignature(ctx, fp, owner.Address())
	if err != nil || none.Signed {
		t.Errorf("owner signature = %+v, %v", none, err)
	}
}

// TestClient_Rejections verifies node refusals surface as RejectedError.
func TestClient_Rejections(t *testing.T) {
	c := newTestNode(t, false)
	ctx := context.Background()

	w := newTestWallet(t)
	fp := mustHash(t, "invoice")

	_, err := c.Sign(ctx, w, fp)
	if !IsRejected(err, ledger.CodeUnknownDocument) {
		t.Errorf("sign unknown: err = %v", err)
	}

	if _, err := c.Register(ctx, w, fp); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err = c.Register(ctx, w, fp)

	var rej *RejectedError
	if !errors.As(err, &rej) || rej.Status != http.StatusConflict || rej.Code != ledger.CodeAlreadyRegistered {
		t.Errorf("register twice: err = %v", err)
	}

	other := newTestWallet(t)
	foreign, _ := other.SignFingerprint(fp)

	if _, err := c.SubmitSignature(ctx, w, fp, foreign); !IsRejected(err, ledger.CodeSignatureMismatch) {
		t.Errorf("foreign signature: err = %v", err)
	}

	if _, err := c.Sign(ctx, w, fp); err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := c.Sign(ctx, w, fp); !IsRejected(err, ledger.CodeAlreadySigned) {
		t.Errorf("sign twice: err = %v", err)
	}
}

// TestClient_RepeatedCalls verifies identical calls in one second reach
// the ledger instead of being refused as replays.
func TestClient_RepeatedCalls(t *testing.T) {
	c := newTestNode(t, false)
	ctx := context.Background()

	w := newTestWallet(t)
	now := time.Now()
	w.clock = func() time.Time { return now }

	fp := mustHash(t, "retry")

	if _, err := c.Sign(ctx, w, fp); !IsRejected(err, ledger.CodeUnknownDocument) {
		t.Errorf("sign unknown: err = %v", err)
	}

	if _, err := c.Register(ctx, w, fp); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := c.Register(ctx, w, fp); !IsRejected(err, ledger.CodeAlreadyRegistered) {
		t.Errorf("register twice: err = %v", err)
	}

	if _, err := c.Sign(ctx, w, fp); err != nil {
		t.Fatalf("sign retry: %v", err)
	}
}

// TestClient_Verify verifies the pure check against recorded signatures.
func TestClient_Verify(t *testing.T) {
	c := newTestNode(t, false)
	ctx := context.Background()

	w := newTestWallet(t)
	fp := mustHash(t, "will")
	sig, _ := w.SignFingerprint(fp)

	// Verification does not require the document to exist.
	ok, err := c.Verify(ctx, fp, w.Address(), sig)
	if err != nil || !ok {
		t.Errorf("verify = %v, %v; want true", ok, err)
	}

	ok, err = c.Verify(ctx, mustHash(t, "other"), w.Address(), sig)
	if err != nil || ok {
		t.Errorf("verify other = %v, %v; want false", ok, err)
	}

	if _, err := c.AuditVerify(ctx, w, fp, w.Address(), sig); !IsRejected(err, ledger.CodeAuditDisabled) {
		t.Errorf("audit disabled: err = %v", err)
	}
}

// TestClient_AuditVerify verifies audited checks are recorded as events.
func TestClient_AuditVerify(t *testing.T) {
	c := newTestNode(t, true)
	ctx := context.Background()

	owner := newTestWallet(t)
	auditor := newTestWallet(t)
	fp := mustHash(t, "deed")

	if _, err := c.Register(ctx, owner, fp); err != nil {
		t.Fatalf("register: %v", err)
	}

	sig, _ := owner.SignFingerprint(fp)

	resp, err := c.AuditVerify(ctx, auditor, fp, owner.Address(), sig)
	if err != nil {
		t.Fatalf("audit verify: %v", err)
	}

	if !resp.Valid || resp.Event == nil || resp.Event.Actor != auditor.Address().Hex() {
		t.Errorf("audit = %+v", resp)
	}

	page, err := c.Events(ctx, 0, 0)
	if err != nil {
		t.Fatalf("events: %v", err)
	}

	if page.Head != 2 || len(page.Events) != 2 || page.Events[1].Kind != "DocumentVerified" {
		t.Errorf("events = %+v", page)
	}

	status, err := c.Status(ctx, true)
	if err != nil {
		t.Fatalf("status: %v", err)
	}

	if status.Head != 2 || !status.ChainChecked || !status.ChainValid || !status.AuditVerifications {
		t.Errorf("status = %+v", status)
	}
}

// TestClient_SnapshotUnavailable verifies a node without snapshots refuses.
func TestClient_SnapshotUnavailable(t *testing.T) {
	c := newTestNode(t, false)

	var buf bytes.Buffer
	err := c.Snapshot(context.Background(), &buf)

	var rej *RejectedError
	if !errors.As(err, &rej) || rej.Status != http.StatusServiceUnavailable {
		t.Errorf("snapshot: err = %v", err)
	}
}
