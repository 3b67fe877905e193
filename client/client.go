// Package client talks to a DocLedger node over its HTTP API.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"DocLedger/internal/api"
	"DocLedger/internal/auth"
	"DocLedger/internal/ethsig"
	"DocLedger/internal/ledger"
)

// Client connects to a DocLedger node via HTTP.
type Client struct {
	baseURL string       // baseURL is the node root (e.g. "http://127.0.0.1:8080")
	http    *http.Client // http performs requests
}

// NewClient creates a client for nodeAddr, given as host:port or a URL.
func NewClient(nodeAddr string) *Client {
	base := strings.TrimRight(nodeAddr, "/")
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}

	return &Client{
		baseURL: base,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Register records fp as a new document owned by w.
func (c *Client) Register(ctx context.Context, w *Wallet, fp ledger.Fingerprint) (api.EventJSON, error) {
	env, err := w.Envelope(auth.OpRegister, fp, ethsig.Address{}, nil)
	if err != nil {
		return api.EventJSON{}, err
	}

	var e api.EventJSON
	if err := c.postJSON(ctx, "/documents", env, &e); err != nil {
		return api.EventJSON{}, fmt.Errorf("register %s:\n%w", fp.Hex(), err)
	}

	return e, nil
}

// Sign signs fp with w and records the signature.
func (c *Client) Sign(ctx context.Context, w *Wallet, fp ledger.Fingerprint) (api.EventJSON, error) {
	sig, err := w.SignFingerprint(fp)
	if err != nil {
		return api.EventJSON{}, err
	}

	return c.SubmitSignature(ctx, w, fp, sig)
}

// SubmitSignature records a signature produced elsewhere, such as a
// browser wallet. The node checks it recovers to w's address.
func (c *Client) SubmitSignature(ctx context.Context, w *Wallet, fp ledger.Fingerprint, sig []byte) (api.EventJSON, error) {
	env, err := w.Envelope(auth.OpSign, fp, ethsig.Address{}, sig)
	if err != nil {
		return api.EventJSON{}, err
	}

	var e api.EventJSON
	if err := c.postJSON(ctx, "/documents/"+fp.Hex()+"/signatures", env, &e); err != nil {
		return api.EventJSON{}, fmt.Errorf("sign %s:\n%w", fp.Hex(), err)
	}

	return e, nil
}

// Verify asks the node whether sig is signer's signature over fp.
// Nothing is recorded.
func (c *Client) Verify(ctx context.Context, fp ledger.Fingerprint, signer ethsig.Address, sig []byte) (bool, error) {
	req := api.VerifyRequest{
		Fingerprint: fp.Hex(),
		Signer:      signer.Hex(),
		Signature:   ethsig.EncodeHex(sig),
	}

	var resp api.VerifyJSON
	if err := c.postJSON(ctx, "/verify", req, &resp); err != nil {
		return false, fmt.Errorf("verify %s:\n%w", fp.Hex(), err)
	}

	return resp.Valid, nil
}

// AuditVerify verifies sig and has the node record the check as w.
func (c *Client) AuditVerify(ctx context.Context, w *Wallet, fp ledger.Fingerprint, signer ethsig.Address, sig []byte) (api.VerifyJSON, error) {
	env, err := w.Envelope(auth.OpVerify, fp, signer, sig)
	if err != nil {
		return api.VerifyJSON{}, err
	}

	var resp api.VerifyJSON
	if err := c.postJSON(ctx, "/verify/audit", env, &resp); err != nil {
		return api.VerifyJSON{}, fmt.Errorf("audit verify %s:\n%w", fp.Hex(), err)
	}

	return resp, nil
}

// GetDocument returns the document record of fp.
func (c *Client) GetDocument(ctx context.Context, fp ledger.Fingerprint) (api.DocumentJSON, error) {
	var doc api.DocumentJSON
	if err := c.getJSON(ctx, "/documents/"+fp.Hex(), &doc); err != nil {
		return api.DocumentJSON{}, fmt.Errorf("get document:\n%w", err)
	}

	return doc, nil
}

// GetSigners returns the signers of fp in signing order.
func (c *Client) GetSigners(ctx context.Context, fp ledger.Fingerprint) ([]ethsig.Address, error) {
	var resp api.SignersJSON
	if err := c.getJSON(ctx, "/documents/"+fp.Hex()+"/signers", &resp); err != nil {
		return nil, fmt.Errorf("get signers:\n%w", err)
	}

	out := make([]ethsig.Address, len(resp.Signers))
	for i, s := range resp.Signers {
		addr, err := ethsig.ParseAddress(s)
		if err != nil {
			return nil, fmt.Errorf("get signers:\n%w", err)
		}
		out[i] = addr
	}

	return out, nil
}

// GetSignature returns who's signature on fp. Signed is false if none.
func (c *Client) GetSignature(ctx context.Context, fp ledger.Fingerprint, who ethsig.Address) (api.SignatureJSON, error) {
	var resp api.SignatureJSON
	if err := c.getJSON(ctx, "/documents/"+fp.Hex()+"/signatures/"+who.Hex(), &resp); err != nil {
		return api.SignatureJSON{}, fmt.Errorf("get signature:\n%w", err)
	}

	return resp, nil
}

// Events returns up to limit events starting at seq from.
// A zero limit uses the node default.
func (c *Client) Events(ctx context.Context, from uint64, limit int) (api.EventsJSON, error) {
	q := url.Values{}
	q.Set("from", fmt.Sprint(from))
	if limit > 0 {
		q.Set("limit", fmt.Sprint(limit))
	}

	var resp api.EventsJSON
	if err := c.getJSON(ctx, "/events?"+q.Encode(), &resp); err != nil {
		return api.EventsJSON{}, fmt.Errorf("get events:\n%w", err)
	}

	return resp, nil
}

// Status returns the node status. verifyChain asks the node to walk
// its event chain first.
func (c *Client) Status(ctx context.Context, verifyChain bool) (api.StatusJSON, error) {
	path := "/status"
	if verifyChain {
		path += "?verify=1"
	}

	var resp api.StatusJSON
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return api.StatusJSON{}, fmt.Errorf("get status:\n%w", err)
	}

	return resp, nil
}

// Snapshot streams the node's state snapshot into out.
func (c *Client) Snapshot(ctx context.Context, out io.Writer) error {
	resp, err := c.send(ctx, http.MethodGet, "/snapshot", nil)
	if err != nil {
		return fmt.Errorf("get snapshot:\n%w", err)
	}
	defer resp.Body.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("read snapshot:\n%w", err)
	}

	return nil
}
