package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/crypto"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/x/wallet"
)

// Client is using HTTP transport to communicate with a walletd instance.
// Requests changing state are signed with the key of the client.
type Client struct {
	apiURL string
	cli    http.Client
	signer crypto.Signer
	now    func() time.Time
}

// NewClient returns a client of the walletd instance at apiURL. signer
// may be nil for a client that only reads.
func NewClient(apiURL string, signer crypto.Signer) *Client {
	return &Client{
		apiURL: strings.TrimSuffix(apiURL, "/"),
		signer: signer,
		now:    time.Now,
	}
}

// Address returns the address the wallet sees as the caller of signed
// requests.
func (c *Client) Address() custody.Address {
	if c.signer == nil {
		return nil
	}
	return c.signer.PublicKey().Address()
}

func (c *Client) get(ctx context.Context, path string, dest interface{}) error {
	req, err := http.NewRequest("GET", c.apiURL+path, nil)
	if err != nil {
		return errors.Wrap(err, "create http request")
	}
	return c.do(req.WithContext(ctx), dest)
}

func (c *Client) post(ctx context.Context, path string, payload, dest interface{}) error {
	if c.signer == nil {
		return errors.Wrap(errors.ErrUnauthorized, "client without a key cannot sign")
	}
	var body []byte
	if payload != nil {
		var err error
		if body, err = json.Marshal(payload); err != nil {
			return errors.Wrap(err, "encode request")
		}
	}
	req, err := http.NewRequest("POST", c.apiURL+path, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "create http request")
	}
	req.Header.Set("Content-Type", "application/json")
	if err := Sign(req, body, c.signer, c.now()); err != nil {
		return err
	}
	return c.do(req.WithContext(ctx), dest)
}

func (c *Client) do(req *http.Request, dest interface{}) error {
	resp, err := c.cli.Do(req)
	if err != nil {
		return errors.Wrap(err, "do request")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := ioutil.ReadAll(io.LimitReader(resp.Body, 1e5))
		var e ErrorResponse
		if err := json.Unmarshal(b, &e); err != nil || e.Code == 0 {
			return errors.Wrapf(errors.ErrDatabase, "bad response: %d %s", resp.StatusCode, string(b))
		}
		return errors.FromCode(e.Code, strings.Join(e.Errors, "; "))
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1e6)).Decode(dest); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}

// Info returns the build information of the instance.
func (c *Client) Info(ctx context.Context) (*Info, error) {
	var info Info
	if err := c.get(ctx, "/info", &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Wallet returns the state of the wallet.
func (c *Client) Wallet(ctx context.Context) (*WalletInfo, error) {
	var info WalletInfo
	if err := c.get(ctx, "/v1/wallet", &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// IsOwner returns true if addr is an owner of the wallet.
func (c *Client) IsOwner(ctx context.Context, addr custody.Address) (bool, error) {
	var resp FlagResponse
	err := c.get(ctx, "/v1/owners/"+url.PathEscape(addr.String()), &resp)
	return resp.Value, err
}

// Submit adds a transaction and returns its index.
func (c *Client) Submit(ctx context.Context, to custody.Address, amount uint64, payload []byte, kind wallet.AssetKind) (uint64, error) {
	var resp IndexResponse
	err := c.post(ctx, "/v1/transactions", SubmitRequest{
		To:      to,
		Amount:  amount,
		Payload: payload,
		Asset:   kind,
	}, &resp)
	if err != nil {
		return 0, err
	}
	return resp.Index, nil
}

// Confirm confirms the transaction at index.
func (c *Client) Confirm(ctx context.Context, index uint64) error {
	return c.post(ctx, fmt.Sprintf("/v1/transactions/%d/confirm", index), nil, nil)
}

// Revoke revokes the confirmation of the transaction at index.
func (c *Client) Revoke(ctx context.Context, index uint64) error {
	return c.post(ctx, fmt.Sprintf("/v1/transactions/%d/revoke", index), nil, nil)
}

// Execute executes the transaction at index.
func (c *Client) Execute(ctx context.Context, index uint64) error {
	return c.post(ctx, fmt.Sprintf("/v1/transactions/%d/execute", index), nil, nil)
}

// Transaction returns the transaction at index.
func (c *Client) Transaction(ctx context.Context, index uint64) (*Transaction, error) {
	var tx Transaction
	if err := c.get(ctx, fmt.Sprintf("/v1/transactions/%d", index), &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// Transactions returns the indices of transactions with given status,
// which is "pending", "executed" or empty for all.
func (c *Client) Transactions(ctx context.Context, status string) ([]uint64, error) {
	path := "/v1/transactions"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}
	var resp IndicesResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Indices, nil
}

// Confirmations returns the owners that confirmed the transaction at index.
func (c *Client) Confirmations(ctx context.Context, index uint64) ([]custody.Address, error) {
	var resp OwnersResponse
	if err := c.get(ctx, fmt.Sprintf("/v1/transactions/%d/confirmations", index), &resp); err != nil {
		return nil, err
	}
	return resp.Owners, nil
}

// IsConfirmed returns true if owner confirmed the transaction at index.
func (c *Client) IsConfirmed(ctx context.Context, index uint64, owner custody.Address) (bool, error) {
	var resp FlagResponse
	err := c.get(ctx, fmt.Sprintf("/v1/transactions/%d/confirmations/%s", index, url.PathEscape(owner.String())), &resp)
	return resp.Value, err
}

// CashBalance returns the native balance of addr.
func (c *Client) CashBalance(ctx context.Context, addr custody.Address) (*Balance, error) {
	var b Balance
	if err := c.get(ctx, "/v1/cash/"+url.PathEscape(addr.String()), &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// CashTransfer moves native funds from the client account.
func (c *Client) CashTransfer(ctx context.Context, to custody.Address, amount uint64) error {
	return c.post(ctx, "/v1/cash/transfer", TransferRequest{To: to, Amount: amount}, nil)
}

// Token returns the token contract of the wallet.
func (c *Client) Token(ctx context.Context) (*TokenInfo, error) {
	var info TokenInfo
	if err := c.get(ctx, "/v1/token", &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// TokenBalance returns the token balance of addr.
func (c *Client) TokenBalance(ctx context.Context, addr custody.Address) (*Balance, error) {
	var b Balance
	if err := c.get(ctx, "/v1/token/"+url.PathEscape(addr.String()), &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// TokenTransfer moves tokens from the client account.
func (c *Client) TokenTransfer(ctx context.Context, to custody.Address, amount uint64) error {
	return c.post(ctx, "/v1/token/transfer", TransferRequest{To: to, Amount: amount}, nil)
}

// TokenTransferDisplay sends tokens from the signer to another account.
// value is given in whole tokens, for example "1.5".
func (c *Client) TokenTransferDisplay(ctx context.Context, to custody.Address, value string) error {
	return c.post(ctx, "/v1/token/transfer", TransferRequest{To: to, Display: value}, nil)
}

// Events streams the events of the wallet until ctx is cancelled or the
// connection is lost. The channel is closed in both cases.
func (c *Client) Events(ctx context.Context) (<-chan wallet.Event, error) {
	u := "ws" + strings.TrimPrefix(c.apiURL, "http") + "/v1/events"
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "dial events")
	}

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		conn.Close()
	}()

	events := make(chan wallet.Event)
	go func() {
		defer close(events)
		defer close(done)
		for {
			var ev wallet.Event
			if err := conn.ReadJSON(&ev); err != nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events, nil
}
