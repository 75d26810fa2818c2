package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/client"
	"github.com/iov-one/custody/cmd/walletd/app"
	"github.com/iov-one/custody/crypto"
	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/x/wallet"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
)

type testServer struct {
	app  *app.Application
	url  string
	keys []crypto.PrivateKey
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	opts, keys, err := app.GenInitOptions(app.DefaultInitParams)
	require.NoError(t, err)
	host := custodytest.NewHost()
	require.NoError(t, app.InitGenesis(ctx, host, opts))
	a, err := app.Load(ctx, host, "")
	require.NoError(t, err)

	srv := httptest.NewServer(NewRouter(a, log.NewNopLogger(), false))
	t.Cleanup(srv.Close)
	return &testServer{app: a, url: srv.URL, keys: keys}
}

func (s *testServer) client(i int) *client.Client {
	return client.NewClient(s.url, s.keys[i])
}

func TestMultisigOverHTTP(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)
	a, b, c := s.client(0), s.client(1), s.client(2)
	stranger := client.NewClient(s.url, crypto.GenPrivKeyEd25519())
	d := custodytest.NewAddress()

	info, err := a.Wallet(ctx)
	require.NoError(t, err)
	require.Equal(t, wallet.DefaultID, info.ID)
	require.Equal(t, uint32(2), info.Required)
	require.Equal(t, []custody.Address{a.Address(), b.Address(), c.Address()}, info.Owners)
	require.Equal(t, uint64(0), info.Count)

	ok, err := stranger.IsOwner(ctx, b.Address())
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = a.IsOwner(ctx, stranger.Address())
	require.NoError(t, err)
	require.False(t, ok)

	_, err = stranger.Submit(ctx, d, 10, nil, wallet.AssetNative)
	require.True(t, wallet.ErrNotAnOwner.Is(err), "got %+v", err)

	index, err := a.Submit(ctx, d, 10, []byte{0xca, 0xfe}, wallet.AssetNative)
	require.NoError(t, err)
	require.Equal(t, uint64(0), index)

	require.NoError(t, a.Confirm(ctx, index))
	err = a.Execute(ctx, index)
	require.True(t, wallet.ErrInsufficientConfirmations.Is(err), "got %+v", err)
	require.NoError(t, b.Confirm(ctx, index))

	require.NoError(t, a.CashTransfer(ctx, info.Address, 9))
	err = a.Execute(ctx, index)
	require.True(t, wallet.ErrTransferFailed.Is(err), "got %+v", err)
	tx, err := a.Transaction(ctx, index)
	require.NoError(t, err)
	require.False(t, tx.Executed)
	require.Equal(t, uint32(2), tx.Confirmations)
	require.Equal(t, client.HexBytes{0xca, 0xfe}, tx.Payload)

	require.NoError(t, a.CashTransfer(ctx, info.Address, 1))
	require.NoError(t, b.Execute(ctx, index))
	balance, err := a.CashBalance(ctx, d)
	require.NoError(t, err)
	require.Equal(t, uint64(10), balance.Amount)

	err = c.Confirm(ctx, index)
	require.True(t, wallet.ErrAlreadyExecuted.Is(err), "got %+v", err)
	require.True(t, errors.ErrState.Is(err), "got %+v", err)

	executed, err := a.Transactions(ctx, "executed")
	require.NoError(t, err)
	require.Equal(t, []uint64{0}, executed)
	pending, err := a.Transactions(ctx, "pending")
	require.NoError(t, err)
	require.Empty(t, pending)

	owners, err := a.Confirmations(ctx, index)
	require.NoError(t, err)
	require.Equal(t, []custody.Address{a.Address(), b.Address()}, owners)
	ok, err = a.IsConfirmed(ctx, index, c.Address())
	require.NoError(t, err)
	require.False(t, ok)

	_, err = a.Transaction(ctx, 7)
	require.True(t, wallet.ErrTxDoesNotExist.Is(err), "got %+v", err)
}

func TestTokenOverHTTP(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)
	a, b := s.client(0), s.client(1)
	d := custodytest.NewAddress()

	tok, err := a.Token(ctx)
	require.NoError(t, err)
	require.Equal(t, "SuperToken", tok.Name)
	require.Equal(t, "ST", tok.Symbol)
	require.Equal(t, uint32(9), tok.Decimals)
	require.Equal(t, "1000000000", tok.Display)

	info, err := a.Wallet(ctx)
	require.NoError(t, err)
	require.Equal(t, tok.Address, info.Token)

	// the first owner deployed the token and funds the wallet
	require.NoError(t, a.TokenTransfer(ctx, info.Address, 1000000000))
	require.NoError(t, a.TokenTransferDisplay(ctx, info.Address, "0.5"))
	err = a.TokenTransferDisplay(ctx, info.Address, "0.0000000001")
	require.True(t, errors.ErrInput.Is(err), "got %+v", err)
	err = b.TokenTransfer(ctx, info.Address, 1)
	require.True(t, errors.ErrInsufficientAmount.Is(err), "got %+v", err)

	index, err := b.Submit(ctx, d, 500000000, nil, wallet.AssetToken)
	require.NoError(t, err)
	require.NoError(t, a.Confirm(ctx, index))
	require.NoError(t, b.Confirm(ctx, index))
	require.NoError(t, a.Execute(ctx, index))

	balance, err := a.TokenBalance(ctx, d)
	require.NoError(t, err)
	require.Equal(t, uint64(500000000), balance.Amount)
	require.Equal(t, "0.5", balance.Display)

	info, err = a.Wallet(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(1000000000), info.TokenBalance)
}

func TestSignedRequestsOnly(t *testing.T) {
	s := newTestServer(t)
	body := []byte(`{"to":"` + custodytest.NewAddress().String() + `","amount":1,"asset":"native"}`)

	resp, err := http.Post(s.url+"/v1/transactions", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	assertErrorResponse(t, resp, http.StatusForbidden, errors.ErrUnauthorized)

	// a signature over another body
	req, err := http.NewRequest("POST", s.url+"/v1/transactions", bytes.NewReader(body))
	require.NoError(t, err)
	require.NoError(t, client.Sign(req, []byte(`{}`), s.keys[0], time.Now()))
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	assertErrorResponse(t, resp, http.StatusForbidden, errors.ErrUnauthorized)

	// an expired signature
	req, err = http.NewRequest("POST", s.url+"/v1/transactions", bytes.NewReader(body))
	require.NoError(t, err)
	require.NoError(t, client.Sign(req, body, s.keys[0], time.Now().Add(-time.Hour)))
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	assertErrorResponse(t, resp, http.StatusForbidden, errors.ErrUnauthorized)

	req, err = http.NewRequest("POST", s.url+"/v1/transactions", bytes.NewReader(body))
	require.NoError(t, err)
	require.NoError(t, client.Sign(req, body, s.keys[0], time.Now()))
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestSignedRequestCannotBeReplayed(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)
	owner := s.client(0)
	d := custodytest.NewAddress()
	body := []byte(`{"to":"` + d.String() + `","amount":7}`)

	req, err := http.NewRequest("POST", s.url+"/v1/cash/transfer", bytes.NewReader(body))
	require.NoError(t, err)
	require.NoError(t, client.Sign(req, body, s.keys[0], time.Now()))

	send := func() *http.Response {
		replay, err := http.NewRequest("POST", s.url+"/v1/cash/transfer", bytes.NewReader(body))
		require.NoError(t, err)
		replay.Header = req.Header.Clone()
		resp, err := http.DefaultClient.Do(replay)
		require.NoError(t, err)
		return resp
	}

	resp := send()
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assertErrorResponse(t, send(), http.StatusForbidden, errors.ErrUnauthorized)

	// the signature is compared regardless of its hex case
	req.Header.Set(client.HeaderSignature, strings.ToUpper(req.Header.Get(client.HeaderSignature)))
	assertErrorResponse(t, send(), http.StatusForbidden, errors.ErrUnauthorized)

	balance, err := owner.CashBalance(ctx, d)
	require.NoError(t, err)
	require.Equal(t, uint64(7), balance.Amount)

	// an identical transfer signed again is a new request
	require.NoError(t, owner.CashTransfer(ctx, d, 7))
	require.NoError(t, owner.CashTransfer(ctx, d, 7))
	balance, err = owner.CashBalance(ctx, d)
	require.NoError(t, err)
	require.Equal(t, uint64(21), balance.Amount)
}

func TestErrorStatusCodes(t *testing.T) {
	s := newTestServer(t)

	cases := map[string]struct {
		path       string
		wantStatus int
		wantErr    *errors.Error
	}{
		"malformed index": {
			path:       "/v1/transactions/abc",
			wantStatus: http.StatusBadRequest,
			wantErr:    errors.ErrInput,
		},
		"missing transaction": {
			path:       "/v1/transactions/3",
			wantStatus: http.StatusNotFound,
			wantErr:    wallet.ErrTxDoesNotExist,
		},
		"unknown status": {
			path:       "/v1/transactions?status=lost",
			wantStatus: http.StatusBadRequest,
			wantErr:    errors.ErrInput,
		},
		"malformed address": {
			path:       "/v1/cash/zzz",
			wantStatus: http.StatusBadRequest,
			wantErr:    errors.ErrInput,
		},
		"unknown route": {
			path:       "/v2/wallet",
			wantStatus: http.StatusNotFound,
			wantErr:    errors.ErrNotFound,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			resp, err := http.Get(s.url + tc.path)
			require.NoError(t, err)
			assertErrorResponse(t, resp, tc.wantStatus, tc.wantErr)
		})
	}
}

func assertErrorResponse(t *testing.T, resp *http.Response, wantStatus int, wantErr *errors.Error) {
	t.Helper()
	defer resp.Body.Close()
	require.Equal(t, wantStatus, resp.StatusCode)
	var e client.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	err := errors.FromCode(e.Code, strings.Join(e.Errors, "; "))
	require.True(t, wantErr.Is(err), "got %+v", err)
}

func TestStatusCode(t *testing.T) {
	cases := map[string]struct {
		err  error
		want int
	}{
		"validation":    {wallet.ErrInvalidThreshold, http.StatusBadRequest},
		"unauthorized":  {errors.Wrap(wallet.ErrNotAnOwner, "x"), http.StatusForbidden},
		"not found":     {wallet.ErrTxDoesNotExist, http.StatusNotFound},
		"state":         {wallet.ErrAlreadyConfirmed, http.StatusConflict},
		"execution":     {wallet.ErrTransferFailed, http.StatusUnprocessableEntity},
		"insufficient":  {errors.ErrInsufficientAmount, http.StatusUnprocessableEntity},
		"internal":      {errors.ErrDatabase, http.StatusInternalServerError},
		"not our error": {context.Canceled, http.StatusInternalServerError},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			require.Equal(t, tc.want, StatusCode(tc.err))
		})
	}
}

func TestEventStream(t *testing.T) {
	s := newTestServer(t)
	a := s.client(0)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	events, err := a.Events(ctx)
	require.NoError(t, err)

	index, err := a.Submit(ctx, custodytest.NewAddress(), 1, nil, wallet.AssetNative)
	require.NoError(t, err)
	require.NoError(t, a.Confirm(ctx, index))

	var got []wallet.Event
	for len(got) < 2 {
		select {
		case ev, ok := <-events:
			require.True(t, ok, "stream closed")
			got = append(got, ev)
		case <-ctx.Done():
			t.Fatalf("timeout, got %d events", len(got))
		}
	}
	require.Equal(t, wallet.EventSubmission, got[0].Kind)
	require.Equal(t, wallet.AssetNative, got[0].Asset)
	require.Equal(t, a.Address(), got[0].Owner)
	require.Equal(t, wallet.EventConfirmation, got[1].Kind)
	require.Equal(t, index, got[1].Index)
}

func TestInfoAndMetrics(t *testing.T) {
	s := newTestServer(t)

	info, err := client.NewClient(s.url, nil).Info(context.Background())
	require.NoError(t, err)
	require.Equal(t, custody.Version(), info.Version)

	resp, err := http.Get(s.url + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := ioutil.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(raw), "custody_http_request_duration_seconds")
}
