package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/client"
	"github.com/iov-one/custody/cmd/walletd/app"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/x/token"
	"github.com/iov-one/custody/x/wallet"
	"github.com/tendermint/tendermint/libs/log"
)

// env is shared by all handlers of a router.
type env struct {
	App    *app.Application
	Logger log.Logger
	Debug  bool
	Seen   *SeenSignatures
}

func (e *env) context(r *http.Request) context.Context {
	return custody.WithLogger(r.Context(), e.Logger)
}

func (e *env) fail(w http.ResponseWriter, err error) {
	JSONErr(w, e.Logger, e.Debug, err)
}

func (e *env) respond(w http.ResponseWriter, code int, content interface{}) {
	JSONResp(w, e.Logger, code, content)
}

type InfoHandler struct{ *env }

func (h *InfoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.respond(w, http.StatusOK, client.Info{Version: custody.Version()})
}

type WalletHandler struct{ *env }

func (h *WalletHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := h.context(r)
	wl := h.App.Wallet
	info := client.WalletInfo{
		ID:       wl.ID(),
		Address:  wl.Address(),
		Owners:   wl.Owners(),
		Required: wl.Required(),
		Token:    wl.Token(),
	}
	var err error
	if info.Count, err = wl.Count(ctx); err != nil {
		h.fail(w, err)
		return
	}
	if info.NativeBalance, err = wl.NativeBalance(ctx); err != nil {
		h.fail(w, err)
		return
	}
	if h.App.Token != nil {
		if info.TokenBalance, err = wl.TokenBalance(ctx); err != nil {
			h.fail(w, err)
			return
		}
	}
	h.respond(w, http.StatusOK, info)
}

type OwnerHandler struct{ *env }

func (h *OwnerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	addr, err := custody.ParseAddress(chi.URLParam(r, "address"))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.respond(w, http.StatusOK, client.FlagResponse{Value: h.App.Wallet.IsOwner(addr)})
}

type SubmitHandler struct{ *env }

func (h *SubmitHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req client.SubmitRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		h.fail(w, err)
		return
	}
	ctx := h.context(r)
	index, err := h.App.Wallet.Submit(ctx, Caller(r.Context()), req.To, req.Amount, req.Payload, req.Asset)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.respond(w, http.StatusCreated, client.IndexResponse{Index: index})
}

type TransactionsHandler struct{ *env }

func (h *TransactionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var filter wallet.Filter
	switch status := r.URL.Query().Get("status"); status {
	case "":
		filter = wallet.Filter{Pending: true, Executed: true}
	case "pending":
		filter.Pending = true
	case "executed":
		filter.Executed = true
	default:
		h.fail(w, errors.Wrapf(errors.ErrInput, "unknown status %q", status))
		return
	}
	indices, err := h.App.Wallet.Transactions(h.context(r), filter)
	if err != nil {
		h.fail(w, err)
		return
	}
	if indices == nil {
		indices = []uint64{}
	}
	h.respond(w, http.StatusOK, client.IndicesResponse{Indices: indices})
}

type TransactionHandler struct{ *env }

func (h *TransactionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	index, err := indexParam(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	tx, err := h.App.Wallet.Transaction(h.context(r), index)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.respond(w, http.StatusOK, client.NewTransaction(index, tx))
}

type ConfirmationsHandler struct{ *env }

func (h *ConfirmationsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	index, err := indexParam(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	owners, err := h.App.Wallet.Confirmations(h.context(r), index)
	if err != nil {
		h.fail(w, err)
		return
	}
	if owners == nil {
		owners = []custody.Address{}
	}
	h.respond(w, http.StatusOK, client.OwnersResponse{Owners: owners})
}

type ConfirmationHandler struct{ *env }

func (h *ConfirmationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	index, err := indexParam(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	owner, err := custody.ParseAddress(chi.URLParam(r, "owner"))
	if err != nil {
		h.fail(w, err)
		return
	}
	ok, err := h.App.Wallet.IsConfirmed(h.context(r), index, owner)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.respond(w, http.StatusOK, client.FlagResponse{Value: ok})
}

// ActionHandler runs an operation of the signer on a transaction.
type ActionHandler struct {
	*env
	Action func(w *wallet.Wallet, ctx context.Context, caller custody.Address, index uint64) error
}

func (h *ActionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	index, err := indexParam(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	ctx := h.context(r)
	if err := h.Action(h.App.Wallet, ctx, Caller(r.Context()), index); err != nil {
		h.fail(w, err)
		return
	}
	tx, err := h.App.Wallet.Transaction(ctx, index)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.respond(w, http.StatusOK, client.NewTransaction(index, tx))
}

type CashBalanceHandler struct{ *env }

func (h *CashBalanceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	addr, err := custody.ParseAddress(chi.URLParam(r, "address"))
	if err != nil {
		h.fail(w, err)
		return
	}
	var amount uint64
	err = h.App.Host.View(h.context(r), func(ctx context.Context, db custody.ReadOnlyKVStore) error {
		var err error
		amount, err = h.App.Cash.Balance(db, addr)
		return err
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	h.respond(w, http.StatusOK, client.Balance{Address: addr, Amount: amount})
}

type CashTransferHandler struct{ *env }

func (h *CashTransferHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req client.TransferRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		h.fail(w, err)
		return
	}
	caller := Caller(r.Context())
	err := h.App.Host.Update(h.context(r), "cash/transfer", func(ctx context.Context, db custody.KVStore) error {
		return h.App.Cash.Transfer(ctx, db, caller, req.To, req.Amount, nil)
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	h.respond(w, http.StatusOK, client.Balance{Address: req.To, Amount: req.Amount})
}

type TokenInfoHandler struct{ *env }

func (h *TokenInfoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.App.Token == nil {
		h.fail(w, errors.Wrap(errors.ErrNotFound, "no token"))
		return
	}
	var info *token.TokenInfo
	err := h.App.Host.View(h.context(r), func(ctx context.Context, db custody.ReadOnlyKVStore) error {
		var err error
		info, err = h.App.Token.Info(db)
		return err
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	h.respond(w, http.StatusOK, client.TokenInfo{
		Address:     h.App.Token.Address(),
		Name:        info.Name,
		Symbol:      info.Symbol,
		Decimals:    info.Decimals,
		TotalSupply: info.TotalSupply,
		Display:     token.Format(info.TotalSupply, info.Decimals),
	})
}

type TokenBalanceHandler struct{ *env }

func (h *TokenBalanceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.App.Token == nil {
		h.fail(w, errors.Wrap(errors.ErrNotFound, "no token"))
		return
	}
	addr, err := custody.ParseAddress(chi.URLParam(r, "address"))
	if err != nil {
		h.fail(w, err)
		return
	}
	var (
		amount uint64
		info   *token.TokenInfo
	)
	err = h.App.Host.View(h.context(r), func(ctx context.Context, db custody.ReadOnlyKVStore) error {
		var err error
		if info, err = h.App.Token.Info(db); err != nil {
			return err
		}
		amount, err = h.App.Token.BalanceOf(db, addr)
		return err
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	h.respond(w, http.StatusOK, client.Balance{
		Address: addr,
		Amount:  amount,
		Display: token.Format(amount, info.Decimals),
	})
}

type TokenTransferHandler struct{ *env }

func (h *TokenTransferHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.App.Token == nil {
		h.fail(w, errors.Wrap(errors.ErrNotFound, "no token"))
		return
	}
	var req client.TransferRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		h.fail(w, err)
		return
	}
	if req.Display != "" && req.Amount != 0 {
		h.fail(w, errors.Wrap(errors.ErrInput, "amount and display are exclusive"))
		return
	}
	caller := Caller(r.Context())
	err := h.App.Host.Update(h.context(r), "token/transfer", func(ctx context.Context, db custody.KVStore) error {
		if req.Display != "" {
			info, err := h.App.Token.Info(db)
			if err != nil {
				return err
			}
			if req.Amount, err = token.Parse(req.Display, info.Decimals); err != nil {
				return err
			}
		}
		ok, err := h.App.Token.Transfer(ctx, db, caller, req.To, req.Amount)
		if err != nil {
			return err
		}
		if !ok {
			return errors.Wrap(errors.ErrInsufficientAmount, "token declined the transfer")
		}
		return nil
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	h.respond(w, http.StatusOK, client.Balance{Address: req.To, Amount: req.Amount})
}

func indexParam(r *http.Request) (uint64, error) {
	raw := chi.URLParam(r, "index")
	index, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrInput, "transaction index %q", raw)
	}
	return index, nil
}

func decodeJSON(body io.Reader, dest interface{}) error {
	if err := json.NewDecoder(io.LimitReader(body, maxBodySize)).Decode(dest); err != nil {
		if errors.CategoryOf(err) != nil {
			return err
		}
		return errors.Wrapf(errors.ErrInput, "cannot decode request: %s", err)
	}
	return nil
}
