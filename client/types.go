package client

import (
	"encoding/hex"
	"encoding/json"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/x/wallet"
)

// HexBytes is a byte slice with a hex JSON representation.
type HexBytes []byte

func (b HexBytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(b))
}

func (b *HexBytes) UnmarshalJSON(enc []byte) error {
	var s string
	if err := json.Unmarshal(enc, &s); err != nil {
		return err
	}
	val, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	*b = val
	return nil
}

// Info describes the walletd build.
type Info struct {
	Version string `json:"version"`
}

// WalletInfo is the state of the wallet.
type WalletInfo struct {
	ID            string            `json:"id"`
	Address       custody.Address   `json:"address"`
	Owners        []custody.Address `json:"owners"`
	Required      uint32            `json:"required"`
	Token         custody.Address   `json:"token,omitempty"`
	Count         uint64            `json:"count"`
	NativeBalance uint64            `json:"native_balance"`
	TokenBalance  uint64            `json:"token_balance"`
}

// SubmitRequest is the body of a transaction submission.
type SubmitRequest struct {
	To      custody.Address  `json:"to"`
	Amount  uint64           `json:"amount"`
	Payload HexBytes         `json:"payload,omitempty"`
	Asset   wallet.AssetKind `json:"asset"`
}

// Transaction is a snapshot of a wallet transaction.
type Transaction struct {
	Index         uint64           `json:"index"`
	Recipient     custody.Address  `json:"recipient"`
	Amount        uint64           `json:"amount"`
	Payload       HexBytes         `json:"payload,omitempty"`
	Asset         wallet.AssetKind `json:"asset"`
	Executed      bool             `json:"executed"`
	Confirmations uint32           `json:"confirmations"`
}

// NewTransaction returns the snapshot of tx.
func NewTransaction(index uint64, tx *wallet.Transaction) Transaction {
	return Transaction{
		Index:         index,
		Recipient:     tx.Recipient,
		Amount:        tx.Amount,
		Payload:       tx.Payload,
		Asset:         tx.Kind,
		Executed:      tx.Executed,
		Confirmations: tx.Confirmations,
	}
}

// IndexResponse is returned for a submitted transaction.
type IndexResponse struct {
	Index uint64 `json:"index"`
}

// IndicesResponse lists transaction indices.
type IndicesResponse struct {
	Indices []uint64 `json:"indices"`
}

// OwnersResponse lists owners.
type OwnersResponse struct {
	Owners []custody.Address `json:"owners"`
}

// FlagResponse answers yes or no questions.
type FlagResponse struct {
	Value bool `json:"value"`
}

// TransferRequest is the body of a native or token transfer. Token
// transfers may give the amount in whole tokens as Display instead.
type TransferRequest struct {
	To      custody.Address `json:"to"`
	Amount  uint64          `json:"amount,omitempty"`
	Display string          `json:"display,omitempty"`
}

// Balance is the amount held by an account. Display is set for tokens and
// carries the amount in whole tokens.
type Balance struct {
	Address custody.Address `json:"address"`
	Amount  uint64          `json:"amount"`
	Display string          `json:"display,omitempty"`
}

// TokenInfo describes the token contract.
type TokenInfo struct {
	Address     custody.Address `json:"address"`
	Name        string          `json:"name"`
	Symbol      string          `json:"symbol"`
	Decimals    uint32          `json:"decimals"`
	TotalSupply uint64          `json:"total_supply"`
	Display     string          `json:"display"`
}

// ErrorResponse is returned with every failed request. Code is the code
// of the registered error, if any.
type ErrorResponse struct {
	Code   uint32   `json:"code"`
	Errors []string `json:"errors"`
}
