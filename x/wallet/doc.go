/*
Package wallet implements a multi-signature wallet.

A wallet is owned by a fixed set of addresses. Any owner may submit a
transaction moving either the native asset or a token out of the wallet
account. The transaction can be executed once enough owners confirmed
it, and an owner may revoke a confirmation until then.

The wallet is split into the components holding its state:

	Registry    the owners and the number of required confirmations
	Ledger      the submitted transactions, addressed by index
	Tracker     the confirmations of every transaction
	Dispatcher  the execution of a confirmed transaction

Wallet combines them and runs every operation as a single call of an
app.Host, so an operation either succeeds as a whole or leaves no
trace. Execution marks the transaction as executed before it moves any
funds, so a recipient calling back into the wallet during the transfer
finds the transaction already executed.
*/
package wallet
