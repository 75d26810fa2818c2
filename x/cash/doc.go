/*
Package cash keeps balances of the native asset.

Transfers may carry a payload. When the recipient registered a Receiver,
it is called with the payload once the balances are moved, and it can
reject the transfer by returning an error. Receivers are called with the
context of the transfer, so they can call back into other extensions
running on the same host.
*/
package cash
