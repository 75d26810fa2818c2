/*
Package client talks to a walletd instance over HTTP.

Requests that change state are signed with an ed25519 key; the address of
that key is the caller the wallet sees. SignBytes describes exactly what is
signed so that the server can verify it.
*/
package client
