/*

Package custody defines interfaces used throughout the module, such as storage,
addresses and genesis options. It also contains helpers to carry a logger in a
context.

The wallet engine itself lives in x/wallet. Its collaborators, the native asset
ledger and the token contract, live in x/cash and x/token. The app package
provides the host that serializes calls and commits them atomically.

*/

package custody
