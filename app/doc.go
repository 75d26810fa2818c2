/*
Package app provides the Host, the owner of the state all custody
extensions share.

Every call against the state goes through Host.Update or Host.View.
Updates are serialized and run on a cache wrap of the store that is
written only if the call succeeds, so a failing call leaves no trace.
A call made from within another call of the same Host (for example a
transfer hook that calls back into a wallet) does not lock again but
runs on a savepoint of the active call, so it observes every change the
outer call has made so far.
*/
package app
