/*
Package token implements a fungible token contract.

A token is deployed once with a name, a symbol and a number of decimals.
Its whole supply is assigned to the deployer and afterwards only moves
with Transfer. Amounts are handled in the smallest unit; Parse and
Format convert them from and to their decimal representation.
*/
package token
