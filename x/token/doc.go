/*
Package token implements the asset ledger used by the escrow.

A token account holds a balance of exactly one ticker and is owned by a single
address. Only the owner can move funds out of an account or close it. Accounts
are stored under their address, which is either derived from the owner and the
ticker (accounts created by users and genesis) or chosen by the extension that
creates it (custody accounts of the escrow).
*/
package token
