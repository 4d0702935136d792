/*
Package x contains the standard extensions of pact.

Extensions implement common functionality (Handler, Decorator, etc.) and are
combined together by the app package. The token ledger and the escrow live in
sub-packages, this package only holds the authentication contract shared by
all of them.

Note that types in exported code will be prefixed by the package, so follow
standard go naming conventions and avoid stutter. Use eg. `escrow.TakeMsg` in
place of `escrow.EscrowTakeMsg`.
*/
package x
