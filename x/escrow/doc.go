/*
Package escrow implements an atomic two-party token swap.

The initializer locks InitializerAmount of a ticker in a custody account and
publishes what it wants in return. Any taker that pays TakerAmount to the
initializer receive account gets the locked funds in the same transaction.
There is no cancel path, an offer stays open until it is taken.

The custody account is owned by a keyless program address derived from the
initializer and the ticker. No private key exists for it. Funds leave the
custody only when TakeHandler grants the derived condition for the duration
of the settlement.
*/
package escrow
