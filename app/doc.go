/*
Package app contains the framework that turns extensions into an
application: the Router dispatching messages by path, the decorator chain,
the CommitStore holding check and deliver caches over a persistent store and
the ABCI glue (StoreApp, BaseApp).

Every transaction runs against the deliver cache, which is written to disk
only on Commit. A transaction that fails inside a savepoint leaves no trace.
*/
package app
