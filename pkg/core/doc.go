/*
Package core implements a deterministic simulated chain.

Blockchain executes transactions against native contracts block by block,
every transaction of a block runs at the height of this block and its effects
are only kept for (ok ...) results. Blocks and receipts are persisted into
the configured storage.
*/
package core
