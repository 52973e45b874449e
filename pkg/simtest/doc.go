/*
Package simtest contains framework for automated contract testing against the
simulated chain. It can be used to implement unit-tests for contracts in Go
using regular Go conventions.

Usually it's used like this:
  - an instance of blockchain is created with NewChain
  - Executor is created for it with NewExecutor
  - transactions are created with ContractCall or TransferSTX (or with a
    ContractInvoker) and mined with MineBlock
  - MineEmptyBlockUntil is used to advance the chain to the height needed
  - receipts of the BlockResult are checked with ExpectOk/ExpectErr and
    Events helpers
*/
package simtest
