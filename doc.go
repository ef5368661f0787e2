/*
Package drip defines the common interfaces that tie the repository
together: the key-value storage contracts, transactions and messages,
handlers, conditions and addresses, and the context accessors used to
pass per-block information into handlers.

The interesting logic lives in the extensions below x/. The accrual
extension implements a token ledger whose balances grow linearly with
a per-account interest rate, and the pool extension moves such tokens
between independently running replicas while preserving the sender's
interest entitlement. The relay package carries pool payloads between
replicas, and app provides the serialized per-replica runtime.
*/
package drip
