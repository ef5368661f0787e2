/*
Package accrual implements an interest accruing token ledger.

Every account holds a principal, a personal per second interest rate and
the time of its last write. The balance is always derived on the fly as

	principal * (Scale + rate*elapsed) / Scale

with a single truncating division. Before any operation that changes the
principal or the rate, the outstanding interest is crystallized into the
principal so it can never be lost.

The global rate lives in the package configuration and can only be
lowered. Fresh mints freeze the caller supplied rate onto the recipient
account, while transfers let an empty destination inherit the sender's
rate and never touch the rate of a funded one. This is what gives early
account holders a durable advantage over later ones.
*/
package accrual
