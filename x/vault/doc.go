/*
Package vault bridges the base asset and the interest accruing ledger.

A deposit locks base coins in an unspendable reserve and mints the same
number of ledger units at the current global rate. A redeem burns ledger
units and pays the matching coins back out. Only the deposited principal
is backed: interest earned on the ledger cannot be redeemed through the
vault.
*/
package vault
