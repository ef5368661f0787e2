/*
Package pool moves ledger value between replicas.

An outbound transfer escrows the funds, burns them and emits a Payload
carrying the amount, the destination account and the sender's personal
interest rate. The payload is published as a delivery tag so an external
relay can pick it up and submit it to the remote replica as a ReceiveMsg.

Payloads are sequenced per channel starting at 1. The inbound side keeps
the last accepted sequence on the Route and only accepts the direct
successor. Redeliveries fail cleanly, so relaying at least once is safe,
and a gap halts the channel until the missing payload arrives.

Only the relay address named in the package configuration may submit a
ReceiveMsg, and both directions of a channel are gated on the route being
enabled. The owner manages routes and the configuration.
*/
package pool
