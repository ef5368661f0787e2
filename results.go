package drip

// KVPair is a key/value tag attached to a delivery result. Tags let
// observers (like the relay) react to what a transaction did without
// parsing its message.
type KVPair struct {
	Key   []byte
	Value []byte
}

// DeliverResult captures any non-error result of a delivered transaction,
// to make sure people use error for error cases
type DeliverResult struct {
	// Data is a machine-parseable return value, like id of created entity
	Data []byte
	// Log is human-readable informational string
	Log string
	// Tags can be used by observers to index and filter delivered
	// transactions
	Tags []KVPair
	// GasUsed is the units of work consumed by this transaction
	GasUsed int64
}

// CheckResult captures any non-error result of a checked transaction,
// to make sure people use error for error cases
type CheckResult struct {
	// Data is a machine-parseable return value, like id of created entity
	Data []byte
	// Log is human-readable informational string
	Log string
	// GasAllocated is the maximum units of work we allow this tx to perform
	GasAllocated int64
	// GasPayment is the total fees for this tx (or other source of payment)
	GasPayment int64
}

// NewCheck sets the gas used and the response data but no more info
// these are the most common info needed to be set by the Handler
func NewCheck(gasAllocated int64, log string) CheckResult {
	return CheckResult{
		GasAllocated: gasAllocated,
		Log:          log,
	}
}
