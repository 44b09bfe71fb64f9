package multicall

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vantage-eth/dyncall/dynabi"
)

// CallItem is one invocation inside a batch: a target contract, the
// function descriptor to invoke, its arguments, and whether the batch
// tolerates this call reverting. Items are immutable once added to a
// builder.
type CallItem struct {
	Target       common.Address
	Function     dynabi.Function
	Args         []dynabi.Value
	AllowFailure bool
}

// NewCall returns a call item with AllowFailure enabled, the mode under
// which reverts surface as per-call failures instead of aborting the
// whole batch.
func NewCall(target common.Address, function dynabi.Function, args ...dynabi.Value) CallItem {
	return CallItem{
		Target:       target,
		Function:     function,
		Args:         args,
		AllowFailure: true,
	}
}

// WithAllowFailure returns a copy with the allow-failure flag set.
// Disabling it makes the aggregation contract revert the entire outer
// call when this item reverts.
func (c CallItem) WithAllowFailure(allow bool) CallItem {
	c.AllowFailure = allow
	return c
}

// Outcome is the result of one call in an executed batch: decoded
// output values on success, a Failure otherwise.
type Outcome struct {
	Values  []dynabi.Value
	Failure *Failure
}

// Ok reports whether the call succeeded and Values is populated.
func (o Outcome) Ok() bool {
	return o.Failure == nil
}

// Failure describes one failed call. Reason is only populated when the
// return data matches a recognized Error(string) or Panic(uint256)
// encoding; Err carries the decode error when the call succeeded
// on-chain but its return data did not match the declared outputs.
type Failure struct {
	Index      int
	ReturnData []byte
	Reason     string
	Err        error
}

func (f *Failure) Error() string {
	switch {
	case f.Err != nil:
		return fmt.Sprintf("call %d failed: %v", f.Index, f.Err)
	case f.Reason != "":
		return fmt.Sprintf("call %d reverted: %s", f.Index, f.Reason)
	default:
		return fmt.Sprintf("call %d reverted (%d bytes of return data)", f.Index, len(f.ReturnData))
	}
}

func (f *Failure) Unwrap() error {
	return f.Err
}
