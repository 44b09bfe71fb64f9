package multicall

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vantage-eth/dyncall/dynabi"
)

// DefaultAddress is the canonical Multicall3 deployment, present at the
// same address on Ethereum mainnet and most other EVM chains.
var DefaultAddress = common.HexToAddress("0xcA11bde05977b3631167028862bE2a173976CA11")

// aggregate3 is the fixed descriptor of the Multicall3 entry point:
//
//	aggregate3((address target, bool allowFailure, bytes callData)[] calls)
//	    returns ((bool success, bytes returnData)[] returnData)
//
// Selector 0x82ad56cb, derived like any other function's.
var aggregate3 = mustAggregate3()

func mustAggregate3() dynabi.Function {
	call := dynabi.TupleType(dynabi.AddressType(), dynabi.BoolType(), dynabi.BytesType())
	result := dynabi.TupleType(dynabi.BoolType(), dynabi.BytesType())
	f, err := dynabi.NewFunction("aggregate3",
		[]dynabi.Type{dynabi.ArrayType(call)},
		[]dynabi.Type{dynabi.ArrayType(result)},
	)
	if err != nil {
		panic(err)
	}
	return f
}

// RawResult is one inner call's slice of the aggregate response, before
// its return data is decoded against the call's own output types.
type RawResult struct {
	Success    bool
	ReturnData []byte
}

// BuildRequest encodes the calls into one aggregate3 invocation: each
// item's own call data is encoded first, then wrapped in a
// (target, allowFailure, callData) triple inside the outer call.
// An encoding failure of any item aborts the whole build.
func BuildRequest(calls []CallItem) ([]byte, error) {
	items := make([]dynabi.Value, len(calls))
	for i, call := range calls {
		callData, err := call.Function.EncodeInput(call.Args)
		if err != nil {
			return nil, fmt.Errorf("call %d: %w", i, err)
		}
		items[i] = dynabi.Tuple{
			dynabi.Address(call.Target),
			dynabi.Bool(call.AllowFailure),
			dynabi.Bytes(callData),
		}
	}
	return aggregate3.EncodeInput([]dynabi.Value{dynabi.Array(items)})
}

// SplitResponse decodes an aggregate3 response into one RawResult per
// call, in submission order. A count disagreement with calls fails with
// ErrBatchLengthMismatch.
func SplitResponse(calls []CallItem, raw []byte) ([]RawResult, error) {
	values, err := aggregate3.DecodeOutput(raw)
	if err != nil {
		return nil, err
	}
	rows := values[0].(dynabi.Array)
	if len(rows) != len(calls) {
		return nil, fmt.Errorf("%w: %d results for %d calls", ErrBatchLengthMismatch, len(rows), len(calls))
	}
	results := make([]RawResult, len(rows))
	for i, row := range rows {
		fields := row.(dynabi.Tuple)
		results[i] = RawResult{
			Success:    bool(fields[0].(dynabi.Bool)),
			ReturnData: []byte(fields[1].(dynabi.Bytes)),
		}
	}
	return results, nil
}
