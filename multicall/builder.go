package multicall

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/vantage-eth/dyncall/utils"
)

// Builder accumulates call items and executes them as one aggregate3
// invocation, a single round trip regardless of batch size. It is a
// single-writer accumulator: append with AddCall, run with Execute,
// then Clear before reusing it for another batch. It is not safe for
// concurrent mutation.
type Builder struct {
	caller  ContractCaller
	address common.Address
	block   *big.Int
	calls   []CallItem
	log     utils.SimpleLogger
}

// New returns a builder executing through caller against the canonical
// Multicall3 deployment at the latest block.
func New(caller ContractCaller) *Builder {
	return &Builder{
		caller:  caller,
		address: DefaultAddress,
		log:     utils.NewNopZapLogger(),
	}
}

// WithMulticallAddress overrides the aggregation contract address, for
// chains where the canonical deployment differs.
func (b *Builder) WithMulticallAddress(address common.Address) *Builder {
	b.address = address
	return b
}

// WithBlockNumber pins every Execute to a specific block. Nil means the
// latest block.
func (b *Builder) WithBlockNumber(number *big.Int) *Builder {
	b.block = number
	return b
}

func (b *Builder) WithLogger(log utils.SimpleLogger) *Builder {
	b.log = log
	return b
}

// AddCall appends a call to the batch.
func (b *Builder) AddCall(call CallItem) *Builder {
	b.calls = append(b.calls, call)
	return b
}

// Len returns the number of accumulated calls.
func (b *Builder) Len() int {
	return len(b.calls)
}

// IsEmpty reports whether the batch holds no calls.
func (b *Builder) IsEmpty() bool {
	return len(b.calls) == 0
}

// Clear drops the accumulated calls, keeping the caller, address and
// block settings.
func (b *Builder) Clear() *Builder {
	b.calls = nil
	return b
}

// Execute runs the accumulated batch in one round trip and returns one
// outcome per call, in the order they were added.
//
// Failures before the transport call (an argument not matching its
// declared type) abort the batch before any network cost. A transport
// error, including the node reverting the outer call because an item
// with AllowFailure=false reverted, fails the whole batch and the batch
// must be considered unexecuted. After a successful round trip every
// per-call problem, a revert or return data not matching the declared
// outputs, is isolated in that index's Outcome and never affects
// sibling results: callers get either an error or a full ordered list,
// never a partial one.
func (b *Builder) Execute(ctx context.Context) ([]Outcome, error) {
	if b.IsEmpty() {
		return nil, ErrEmptyBatch
	}

	request, err := BuildRequest(b.calls)
	if err != nil {
		return nil, fmt.Errorf("build aggregate request: %w", err)
	}
	b.log.Debugw("Executing batch", "calls", len(b.calls), "multicall", b.address, "calldataBytes", len(request))

	raw, err := b.caller.CallContract(ctx, ethereum.CallMsg{To: &b.address, Data: request}, b.block)
	if err != nil {
		return nil, fmt.Errorf("aggregate call: %w", err)
	}

	results, err := SplitResponse(b.calls, raw)
	if err != nil {
		return nil, fmt.Errorf("split aggregate response: %w", err)
	}

	outcomes := make([]Outcome, len(results))
	for i, result := range results {
		if !result.Success {
			outcomes[i] = Outcome{Failure: &Failure{
				Index:      i,
				ReturnData: result.ReturnData,
				Reason:     RevertReason(result.ReturnData),
			}}
			continue
		}
		values, err := b.calls[i].Function.DecodeOutput(result.ReturnData)
		if err != nil {
			b.log.Debugw("Undecodable return data", "index", i, "function", b.calls[i].Function.Name, "err", err)
			outcomes[i] = Outcome{Failure: &Failure{
				Index:      i,
				ReturnData: result.ReturnData,
				Err:        err,
			}}
			continue
		}
		outcomes[i] = Outcome{Values: values}
	}
	return outcomes, nil
}
