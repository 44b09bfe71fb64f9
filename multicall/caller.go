package multicall

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
)

//go:generate mockgen -destination=./mocks/mock_caller.go -package=mocks github.com/vantage-eth/dyncall/multicall ContractCaller

// ContractCaller is the transport collaborator: it executes one
// read-only call against a node and returns the raw response bytes.
// *ethclient.Client satisfies it directly; see Dial. A nil blockNumber
// means the latest block.
type ContractCaller interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}
