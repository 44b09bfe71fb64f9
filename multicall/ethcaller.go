package multicall

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// EthCaller is a ContractCaller over a JSON-RPC connection to an
// Ethereum node.
type EthCaller struct {
	ethClient *ethclient.Client
	client    *rpc.Client
}

var _ ContractCaller = (*EthCaller)(nil)

// Dial connects to the node at ethNodeURL (http, ws or ipc).
func Dial(ctx context.Context, ethNodeURL string) (*EthCaller, error) {
	client, err := rpc.DialContext(ctx, ethNodeURL)
	if err != nil {
		return nil, fmt.Errorf("dial eth node: %w", err)
	}
	return &EthCaller{
		ethClient: ethclient.NewClient(client),
		client:    client,
	}, nil
}

func (c *EthCaller) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	return c.ethClient.CallContract(ctx, call, blockNumber)
}

func (c *EthCaller) ChainID(ctx context.Context) (*big.Int, error) {
	return c.ethClient.ChainID(ctx)
}

func (c *EthCaller) Close() {
	c.ethClient.Close()
}
