package multicall_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/vantage-eth/dyncall/dynabi"
	"github.com/vantage-eth/dyncall/multicall"
	"github.com/vantage-eth/dyncall/multicall/mocks"
)

// TestExecuteTwoCalls is the canonical two-call batch: balanceOf on one
// token, totalSupply on another, answered by a scripted transport in
// one round trip.
func TestExecuteTwoCalls(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	caller := mocks.NewMockContractCaller(ctrl)

	weth := common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	dai := common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F")
	holder := common.HexToAddress("0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045")

	balance := big.NewInt(123456789)
	supply := new(big.Int).Lsh(big.NewInt(1), 100)

	response := aggregateResponse(t, []multicall.RawResult{
		{Success: true, ReturnData: encodeUint256(t, balance)},
		{Success: true, ReturnData: encodeUint256(t, supply)},
	})

	caller.EXPECT().
		CallContract(gomock.Any(), gomock.Any(), gomock.Nil()).
		DoAndReturn(func(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
			require.NotNil(t, msg.To)
			assert.Equal(t, multicall.DefaultAddress, *msg.To)
			// Outer call data targets aggregate3.
			assert.Equal(t, []byte{0x82, 0xad, 0x56, 0xcb}, msg.Data[:4])
			return response, nil
		})

	builder := multicall.New(caller).
		AddCall(multicall.NewCall(weth, balanceOf(t), dynabi.Address(holder))).
		AddCall(multicall.NewCall(dai, totalSupply(t)))
	require.Equal(t, 2, builder.Len())

	outcomes, err := builder.Execute(context.Background())
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	require.True(t, outcomes[0].Ok())
	require.Len(t, outcomes[0].Values, 1)
	assert.Zero(t, balance.Cmp(outcomes[0].Values[0].(dynabi.Uint).X))

	require.True(t, outcomes[1].Ok())
	require.Len(t, outcomes[1].Values, 1)
	assert.Zero(t, supply.Cmp(outcomes[1].Values[0].(dynabi.Uint).X))
}

// TestExecuteFailureIsolation scripts one revert and one undecodable
// result in the middle of a batch and expects the siblings untouched.
func TestExecuteFailureIsolation(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	caller := mocks.NewMockContractCaller(ctrl)

	revertData := common.FromHex("08c379a0" + word("20") + word("e") + rightPadded("4e6f7420617574686f7269736564"))
	response := aggregateResponse(t, []multicall.RawResult{
		{Success: true, ReturnData: encodeUint256(t, big.NewInt(1))},
		{Success: false, ReturnData: revertData},
		{Success: true, ReturnData: []byte{0x01, 0x02, 0x03}}, // not a uint256
		{Success: true, ReturnData: encodeUint256(t, big.NewInt(4))},
	})
	caller.EXPECT().
		CallContract(gomock.Any(), gomock.Any(), gomock.Nil()).
		Return(response, nil)

	builder := multicall.New(caller)
	for i := 0; i < 4; i++ {
		builder.AddCall(multicall.NewCall(common.Address{byte(i + 1)}, totalSupply(t)))
	}

	outcomes, err := builder.Execute(context.Background())
	require.NoError(t, err)
	require.Len(t, outcomes, 4)

	require.True(t, outcomes[0].Ok())
	assert.Zero(t, big.NewInt(1).Cmp(outcomes[0].Values[0].(dynabi.Uint).X))

	require.False(t, outcomes[1].Ok())
	assert.Equal(t, 1, outcomes[1].Failure.Index)
	assert.Equal(t, "Not authorised", outcomes[1].Failure.Reason)
	assert.Equal(t, revertData, outcomes[1].Failure.ReturnData)
	assert.NoError(t, outcomes[1].Failure.Err)

	require.False(t, outcomes[2].Ok())
	assert.Equal(t, 2, outcomes[2].Failure.Index)
	assert.Empty(t, outcomes[2].Failure.Reason)
	require.ErrorIs(t, outcomes[2].Failure.Err, dynabi.ErrTruncatedData)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, outcomes[2].Failure.ReturnData)

	require.True(t, outcomes[3].Ok())
	assert.Zero(t, big.NewInt(4).Cmp(outcomes[3].Values[0].(dynabi.Uint).X))
}

// TestExecuteHardRevert: an AllowFailure=false item reverting makes the
// node revert the outer call, which surfaces as a whole-batch transport
// error, not a per-index failure.
func TestExecuteHardRevert(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	caller := mocks.NewMockContractCaller(ctrl)

	nodeErr := errors.New("execution reverted: Multicall3: call failed")
	caller.EXPECT().
		CallContract(gomock.Any(), gomock.Any(), gomock.Nil()).
		Return(nil, nodeErr)

	builder := multicall.New(caller).
		AddCall(multicall.NewCall(common.Address{1}, totalSupply(t))).
		AddCall(multicall.NewCall(common.Address{2}, totalSupply(t)).WithAllowFailure(false))

	outcomes, err := builder.Execute(context.Background())
	require.ErrorIs(t, err, nodeErr)
	assert.Nil(t, outcomes)
}

func TestExecuteEmptyBatch(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	caller := mocks.NewMockContractCaller(ctrl)

	_, err := multicall.New(caller).Execute(context.Background())
	require.ErrorIs(t, err, multicall.ErrEmptyBatch)
}

// TestExecuteEncodingFailure: a bad argument aborts the batch before
// the transport is ever invoked (no CallContract expectation is set).
func TestExecuteEncodingFailure(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	caller := mocks.NewMockContractCaller(ctrl)

	builder := multicall.New(caller).
		AddCall(multicall.NewCall(common.Address{1}, balanceOf(t), dynabi.String("not an address")))

	_, err := builder.Execute(context.Background())
	require.ErrorIs(t, err, dynabi.ErrTypeMismatch)
}

func TestExecuteLengthMismatch(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	caller := mocks.NewMockContractCaller(ctrl)

	response := aggregateResponse(t, []multicall.RawResult{
		{Success: true, ReturnData: encodeUint256(t, big.NewInt(1))},
	})
	caller.EXPECT().
		CallContract(gomock.Any(), gomock.Any(), gomock.Nil()).
		Return(response, nil)

	builder := multicall.New(caller).
		AddCall(multicall.NewCall(common.Address{1}, totalSupply(t))).
		AddCall(multicall.NewCall(common.Address{2}, totalSupply(t)))

	_, err := builder.Execute(context.Background())
	require.ErrorIs(t, err, multicall.ErrBatchLengthMismatch)
}

func TestExecutePinnedBlockAndAddressOverride(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	caller := mocks.NewMockContractCaller(ctrl)

	custom := common.HexToAddress("0x000000000000000000000000000000000000beef")
	block := big.NewInt(19_000_000)

	response := aggregateResponse(t, []multicall.RawResult{
		{Success: true, ReturnData: encodeUint256(t, big.NewInt(7))},
	})
	caller.EXPECT().
		CallContract(gomock.Any(), gomock.Any(), block).
		DoAndReturn(func(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
			assert.Equal(t, custom, *msg.To)
			return response, nil
		})

	outcomes, err := multicall.New(caller).
		WithMulticallAddress(custom).
		WithBlockNumber(block).
		AddCall(multicall.NewCall(common.Address{1}, totalSupply(t))).
		Execute(context.Background())
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	require.True(t, outcomes[0].Ok())
}

func TestBuilderClear(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	caller := mocks.NewMockContractCaller(ctrl)

	builder := multicall.New(caller).
		AddCall(multicall.NewCall(common.Address{1}, totalSupply(t))).
		AddCall(multicall.NewCall(common.Address{2}, totalSupply(t)))
	require.Equal(t, 2, builder.Len())
	require.False(t, builder.IsEmpty())

	builder.Clear()
	require.Equal(t, 0, builder.Len())
	require.True(t, builder.IsEmpty())

	// A cleared builder starts a fresh batch with the old settings.
	response := aggregateResponse(t, []multicall.RawResult{
		{Success: true, ReturnData: encodeUint256(t, big.NewInt(5))},
	})
	caller.EXPECT().
		CallContract(gomock.Any(), gomock.Any(), gomock.Nil()).
		Return(response, nil)

	outcomes, err := builder.
		AddCall(multicall.NewCall(common.Address{3}, totalSupply(t))).
		Execute(context.Background())
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
}

func encodeUint256(t *testing.T, x *big.Int) []byte {
	t.Helper()
	encoded, err := dynabi.Encode([4]byte{}, []dynabi.Type{dynabi.UintType(256)}, []dynabi.Value{dynabi.U256(x)})
	require.NoError(t, err)
	return encoded[4:]
}
