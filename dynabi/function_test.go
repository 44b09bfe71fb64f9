package dynabi_test

import (
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vantage-eth/dyncall/dynabi"
)

func TestSignature(t *testing.T) {
	t.Parallel()

	tests := []struct {
		want   string
		name   string
		inputs []dynabi.Type
	}{
		{"totalSupply()", "totalSupply", nil},
		{"balanceOf(address)", "balanceOf", []dynabi.Type{dynabi.AddressType()}},
		{
			"transfer(address,uint256)",
			"transfer",
			[]dynabi.Type{dynabi.AddressType(), dynabi.UintType(256)},
		},
		{
			"aggregate3((address,bool,bytes)[])",
			"aggregate3",
			[]dynabi.Type{dynabi.ArrayType(dynabi.TupleType(
				dynabi.AddressType(), dynabi.BoolType(), dynabi.BytesType(),
			))},
		},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			f, err := dynabi.NewFunction(tt.name, tt.inputs, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.Signature())
		})
	}
}

func TestSelectorDerivation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		inputs   []dynabi.Type
		selector [4]byte
	}{
		{"totalSupply", nil, [4]byte{0x18, 0x16, 0x0d, 0xdd}},
		{"balanceOf", []dynabi.Type{dynabi.AddressType()}, [4]byte{0x70, 0xa0, 0x82, 0x31}},
		{
			"transfer",
			[]dynabi.Type{dynabi.AddressType(), dynabi.UintType(256)},
			[4]byte{0xa9, 0x05, 0x9c, 0xbb},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := dynabi.NewFunction(tt.name, tt.inputs, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.selector, f.Selector)
			assert.NoError(t, f.CheckSelector())
		})
	}
}

func TestSuppliedSelectorTrustedAsIs(t *testing.T) {
	t.Parallel()

	bogus := [4]byte{0xde, 0xad, 0xbe, 0xef}
	f, err := dynabi.NewFunctionWithSelector("totalSupply", nil, nil, bogus)
	require.NoError(t, err)
	assert.Equal(t, bogus, f.Selector)

	data, err := f.EncodeInput(nil)
	require.NoError(t, err)
	assert.Equal(t, bogus[:], data)

	// The optional validation pass catches the mismatch.
	require.ErrorIs(t, f.CheckSelector(), dynabi.ErrInvalidType)
}

func TestNewFunctionRejectsInvalidTypes(t *testing.T) {
	t.Parallel()

	_, err := dynabi.NewFunction("f", []dynabi.Type{dynabi.UintType(7)}, nil)
	require.ErrorIs(t, err, dynabi.ErrInvalidType)

	_, err = dynabi.NewFunction("f", nil, []dynabi.Type{dynabi.FixedBytesType(64)})
	require.ErrorIs(t, err, dynabi.ErrInvalidType)
}

func TestEncodeInputDecodeOutput(t *testing.T) {
	t.Parallel()

	f, err := dynabi.NewFunction("balanceOf",
		[]dynabi.Type{dynabi.AddressType()},
		[]dynabi.Type{dynabi.UintType(256)},
	)
	require.NoError(t, err)

	holder := common.HexToAddress("0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045")
	data, err := f.EncodeInput([]dynabi.Value{dynabi.Address(holder)})
	require.NoError(t, err)
	require.Equal(t, common.FromHex("70a08231"+word("d8da6bf26964af9d7eed9e03e53415d37aa96045")), data)

	values, err := f.DecodeOutput(common.FromHex(word("64")))
	require.NoError(t, err)
	requireValuesEqual(t, []dynabi.Value{dynabi.U256(big.NewInt(100))}, values)

	_, err = f.EncodeInput([]dynabi.Value{dynabi.Bool(true)})
	require.ErrorIs(t, err, dynabi.ErrTypeMismatch)

	_, err = f.DecodeOutput([]byte{0x01})
	require.ErrorIs(t, err, dynabi.ErrTruncatedData)
}

const erc20ABI = `[
	{"name":"balanceOf","type":"function","stateMutability":"view",
	 "inputs":[{"name":"owner","type":"address"}],
	 "outputs":[{"name":"balance","type":"uint256"}]},
	{"name":"batchTransfer","type":"function",
	 "inputs":[{"name":"transfers","type":"tuple[]","components":[
		{"name":"to","type":"address"},
		{"name":"amount","type":"uint256"}]},
	  {"name":"data","type":"bytes"}],
	 "outputs":[{"name":"ok","type":"bool"}]}
]`

func TestFromABIMethod(t *testing.T) {
	t.Parallel()

	parsed, err := abi.JSON(strings.NewReader(erc20ABI))
	require.NoError(t, err)

	balanceOf, err := dynabi.FromABIMethod(parsed.Methods["balanceOf"])
	require.NoError(t, err)
	assert.Equal(t, "balanceOf(address)", balanceOf.Signature())
	assert.Equal(t, [4]byte{0x70, 0xa0, 0x82, 0x31}, balanceOf.Selector)
	require.NoError(t, balanceOf.CheckSelector())

	batchTransfer, err := dynabi.FromABIMethod(parsed.Methods["batchTransfer"])
	require.NoError(t, err)
	assert.Equal(t, "batchTransfer((address,uint256)[],bytes)", batchTransfer.Signature())
	// The selector parsed by go-ethereum must agree with our own derivation.
	require.NoError(t, batchTransfer.CheckSelector())
	require.Len(t, batchTransfer.Outputs, 1)
	assert.Equal(t, dynabi.KindBool, batchTransfer.Outputs[0].Kind)
}
