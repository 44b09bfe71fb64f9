package main

import (
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
	"github.com/vantage-eth/dyncall/dynabi"
	"github.com/vantage-eth/dyncall/multicall"
	"github.com/vantage-eth/dyncall/utils"
)

const (
	rpcF       = "rpc"
	abiF       = "abi"
	targetF    = "target"
	callF      = "call"
	blockF     = "block"
	multicallF = "multicall-address"
	logLevelF  = "log-level"
)

func main() {
	if err := newCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCmd() *cobra.Command {
	logLevel := utils.NewLogLevel(utils.INFO)

	cmd := &cobra.Command{
		Use:   "dyncall",
		Short: "Batch read-only contract calls through Multicall3",
		Long: `dyncall reads a contract interface description, encodes the requested
calls, executes them as a single aggregate3 round trip and prints one
result per call.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, logLevel)
		},
	}

	cmd.Flags().String(rpcF, "", "Ethereum node URL (http, ws or ipc)")
	cmd.Flags().String(abiF, "", "Path to the contract ABI JSON")
	cmd.Flags().String(targetF, "", "Contract address the calls target")
	cmd.Flags().StringArray(callF, nil, `Call to batch, as "method" or "method:arg1,arg2". Repeatable.`)
	cmd.Flags().String(blockF, "", "Block number to pin the batch to (default: latest)")
	cmd.Flags().String(multicallF, multicall.DefaultAddress.Hex(), "Address of the Multicall3 deployment")
	cmd.Flags().Var(logLevel, logLevelF, "Options: debug, info, warn, error.")
	for _, required := range []string{rpcF, abiF, targetF, callF} {
		if err := cmd.MarkFlagRequired(required); err != nil {
			panic(err)
		}
	}
	return cmd
}

func run(cmd *cobra.Command, logLevel *utils.LogLevel) error {
	log, err := utils.NewZapLogger(logLevel, true)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}

	abiPath, _ := cmd.Flags().GetString(abiF)
	abiJSON, err := os.ReadFile(abiPath)
	if err != nil {
		return fmt.Errorf("read ABI: %w", err)
	}
	contractABI, err := abi.JSON(strings.NewReader(string(abiJSON)))
	if err != nil {
		return fmt.Errorf("parse ABI: %w", err)
	}

	targetHex, _ := cmd.Flags().GetString(targetF)
	if !common.IsHexAddress(targetHex) {
		return fmt.Errorf("invalid target address %q", targetHex)
	}
	target := common.HexToAddress(targetHex)

	rpcURL, _ := cmd.Flags().GetString(rpcF)
	caller, err := multicall.Dial(cmd.Context(), rpcURL)
	if err != nil {
		return err
	}
	defer caller.Close()

	builder := multicall.New(caller).WithLogger(log)

	multicallHex, _ := cmd.Flags().GetString(multicallF)
	if !common.IsHexAddress(multicallHex) {
		return fmt.Errorf("invalid multicall address %q", multicallHex)
	}
	builder.WithMulticallAddress(common.HexToAddress(multicallHex))

	if blockStr, _ := cmd.Flags().GetString(blockF); blockStr != "" {
		block, ok := new(big.Int).SetString(blockStr, 0)
		if !ok {
			return fmt.Errorf("invalid block number %q", blockStr)
		}
		builder.WithBlockNumber(block)
	}

	specs, _ := cmd.Flags().GetStringArray(callF)
	for _, spec := range specs {
		call, err := parseCall(contractABI, target, spec)
		if err != nil {
			return err
		}
		builder.AddCall(call)
	}

	outcomes, err := builder.Execute(cmd.Context())
	if err != nil {
		return err
	}
	for i, outcome := range outcomes {
		printOutcome(cmd, specs[i], outcome)
	}
	return nil
}

// parseCall turns a "method:arg1,arg2" flag into a call item, parsing
// each argument per the method's declared input types.
func parseCall(contractABI abi.ABI, target common.Address, spec string) (multicall.CallItem, error) {
	name, rawArgs, _ := strings.Cut(spec, ":")
	method, ok := contractABI.Methods[name]
	if !ok {
		return multicall.CallItem{}, fmt.Errorf("method %q not in ABI", name)
	}
	function, err := dynabi.FromABIMethod(method)
	if err != nil {
		return multicall.CallItem{}, err
	}

	var tokens []string
	if rawArgs != "" {
		tokens = strings.Split(rawArgs, ",")
	}
	if len(tokens) != len(function.Inputs) {
		return multicall.CallItem{}, fmt.Errorf("%s takes %d arguments, got %d", function.Signature(), len(function.Inputs), len(tokens))
	}

	args := make([]dynabi.Value, len(tokens))
	for i, token := range tokens {
		arg, err := parseArg(function.Inputs[i], strings.TrimSpace(token))
		if err != nil {
			return multicall.CallItem{}, fmt.Errorf("argument %d of %s: %w", i, name, err)
		}
		args[i] = arg
	}
	return multicall.NewCall(target, function, args...), nil
}

func parseArg(t dynabi.Type, token string) (dynabi.Value, error) {
	switch t.Kind {
	case dynabi.KindBool:
		switch token {
		case "true":
			return dynabi.Bool(true), nil
		case "false":
			return dynabi.Bool(false), nil
		default:
			return nil, fmt.Errorf("invalid bool %q", token)
		}
	case dynabi.KindUint:
		x, ok := new(big.Int).SetString(token, 0)
		if !ok {
			return nil, fmt.Errorf("invalid integer %q", token)
		}
		return dynabi.NewUint(t.Bits, x), nil
	case dynabi.KindInt:
		x, ok := new(big.Int).SetString(token, 0)
		if !ok {
			return nil, fmt.Errorf("invalid integer %q", token)
		}
		return dynabi.NewInt(t.Bits, x), nil
	case dynabi.KindAddress:
		if !common.IsHexAddress(token) {
			return nil, fmt.Errorf("invalid address %q", token)
		}
		return dynabi.Address(common.HexToAddress(token)), nil
	case dynabi.KindFixedBytes:
		data, err := hexutil.Decode(token)
		if err != nil {
			return nil, err
		}
		return dynabi.FixedBytes{Size: t.Size, Data: data}, nil
	case dynabi.KindBytes:
		data, err := hexutil.Decode(token)
		if err != nil {
			return nil, err
		}
		return dynabi.Bytes(data), nil
	case dynabi.KindString:
		return dynabi.String(token), nil
	default:
		return nil, fmt.Errorf("%s arguments are not supported on the command line", t)
	}
}

func printOutcome(cmd *cobra.Command, spec string, outcome multicall.Outcome) {
	if !outcome.Ok() {
		cmd.Printf("%s: FAILED %s\n", spec, outcome.Failure)
		return
	}
	rendered := make([]string, len(outcome.Values))
	for i, value := range outcome.Values {
		rendered[i] = renderValue(value)
	}
	cmd.Printf("%s: %s\n", spec, strings.Join(rendered, ", "))
}

func renderValue(v dynabi.Value) string {
	switch value := v.(type) {
	case dynabi.Bool:
		return fmt.Sprintf("%t", bool(value))
	case dynabi.Uint:
		return value.X.String()
	case dynabi.Int:
		return value.X.String()
	case dynabi.Address:
		return common.Address(value).Hex()
	case dynabi.FixedBytes:
		return hexutil.Encode(value.Data)
	case dynabi.Bytes:
		return hexutil.Encode(value)
	case dynabi.String:
		return fmt.Sprintf("%q", string(value))
	case dynabi.Array:
		elems := make([]string, len(value))
		for i, elem := range value {
			elems[i] = renderValue(elem)
		}
		return "[" + strings.Join(elems, ", ") + "]"
	case dynabi.Tuple:
		fields := make([]string, len(value))
		for i, field := range value {
			fields[i] = renderValue(field)
		}
		return "(" + strings.Join(fields, ", ") + ")"
	default:
		return fmt.Sprintf("%v", v)
	}
}
