package multicall

import (
	"bytes"
	"fmt"

	"github.com/vantage-eth/dyncall/dynabi"
)

// Solidity's built-in revert encodings.
var (
	errorSelector = [4]byte{0x08, 0xc3, 0x79, 0xa0} // Error(string)
	panicSelector = [4]byte{0x4e, 0x48, 0x7b, 0x71} // Panic(uint256)
)

var panicReasons = map[uint64]string{
	0x01: "assertion failed",
	0x11: "arithmetic overflow or underflow",
	0x12: "division or modulo by zero",
	0x21: "value invalid for enum type",
	0x22: "storage byte array incorrectly encoded",
	0x31: "pop on empty array",
	0x32: "array index out of bounds",
	0x41: "allocated too much memory or array too large",
	0x51: "call to a zero-initialized function pointer",
}

// RevertReason decodes return data of a reverted call into a human
// readable string. Only the two encodings the compiler emits are
// recognized, Error(string) and Panic(uint256); anything else,
// including empty return data, yields "".
func RevertReason(returnData []byte) string {
	if len(returnData) < 4 {
		return ""
	}
	body := returnData[4:]
	switch {
	case bytes.Equal(returnData[:4], errorSelector[:]):
		values, err := dynabi.Decode([]dynabi.Type{dynabi.StringType()}, body)
		if err != nil {
			return ""
		}
		return string(values[0].(dynabi.String))
	case bytes.Equal(returnData[:4], panicSelector[:]):
		values, err := dynabi.Decode([]dynabi.Type{dynabi.UintType(256)}, body)
		if err != nil {
			return ""
		}
		code := values[0].(dynabi.Uint).X
		if code.IsUint64() {
			if reason, ok := panicReasons[code.Uint64()]; ok {
				return fmt.Sprintf("panic 0x%02x: %s", code.Uint64(), reason)
			}
		}
		return fmt.Sprintf("panic 0x%x", code)
	default:
		return ""
	}
}
