package dynabi

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// Function describes a callable contract function at run time: its
// name, input and output types, and the 4-byte selector dispatching to
// it. Descriptors usually come from a parsed interface description
// (see FromABIMethod); NewFunction builds one from scratch.
type Function struct {
	Name     string
	Inputs   []Type
	Outputs  []Type
	Selector [4]byte
}

// NewFunction validates the input and output types and derives the
// selector from the canonical signature.
func NewFunction(name string, inputs, outputs []Type) (Function, error) {
	f := Function{Name: name, Inputs: inputs, Outputs: outputs}
	for _, t := range inputs {
		if err := t.Validate(); err != nil {
			return Function{}, fmt.Errorf("input of %s: %w", name, err)
		}
	}
	for _, t := range outputs {
		if err := t.Validate(); err != nil {
			return Function{}, fmt.Errorf("output of %s: %w", name, err)
		}
	}
	f.Selector = deriveSelector(f.Signature())
	return f, nil
}

// NewFunctionWithSelector is NewFunction with a caller-supplied
// selector, trusted as-is. Use CheckSelector to verify it against the
// signature when the source of the descriptor is not trusted.
func NewFunctionWithSelector(name string, inputs, outputs []Type, selector [4]byte) (Function, error) {
	f, err := NewFunction(name, inputs, outputs)
	if err != nil {
		return Function{}, err
	}
	f.Selector = selector
	return f, nil
}

// Signature renders the canonical signature string the selector is
// derived from, e.g. "transfer(address,uint256)".
func (f Function) Signature() string {
	inputs := make([]string, len(f.Inputs))
	for i, t := range f.Inputs {
		inputs[i] = t.String()
	}
	return f.Name + "(" + strings.Join(inputs, ",") + ")"
}

// CheckSelector verifies that the descriptor's selector matches the one
// derived from its canonical signature.
func (f Function) CheckSelector() error {
	derived := deriveSelector(f.Signature())
	if !bytes.Equal(derived[:], f.Selector[:]) {
		return fmt.Errorf("%w: selector %#x does not match %s (%#x)",
			ErrInvalidType, f.Selector, f.Signature(), derived)
	}
	return nil
}

// EncodeInput produces the call data invoking f with the given
// arguments: selector followed by the head/tail encoding of args
// against f.Inputs.
func (f Function) EncodeInput(args []Value) ([]byte, error) {
	data, err := Encode(f.Selector, f.Inputs, args)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", f.Signature(), err)
	}
	return data, nil
}

// DecodeOutput interprets return data against f.Outputs.
func (f Function) DecodeOutput(data []byte) ([]Value, error) {
	values, err := Decode(f.Outputs, data)
	if err != nil {
		return nil, fmt.Errorf("decode output of %s: %w", f.Signature(), err)
	}
	return values, nil
}

// deriveSelector is the first 4 bytes of the Keccak-256 hash of the
// canonical signature.
func deriveSelector(signature string) [4]byte {
	var selector [4]byte
	copy(selector[:], crypto.Keccak256([]byte(signature)))
	return selector
}
