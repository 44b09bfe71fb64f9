package dynabi

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// FromABIMethod adapts a go-ethereum method descriptor, as produced by
// abi.JSON over an interface description, into a Function. The parsed
// selector (Method.ID) is carried over as-is.
func FromABIMethod(method abi.Method) (Function, error) {
	inputs, err := fromABIArguments(method.Inputs)
	if err != nil {
		return Function{}, fmt.Errorf("method %s: %w", method.Name, err)
	}
	outputs, err := fromABIArguments(method.Outputs)
	if err != nil {
		return Function{}, fmt.Errorf("method %s: %w", method.Name, err)
	}
	var selector [4]byte
	copy(selector[:], method.ID)
	return NewFunctionWithSelector(method.Name, inputs, outputs, selector)
}

func fromABIArguments(args abi.Arguments) ([]Type, error) {
	types := make([]Type, len(args))
	for i, arg := range args {
		t, err := FromABIType(arg.Type)
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", arg.Name, err)
		}
		types[i] = t
	}
	return types, nil
}

// FromABIType adapts a go-ethereum ABI type into a Type descriptor.
func FromABIType(t abi.Type) (Type, error) {
	switch t.T {
	case abi.BoolTy:
		return BoolType(), nil
	case abi.UintTy:
		return UintType(t.Size), nil
	case abi.IntTy:
		return IntType(t.Size), nil
	case abi.AddressTy:
		return AddressType(), nil
	case abi.FixedBytesTy:
		return FixedBytesType(t.Size), nil
	case abi.BytesTy:
		return BytesType(), nil
	case abi.StringTy:
		return StringType(), nil
	case abi.SliceTy:
		elem, err := FromABIType(*t.Elem)
		if err != nil {
			return Type{}, err
		}
		return ArrayType(elem), nil
	case abi.ArrayTy:
		elem, err := FromABIType(*t.Elem)
		if err != nil {
			return Type{}, err
		}
		return FixedArrayType(elem, t.Size), nil
	case abi.TupleTy:
		fields := make([]Type, len(t.TupleElems))
		for i, field := range t.TupleElems {
			converted, err := FromABIType(*field)
			if err != nil {
				return Type{}, err
			}
			fields[i] = converted
		}
		return TupleType(fields...), nil
	default:
		return Type{}, fmt.Errorf("%w: unsupported ABI type %s", ErrInvalidType, t)
	}
}
