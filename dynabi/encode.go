package dynabi

import (
	"fmt"
	"math/big"
)

const wordSize = 32

// Encode produces call data for a function invocation: the 4-byte
// selector followed by the head/tail encoding of values against their
// declared types. The two slices must have equal length and each value
// must conform to its positional type.
func Encode(selector [4]byte, inputs []Type, values []Value) ([]byte, error) {
	body, err := encodeSequence(inputs, values)
	if err != nil {
		return nil, err
	}
	return append(selector[:], body...), nil
}

// encodeSequence encodes an ordered run of values using the head/tail
// rule shared by top-level arguments, array elements and tuple fields.
// Static values are written into the head in place; dynamic values
// leave a 32-byte offset in the head, relative to the start of the
// sequence, and append their self-contained encoding to the tail.
func encodeSequence(types []Type, values []Value) ([]byte, error) {
	if len(types) != len(values) {
		return nil, fmt.Errorf("%w: %d values for %d types", ErrTypeMismatch, len(values), len(types))
	}

	headSize := 0
	for _, t := range types {
		headSize += t.headSize()
	}

	head := make([]byte, 0, headSize)
	var tail []byte
	for i, t := range types {
		if err := checkValue(t, values[i]); err != nil {
			return nil, err
		}
		enc, err := encodeValue(t, values[i])
		if err != nil {
			return nil, err
		}
		if t.IsDynamic() {
			head = append(head, encodeWordUint(big.NewInt(int64(headSize+len(tail))))...)
			tail = append(tail, enc...)
		} else {
			head = append(head, enc...)
		}
	}
	return append(head, tail...), nil
}

// encodeValue returns the self-contained encoding of a single checked
// value: one or more words for static types, a length-prefixed or
// recursively offset-encoded region for dynamic ones.
func encodeValue(t Type, v Value) ([]byte, error) {
	switch t.Kind {
	case KindBool:
		word := make([]byte, wordSize)
		if v.(Bool) {
			word[wordSize-1] = 1
		}
		return word, nil
	case KindUint:
		return encodeWordUint(v.(Uint).X), nil
	case KindInt:
		return encodeWordInt(v.(Int).X), nil
	case KindAddress:
		word := make([]byte, wordSize)
		addr := v.(Address)
		copy(word[wordSize-20:], addr[:])
		return word, nil
	case KindFixedBytes:
		word := make([]byte, wordSize)
		copy(word, v.(FixedBytes).Data)
		return word, nil
	case KindBytes:
		return encodeLengthPrefixed([]byte(v.(Bytes))), nil
	case KindString:
		return encodeLengthPrefixed([]byte(v.(String))), nil
	case KindArray:
		elems := v.(Array)
		body, err := encodeSequence(repeatType(*t.Elem, len(elems)), elems)
		if err != nil {
			return nil, err
		}
		return append(encodeWordUint(big.NewInt(int64(len(elems)))), body...), nil
	case KindFixedArray:
		return encodeSequence(repeatType(*t.Elem, t.Size), v.(Array))
	case KindTuple:
		return encodeSequence(t.Fields, v.(Tuple))
	default:
		return nil, fmt.Errorf("%w: unknown kind %d", ErrInvalidType, t.Kind)
	}
}

// encodeWordUint writes a non-negative integer as a big-endian 32-byte
// word. Range is the caller's responsibility (checkValue).
func encodeWordUint(x *big.Int) []byte {
	word := make([]byte, wordSize)
	x.FillBytes(word)
	return word
}

var twoPow256 = new(big.Int).Lsh(big.NewInt(1), 256)

// encodeWordInt writes a signed integer as a two's-complement
// big-endian 32-byte word.
func encodeWordInt(x *big.Int) []byte {
	if x.Sign() < 0 {
		x = new(big.Int).Add(twoPow256, x)
	}
	return encodeWordUint(x)
}

// encodeLengthPrefixed writes a length word followed by the content,
// right-padded with zeroes to a word boundary.
func encodeLengthPrefixed(data []byte) []byte {
	padded := (len(data) + wordSize - 1) / wordSize * wordSize
	out := make([]byte, wordSize+padded)
	big.NewInt(int64(len(data))).FillBytes(out[:wordSize])
	copy(out[wordSize:], data)
	return out
}

func repeatType(t Type, n int) []Type {
	types := make([]Type, n)
	for i := range types {
		types[i] = t
	}
	return types
}
