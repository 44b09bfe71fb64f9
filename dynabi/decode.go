package dynabi

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Decode interprets return data against an ordered list of output
// types, yielding one Value per type. It is a pure function of its
// arguments: the same types and data always produce the same values or
// the same structured failure.
func Decode(outputs []Type, data []byte) ([]Value, error) {
	return decodeSequence(outputs, data)
}

// decodeSequence is the inverse of encodeSequence. frame is the region
// dynamic offsets are relative to: the full data for top-level outputs,
// the element area of an enclosing array, or the body of a tuple.
func decodeSequence(types []Type, frame []byte) ([]Value, error) {
	values := make([]Value, len(types))
	cursor := 0
	for i, t := range types {
		headSize := t.headSize()
		if len(frame) < cursor+headSize {
			return nil, fmt.Errorf("%w: missing head slot for %s", ErrTruncatedData, t)
		}
		if t.IsDynamic() {
			offset, err := decodeWordLen(frame[cursor : cursor+wordSize])
			if err != nil {
				return nil, fmt.Errorf("offset of %s: %w", t, err)
			}
			if offset > len(frame) {
				return nil, fmt.Errorf("%w: offset %d of %s past end of data", ErrInvalidData, offset, t)
			}
			value, err := decodeDynamic(t, frame[offset:])
			if err != nil {
				return nil, err
			}
			values[i] = value
		} else {
			value, err := decodeStatic(t, frame[cursor:cursor+headSize])
			if err != nil {
				return nil, err
			}
			values[i] = value
		}
		cursor += headSize
	}
	return values, nil
}

// decodeDynamic decodes a dynamic value whose encoding starts at the
// beginning of frame.
func decodeDynamic(t Type, frame []byte) (Value, error) {
	switch t.Kind {
	case KindBytes:
		content, err := decodeLengthPrefixed(frame)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t, err)
		}
		return Bytes(content), nil
	case KindString:
		content, err := decodeLengthPrefixed(frame)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t, err)
		}
		return String(content), nil
	case KindArray:
		if len(frame) < wordSize {
			return nil, fmt.Errorf("%w: missing length of %s", ErrTruncatedData, t)
		}
		length, err := decodeWordLen(frame[:wordSize])
		if err != nil {
			return nil, fmt.Errorf("length of %s: %w", t, err)
		}
		elemHead := t.Elem.headSize()
		if elemHead == 0 {
			return nil, fmt.Errorf("%w: array of zero-size element %s", ErrInvalidType, t.Elem)
		}
		// Each element occupies at least one head slot, so a length
		// the remaining data cannot possibly hold is malformed.
		if length > (len(frame)-wordSize)/elemHead {
			return nil, fmt.Errorf("%w: length %d of %s past end of data", ErrInvalidData, length, t)
		}
		elems, err := decodeSequence(repeatType(*t.Elem, length), frame[wordSize:])
		if err != nil {
			return nil, err
		}
		return Array(elems), nil
	case KindFixedArray:
		elems, err := decodeSequence(repeatType(*t.Elem, t.Size), frame)
		if err != nil {
			return nil, err
		}
		return Array(elems), nil
	case KindTuple:
		fields, err := decodeSequence(t.Fields, frame)
		if err != nil {
			return nil, err
		}
		return Tuple(fields), nil
	default:
		return nil, fmt.Errorf("%w: %s is not dynamic", ErrInvalidType, t)
	}
}

// decodeStatic decodes a static value from its in-place head encoding.
// data is exactly headSize(t) bytes.
func decodeStatic(t Type, data []byte) (Value, error) {
	switch t.Kind {
	case KindBool:
		for _, b := range data[:wordSize-1] {
			if b != 0 {
				return nil, fmt.Errorf("%w: non-canonical bool word", ErrInvalidData)
			}
		}
		switch data[wordSize-1] {
		case 0:
			return Bool(false), nil
		case 1:
			return Bool(true), nil
		default:
			return nil, fmt.Errorf("%w: bool word holds %d", ErrInvalidData, data[wordSize-1])
		}
	case KindUint:
		x := new(big.Int).SetBytes(data)
		if x.BitLen() > t.Bits {
			return nil, fmt.Errorf("%w: %s does not fit %s", ErrInvalidData, x, t)
		}
		return Uint{Bits: t.Bits, X: x}, nil
	case KindInt:
		x := new(big.Int).SetBytes(data)
		if data[0]&0x80 != 0 {
			x.Sub(x, twoPow256)
		}
		if !inSignedRange(x, t.Bits) {
			return nil, fmt.Errorf("%w: %s does not fit %s", ErrInvalidData, x, t)
		}
		return Int{Bits: t.Bits, X: x}, nil
	case KindAddress:
		var addr common.Address
		copy(addr[:], data[wordSize-20:])
		return Address(addr), nil
	case KindFixedBytes:
		content := make([]byte, t.Size)
		copy(content, data[:t.Size])
		return FixedBytes{Size: t.Size, Data: content}, nil
	case KindFixedArray:
		elems, err := decodeSequence(repeatType(*t.Elem, t.Size), data)
		if err != nil {
			return nil, err
		}
		return Array(elems), nil
	case KindTuple:
		fields, err := decodeSequence(t.Fields, data)
		if err != nil {
			return nil, err
		}
		return Tuple(fields), nil
	default:
		return nil, fmt.Errorf("%w: unknown kind %d", ErrInvalidType, t.Kind)
	}
}

// decodeLengthPrefixed reads a length word and returns a copy of that
// many content bytes.
func decodeLengthPrefixed(frame []byte) ([]byte, error) {
	if len(frame) < wordSize {
		return nil, fmt.Errorf("%w: missing length prefix", ErrTruncatedData)
	}
	length, err := decodeWordLen(frame[:wordSize])
	if err != nil {
		return nil, err
	}
	if length > len(frame)-wordSize {
		return nil, fmt.Errorf("%w: length %d past end of data", ErrInvalidData, length)
	}
	content := make([]byte, length)
	copy(content, frame[wordSize:wordSize+length])
	return content, nil
}

// decodeWordLen reads a word used as an offset or length. Values that
// cannot index a byte slice are malformed data, not resource limits.
func decodeWordLen(word []byte) (int, error) {
	x := new(big.Int).SetBytes(word)
	if !x.IsInt64() || x.Int64() > int64(int(^uint(0)>>1)) {
		return 0, fmt.Errorf("%w: %s is not addressable", ErrInvalidData, x)
	}
	return int(x.Int64()), nil
}
