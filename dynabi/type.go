package dynabi

import (
	"fmt"
	"strings"
)

// Kind identifies the category of an ABI type.
type Kind uint8

const (
	KindBool Kind = iota
	KindUint
	KindInt
	KindAddress
	KindFixedBytes
	KindBytes
	KindString
	KindArray
	KindFixedArray
	KindTuple
)

// Type describes an ABI type known only at run time, e.g. one loaded
// from a contract interface description. The zero value is not a valid
// type; use the constructors and check Validate before encoding with
// descriptors from untrusted sources.
type Type struct {
	Kind   Kind
	Bits   int    // bit width for Uint and Int
	Size   int    // byte length for FixedBytes, element count for FixedArray
	Elem   *Type  // element type for Array and FixedArray
	Fields []Type // ordered field types for Tuple
}

func BoolType() Type            { return Type{Kind: KindBool} }
func UintType(bits int) Type    { return Type{Kind: KindUint, Bits: bits} }
func IntType(bits int) Type     { return Type{Kind: KindInt, Bits: bits} }
func AddressType() Type         { return Type{Kind: KindAddress} }
func BytesType() Type           { return Type{Kind: KindBytes} }
func StringType() Type          { return Type{Kind: KindString} }
func FixedBytesType(n int) Type { return Type{Kind: KindFixedBytes, Size: n} }

func ArrayType(elem Type) Type { return Type{Kind: KindArray, Elem: &elem} }

func FixedArrayType(elem Type, n int) Type {
	return Type{Kind: KindFixedArray, Elem: &elem, Size: n}
}

func TupleType(fields ...Type) Type { return Type{Kind: KindTuple, Fields: fields} }

// Validate checks the descriptor against the ABI grammar: integer bit
// widths are multiples of 8 in [8,256], fixed byte sizes are in [1,32],
// array and tuple element types are present and themselves valid.
func (t Type) Validate() error {
	switch t.Kind {
	case KindBool, KindAddress, KindBytes, KindString:
		return nil
	case KindUint, KindInt:
		if t.Bits < 8 || t.Bits > 256 || t.Bits%8 != 0 {
			return fmt.Errorf("%w: bit width %d", ErrInvalidType, t.Bits)
		}
		return nil
	case KindFixedBytes:
		if t.Size < 1 || t.Size > 32 {
			return fmt.Errorf("%w: bytes%d", ErrInvalidType, t.Size)
		}
		return nil
	case KindArray:
		if t.Elem == nil {
			return fmt.Errorf("%w: array without element type", ErrInvalidType)
		}
		if err := t.Elem.Validate(); err != nil {
			return err
		}
		// A zero-size element, e.g. an empty tuple, makes the array
		// length meaningless: the encoding carries no element data.
		if t.Elem.headSize() == 0 {
			return fmt.Errorf("%w: array of zero-size element %s", ErrInvalidType, t.Elem)
		}
		return nil
	case KindFixedArray:
		if t.Elem == nil {
			return fmt.Errorf("%w: array without element type", ErrInvalidType)
		}
		if t.Size < 1 {
			return fmt.Errorf("%w: fixed array of length %d", ErrInvalidType, t.Size)
		}
		return t.Elem.Validate()
	case KindTuple:
		for _, field := range t.Fields {
			if err := field.Validate(); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidType, t.Kind)
	}
}

// IsDynamic reports whether the type has a variable-length encoding.
// Bytes, strings and dynamic arrays are dynamic, and so is any fixed
// array or tuple that contains a dynamic type transitively.
func (t Type) IsDynamic() bool {
	switch t.Kind {
	case KindBytes, KindString, KindArray:
		return true
	case KindFixedArray:
		return t.Elem.IsDynamic()
	case KindTuple:
		for _, field := range t.Fields {
			if field.IsDynamic() {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// String renders the type in canonical ABI notation, as used in
// function signatures: uint256, address, bytes, uint256[], bytes32[4],
// (address,uint256).
func (t Type) String() string {
	switch t.Kind {
	case KindBool:
		return "bool"
	case KindUint:
		return fmt.Sprintf("uint%d", t.Bits)
	case KindInt:
		return fmt.Sprintf("int%d", t.Bits)
	case KindAddress:
		return "address"
	case KindFixedBytes:
		return fmt.Sprintf("bytes%d", t.Size)
	case KindBytes:
		return "bytes"
	case KindString:
		return "string"
	case KindArray:
		return t.Elem.String() + "[]"
	case KindFixedArray:
		return fmt.Sprintf("%s[%d]", t.Elem, t.Size)
	case KindTuple:
		fields := make([]string, len(t.Fields))
		for i, field := range t.Fields {
			fields[i] = field.String()
		}
		return "(" + strings.Join(fields, ",") + ")"
	default:
		return fmt.Sprintf("<invalid kind %d>", t.Kind)
	}
}

// headSize returns the number of bytes the type occupies in the head
// region of a sequence encoding. Dynamic types occupy a single offset
// word; static composites span the words of all their elements.
func (t Type) headSize() int {
	if t.IsDynamic() {
		return wordSize
	}
	switch t.Kind {
	case KindFixedArray:
		return t.Size * t.Elem.headSize()
	case KindTuple:
		size := 0
		for _, field := range t.Fields {
			size += field.headSize()
		}
		return size
	default:
		return wordSize
	}
}
