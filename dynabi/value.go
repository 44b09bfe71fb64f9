package dynabi

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Value is a concrete datum conforming to some Type. The variants
// mirror the Type kinds one to one; Array carries the elements of both
// dynamic and fixed-length arrays. A Value is only meaningful together
// with the Type it is checked against: integer width and signedness
// must match exactly, there is no implicit widening.
type Value interface {
	isValue()
}

type (
	Bool    bool
	Address common.Address
	Bytes   []byte
	String  string
	Array   []Value
	Tuple   []Value

	// Uint is an unsigned integer of the declared bit width. X must be
	// non-negative and fit in Bits bits.
	Uint struct {
		Bits int
		X    *big.Int
	}

	// Int is a signed integer of the declared bit width, encoded as
	// two's complement. X must be in [-2^(Bits-1), 2^(Bits-1)).
	Int struct {
		Bits int
		X    *big.Int
	}

	// FixedBytes is a byte array of exactly Size bytes, 1 to 32.
	FixedBytes struct {
		Size int
		Data []byte
	}
)

func (Bool) isValue()       {}
func (Uint) isValue()       {}
func (Int) isValue()        {}
func (Address) isValue()    {}
func (FixedBytes) isValue() {}
func (Bytes) isValue()      {}
func (String) isValue()     {}
func (Array) isValue()      {}
func (Tuple) isValue()      {}

// NewUint returns an unsigned integer value of the given width.
func NewUint(bits int, x *big.Int) Uint { return Uint{Bits: bits, X: x} }

// NewInt returns a signed integer value of the given width.
func NewInt(bits int, x *big.Int) Int { return Int{Bits: bits, X: x} }

// U256 returns a 256-bit unsigned integer value, the most common
// numeric shape on EVM interfaces.
func U256(x *big.Int) Uint { return Uint{Bits: 256, X: x} }

// checkValue verifies that v conforms to t, recursively. Shape
// disagreements (wrong variant, wrong width or signedness, wrong tuple
// arity) report ErrTypeMismatch; correct shapes holding out-of-range
// content report ErrInvalidValue.
func checkValue(t Type, v Value) error {
	switch t.Kind {
	case KindBool:
		if _, ok := v.(Bool); !ok {
			return mismatch(t, v)
		}
	case KindUint:
		u, ok := v.(Uint)
		if !ok || u.Bits != t.Bits {
			return mismatch(t, v)
		}
		if u.X == nil {
			return fmt.Errorf("%w: nil %s", ErrInvalidValue, t)
		}
		if u.X.Sign() < 0 || u.X.BitLen() > t.Bits {
			return fmt.Errorf("%w: %s out of range for %s", ErrInvalidValue, u.X, t)
		}
	case KindInt:
		i, ok := v.(Int)
		if !ok || i.Bits != t.Bits {
			return mismatch(t, v)
		}
		if i.X == nil {
			return fmt.Errorf("%w: nil %s", ErrInvalidValue, t)
		}
		if !inSignedRange(i.X, t.Bits) {
			return fmt.Errorf("%w: %s out of range for %s", ErrInvalidValue, i.X, t)
		}
	case KindAddress:
		if _, ok := v.(Address); !ok {
			return mismatch(t, v)
		}
	case KindFixedBytes:
		fb, ok := v.(FixedBytes)
		if !ok || fb.Size != t.Size {
			return mismatch(t, v)
		}
		if len(fb.Data) != fb.Size {
			return fmt.Errorf("%w: %d bytes in a bytes%d", ErrInvalidValue, len(fb.Data), fb.Size)
		}
	case KindBytes:
		if _, ok := v.(Bytes); !ok {
			return mismatch(t, v)
		}
	case KindString:
		if _, ok := v.(String); !ok {
			return mismatch(t, v)
		}
	case KindArray:
		elems, ok := v.(Array)
		if !ok {
			return mismatch(t, v)
		}
		for _, elem := range elems {
			if err := checkValue(*t.Elem, elem); err != nil {
				return err
			}
		}
	case KindFixedArray:
		elems, ok := v.(Array)
		if !ok {
			return mismatch(t, v)
		}
		if len(elems) != t.Size {
			return fmt.Errorf("%w: %d elements in a %s", ErrInvalidValue, len(elems), t)
		}
		for _, elem := range elems {
			if err := checkValue(*t.Elem, elem); err != nil {
				return err
			}
		}
	case KindTuple:
		fields, ok := v.(Tuple)
		if !ok || len(fields) != len(t.Fields) {
			return mismatch(t, v)
		}
		for i, field := range fields {
			if err := checkValue(t.Fields[i], field); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidType, t.Kind)
	}
	return nil
}

func mismatch(t Type, v Value) error {
	return fmt.Errorf("%w: %T for %s", ErrTypeMismatch, v, t)
}

func inSignedRange(x *big.Int, bits int) bool {
	limit := new(big.Int).Lsh(big.NewInt(1), uint(bits-1)) // 2^(bits-1)
	if x.Sign() < 0 {
		return new(big.Int).Neg(x).Cmp(limit) <= 0
	}
	return x.Cmp(limit) < 0
}
