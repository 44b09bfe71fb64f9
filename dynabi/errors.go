package dynabi

import "errors"

var (
	// ErrInvalidType is returned when a Type descriptor violates the ABI
	// grammar, e.g. a uint with a bit width that is not a multiple of 8.
	ErrInvalidType = errors.New("abi: invalid type")

	// ErrTypeMismatch is returned by the encoder when a value's shape
	// disagrees with its declared type at any nesting depth.
	ErrTypeMismatch = errors.New("abi: value does not match type")

	// ErrInvalidValue is returned by the encoder when a value matches its
	// type's shape but holds out-of-range content, e.g. a fixed-size byte
	// array of the wrong length or an integer exceeding its bit width.
	ErrInvalidValue = errors.New("abi: invalid value")

	// ErrTruncatedData is returned by the decoder when the data ends
	// before a required read (head slot, length prefix or tail content).
	ErrTruncatedData = errors.New("abi: truncated data")

	// ErrInvalidData is returned by the decoder when the data is long
	// enough but malformed: a boolean word other than 0 or 1, an integer
	// word outside its declared width, or an offset or length prefix
	// implying content past the end of the data.
	ErrInvalidData = errors.New("abi: invalid data")
)
