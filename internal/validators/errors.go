package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrInvalidSliceType  = errors.New("invalid slice type")
	ErrEmptyData         = errors.New("data is required")
	ErrNullData          = errors.New("data must not be null")
	ErrInvalidShape      = errors.New("data does not match slice shape")
	ErrInvalidUpdatedAt  = errors.New("invalid updatedAt")
	ErrInvalidBackground = errors.New("invalid background")
	ErrInvalidColumns    = errors.New("columns must not be negative")
)
