package overflow

import "errors"

var (
	ErrInvalidAccounts       = errors.New("invalid accounts for this round")
	ErrArithmeticOverflow    = errors.New("arithmetic overflow")
	ErrDiscriminatorMismatch = errors.New("record discriminator mismatch")
	ErrRecordAddressMismatch = errors.New("record address mismatch")
	ErrRecordTooSmall        = errors.New("record too small for encoded result")
)
