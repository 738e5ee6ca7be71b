package runtime

import "errors"

var (
	ErrProgramNotFound        = errors.New("program not registered")
	ErrUnknownInstruction     = errors.New("instruction discriminator not recognized")
	ErrInvalidInstructionData = errors.New("invalid instruction data")
	ErrProgramPanic           = errors.New("program panicked")

	ErrReturnDataTooLarge = errors.New("return data too large")

	ErrAccountNotFound      = errors.New("account not supplied to this round")
	ErrAccountNotWritable   = errors.New("account not writable")
	ErrMissingSignature     = errors.New("missing required signature")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrUnsupportedCpi       = errors.New("unsupported cross-program invocation")
	ErrNotAccountOwner      = errors.New("program does not own account")
	ErrDataIncreaseTooLarge = errors.New("account data increase exceeds per-call limit")
	ErrDataLengthTooLarge   = errors.New("account data length exceeds maximum")

	ErrReadonlyModified   = errors.New("readonly account modified")
	ErrExternalModified   = errors.New("account data modified by non-owner")
	ErrUnbalancedLamports = errors.New("sum of account balances changed")
	ErrRentNotExempt      = errors.New("account left below rent-exempt minimum")
)
