package domain

import "errors"

var (
	// ErrInternalServerError will throw if any the Internal Server Error happen
	ErrInternalServerError = errors.New("Internal Server Error")
	// ErrNotFound will throw if the requested item is not exists
	ErrNotFound = errors.New("Your requested Item is not found")
	// ErrBadParamInput will throw if the given request-body or params is not valid
	ErrBadParamInput = errors.New("Given Param is not valid")

	// configuration errors
	ErrInvalidCurve          = errors.New("invalid price curve")
	ErrInvalidConversionFee  = errors.New("conversion fee out of range")
	ErrInvalidKeptPercentage = errors.New("kept percentage out of range")
	ErrInvalidLandsLimit     = errors.New("lands limit must be greater than 0")
	ErrInvalidGasPriceLimit  = errors.New("gas price limit must be greater than 0")
	ErrInvalidDecimals       = errors.New("token decimals out of range")
	ErrInvalidTokenPolicy    = errors.New("token cannot be burned and forwarded at the same time")
	ErrInvalidForwardTarget  = errors.New("invalid forward target")

	// authorization errors
	ErrNotOwner = errors.New("caller is not the auction owner")

	// auction state errors
	ErrAuctionNotStarted  = errors.New("auction has not started")
	ErrAuctionFinished    = errors.New("auction already finished")
	ErrAuctionNotFinished = errors.New("auction has not finished")

	// validation errors
	ErrLengthMismatch       = errors.New("array lengths do not match")
	ErrEmptyBid             = errors.New("bid must include at least one land")
	ErrTooManyLands         = errors.New("bid exceeds lands limit")
	ErrCoordinateOutOfRange = errors.New("coordinate out of range")
	ErrTokenNotAllowed      = errors.New("token is not an allowed payment token")
	ErrTokenAlreadyAllowed  = errors.New("token is already allowed")
	ErrTokenNotContract     = errors.New("token address is not a contract")
	ErrGasPriceExceeded     = errors.New("gas price exceeds the limit")
	ErrInvalidBeneficiary   = errors.New("beneficiary cannot be the empty address")
	ErrDexNotSet            = errors.New("no conversion venue configured")

	// funds errors
	ErrInsufficientFunds = errors.New("insufficient balance or allowance")
	ErrZeroBalance       = errors.New("no balance to dispose")
	ErrBurnNotSupported  = errors.New("token does not support burning")

	// collision errors
	ErrLandAlreadyOwned = errors.New("land is already owned")

	// request errors
	ErrInvalidAddress   = errors.New("Invalid address")
	ErrInvalidSignature = errors.New("Invalid signature")
)
