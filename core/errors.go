package core

import "strconv"

// ErrorCode int
type ErrorCode int

// ErrorKind groups error codes so callers can tell "nothing to do" from "operation unsafe"
type ErrorKind int

const (
	// KindUnknown unknown
	KindUnknown ErrorKind = iota
	// KindOverflow checked arithmetic overflow or underflow
	KindOverflow
	// KindInvariant operation would break an invariant, state unchanged
	KindInvariant
	// KindNotFound referenced entry does not exist
	KindNotFound
	// KindCapacity too many distinct entries
	KindCapacity
	// KindPrecondition clock regression, missing or stale price, bad input
	KindPrecondition
)

const (
	// ErrUnknown unkown
	ErrUnknown ErrorCode = 100000

	// ErrMathOverflow checked math overflow
	ErrMathOverflow ErrorCode = 100100
	// ErrDivisionByZero division by zero
	ErrDivisionByZero ErrorCode = 100101

	// ErrInsufficientBalance amount exceeds recorded principal
	ErrInsufficientBalance ErrorCode = 100200
	// ErrInsufficientCollateral collateral can not cover the operation
	ErrInsufficientCollateral ErrorCode = 100201
	// ErrInsufficientLiquidity reserve can not cover the operation
	ErrInsufficientLiquidity ErrorCode = 100202
	// ErrHealthFactorTooLow health factor below the required minimum
	ErrHealthFactorTooLow ErrorCode = 100203
	// ErrBorrowExceedsLimit borrow over the collateral capacity
	ErrBorrowExceedsLimit ErrorCode = 100204
	// ErrNotLiquidatable health factor at or above break-even
	ErrNotLiquidatable ErrorCode = 100205
	// ErrCloseFactorExceeded repay value over the close factor cap
	ErrCloseFactorExceeded ErrorCode = 100206
	// ErrLeverageExceedsMaximum leverage over market max
	ErrLeverageExceedsMaximum ErrorCode = 100207
	// ErrLeverageTooLow leverage below 1x
	ErrLeverageTooLow ErrorCode = 100208
	// ErrPositionClosed leveraged position is no longer open
	ErrPositionClosed ErrorCode = 100209
	// ErrPositionNotLiquidatable price has not crossed the liquidation price
	ErrPositionNotLiquidatable ErrorCode = 100210
	// ErrInvariantViolation reserve totals would break an invariant
	ErrInvariantViolation ErrorCode = 100211
	// ErrMaxLendingCapacityReached lending supply over max lending ratio
	ErrMaxLendingCapacityReached ErrorCode = 100212
	// ErrMinLendingDurationNotMet lending entry withdrawn too early
	ErrMinLendingDurationNotMet ErrorCode = 100213

	// ErrCollateralNotFound no collateral entry
	ErrCollateralNotFound ErrorCode = 100300
	// ErrDebtNotFound no debt entry
	ErrDebtNotFound ErrorCode = 100301
	// ErrPositionNotFound no leveraged position
	ErrPositionNotFound ErrorCode = 100302
	// ErrReserveNotFound no reserve
	ErrReserveNotFound ErrorCode = 100303
	// ErrMarketNotFound no market
	ErrMarketNotFound ErrorCode = 100304

	// ErrCapacityExceeded too many distinct entries
	ErrCapacityExceeded ErrorCode = 100400

	// ErrClockRegression timestamp earlier than the last update
	ErrClockRegression ErrorCode = 100500
	// ErrPriceMissing required price absent from the snapshot
	ErrPriceMissing ErrorCode = 100501
	// ErrStalePrice price snapshot older than allowed
	ErrStalePrice ErrorCode = 100502
	// ErrInvalidAmount invalid amount
	ErrInvalidAmount ErrorCode = 100503
	// ErrInvalidParameter invalid parameter
	ErrInvalidParameter ErrorCode = 100504
	// ErrLendingNotEnabled lending disabled on the reserve
	ErrLendingNotEnabled ErrorCode = 100505
)

var messages = map[ErrorCode]string{
	ErrUnknown:                   "unknown",
	ErrMathOverflow:              "math operation overflow",
	ErrDivisionByZero:            "division by zero",
	ErrInsufficientBalance:       "amount exceeds recorded balance",
	ErrInsufficientCollateral:    "insufficient collateral",
	ErrInsufficientLiquidity:     "insufficient liquidity in reserve",
	ErrHealthFactorTooLow:        "health factor below minimum",
	ErrBorrowExceedsLimit:        "borrow exceeds allowed limit",
	ErrNotLiquidatable:           "position can not be liquidated",
	ErrCloseFactorExceeded:       "repay value exceeds close factor",
	ErrLeverageExceedsMaximum:    "leverage exceeds maximum",
	ErrLeverageTooLow:            "leverage below 1x",
	ErrPositionClosed:            "leveraged position is not open",
	ErrPositionNotLiquidatable:   "leveraged position is not liquidatable",
	ErrInvariantViolation:        "reserve invariant violation",
	ErrMaxLendingCapacityReached: "max lending capacity reached",
	ErrMinLendingDurationNotMet:  "minimum lending duration not met",
	ErrCollateralNotFound:        "collateral not found",
	ErrDebtNotFound:              "debt not found",
	ErrPositionNotFound:          "leveraged position not found",
	ErrReserveNotFound:           "reserve not found",
	ErrMarketNotFound:            "market not found",
	ErrCapacityExceeded:          "max entries reached",
	ErrClockRegression:           "clock moved backward",
	ErrPriceMissing:              "price missing from snapshot",
	ErrStalePrice:                "stale price snapshot",
	ErrInvalidAmount:             "invalid amount",
	ErrInvalidParameter:          "invalid parameter",
	ErrLendingNotEnabled:         "lending not enabled",
}

// Kind error category
func (e ErrorCode) Kind() ErrorKind {
	switch {
	case e >= 100100 && e < 100200:
		return KindOverflow
	case e >= 100200 && e < 100300:
		return KindInvariant
	case e >= 100300 && e < 100400:
		return KindNotFound
	case e >= 100400 && e < 100500:
		return KindCapacity
	case e >= 100500 && e < 100600:
		return KindPrecondition
	}

	return KindUnknown
}

func (e ErrorCode) String() string {
	return strconv.Itoa(int(e))
}

func (e ErrorCode) Error() string {
	if msg, ok := messages[e]; ok {
		return e.String() + ": " + msg
	}

	return e.String()
}
