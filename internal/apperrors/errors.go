package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrAssetNotFound indicates that an asset with the given ID does not exist.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrHoldingNotFound indicates that the holder has no position in the asset.
	ErrHoldingNotFound = errors.New("holding not found")

	// ErrAccountNotFound indicates that an account with the given ID does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrInvalidIndex indicates that a distribution index is out of range for the asset.
	ErrInvalidIndex = errors.New("invalid distribution index")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrInvalidInput indicates a malformed, zero, or empty argument.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates that the caller lacks the required role
	// (e.g. a non-owner updating an asset's valuation).
	ErrUnauthorized = errors.New("caller is not authorized")

	// ErrAssetNotActive indicates that the asset has been deactivated.
	ErrAssetNotActive = errors.New("asset is not active")

	// ErrAssetPaused indicates that trading on the asset is paused.
	ErrAssetPaused = errors.New("asset is paused")

	// ErrEmergencyStop indicates that the platform-wide emergency stop is engaged.
	ErrEmergencyStop = errors.New("emergency stop is engaged")

	// ErrInsufficientShares indicates that a debit would push a share
	// balance (or the asset's available pool) below zero.
	ErrInsufficientShares = errors.New("insufficient shares")

	// ErrInsufficientPayment indicates that the payment does not cover the total cost.
	ErrInsufficientPayment = errors.New("insufficient payment")

	// ErrInvalidRecipient indicates a transfer to an empty identity or to the sender.
	ErrInvalidRecipient = errors.New("invalid transfer recipient")

	// ErrNoShareholders indicates a distribution on an asset with no sold shares.
	ErrNoShareholders = errors.New("asset has no shareholders")

	// ErrAlreadyClaimed indicates the holder already claimed this distribution.
	ErrAlreadyClaimed = errors.New("distribution already claimed")

	// ErrNothingToClaim indicates the computed payout is zero.
	ErrNothingToClaim = errors.New("nothing to claim")

	// ErrSharesSold indicates an owner deactivation while shares are outstanding.
	ErrSharesSold = errors.New("asset has sold shares outstanding")

	// ErrDuplicateEntry indicates that an entity with the same unique constraint already exists.
	ErrDuplicateEntry = errors.New("duplicate entry")
)

// Data integrity errors represent inconsistencies or corruption in the data.
var (
	// ErrInvariantViolation indicates an internal consistency check failed
	// (e.g. sum of holdings plus available shares no longer equals the
	// total supply). It should never occur in correct operation.
	ErrInvariantViolation = errors.New("ledger invariant violation")
)

// Settlement errors occur after the ledger mutation has committed.
var (
	// ErrSettlementFailure indicates that an external payout failed and
	// was queued for retry. The ledger state is not rolled back.
	ErrSettlementFailure = errors.New("settlement transfer failed")
)

// Operation failure errors represent system-level failures when retrieving or processing data.
// These errors indicate that an operation failed, but not due to missing entities or validation issues.
var (
	ErrFailedToRetrieveAssets        = errors.New("failed to retrieve assets")
	ErrFailedToRetrieveAsset         = errors.New("failed to retrieve asset")
	ErrFailedToRetrieveHoldings      = errors.New("failed to retrieve holdings")
	ErrFailedToRetrievePurchases     = errors.New("failed to retrieve purchases")
	ErrFailedToRetrieveDistributions = errors.New("failed to retrieve distributions")
	ErrFailedToRetrieveBalance       = errors.New("failed to retrieve account balance")
	ErrFailedToRetrieveSummary       = errors.New("failed to retrieve asset summary")
	ErrFailedToRetrieveSettings      = errors.New("failed to retrieve platform settings")
)
