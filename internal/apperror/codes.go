package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidState    Code = "INVALID_STATE"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	CodeServiceUnavailable Code = "SERVICE_UNAVAILABLE"
	CodeServiceTimeout     Code = "SERVICE_TIMEOUT"
	CodeRateLimitExceeded  Code = "RATE_LIMIT_EXCEEDED"

	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Aggregator (0x) errors
const (
	CodeMalformedResponse    Code = "MALFORMED_RESPONSE"
	CodeAggregatorRejected   Code = "AGGREGATOR_REJECTED"
	CodeLiquidityUnavailable Code = "LIQUIDITY_UNAVAILABLE"
)

// Blockchain errors
const (
	CodeEthereumConnectionFailed Code = "ETHEREUM_CONNECTION_FAILED"
	CodeEthereumRPCError         Code = "ETHEREUM_RPC_ERROR"
	CodeContractCallFailed       Code = "CONTRACT_CALL_FAILED"
	CodeGasEstimationFailed      Code = "GAS_ESTIMATION_FAILED"
	CodeTransactionFailed        Code = "TRANSACTION_FAILED"
	CodeReceiptTimeout           Code = "RECEIPT_TIMEOUT"
	CodeInvalidTypedData         Code = "INVALID_TYPED_DATA"
	CodeInvalidPrivateKey        Code = "INVALID_PRIVATE_KEY"
)

// Settlement stage failures
const (
	CodeInvalidIntent        Code = "INVALID_INTENT"
	CodeSettlementInProgress Code = "SETTLEMENT_IN_PROGRESS"
	CodePriceUnavailable     Code = "PRICE_UNAVAILABLE"
	CodeApprovalFailed       Code = "APPROVAL_FAILED"
	CodeQuoteUnavailable     Code = "QUOTE_UNAVAILABLE"
	CodeSignatureDenied      Code = "SIGNATURE_DENIED"
	CodeExecutionFailed      Code = "EXECUTION_FAILED"
	CodeJournalWriteFailed   Code = "JOURNAL_WRITE_FAILED"
)

// Circuit breaker errors
const (
	CodeCircuitOpen Code = "CIRCUIT_OPEN"
)
