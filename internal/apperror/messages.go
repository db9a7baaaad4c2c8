package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidState:    "Invalid state for this operation",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	CodeConfigurationError: "Configuration error",

	CodeServiceUnavailable: "Service temporarily unavailable",
	CodeServiceTimeout:     "Service request timeout",
	CodeRateLimitExceeded:  "Rate limit exceeded",

	CodeInternalError: "Internal error",
	CodeUnknownError:  "An unknown error occurred",

	CodeMalformedResponse:    "Aggregator response could not be decoded",
	CodeAggregatorRejected:   "Aggregator rejected the request",
	CodeLiquidityUnavailable: "No liquidity available for this pair",

	CodeEthereumConnectionFailed: "Failed to connect to Ethereum node",
	CodeEthereumRPCError:         "Ethereum RPC call failed",
	CodeContractCallFailed:       "Smart contract call failed",
	CodeGasEstimationFailed:      "Gas estimation failed",
	CodeTransactionFailed:        "Transaction reverted",
	CodeReceiptTimeout:           "Timed out waiting for transaction receipt",
	CodeInvalidTypedData:         "Typed data payload is malformed",
	CodeInvalidPrivateKey:        "Private key is invalid",

	CodeInvalidIntent:        "Trade intent is invalid",
	CodeSettlementInProgress: "A settlement for this account and pair is already running",
	CodePriceUnavailable:     "Price could not be fetched",
	CodeApprovalFailed:       "Allowance approval failed",
	CodeQuoteUnavailable:     "Quote could not be fetched",
	CodeSignatureDenied:      "Authorization payload could not be signed",
	CodeExecutionFailed:      "Swap execution failed",
	CodeJournalWriteFailed:   "Settlement journal write failed",

	CodeCircuitOpen: "Circuit breaker is open",
}
