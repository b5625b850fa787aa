package service

const (
	MaxLoanAmount = 1_000_000_000.0

	// MaxDocumentBytes bounds the decoded size of an uploaded document.
	MaxDocumentBytes = 10 << 20 // 10 MiB
)
