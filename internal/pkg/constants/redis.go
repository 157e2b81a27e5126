package constants

import "time"

// Redis key formats
const (
	KeyPendingTransaction = "pending:tx:%s"    // Format: pending:tx:{temp_id}
	KeyPendingBatch       = "pending:batch:%s" // Format: pending:batch:{batch_id}
	KeySetupSession       = "setup:session:%d" // Format: setup:session:{chat_id}

	KeyExchangeRate = "rate:%s:%s"      // Format: rate:{from}:{to}, expires
	KeyLastRate     = "rate:last:%s:%s" // Format: rate:last:{from}:{to}, never expires
)

// Ephemeral state TTLs
const (
	PendingTransactionTTL = 10 * time.Minute
	PendingBatchTTL       = 10 * time.Minute
	SetupSessionTTL       = 15 * time.Minute
)
