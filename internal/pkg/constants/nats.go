package constants

// NATS Subjects
const (
	SubjectTransactionConfirmed = "transaction.confirmed"
	SubjectBatchConfirmed       = "transaction.batch.confirmed"
	SubjectContextCreated       = "context.created"
)
