package constants

// ResultStatus is the canonical status for rows in ingest_result.
type ResultStatus string

// Stable values (store these exact strings in DB).
const (
	ResultStatusOK     ResultStatus = "OK"     // every processor in the pipeline succeeded
	ResultStatusFailed ResultStatus = "FAILED" // a processor returned an error
)
