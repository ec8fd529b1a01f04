package form

// FetchError reports a failed load: the backend answered success=false or the
// transport failed. The message is surfaced to the user as-is.
type FetchError struct {
	Message string
}

func (e *FetchError) Error() string { return e.Message }

// ValidationError reports locally detected bad input. It blocks submission
// entirely; no request is sent.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// SubmitError reports a rejected create or update. The draft is preserved so
// the user can correct and resubmit; in batch mode, already-created tokens
// are not rolled back.
type SubmitError struct {
	Message string
}

func (e *SubmitError) Error() string { return e.Message }
