package errors

import "errors"

// Kind classifies err against the known taxonomy sentinels, for callers
// that need to branch on error category (e.g. deciding whether to fall
// back to a placeholder image) without string matching.
func Kind(err error) error {
	switch {
	case errors.Is(err, ErrUnsupportedFormat):
		return ErrUnsupportedFormat
	case errors.Is(err, ErrDocumentLoadFailed):
		return ErrDocumentLoadFailed
	case errors.Is(err, ErrEmbeddingModelUnavailable):
		return ErrEmbeddingModelUnavailable
	case errors.Is(err, ErrIndexCorrupt):
		return ErrIndexCorrupt
	case errors.Is(err, ErrExtractionParseError):
		return ErrExtractionParseError
	case errors.Is(err, ErrLLMQuotaExceeded):
		return ErrLLMQuotaExceeded
	case errors.Is(err, ErrLLMTransient):
		return ErrLLMTransient
	case errors.Is(err, ErrRetrievalEmpty):
		return ErrRetrievalEmpty
	case errors.Is(err, ErrImageProviderRefusal):
		return ErrImageProviderRefusal
	case errors.Is(err, ErrImageQuotaExceeded):
		return ErrImageQuotaExceeded
	case errors.Is(err, ErrImageContentFiltered):
		return ErrImageContentFiltered
	case errors.Is(err, ErrPersistenceError):
		return ErrPersistenceError
	default:
		return nil
	}
}
