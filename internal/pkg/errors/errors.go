package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is a generic sentinel for auth failures.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnsupportedFormat: a source document's extension is not txt/pdf/epub.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrDocumentLoadFailed: the file could not be read or decoded into text.
	ErrDocumentLoadFailed = errors.New("document load failed")
	// ErrEmbeddingModelUnavailable: the embedding provider could not be reached.
	ErrEmbeddingModelUnavailable = errors.New("embedding model unavailable")
	// ErrIndexCorrupt: sidecar index files are missing, mismatched, or unreadable.
	ErrIndexCorrupt = errors.New("embedding index corrupt")
	// ErrExtractionParseError: the name extractor's model response could not be parsed.
	ErrExtractionParseError = errors.New("character extraction parse error")
	// ErrLLMQuotaExceeded: the model provider reported a quota/rate ceiling.
	ErrLLMQuotaExceeded = errors.New("llm quota exceeded")
	// ErrLLMTransient: a retryable transport or server error from the model provider.
	ErrLLMTransient = errors.New("llm transient error")
	// ErrRetrievalEmpty: no index windows matched a character's name.
	ErrRetrievalEmpty = errors.New("retrieval returned no results")
	// ErrImageProviderRefusal: the image provider declined to generate the prompt.
	ErrImageProviderRefusal = errors.New("image provider refused prompt")
	// ErrImageQuotaExceeded: the image provider reported a quota ceiling.
	ErrImageQuotaExceeded = errors.New("image quota exceeded")
	// ErrImageContentFiltered: the image provider's safety filter blocked the result.
	ErrImageContentFiltered = errors.New("image content filtered")
	// ErrPersistenceError: the metadata store failed to read or write a record.
	ErrPersistenceError = errors.New("persistence error")
)
