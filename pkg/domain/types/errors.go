package types

import "github.com/m-mizutani/goerr/v2"

// Error tags classify extraction failures. Handlers attach these with
// goerr.T and callers branch with the Is* helpers; the concrete error
// values pass through the registry unchanged.
var (
	// TagUnsupportedFormat: no handler claims the file, or the file does
	// not match its extension's format.
	TagUnsupportedFormat = goerr.NewTag("unsupported_format")

	// TagNotFound: the container is valid but holds no FATDATA directory
	// (or the directory holds no files).
	TagNotFound = goerr.NewTag("not_found")

	// TagExtraction: I/O or structural corruption during the read/write
	// phase.
	TagExtraction = goerr.NewTag("extraction")

	// TagConversion: the external disc converter yielded no usable data
	// track.
	TagConversion = goerr.NewTag("conversion")
)

func IsUnsupportedFormat(err error) bool { return goerr.HasTag(err, TagUnsupportedFormat) }

func IsNotFound(err error) bool { return goerr.HasTag(err, TagNotFound) }

func IsExtraction(err error) bool { return goerr.HasTag(err, TagExtraction) }

func IsConversion(err error) bool { return goerr.HasTag(err, TagConversion) }
