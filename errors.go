package transcode

import (
	"errors"
	"fmt"
)

var (
	// ErrUnrecognizedInput indicates that the classifier found no kind for a value.
	// It is fatal for the call and never worth retrying with the same value.
	ErrUnrecognizedInput = errors.New("transcode: unrecognized input")

	// ErrUnsupportedConversion indicates that no direct edge and no pivot path exists
	// between two kinds. Returned errors are *ConversionError values that match it.
	ErrUnsupportedConversion = errors.New("transcode: unsupported conversion")

	// ErrUnsupportedKind indicates that the engine's capability set does not provide
	// the requested kind. Returned errors are *KindError values that match it.
	ErrUnsupportedKind = errors.New("transcode: unsupported kind")

	// ErrInvalidChunkSize indicates a chunk size that is non-positive after rounding
	// down to a multiple of 6.
	ErrInvalidChunkSize = errors.New("transcode: chunk size must round down to a positive multiple of 6")

	// ErrUnknownEncoding indicates a Text value tagged with an encoding outside the closed set.
	ErrUnknownEncoding = errors.New("transcode: unknown text encoding")

	// ErrUnknownCharset indicates a charset name the charset tables do not know.
	ErrUnknownCharset = errors.New("transcode: unknown charset")

	// ErrInvalidBinaryString indicates a binary-string with a code point above 0xFF.
	ErrInvalidBinaryString = errors.New("transcode: binary string contains a code point above 0xff")

	// ErrInvalidSlice indicates a Blob slice or read outside [0, size].
	ErrInvalidSlice = errors.New("transcode: slice bounds out of range")

	// ErrShortSlice indicates a ReadSlice that returned fewer bytes than requested.
	ErrShortSlice = errors.New("transcode: blob returned a short slice")

	// ErrInvalidSeek indicates a seek was attempted to invalid position.
	ErrInvalidSeek = errors.New("transcode: seek to a invalid position")

	// ErrInvalidWhence indicates that an invalid 'whence' parameter was provided to a Seek operation.
	ErrInvalidWhence = errors.New("transcode: unsupported whence")

	// ErrClosed indicates a pull or read on a stream that was already released.
	ErrClosed = errors.New("transcode: stream already closed")

	// ErrAlreadySubscribed indicates a second subscription to a single-pass push source.
	ErrAlreadySubscribed = errors.New("transcode: push source already subscribed")

	// ErrNilIO indicates that Pipe or a reader adapter was called with a nil io.Reader/io.Writer.
	ErrNilIO = errors.New("transcode: called with a nil io.Reader/io.Writer")

	// ErrWriteToNil indicates a WriteTo operation was attempted on a nil io.Writer.
	ErrWriteToNil = errors.New("transcode: WriteTo called with a nil io.Writer")

	// ErrInvalidWrite indicates that an io.Writer returned an invalid (negative) count from Write.
	ErrInvalidWrite = errors.New("transcode: writer returned invalid count from Write")

	// errNoEdge is returned by a converter that has no direct edge to a target;
	// the engine then pivots through Bytes. It never reaches callers.
	errNoEdge = errors.New("transcode: no direct conversion edge")
)

// ConversionError reports a conversion for which neither a direct edge nor a
// pivot path exists.
type ConversionError struct {
	From Target
	To   Target
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("%s: from %s to %s", ErrUnsupportedConversion, e.From, e.To)
}

// Is lets errors.Is(err, ErrUnsupportedConversion) match.
func (e *ConversionError) Is(target error) bool { return target == ErrUnsupportedConversion }

// KindError reports a kind that the engine's capability set does not provide.
type KindError struct {
	Kind Kind
}

func (e *KindError) Error() string {
	return fmt.Sprintf("%s: %s is not available in this environment", ErrUnsupportedKind, e.Kind)
}

// Is lets errors.Is(err, ErrUnsupportedKind) match.
func (e *KindError) Is(target error) bool { return target == ErrUnsupportedKind }
