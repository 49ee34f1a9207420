package thumbnail

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Recognized attribute keys. Everything else passes through untouched.
const (
	AttrWidth   = "width"
	AttrHeight  = "height"
	AttrMethod  = "method"
	AttrFormat  = "format"
	AttrQuality = "quality"
)

// Method selects the resize algorithm.
type Method string

const (
	// MethodCrop scales to cover the box and trims the centered excess.
	MethodCrop Method = "crop"
	// MethodFit shrinks to fit inside the box.
	MethodFit Method = "fit"
)

// ParseMethod parses a method name, case-insensitively.
func ParseMethod(s string) (Method, error) {
	switch Method(strings.ToLower(strings.TrimSpace(s))) {
	case MethodCrop:
		return MethodCrop, nil
	case MethodFit:
		return MethodFit, nil
	default:
		return "", fmt.Errorf("unknown resize method %q", s)
	}
}

// ErrInvalidAttribute is matched by every *AttributeError.
var ErrInvalidAttribute = errors.New("invalid attribute")

// AttributeError reports a malformed recognized attribute.
type AttributeError struct {
	Key    string
	Value  string
	Reason string
}

func (e *AttributeError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Key, e.Value, e.Reason)
}

// Unwrap returns ErrInvalidAttribute.
func (e *AttributeError) Unwrap() error {
	return ErrInvalidAttribute
}

// Request is a parsed transform request. Zero Width or Height means the
// axis was not requested.
type Request struct {
	Width   int
	Height  int
	Method  Method
	Format  string
	Quality int
	// Attrs is the bag returned to the caller: the input without method,
	// format and quality, in the original order.
	Attrs Attrs
}

// HasResize reports whether a width or height was requested.
func (r Request) HasResize() bool {
	return r.Width > 0 || r.Height > 0
}

// ParseRequest extracts the recognized attributes for source, resolving
// method, quality and format against cfg. attrs is not modified.
func ParseRequest(source string, attrs Attrs, cfg Config) (Request, error) {
	req := Request{
		Method:  cfg.DefaultMethod,
		Quality: cfg.DefaultQuality,
	}

	var err error
	if v, ok := attrs.Get(AttrWidth); ok {
		if req.Width, err = parseDimension(AttrWidth, v); err != nil {
			return Request{}, err
		}
	}
	if v, ok := attrs.Get(AttrHeight); ok {
		if req.Height, err = parseDimension(AttrHeight, v); err != nil {
			return Request{}, err
		}
	}
	if v, ok := attrs.Get(AttrMethod); ok {
		if req.Method, err = ParseMethod(v); err != nil {
			return Request{}, &AttributeError{Key: AttrMethod, Value: v, Reason: "must be crop or fit"}
		}
	}
	if v, ok := attrs.Get(AttrQuality); ok {
		q, convErr := strconv.Atoi(strings.TrimSpace(v))
		if convErr != nil || q < 1 || q > 100 {
			return Request{}, &AttributeError{Key: AttrQuality, Value: v, Reason: "must be an integer between 1 and 100"}
		}
		req.Quality = q
	}

	format, hasFormat := attrs.Get(AttrFormat)
	if hasFormat && strings.TrimSpace(format) == "" {
		return Request{}, &AttributeError{Key: AttrFormat, Value: format, Reason: "must not be empty"}
	}
	req.Format = NormalizeFormat(format, source, cfg.BMPFallbackFormat)

	req.Attrs = attrs.Delete(AttrMethod).Delete(AttrFormat).Delete(AttrQuality)
	return req, nil
}

func parseDimension(key, v string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n <= 0 {
		return 0, &AttributeError{Key: key, Value: v, Reason: "must be a positive integer"}
	}
	return n, nil
}
