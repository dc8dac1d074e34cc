package match

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"reflect"
	"strings"

	"github.com/fxamacker/cbor/v2"

	"github.com/onnwee/ideamatch/internal/validate"
)

// Media types accepted and produced by the match endpoint.
const (
	ContentTypeJSON = "application/json"
	ContentTypeCBOR = "application/cbor"
)

// ErrUnsupportedMediaType is returned for request bodies that are neither
// JSON nor CBOR.
var ErrUnsupportedMediaType = errors.New("unsupported media type")

var cborDecMode = mustDecMode(cbor.DecOptions{
	DupMapKey:        cbor.DupMapKeyEnforcedAPF,
	MaxArrayElements: 1 << 20,
})

func mustDecMode(opts cbor.DecOptions) cbor.DecMode {
	dm, err := opts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("invalid CBOR decode options: %v", err))
	}
	return dm
}

// MediaType returns the lower-cased media type of a Content-Type or Accept
// value without parameters, or "" when the value is empty or malformed.
func MediaType(header string) string {
	if header == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return strings.ToLower(mt)
}

// IsCBOR reports whether a Content-Type or Accept value selects CBOR.
func IsCBOR(header string) bool {
	for _, part := range strings.Split(header, ",") {
		if MediaType(strings.TrimSpace(part)) == ContentTypeCBOR {
			return true
		}
	}
	return false
}

// DecodeRequest reads a match request in the encoding named by contentType
// (JSON when empty) and validates it against limits.
//
// Malformed bodies and schema violations are reported as validate.Errors.
// ErrUnsupportedMediaType and *http.MaxBytesError are returned as is.
func DecodeRequest(body io.Reader, contentType string, limits Limits) (Query, error) {
	var req Request
	var err error

	switch mt := MediaType(contentType); {
	case mt == ContentTypeCBOR:
		err = decodeCBOR(body, &req)
	case mt == "" || mt == ContentTypeJSON || strings.HasSuffix(mt, "+json"):
		err = decodeJSON(body, &req)
	default:
		return Query{}, fmt.Errorf("%w: %q", ErrUnsupportedMediaType, mt)
	}
	if err != nil {
		return Query{}, err
	}

	return req.Validate(limits)
}

func decodeJSON(body io.Reader, req *Request) error {
	dec := json.NewDecoder(body)
	if err := dec.Decode(req); err != nil {
		return bodyError("JSON", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err != nil {
			return bodyError("JSON", err)
		}
		return validate.Errors{{Field: "body", Message: "unexpected data after JSON value"}}
	}
	return nil
}

func decodeCBOR(body io.Reader, req *Request) error {
	dec := cborDecMode.NewDecoder(body)
	if err := dec.Decode(req); err != nil {
		return bodyError("CBOR", err)
	}
	return nil
}

// bodyError classifies a decode failure.
func bodyError(format string, err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return maxErr
	}
	if errors.Is(err, io.EOF) {
		return validate.Errors{{Field: "body", Message: "request body is empty"}}
	}

	var jsonType *json.UnmarshalTypeError
	if errors.As(err, &jsonType) {
		field := jsonType.Field
		if field == "" {
			field = "body"
		}
		return validate.Errors{{
			Field:   field,
			Message: fmt.Sprintf("expected %s, got %s", typeName(jsonType.Type), jsonType.Value),
		}}
	}

	var cborType *cbor.UnmarshalTypeError
	if errors.As(err, &cborType) {
		return validate.Errors{{Field: "body", Message: cborType.Error()}}
	}

	return validate.Errors{{Field: "body", Message: fmt.Sprintf("malformed %s: %v", format, err)}}
}

// typeName describes a Go target type in JSON terms.
func typeName(t reflect.Type) string {
	if t == nil {
		return "value"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Struct, reflect.Map:
		return "object"
	default:
		return t.String()
	}
}
