package match

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"

	"github.com/onnwee/ideamatch/internal/validate"
)

func strPtr(s string) *string { return &s }

func fieldErrors(t *testing.T, err error) validate.Errors {
	t.Helper()
	var errs validate.Errors
	if !errors.As(err, &errs) {
		t.Fatalf("expected validate.Errors, got %T: %v", err, err)
	}
	return errs
}

func hasField(errs validate.Errors, field string) bool {
	for _, fe := range errs {
		if fe.Field == field {
			return true
		}
	}
	return false
}

func TestDecodeRequest_ValidJSON(t *testing.T) {
	body := `{"ideaText":"machine learning startup","users":[
		{"userId":"u1","text":"I build machine learning models"},
		{"userId":"u2","text":"I love cooking","extra":true}
	]}`

	q, err := DecodeRequest(strings.NewReader(body), "application/json; charset=utf-8", DefaultLimits())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Text != "machine learning startup" {
		t.Errorf("unexpected query text %q", q.Text)
	}
	if len(q.Candidates) != 2 || q.Candidates[0].ID != "u1" || q.Candidates[1].ID != "u2" {
		t.Errorf("unexpected candidates %+v", q.Candidates)
	}
}

func TestDecodeRequest_EmptyValuesAllowed(t *testing.T) {
	q, err := DecodeRequest(strings.NewReader(`{"ideaText":"","users":[]}`), "", DefaultLimits())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Text != "" || len(q.Candidates) != 0 {
		t.Errorf("unexpected query %+v", q)
	}
}

func TestDecodeRequest_SchemaErrors(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{"missing ideaText", `{"users":[]}`, "ideaText"},
		{"null ideaText", `{"ideaText":null,"users":[]}`, "ideaText"},
		{"missing users", `{"ideaText":"x"}`, "users"},
		{"null users", `{"ideaText":"x","users":null}`, "users"},
		{"missing userId", `{"ideaText":"x","users":[{"text":"a"}]}`, "users[0].userId"},
		{"blank userId", `{"ideaText":"x","users":[{"userId":"  ","text":"a"}]}`, "users[0].userId"},
		{"missing text", `{"ideaText":"x","users":[{"userId":"a"}]}`, "users[0].text"},
		{"null element", `{"ideaText":"x","users":[null]}`, "users[0].userId"},
		{"duplicate userId", `{"ideaText":"x","users":[{"userId":"a","text":""},{"userId":"a","text":""}]}`, "users[1].userId"},
		{"empty body", ``, "body"},
		{"malformed", `{"ideaText":`, "body"},
		{"trailing data", `{"ideaText":"x","users":[]} {}`, "body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRequest(strings.NewReader(tt.body), ContentTypeJSON, DefaultLimits())
			errs := fieldErrors(t, err)
			if !hasField(errs, tt.wantField) {
				t.Errorf("expected error for field %q, got %v", tt.wantField, errs)
			}
		})
	}
}

func TestDecodeRequest_TypeErrors(t *testing.T) {
	bodies := []string{
		`{"ideaText":42,"users":[]}`,
		`{"ideaText":"x","users":"nope"}`,
		`{"ideaText":"x","users":[{"userId":7,"text":"a"}]}`,
		`{"ideaText":"x","users":[{"userId":"a","text":["a"]}]}`,
		`["not","an","object"]`,
	}
	for _, body := range bodies {
		_, err := DecodeRequest(strings.NewReader(body), ContentTypeJSON, DefaultLimits())
		if errs := fieldErrors(t, err); len(errs) == 0 {
			t.Errorf("expected field errors for %s", body)
		}
	}
}

func TestDecodeRequest_ReportsEveryProblem(t *testing.T) {
	body := `{"users":[{"userId":"","text":"a"},{"userId":"b"}]}`
	_, err := DecodeRequest(strings.NewReader(body), "", DefaultLimits())
	errs := fieldErrors(t, err)
	for _, field := range []string{"ideaText", "users[0].userId", "users[1].text"} {
		if !hasField(errs, field) {
			t.Errorf("expected error for %s, got %v", field, errs)
		}
	}
}

func TestDecodeRequest_Limits(t *testing.T) {
	limits := Limits{MaxCandidates: 2, MaxTextLength: 10, MaxIDLength: 4}
	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{"too many users", `{"ideaText":"","users":[{"userId":"a","text":""},{"userId":"b","text":""},{"userId":"c","text":""}]}`, "users"},
		{"idea too long", `{"ideaText":"01234567890","users":[]}`, "ideaText"},
		{"text too long", `{"ideaText":"","users":[{"userId":"a","text":"01234567890"}]}`, "users[0].text"},
		{"id too long", `{"ideaText":"","users":[{"userId":"abcde","text":""}]}`, "users[0].userId"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRequest(strings.NewReader(tt.body), "", limits)
			if !hasField(fieldErrors(t, err), tt.wantField) {
				t.Errorf("expected error for %q", tt.wantField)
			}
		})
	}
}

func TestDecodeRequest_PreservesIDs(t *testing.T) {
	q, err := DecodeRequest(strings.NewReader(`{"ideaText":"x","users":[{"userId":" u1 ","text":"x"}]}`), "", DefaultLimits())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Candidates[0].ID != " u1 " {
		t.Errorf("expected ID kept verbatim, got %q", q.Candidates[0].ID)
	}
}

func TestDecodeRequest_CBOR(t *testing.T) {
	users := []User{
		{UserID: strPtr("u1"), Text: strPtr("machine learning")},
		{UserID: strPtr("u2"), Text: strPtr("")},
	}
	data, err := cbor.Marshal(Request{IdeaText: strPtr("machine"), Users: &users})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	q, err := DecodeRequest(bytes.NewReader(data), ContentTypeCBOR, DefaultLimits())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Text != "machine" || len(q.Candidates) != 2 || q.Candidates[1].ID != "u2" {
		t.Errorf("unexpected query %+v", q)
	}
}

func TestDecodeRequest_CBORMissingFields(t *testing.T) {
	data, err := cbor.Marshal(map[string]any{"ideaText": "x"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	_, err = DecodeRequest(bytes.NewReader(data), ContentTypeCBOR, DefaultLimits())
	if !hasField(fieldErrors(t, err), "users") {
		t.Errorf("expected users error, got %v", err)
	}
}

func TestDecodeRequest_CBORMalformed(t *testing.T) {
	_, err := DecodeRequest(bytes.NewReader([]byte{0xff, 0x00}), ContentTypeCBOR, DefaultLimits())
	if !hasField(fieldErrors(t, err), "body") {
		t.Errorf("expected body error, got %v", err)
	}
}

func TestDecodeRequest_UnsupportedMediaType(t *testing.T) {
	_, err := DecodeRequest(strings.NewReader("ideaText=x"), "application/x-www-form-urlencoded", DefaultLimits())
	if !errors.Is(err, ErrUnsupportedMediaType) {
		t.Errorf("expected ErrUnsupportedMediaType, got %v", err)
	}
}

func TestDecodeRequest_BodyTooLarge(t *testing.T) {
	body := `{"ideaText":"` + strings.Repeat("a", 100) + `","users":[]}`
	limited := http.MaxBytesReader(httptest.NewRecorder(), io.NopCloser(strings.NewReader(body)), 16)

	_, err := DecodeRequest(limited, ContentTypeJSON, DefaultLimits())
	var maxErr *http.MaxBytesError
	if !errors.As(err, &maxErr) {
		t.Fatalf("expected *http.MaxBytesError, got %T: %v", err, err)
	}
}

func TestMediaType(t *testing.T) {
	tests := map[string]string{
		"":                                "",
		"application/json":                "application/json",
		"Application/JSON; charset=utf-8": "application/json",
		"application/cbor":                "application/cbor",
		"not a media type;;":              "",
	}
	for in, want := range tests {
		if got := MediaType(in); got != want {
			t.Errorf("MediaType(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsCBOR(t *testing.T) {
	tests := map[string]bool{
		"":                                   false,
		"application/json":                   false,
		"application/cbor":                   true,
		"application/json, application/cbor": true,
		"*/*":                                false,
	}
	for in, want := range tests {
		if got := IsCBOR(in); got != want {
			t.Errorf("IsCBOR(%q) = %t, want %t", in, got, want)
		}
	}
}
