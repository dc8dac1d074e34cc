package ranking

import (
	"os"
	"path/filepath"
	"testing"
)

func writeOptionsFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write options file: %v", err)
	}
	return path
}

func TestLoadOptions_EmptyPath(t *testing.T) {
	opts, err := LoadOptions("")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if opts != DefaultOptions() {
		t.Errorf("expected defaults, got %+v", opts)
	}
}

func TestLoadOptions_MissingFile(t *testing.T) {
	opts, err := LoadOptions(filepath.Join(t.TempDir(), "missing.json"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if opts != DefaultOptions() {
		t.Errorf("expected defaults on error, got %+v", opts)
	}
}

func TestLoadOptions_InvalidJSON(t *testing.T) {
	path := writeOptionsFile(t, "options.json", "{not json")
	opts, err := LoadOptions(path)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if opts != DefaultOptions() {
		t.Errorf("expected defaults on error, got %+v", opts)
	}
}

func TestLoadOptions_PartialJSON(t *testing.T) {
	path := writeOptionsFile(t, "options.json", `{"version":"1","stop_words":false}`)
	opts, err := LoadOptions(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.StopWords {
		t.Error("expected stop_words override to false")
	}
	if !opts.Normalize {
		t.Error("expected normalize to keep default true")
	}
	if opts.MinTokenLength != 1 {
		t.Errorf("expected default min token length, got %d", opts.MinTokenLength)
	}
}

func TestLoadOptions_YAML(t *testing.T) {
	path := writeOptionsFile(t, "options.yaml", "normalize: false\nmin_token_length: 2\n")
	opts, err := LoadOptions(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Normalize {
		t.Error("expected normalize override to false")
	}
	if opts.MinTokenLength != 2 {
		t.Errorf("expected min token length 2, got %d", opts.MinTokenLength)
	}
	if !opts.StopWords {
		t.Error("expected stop_words to keep default true")
	}
}

func TestMergeOptions_IgnoresNonPositiveMinLength(t *testing.T) {
	zero := 0
	merged := MergeOptions(DefaultOptions(), OptionsFile{MinTokenLength: &zero})
	if merged.MinTokenLength != 1 {
		t.Errorf("expected min token length 1, got %d", merged.MinTokenLength)
	}
}

func TestLoadOptionsOver_AppliesFileOnBase(t *testing.T) {
	path := writeOptionsFile(t, "options.yaml", "normalize: true\n")
	base := Options{Normalize: false, StopWords: false, MinTokenLength: 2}

	opts, err := LoadOptionsOver(base, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Options{Normalize: true, StopWords: false, MinTokenLength: 2}
	if opts != want {
		t.Errorf("expected %+v, got %+v", want, opts)
	}

	if got, _ := LoadOptionsOver(base, ""); got != base {
		t.Errorf("expected base for empty path, got %+v", got)
	}
}
