package match

import (
	"encoding/json"
	"testing"

	"github.com/onnwee/ideamatch/internal/ranking"
)

func TestFromResults(t *testing.T) {
	matches := FromResults([]ranking.Result{{ID: "b", Score: 1}, {ID: "a", Score: 0.5}})
	if len(matches) != 2 || matches[0].UserID != "b" || matches[1].Score != 0.5 {
		t.Errorf("unexpected matches %+v", matches)
	}

	data, err := json.Marshal(FromResults(nil))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("expected [], got %s", data)
	}
}

func TestMatch_JSONShape(t *testing.T) {
	data, err := json.Marshal(Match{UserID: "u1", Score: 0.75})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"userId":"u1","score":0.75}` {
		t.Errorf("unexpected JSON %s", data)
	}
}
