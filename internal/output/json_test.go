package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestJSONFormatter_Rounds(t *testing.T) {
	f := &JSONFormatter{}
	var buf bytes.Buffer

	if err := f.Format(&buf, sampleRounds()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got jsonReport
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v\noutput: %s", err, buf.String())
	}

	want := jsonReport{Rounds: []jsonRound{
		{
			Name: "Round 1",
			Type: "normal",
			Themes: []jsonTheme{
				{ID: "a1", PackageName: "Quiz", ThemeName: "Animals", QuestionsNum: 5, Path: "packs/quiz.siq"},
				{ID: "b2", PackageName: "Cup", ThemeName: "Rivers", QuestionsNum: 5, Path: "packs/cup.siq", FileName: "Cup 2019.siq"},
			},
		},
		{
			Name: "Final round",
			Type: "final",
			Themes: []jsonTheme{
				{ID: "c3", PackageName: "Quiz", ThemeName: "Space", QuestionsNum: 1, Path: "packs/quiz.siq"},
			},
		},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("report (-want +got):\n%s", diff)
	}
}

func TestJSONFormatter_FieldNames(t *testing.T) {
	f := &JSONFormatter{}
	var buf bytes.Buffer

	if err := f.Format(&buf, sampleRounds()[1:]); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Unmarshal into a generic structure to verify field names
	var raw map[string][]map[string]any
	if err := json.Unmarshal(buf.Bytes(), &raw); err != nil {
		t.Fatalf("failed to unmarshal JSON: %v", err)
	}
	round := raw["rounds"][0]
	for _, field := range []string{"name", "type", "themes"} {
		if _, ok := round[field]; !ok {
			t.Errorf("missing round field %q in JSON output", field)
		}
	}
	item := round["themes"].([]any)[0].(map[string]any)
	for _, field := range []string{"id", "package_name", "theme_name", "questions_num", "path"} {
		if _, ok := item[field]; !ok {
			t.Errorf("missing theme field %q in JSON output", field)
		}
	}
	if _, ok := item["file_name"]; ok {
		t.Error("empty file_name should be omitted")
	}
	// JSON numbers are float64 when unmarshaled into any
	if item["questions_num"] != float64(1) {
		t.Errorf("questions_num: got %v, want 1", item["questions_num"])
	}
}

func TestJSONFormatter_NoRounds(t *testing.T) {
	f := &JSONFormatter{}
	var buf bytes.Buffer

	if err := f.Format(&buf, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Verify the rounds list is [] (not null)
	trimmed := bytes.TrimSpace(buf.Bytes())
	if string(trimmed) != "{\n  \"rounds\": []\n}" {
		t.Errorf("got %q, want an empty rounds list", string(trimmed))
	}
}

func TestJSONFormatter_ImplementsFormatter(t *testing.T) {
	var _ Formatter = &JSONFormatter{}
}
