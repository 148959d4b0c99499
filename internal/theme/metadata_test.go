package theme

import (
	"encoding/json"
	"slices"
	"testing"

	gocmp "github.com/google/go-cmp/cmp"
)

func TestFieldValue_CoversSchema(t *testing.T) {
	t.Parallel()

	m := sampleTheme()
	for _, f := range Schema {
		if m.FieldValue(f.Name) == nil {
			t.Errorf("FieldValue(%q) = nil", f.Name)
		}
	}
	if m.FieldValue("nope") != nil {
		t.Error("unknown field should yield nil")
	}
}

func TestRightAnswers_DecodedAndTrimmed(t *testing.T) {
	t.Parallel()

	got := sampleTheme().RightAnswers()
	if diff := gocmp.Diff([]string{"Volga", "Nile"}, got); diff != "" {
		t.Fatalf("answers mismatch (-want +got):\n%s", diff)
	}
}

func TestCompare_TotalOrder(t *testing.T) {
	t.Parallel()

	base := sampleTheme()
	other := base
	other.VoicesNum = 1
	list := []Metadata{other, base}
	slices.SortFunc(list, Compare)
	if list[0].VoicesNum != 0 {
		t.Fatal("last field should still break ties")
	}
	if !base.Equal(sampleTheme()) {
		t.Fatal("identical themes should be equal")
	}
	if Compare(base, other) >= 0 || Compare(other, base) <= 0 {
		t.Fatal("Compare must be antisymmetric")
	}
}

func TestRoundType_JSON(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		in   RoundType
		json string
	}{{RoundNormal, "null"}, {RoundFinal, `"final"`}} {
		raw, err := json.Marshal(tc.in)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		if string(raw) != tc.json {
			t.Errorf("Marshal(%q) = %s, want %s", tc.in, raw, tc.json)
		}
		var back RoundType
		if err := json.Unmarshal(raw, &back); err != nil {
			t.Fatalf("Unmarshal: %v", err)
		}
		if back != tc.in {
			t.Errorf("round trip %q -> %q", tc.in, back)
		}
	}
	if RoundNormal.String() != "normal" || RoundFinal.String() != "final" {
		t.Error("unexpected round type names")
	}
}
