package domain

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func TestResolveText(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		bigText  string
		lines    []string
		expected string
	}{
		{"primary wins", "hello", "big", []string{"a"}, "hello"},
		{"big text next", "", "big", []string{"a"}, "big"},
		{"joined lines", "", "", []string{"a", "b"}, "a\nb"},
		{"nothing", "", "", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ResolveText(tt.text, tt.bigText, tt.lines)
			if result != tt.expected {
				t.Errorf("ResolveText() = %q, want %q", result, tt.expected)
			}
		})
	}
}

type stringer string

func (s stringer) String() string { return string(s) }

func TestExtras_CharSequence(t *testing.T) {
	extras := Extras{
		ExtraTitle:   "Title",
		ExtraText:    stringer("Styled"),
		ExtraSubText: 42.0,
	}

	if v, err := extras.CharSequence(ExtraTitle); err != nil || v != "Title" {
		t.Errorf("Expected Title, got %q (%v)", v, err)
	}
	if v, err := extras.CharSequence(ExtraText); err != nil || v != "Styled" {
		t.Errorf("Expected Styled, got %q (%v)", v, err)
	}
	if v, err := extras.CharSequence(ExtraInfoText); err != nil || v != "" {
		t.Errorf("Expected empty for missing key, got %q (%v)", v, err)
	}
	if _, err := extras.CharSequence(ExtraSubText); !errors.Is(err, ErrExtraType) {
		t.Errorf("Expected ErrExtraType, got %v", err)
	}
}

func TestExtras_CharSequenceArray_FromJSON(t *testing.T) {
	var extras Extras
	if err := json.Unmarshal([]byte(`{"android.textLines":["one","two"]}`), &extras); err != nil {
		t.Fatalf("Failed to parse extras: %v", err)
	}

	lines, err := extras.CharSequenceArray(ExtraTextLines)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(lines) != 2 || lines[0] != "one" || lines[1] != "two" {
		t.Errorf("Unexpected lines: %v", lines)
	}
}

func TestExtras_People(t *testing.T) {
	extras := Extras{
		ExtraPeopleList: []interface{}{
			map[string]interface{}{"name": "Alice"},
			map[string]interface{}{"uri": "tel:123"},
			"Bob",
		},
	}

	people, err := extras.People(ExtraPeopleList)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	expected := []string{"Alice", "tel:123", "Bob"}
	if len(people) != len(expected) {
		t.Fatalf("Expected %d people, got %d", len(expected), len(people))
	}
	for i := range expected {
		if people[i] != expected[i] {
			t.Errorf("people[%d] = %q, want %q", i, people[i], expected[i])
		}
	}
}

func TestExtras_Bitmap(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode png: %v", err)
	}

	extras := Extras{
		ExtraLargeIcon: base64.StdEncoding.EncodeToString(buf.Bytes()),
		ExtraPicture:   "not-base64!!",
	}

	decoded, err := extras.Bitmap(ExtraLargeIcon)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if decoded.Bounds().Dx() != 2 {
		t.Errorf("Expected width 2, got %d", decoded.Bounds().Dx())
	}

	if _, err := extras.Bitmap(ExtraPicture); err == nil {
		t.Error("Expected error for invalid bitmap")
	}

	missing, err := extras.Bitmap("android.missing")
	if err != nil || missing != nil {
		t.Errorf("Expected nil image for missing key, got %v (%v)", missing, err)
	}
}

func TestNotification_Flags(t *testing.T) {
	n := &Notification{Flags: FlagOngoingEvent}
	if !n.IsOngoing() {
		t.Error("Expected ongoing")
	}
	if n.IsGroupSummary() {
		t.Error("Expected not group summary")
	}

	n = &Notification{Flags: FlagGroupSummary}
	if n.IsOngoing() {
		t.Error("Expected not ongoing")
	}
	if !n.IsGroupSummary() {
		t.Error("Expected group summary")
	}
}

func TestEventRecord_ToMapIsIndependentCopy(t *testing.T) {
	record := EventRecord{App: "pkg.a", Title: "t", Text: "x", When: 5}
	m := record.ToMap()
	m["title"] = "changed"

	if record.Title != "t" {
		t.Errorf("Expected record unchanged, got %q", record.Title)
	}
	if m["when"].(int64) != 5 {
		t.Errorf("Expected when=5, got %v", m["when"])
	}
}

func TestIntent_ExtrasAfterJSON(t *testing.T) {
	record := EventRecord{App: "pkg.a", Title: "t", Text: "x", When: 1700000000000, IsGroupSummary: true}
	data, err := json.Marshal(record.ToIntent())
	if err != nil {
		t.Fatalf("Failed to marshal intent: %v", err)
	}

	var intent Intent
	if err := json.Unmarshal(data, &intent); err != nil {
		t.Fatalf("Failed to parse intent: %v", err)
	}

	if intent.Action != ActionNotifEvent {
		t.Errorf("Expected action %s, got %s", ActionNotifEvent, intent.Action)
	}
	if intent.StringExtra("app") != "pkg.a" {
		t.Errorf("Expected app pkg.a, got %s", intent.StringExtra("app"))
	}
	if intent.LongExtra("when", 0) != 1700000000000 {
		t.Errorf("Expected when preserved, got %d", intent.LongExtra("when", 0))
	}
	if !intent.BoolExtra("isGroupSummary", false) {
		t.Error("Expected isGroupSummary true")
	}
	if intent.LongExtra("missing", 7) != 7 {
		t.Error("Expected default for missing long extra")
	}
}
