package examinfo

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Type
		wantErr bool
	}{
		{in: "pmp", want: PMP},
		{in: "fce", want: FCE},
		{in: "PMP", wantErr: true},
		{in: "toefl", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("Parse(%q) = %q, want error", tt.in, got)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("Parse(%q) = %q, %v, want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestKeyNamespacing(t *testing.T) {
	if got := PMP.Key("test-history"); got != "pmp-test-history" {
		t.Errorf("PMP.Key = %q", got)
	}
	if got := FCE.Key("daily-questions"); got != "fce-daily-questions" {
		t.Errorf("FCE.Key = %q", got)
	}
	if got := GlobalKey("last-usage-date"); got != "global-last-usage-date" {
		t.Errorf("GlobalKey = %q", got)
	}
}

func TestTableName(t *testing.T) {
	if got := PMP.TableName(); got != "pmpquestions" {
		t.Errorf("PMP.TableName() = %q", got)
	}
	if got := FCE.TableName(); got != "fcequestions" {
		t.Errorf("FCE.TableName() = %q", got)
	}
}

func TestFlashcardTable(t *testing.T) {
	if got := PMP.FlashcardTable(); got != "pmp_flashcards" {
		t.Errorf("PMP.FlashcardTable() = %q", got)
	}
	if got := FCE.FlashcardTable(); got != "fce_flashcards" {
		t.Errorf("FCE.FlashcardTable() = %q", got)
	}
}
