package score

import (
	"reflect"
	"testing"
)

const twoNoteSong = `
# a minimal two-note song
bpm 120
num_parts 1
part
num_notes 2
0:0 60 32 1.0
1:0 67 32 1.0
end
`

func TestParseTwoNoteSong(t *testing.T) {
	song, err := Parse(twoNoteSong)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if song.BPM != 120 {
		t.Fatalf("expected BPM 120, got %v", song.BPM)
	}
	if len(song.Parts) != 1 {
		t.Fatalf("expected 1 part, got %d", len(song.Parts))
	}
	notes := song.Parts[0].Notes
	if len(notes) != 2 {
		t.Fatalf("expected 2 notes, got %d", len(notes))
	}

	bps := song.BPS()
	if got := notes[0].StartSeconds(bps); got != 0 {
		t.Fatalf("expected first note at t=0, got %v", got)
	}
	if got := notes[0].DurationSeconds(bps); got != 0.5 {
		t.Fatalf("expected first note duration 0.5s, got %v", got)
	}
	if got := notes[1].StartSeconds(bps); got != 0.5 {
		t.Fatalf("expected second note at t=0.5s, got %v", got)
	}
}

func TestParseIdempotent(t *testing.T) {
	a, err := Parse(twoNoteSong)
	if err != nil {
		t.Fatalf("Parse (first): %v", err)
	}
	b, err := Parse(twoNoteSong)
	if err != nil {
		t.Fatalf("Parse (second): %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("parsing the same input twice produced different songs:\n%+v\n%+v", a, b)
	}
}

func TestParseMultiplePartsAndComments(t *testing.T) {
	src := `
bpm 90
num_parts 2
part
num_notes 1
0:0 0 16 0.8
end
part
# second instrument's part
num_notes 1
2:16 12 8 0.5
end
`
	song, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(song.Parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(song.Parts))
	}
	if len(song.Parts[1].Notes) != 1 {
		t.Fatalf("expected 1 note in second part, got %d", len(song.Parts[1].Notes))
	}
	if song.Parts[1].Notes[0].Pitch != 12 {
		t.Fatalf("expected pitch 12, got %d", song.Parts[1].Notes[0].Pitch)
	}
}

func TestParseSortsNotesByStart(t *testing.T) {
	src := `
bpm 100
num_parts 1
part
num_notes 2
1:0 0 8 1.0
0:0 0 8 1.0
end
`
	song, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	notes := song.Parts[0].Notes
	if notes[0].Beat != 0 || notes[1].Beat != 1 {
		t.Fatalf("expected notes sorted by start, got %+v", notes)
	}
}

func TestParseRejectsBadBPM(t *testing.T) {
	_, err := Parse("bpm notanumber\nnum_parts 0\n")
	if err == nil {
		t.Fatalf("expected error for non-integer bpm")
	}
}

func TestParseRejectsMissingEnd(t *testing.T) {
	src := `
bpm 120
num_parts 1
part
num_notes 1
0:0 0 8 1.0
`
	_, err := Parse(src)
	if err == nil {
		t.Fatalf("expected error for missing end")
	}
}

func TestParseRejectsDivisionOutOfRange(t *testing.T) {
	src := `
bpm 120
num_parts 1
part
num_notes 1
0:32 0 8 1.0
end
`
	_, err := Parse(src)
	if err == nil {
		t.Fatalf("expected error for division out of range")
	}
}

func TestParseRejectsTruncatedNoteCount(t *testing.T) {
	src := `
bpm 120
num_parts 1
part
num_notes 2
0:0 0 8 1.0
end
`
	_, err := Parse(src)
	if err == nil {
		t.Fatalf("expected error when fewer notes are present than num_notes declares")
	}
}

func TestParseErrorNamesLineNumber(t *testing.T) {
	src := "bpm 120\nnum_parts 1\npart\nnum_notes 1\nbad line here\nend\n"
	_, err := Parse(src)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !contains(err.Error(), "line 5") {
		t.Fatalf("expected error to name line 5, got %q", err.Error())
	}
}

func contains(s, substr string) bool {
	return len(s) >= len(substr) && (func() bool {
		for i := 0; i+len(substr) <= len(s); i++ {
			if s[i:i+len(substr)] == substr {
				return true
			}
		}
		return false
	})()
}
