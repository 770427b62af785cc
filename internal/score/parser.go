package score

import (
	"bufio"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Parse reads the line-oriented score format described in the score
// grammar: bpm <int>, num_parts <int>, then one "part"..."end" block
// per instrument, each holding num_notes <int> followed by that many
// "<beat>:<div> <pitch> <duration> <velocity>" lines. Comments start
// with '#'; blank lines and trailing whitespace are tolerated.
//
// Any malformed token aborts the whole parse and returns an error
// naming the 1-indexed line number — a partially loaded Song is never
// returned.
func Parse(input string) (*Song, error) {
	p := &parser{sc: bufio.NewScanner(strings.NewReader(input))}
	song := &Song{BeatsPerBar: 4}

	line, ok, err := p.nextLine()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("score: empty input")
	}
	bpm, err := p.expectKeyInt(line, "bpm")
	if err != nil {
		return nil, err
	}
	song.BPM = float64(bpm)

	line, ok, err = p.nextLine()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("score: line %d: expected num_parts, got end of input", p.lineNo)
	}
	numParts, err := p.expectKeyInt(line, "num_parts")
	if err != nil {
		return nil, err
	}

	song.Parts = make([]Part, 0, numParts)
	for i := 0; i < numParts; i++ {
		part, err := p.parsePart()
		if err != nil {
			return nil, err
		}
		song.Parts = append(song.Parts, part)
	}
	if err := p.sc.Err(); err != nil {
		return nil, fmt.Errorf("score: read error: %w", err)
	}
	return song, nil
}

type parser struct {
	sc     *bufio.Scanner
	lineNo int
}

// nextLine returns the next non-blank, non-comment line with leading/
// trailing whitespace trimmed, or ok=false at end of input.
func (p *parser) nextLine() (string, bool, error) {
	for p.sc.Scan() {
		p.lineNo++
		line := strings.TrimSpace(p.sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return line, true, nil
	}
	return "", false, nil
}

func (p *parser) expectKeyInt(line, key string) (int, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 || fields[0] != key {
		return 0, fmt.Errorf("score: line %d: expected %q <int>, got %q", p.lineNo, key, line)
	}
	v, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, fmt.Errorf("score: line %d: %q is not an integer", p.lineNo, fields[1])
	}
	return v, nil
}

func (p *parser) parsePart() (Part, error) {
	line, ok, err := p.nextLine()
	if err != nil {
		return Part{}, err
	}
	if !ok || line != "part" {
		return Part{}, fmt.Errorf("score: line %d: expected \"part\", got end of input or %q", p.lineNo, line)
	}

	line, ok, err = p.nextLine()
	if err != nil {
		return Part{}, err
	}
	if !ok {
		return Part{}, fmt.Errorf("score: line %d: expected num_notes, got end of input", p.lineNo)
	}
	numNotes, err := p.expectKeyInt(line, "num_notes")
	if err != nil {
		return Part{}, err
	}

	part := Part{Notes: make([]Note, 0, numNotes)}
	for i := 0; i < numNotes; i++ {
		line, ok, err := p.nextLine()
		if err != nil {
			return Part{}, err
		}
		if !ok {
			return Part{}, fmt.Errorf("score: line %d: expected note, got end of input", p.lineNo)
		}
		note, err := p.parseNote(line)
		if err != nil {
			return Part{}, err
		}
		part.Notes = append(part.Notes, note)
	}

	line, ok, err = p.nextLine()
	if err != nil {
		return Part{}, err
	}
	if !ok || line != "end" {
		return Part{}, fmt.Errorf("score: line %d: expected \"end\", got end of input or %q", p.lineNo, line)
	}

	sortNotesByStart(part.Notes)
	return part, nil
}

func (p *parser) parseNote(line string) (Note, error) {
	fields := strings.Fields(line)
	if len(fields) != 4 {
		return Note{}, fmt.Errorf("score: line %d: expected \"beat:div pitch duration velocity\", got %q", p.lineNo, line)
	}
	beat, div, err := splitBeatDiv(fields[0])
	if err != nil {
		return Note{}, fmt.Errorf("score: line %d: %w", p.lineNo, err)
	}
	pitch, err := strconv.Atoi(fields[1])
	if err != nil {
		return Note{}, fmt.Errorf("score: line %d: pitch %q is not an integer", p.lineNo, fields[1])
	}
	duration, err := strconv.Atoi(fields[2])
	if err != nil {
		return Note{}, fmt.Errorf("score: line %d: duration %q is not an integer", p.lineNo, fields[2])
	}
	velocity, err := strconv.ParseFloat(fields[3], 64)
	if err != nil {
		return Note{}, fmt.Errorf("score: line %d: velocity %q is not a number", p.lineNo, fields[3])
	}
	return Note{Pitch: pitch, Velocity: velocity, Beat: beat, Division: div, Duration: duration}, nil
}

func splitBeatDiv(tok string) (beat, div int, err error) {
	idx := strings.IndexByte(tok, ':')
	if idx < 0 {
		return 0, 0, fmt.Errorf("%q is not in beat:div form", tok)
	}
	beat, err = strconv.Atoi(tok[:idx])
	if err != nil {
		return 0, 0, fmt.Errorf("beat %q is not an integer", tok[:idx])
	}
	div, err = strconv.Atoi(tok[idx+1:])
	if err != nil {
		return 0, 0, fmt.Errorf("div %q is not an integer", tok[idx+1:])
	}
	if div < 0 || div >= DivsPerBeat {
		return 0, 0, fmt.Errorf("div %d out of range [0,%d)", div, DivsPerBeat)
	}
	return beat, div, nil
}

func sortNotesByStart(notes []Note) {
	sort.SliceStable(notes, func(i, j int) bool {
		return startKey(notes[i]) < startKey(notes[j])
	})
}

func startKey(n Note) int {
	return n.Beat*DivsPerBeat + n.Division
}
