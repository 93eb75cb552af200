package onboarding

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const MaxLocationLen = 120

// CopyEntry is the location of one physical copy.
type CopyEntry struct {
	Index    int    `json:"index"`
	Location string `json:"location"`
}

// Copies holds one location per physical copy, indexed 0..Len()-1. Its
// length is wizard data: it only changes through Resize.
type Copies []string

func NewCopies(n int) Copies {
	if n < 0 {
		n = 0
	}
	return make(Copies, n)
}

func (c Copies) Len() int { return len(c) }

func (c Copies) inRange(i int) error {
	if i < 0 || i >= len(c) {
		return fmt.Errorf("%w: %d not in [0,%d)", ErrIndexOutOfRange, i, len(c))
	}
	return nil
}

func (c Copies) Get(i int) (CopyEntry, error) {
	if err := c.inRange(i); err != nil {
		return CopyEntry{}, err
	}
	return CopyEntry{Index: i, Location: c[i]}, nil
}

// Set stores a trimmed location. An empty location is accepted here:
// random-access edits may leave an entry incomplete.
func (c Copies) Set(i int, location string) error {
	if err := c.inRange(i); err != nil {
		return err
	}
	location = strings.TrimSpace(location)
	if utf8.RuneCountInString(location) > MaxLocationLen {
		return fieldErr(copyField(i), "too_long", fmt.Sprintf("location must be <= %d chars", MaxLocationLen))
	}
	c[i] = location
	return nil
}

func (c Copies) IsComplete(i int) bool {
	return i >= 0 && i < len(c) && c[i] != ""
}

// Progress is the completion summary shown next to the collector.
type Progress struct {
	Total            int   `json:"total"`
	Completed        int   `json:"completed"`
	CompletedIndices []int `json:"completed_indices"`
	Missing          []int `json:"missing"`
}

func (c Copies) Summary() Progress {
	p := Progress{Total: len(c), CompletedIndices: []int{}, Missing: []int{}}
	for i := range c {
		if c.IsComplete(i) {
			p.Completed++
			p.CompletedIndices = append(p.CompletedIndices, i)
		} else {
			p.Missing = append(p.Missing, i)
		}
	}
	return p
}

func (c Copies) AllComplete() bool {
	for i := range c {
		if !c.IsComplete(i) {
			return false
		}
	}
	return len(c) > 0
}

func (c Copies) Entries() []CopyEntry {
	out := make([]CopyEntry, len(c))
	for i, loc := range c {
		out[i] = CopyEntry{Index: i, Location: loc}
	}
	return out
}

// Locations returns a copy of the ordered location strings.
func (c Copies) Locations() []string {
	return append([]string(nil), c...)
}

func (c Copies) Clone() Copies {
	if c == nil {
		return nil
	}
	return append(Copies(nil), c...)
}

// Resize keeps entries at overlapping indices, drops the extras and
// appends empty slots when growing.
func (c Copies) Resize(n int) Copies {
	out := NewCopies(n)
	copy(out, c)
	return out
}

// Clear empties every entry without changing the length.
func (c Copies) Clear() {
	for i := range c {
		c[i] = ""
	}
}

func copyField(i int) string { return fmt.Sprintf("copies[%d]", i) }
