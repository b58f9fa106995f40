package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestSyllabusValidate(t *testing.T) {
	t.Parallel() // Enable parallel execution
	valid := Syllabus{"Variables", "Control Flow", "Functions", "Recursion"}

	if err := valid.Validate(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	// Empty syllabus
	if err := (Syllabus{}).Validate(); err != ErrSyllabusEmpty {
		t.Errorf("Expected error %v, got %v", ErrSyllabusEmpty, err)
	}

	var nilSyllabus Syllabus
	if err := nilSyllabus.Validate(); err != ErrSyllabusEmpty {
		t.Errorf("Expected error %v, got %v", ErrSyllabusEmpty, err)
	}

	// Blank entry
	err := Syllabus{"Variables", "   "}.Validate()
	if err != ErrSyllabusEntryEmpty {
		t.Errorf("Expected error %v, got %v", ErrSyllabusEntryEmpty, err)
	}

	// Over-length entry
	err = Syllabus{"Variables", strings.Repeat("x", MaxConceptNameLength+1)}.Validate()
	if !errors.Is(err, ErrSyllabusEntryTooLong) {
		t.Errorf("Expected error %v, got %v", ErrSyllabusEntryTooLong, err)
	}

	// Entry at the limit is fine
	err = Syllabus{strings.Repeat("x", MaxConceptNameLength)}.Validate()
	if err != nil {
		t.Errorf("Expected no error for entry at limit, got %v", err)
	}

	// Case-insensitive duplicates
	err = Syllabus{"Recursion", "recursion"}.Validate()
	if !errors.Is(err, ErrSyllabusDuplicate) {
		t.Errorf("Expected error %v, got %v", ErrSyllabusDuplicate, err)
	}
}

func TestSyllabusContains(t *testing.T) {
	t.Parallel() // Enable parallel execution
	s := Syllabus{"Variables", "Control Flow"}

	if !s.Contains("Variables") {
		t.Error("Expected syllabus to contain exact entry")
	}

	// Containment is exact, not normalized
	if s.Contains("variables") {
		t.Error("Expected Contains to be case-sensitive")
	}

	if s.Contains("Pointers") {
		t.Error("Expected unknown concept to be absent")
	}
}

func TestSyllabusClone(t *testing.T) {
	t.Parallel() // Enable parallel execution
	original := Syllabus{"Variables", "Control Flow"}
	clone := original.Clone()

	clone[0] = "Mutated"
	if original[0] != "Variables" {
		t.Error("Expected clone to be independent of original")
	}

	var nilSyllabus Syllabus
	if nilSyllabus.Clone() != nil {
		t.Error("Expected nil syllabus to clone as nil")
	}
}

func TestConceptNameTooLong(t *testing.T) {
	t.Parallel() // Enable parallel execution
	if ConceptNameTooLong(strings.Repeat("a", MaxConceptNameLength)) {
		t.Error("Expected name at limit to be accepted")
	}

	if !ConceptNameTooLong(strings.Repeat("a", MaxConceptNameLength+1)) {
		t.Error("Expected name over limit to be flagged")
	}

	// Length is rune-based, not byte-based
	if ConceptNameTooLong(strings.Repeat("é", MaxConceptNameLength)) {
		t.Error("Expected multi-byte name at rune limit to be accepted")
	}
}
