package testfixtures

import "testing"

func TestIDGenerator_SequentialIdentifiers(t *testing.T) {
	gen := NewIDGenerator("res")

	if got := gen.Next(); got != "res-1" {
		t.Fatalf("expected res-1, got %q", got)
	}
	if got := gen.Next(); got != "res-2" {
		t.Fatalf("expected res-2, got %q", got)
	}
}

func TestIDGenerator_DefaultPrefix(t *testing.T) {
	if got := NewIDGenerator("").Next(); got != "id-1" {
		t.Fatalf("expected id-1, got %q", got)
	}
}

func TestIDGenerator_Reset(t *testing.T) {
	gen := NewIDGenerator("room")
	gen.Next()
	gen.Next()

	gen.SetCounter(0)
	gen.SetPrefix("teacher")

	if got := gen.Next(); got != "teacher-1" {
		t.Fatalf("expected teacher-1 after reset, got %q", got)
	}
}
