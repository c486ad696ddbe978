package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestNewCoordinateAccepts(t *testing.T) {
	cases := [][3]string{
		{"org.springframework", "spring-core", "5.3.21"},
		{"com.google.guava", "guava", "31.1-jre"},
		{"io.ktor", "ktor-server_2.13", "2.3.0-RC1"},
		{" org.example ", "lib", "1.0"},
	}
	for _, c := range cases {
		coord, err := NewCoordinate(c[0], c[1], c[2])
		if err != nil {
			t.Fatalf("NewCoordinate(%q, %q, %q): %v", c[0], c[1], c[2], err)
		}
		if coord.Group != strings.TrimSpace(c[0]) {
			t.Fatalf("group not trimmed: %q", coord.Group)
		}
	}
}

func TestNewCoordinateRejectsUnsafe(t *testing.T) {
	cases := [][3]string{
		{"org/../../../etc", "passwd", "1.0"},
		{"group", "../../../tmp/evil", "1.0"},
		{"group", "artifact", "../../1.0"},
		{"org/x", "artifact", "1.0"},
		{"group", "arti:fact", "1.0"},
		{"group", "artifact", "1.0*"},
		{"group", `arti\fact`, "1.0"},
		{"~group", "artifact", "1.0"},
		{"", "artifact", "1.0"},
		{"group", "  ", "1.0"},
		{"group", "artifact", ""},
		{"gröup", "artifact", "1.0"},
	}
	for _, c := range cases {
		if _, err := NewCoordinate(c[0], c[1], c[2]); !errors.Is(err, ErrInvalidCoordinate) {
			t.Fatalf("NewCoordinate(%q, %q, %q): want ErrInvalidCoordinate, got %v", c[0], c[1], c[2], err)
		}
	}
}

func TestNewCoordinateLengthLimits(t *testing.T) {
	long := strings.Repeat("a", maxFieldLength+1)
	if _, err := NewCoordinate(long, "artifact", "1.0"); !errors.Is(err, ErrInvalidCoordinate) {
		t.Fatalf("over-long field: want ErrInvalidCoordinate, got %v", err)
	}

	g := strings.Repeat("g", 100)
	a := strings.Repeat("a", 100)
	v := strings.Repeat("v", 60)
	if _, err := NewCoordinate(g, a, v); !errors.Is(err, ErrInvalidCoordinate) {
		t.Fatalf("over-long combined: want ErrInvalidCoordinate, got %v", err)
	}
}

func TestCoordinateString(t *testing.T) {
	coord, err := NewCoordinate("org.example", "lib", "1.0.0")
	if err != nil {
		t.Fatalf("NewCoordinate: %v", err)
	}
	if got := coord.String(); got != "org.example:lib:1.0.0" {
		t.Fatalf("String() = %q", got)
	}
}
