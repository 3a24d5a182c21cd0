package config

import (
	"testing"
	"time"
)

func TestPort(t *testing.T) {
	t.Setenv("TEST_PORT", "8080")
	if p, err := Port("TEST_PORT", "3000"); err != nil || p != "8080" {
		t.Fatalf("Port = %q, %v", p, err)
	}
	t.Setenv("TEST_PORT", "70000")
	if _, err := Port("TEST_PORT", "3000"); err == nil {
		t.Fatal("expected error for out of range port")
	}
}

func TestRequiredString(t *testing.T) {
	t.Setenv("TEST_REQUIRED", "")
	if _, err := RequiredString("TEST_REQUIRED"); err == nil {
		t.Fatal("expected error for missing value")
	}
}

func TestInt(t *testing.T) {
	t.Setenv("TEST_INT", "42")
	if got := Int("TEST_INT", 7, 0); got != 42 {
		t.Fatalf("Int = %d", got)
	}
	t.Setenv("TEST_INT", "-3")
	if got := Int("TEST_INT", 7, 0); got != 7 {
		t.Fatalf("Int below min = %d", got)
	}
	t.Setenv("TEST_INT", "abc")
	if got := Int("TEST_INT", 7, 0); got != 7 {
		t.Fatalf("Int unparseable = %d", got)
	}
}

func TestSeconds(t *testing.T) {
	t.Setenv("TEST_SECONDS", "5")
	if got := Seconds("TEST_SECONDS", time.Minute); got != 5*time.Second {
		t.Fatalf("Seconds = %s", got)
	}
	t.Setenv("TEST_SECONDS", "0")
	if got := Seconds("TEST_SECONDS", time.Minute); got != time.Minute {
		t.Fatalf("Seconds zero = %s", got)
	}
}

func TestBoolAndList(t *testing.T) {
	t.Setenv("TEST_BOOL", "Yes")
	if !Bool("TEST_BOOL", false) {
		t.Fatal("expected true")
	}
	t.Setenv("TEST_BOOL", "")
	if !Bool("TEST_BOOL", true) {
		t.Fatal("expected fallback")
	}
	t.Setenv("TEST_LIST", " a, ,b ,")
	got := List("TEST_LIST", "")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("List = %v", got)
	}
}
