package exceptions

import "testing"

func TestNewWithoutDSN(t *testing.T) {
	r, err := New("", "test")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := r.(*NoopReporter); !ok {
		t.Errorf("New(\"\") = %T, want *NoopReporter", r)
	}
	r.ReportException(nil)
}

func TestNewBadDSN(t *testing.T) {
	if _, err := New("not a dsn", "test"); err == nil {
		t.Error("New() with a malformed DSN did not fail")
	}
}
