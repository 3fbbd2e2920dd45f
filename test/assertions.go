package test

import (
	"io"
	"net/http"
	"testing"
)

func AssertWantErr(err error, wantErr, caller string, t *testing.T) bool {
	t.Helper()
	if err != nil {
		if wantErr != err.Error() {
			t.Errorf("%s error = %v, wantErr %q", caller, err, wantErr)
		}

		return true
	} else if wantErr != "" {
		t.Errorf("%s expected error %q, did not receive an error", caller, wantErr)
		return true
	}

	return false
}

// AssertStatus fails the test when resp does not carry the wanted status
// code, logging the response body. It returns the body.
func AssertStatus(resp *http.Response, want int, caller string, t *testing.T) []byte {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("%s reading body: %v", caller, err)
	}
	if resp.StatusCode != want {
		t.Errorf("%s status = %d, want %d, body %q", caller, resp.StatusCode, want, body)
	}
	return body
}
