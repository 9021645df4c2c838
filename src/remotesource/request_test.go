package remotesource

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestValidateRequest(t *testing.T) {
	if err := ValidateRequest(decodeRequest(t, testSourceRequest)); err != nil {
		t.Fatalf("ValidateRequest: %v", err)
	}

	err := ValidateRequest(decodeRequest(t, `{"id": 1, "packages": []}`))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "missing repo, ref") {
		t.Errorf("error %q does not list the missing members", err)
	}
}

func TestValidateRequestAcceptsEmptyPackages(t *testing.T) {
	if err := ValidateRequest(decodeRequest(t, `{"repo": "r", "ref": "x", "packages": []}`)); err != nil {
		t.Fatalf("ValidateRequest: %v", err)
	}
}

func TestSanitize(t *testing.T) {
	got := Sanitize(decodeRequest(t, testSourceRequest))

	for _, key := range []string{"id", "state", "extra_cruft"} {
		if _, ok := got[key]; ok {
			t.Errorf("sanitized request kept %q", key)
		}
	}

	data, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var gotJSON, wantJSON any
	if err := json.Unmarshal(data, &gotJSON); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal([]byte(testRemoteSourceJSON), &wantJSON); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(wantJSON, gotJSON); diff != "" {
		t.Errorf("sanitized mismatch (-want +got):\n%s", diff)
	}
}

func TestSanitizeOmitsAbsentMembers(t *testing.T) {
	got := Sanitize(decodeRequest(t, `{"repo": "r", "ref": "x", "packages": []}`))
	if len(got) != 3 {
		t.Errorf("sanitized = %v, want repo, ref and packages only", got)
	}
}
