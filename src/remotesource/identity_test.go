package remotesource

import (
	"testing"
)

func TestParseBuildInfo(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		wantMeta bool
		wantTask string
	}{
		{"no metadata", `{}`, false, ""},
		{"null metadata", `{"metadata": null}`, true, ""},
		{"labels", `{"metadata": {"labels": {"koji-task-id": "123"}}}`, true, "123"},
		{"numeric label", `{"metadata": {"labels": {"koji-task-id": 123}}}`, true, "123"},
		{"boolean label", `{"metadata": {"labels": {"koji-task-id": true}}}`, true, ""},
		{"scalar metadata", `{"metadata": "oops"}`, true, ""},
		{"list labels", `{"metadata": {"labels": []}}`, true, ""},
		{"null labels", `{"metadata": {"labels": null}}`, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := ParseBuildInfo([]byte(tt.data))
			if err != nil {
				t.Fatalf("ParseBuildInfo: %v", err)
			}
			if (info.Metadata != nil) != tt.wantMeta {
				t.Fatalf("Metadata = %+v, want present=%v", info.Metadata, tt.wantMeta)
			}
			if info.Metadata != nil && info.Metadata.Labels[TaskIDLabel] != tt.wantTask {
				t.Errorf("task label = %q, want %q", info.Metadata.Labels[TaskIDLabel], tt.wantTask)
			}
		})
	}
}

func TestParseBuildInfoInvalid(t *testing.T) {
	for _, data := range []string{`not json`, `[1, 2]`, `"build"`} {
		if _, err := ParseBuildInfo([]byte(data)); err == nil {
			t.Errorf("ParseBuildInfo(%s): expected error", data)
		}
	}
}

func TestRequesterWithoutOwnerLookup(t *testing.T) {
	f := newFixture(t)
	f.resolver.Owners = nil

	if _, err := f.resolve(); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if f.svc.params.User != "unknown_user" {
		t.Errorf("user = %q, want unknown_user", f.svc.params.User)
	}
}
