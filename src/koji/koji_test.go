package koji

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// hub serves canned XML-RPC responses keyed by method name and records the
// raw request bodies it receives.
type hub struct {
	responses map[string]string
	calls     []string
}

func (h *hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	h.calls = append(h.calls, string(body))
	for method, resp := range h.responses {
		if strings.Contains(string(body), "<methodName>"+method+"</methodName>") {
			w.Header().Set("Content-Type", "text/xml")
			io.WriteString(w, resp)
			return
		}
	}
	http.Error(w, "unknown method", http.StatusBadRequest)
}

func newHub(t *testing.T, responses map[string]string) (*hub, *Client) {
	t.Helper()

	h := &hub{responses: responses}
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return h, NewClient(srv.URL)
}

func response(value string) string {
	return `<?xml version="1.0"?><methodResponse><params><param><value>` + value + `</value></param></params></methodResponse>`
}

func TestGetLastEvent(t *testing.T) {
	_, c := newHub(t, map[string]string{
		"getLastEvent": response(`<struct>
			<member><name>id</name><value><int>4242</int></value></member>
			<member><name>ts</name><value><double>1700000000.5</double></value></member>
		</struct>`),
	})

	ev, err := c.GetLastEvent(context.Background())
	if err != nil {
		t.Fatalf("GetLastEvent: %v", err)
	}
	if diff := cmp.Diff(&Event{ID: 4242, TS: 1700000000.5}, ev); diff != "" {
		t.Errorf("event mismatch (-want +got):\n%s", diff)
	}
}

func TestTargetAndConfigPinnedToEvent(t *testing.T) {
	h, c := newHub(t, map[string]string{
		"getBuildTarget": response(`<struct>
			<member><name>id</name><value><int>1</int></value></member>
			<member><name>name</name><value><string>rhel-9-candidate</string></value></member>
			<member><name>build_tag</name><value><int>77</int></value></member>
			<member><name>build_tag_name</name><value><string>rhel-9-build</string></value></member>
		</struct>`),
		"getBuildConfig": response(`<struct>
			<member><name>id</name><value><i4>77</i4></value></member>
			<member><name>name</name><value><string>rhel-9-build</string></value></member>
			<member><name>arches</name><value><string>x86_64 ppc64le</string></value></member>
			<member><name>extra</name><value><struct></struct></value></member>
		</struct>`),
	})
	ctx := context.Background()

	target, err := c.GetBuildTarget(ctx, "rhel-9-candidate", 4242)
	if err != nil {
		t.Fatalf("GetBuildTarget: %v", err)
	}
	if target.BuildTag != 77 || target.BuildTagName != "rhel-9-build" {
		t.Errorf("target = %+v", target)
	}

	conf, err := c.GetBuildConfig(ctx, target.BuildTag, 4242)
	if err != nil {
		t.Fatalf("GetBuildConfig: %v", err)
	}
	if conf.Arches != "x86_64 ppc64le" || conf.Name != "rhel-9-build" {
		t.Errorf("config = %+v", conf)
	}

	for _, call := range h.calls {
		if !strings.Contains(call, "<name>__starstar</name>") || !strings.Contains(call, "<boolean>1</boolean>") {
			t.Errorf("call missing keyword marker:\n%s", call)
		}
		if !strings.Contains(call, "<name>event</name>") || !strings.Contains(call, "<int>4242</int>") {
			t.Errorf("call not pinned to event 4242:\n%s", call)
		}
	}
}

func TestTaskOwner(t *testing.T) {
	h, c := newHub(t, map[string]string{
		"getTaskInfo": response(`<struct>
			<member><name>id</name><value><int>123</int></value></member>
			<member><name>owner</name><value><int>9</int></value></member>
		</struct>`),
		"getUser": response(`<struct>
			<member><name>id</name><value><int>9</int></value></member>
			<member><name>name</name><value><string>spam</string></value></member>
		</struct>`),
	})

	owner, err := c.TaskOwner(context.Background(), 123)
	if err != nil {
		t.Fatalf("TaskOwner: %v", err)
	}
	if owner != "spam" {
		t.Errorf("owner = %q, want %q", owner, "spam")
	}
	if len(h.calls) != 2 {
		t.Fatalf("calls = %d, want 2", len(h.calls))
	}
	if !strings.Contains(h.calls[0], "<int>123</int>") {
		t.Errorf("getTaskInfo call:\n%s", h.calls[0])
	}
	if !strings.Contains(h.calls[1], "<int>9</int>") {
		t.Errorf("getUser call:\n%s", h.calls[1])
	}
}

func TestNilResultIsNotFound(t *testing.T) {
	_, c := newHub(t, map[string]string{
		"getBuildTarget": response(`<nil/>`),
	})

	_, err := c.GetBuildTarget(context.Background(), "missing", 1)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestFault(t *testing.T) {
	_, c := newHub(t, map[string]string{
		"getLastEvent": `<?xml version="1.0"?><methodResponse><fault><value><struct>
			<member><name>faultCode</name><value><int>1000</int></value></member>
			<member><name>faultString</name><value><string>GenericError</string></value></member>
		</struct></value></fault></methodResponse>`,
	})

	_, err := c.GetLastEvent(context.Background())
	var fault *Fault
	if !errors.As(err, &fault) {
		t.Fatalf("error = %v, want *Fault", err)
	}
	if fault.Code != 1000 || fault.String != "GenericError" {
		t.Errorf("fault = %+v", fault)
	}
}

func TestKeywordArgsMarksStruct(t *testing.T) {
	kw := map[string]any{"event": 4242}
	got := keywordArgs(kw)

	want := map[string]any{"event": 4242, "__starstar": true}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("keyword args mismatch (-want +got):\n%s", diff)
	}
	if _, ok := kw["__starstar"]; ok {
		t.Error("keywordArgs modified its input")
	}
}

func TestHTTPErrorIsReported(t *testing.T) {
	_, c := newHub(t, map[string]string{})

	_, err := c.GetLastEvent(context.Background())
	if err == nil || !strings.Contains(err.Error(), "400") {
		t.Fatalf("error = %v, want 400", err)
	}
}
