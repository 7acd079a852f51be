package alert

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wxgate/wxgate/internal/httputil"
	"github.com/wxgate/wxgate/internal/models"
	"github.com/wxgate/wxgate/internal/wxerr"
)

type recorder struct {
	mu   sync.Mutex
	hits []string
	body string
	fail bool
}

func (r *recorder) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.hits = append(r.hits, req.Method+" "+req.URL.Path)
		if b, _ := io.ReadAll(req.Body); len(b) > 0 {
			r.body = string(b)
		}
		if r.fail {
			w.WriteHeader(http.StatusBadGateway)
		}
	}
}

func TestDispatch_CrossAxisNoDedup(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(rec.handler())
	defer srv.Close()

	// The severity axis and a geo-code override both match; the action
	// executes once per axis.
	rules := RuleSet{
		Severity: map[string][]Action{
			"warning": {{Method: "get", URL: srv.URL + "/severity"}},
		},
		SAME: map[string]SAMERule{
			"037077": {Actions: []Action{{Method: "get", URL: srv.URL + "/same"}}},
		},
	}
	event := models.AlertEvent{Type: "TOR", Codes: []string{"037077"}}

	count, err := NewDispatcher().Dispatch(context.Background(), event, rules)
	require.NoError(t, err)
	require.Equal(t, 2, count)
	require.Equal(t, []string{"GET /severity", "GET /same"}, rec.hits)
}

func TestDispatch_AllAxes(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(rec.handler())
	defer srv.Close()

	rules := RuleSet{
		Severity: map[string][]Action{
			"warning": {{Method: "get", URL: srv.URL + "/severity"}},
		},
		Type: map[string][]Action{
			"TOR": {{Method: "get", URL: srv.URL + "/type"}},
		},
		SAME: map[string]SAMERule{
			"037077": {
				Actions:  []Action{{Method: "get", URL: srv.URL + "/same"}},
				Severity: map[string][]Action{"warning": {{Method: "get", URL: srv.URL + "/same-severity"}}},
				Type:     map[string][]Action{"TOR": {{Method: "get", URL: srv.URL + "/same-type"}}},
			},
		},
	}
	event := models.AlertEvent{Type: "TOR", Codes: []string{"037077", "037119"}}

	count, err := NewDispatcher().Dispatch(context.Background(), event, rules)
	require.NoError(t, err)
	require.Equal(t, 5, count)
	require.Equal(t, []string{
		"GET /severity", "GET /type", "GET /same", "GET /same-severity", "GET /same-type",
	}, rec.hits)
}

func TestDispatch_PostForwardsPayload(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(rec.handler())
	defer srv.Close()

	rules := RuleSet{
		Type: map[string][]Action{
			"SVA": {{Method: "post", URL: srv.URL + "/hook", Headers: map[string]string{"X-Token": "abc"}}},
		},
	}
	raw := []byte(`{"type":"SVA","same":["037077"],"note":"hail"}`)
	event := models.AlertEvent{Type: "SVA", Codes: []string{"037077"}, Raw: raw}

	count, err := NewDispatcher().Dispatch(context.Background(), event, rules)
	require.NoError(t, err)
	require.Equal(t, 1, count)
	require.Equal(t, string(raw), rec.body)
}

func TestDispatch_UnknownType(t *testing.T) {
	count, err := NewDispatcher().Dispatch(context.Background(), models.AlertEvent{Type: "ZZZ"}, RuleSet{})
	require.Equal(t, 0, count)
	var cerr *wxerr.ClientError
	require.True(t, errors.As(err, &cerr))
}

func TestDispatch_NoMatchingRules(t *testing.T) {
	count, err := NewDispatcher().Dispatch(context.Background(), models.AlertEvent{Type: "TOR"}, RuleSet{})
	require.NoError(t, err)
	require.Equal(t, 0, count)
}

func TestDispatch_AbortsOnStatusFailure(t *testing.T) {
	ok := &recorder{}
	okSrv := httptest.NewServer(ok.handler())
	defer okSrv.Close()
	bad := &recorder{fail: true}
	badSrv := httptest.NewServer(bad.handler())
	defer badSrv.Close()

	rules := RuleSet{
		Severity: map[string][]Action{
			"warning": {
				{Method: "get", URL: okSrv.URL + "/first"},
				{Method: "get", URL: badSrv.URL + "/second"},
				{Method: "get", URL: okSrv.URL + "/third"},
			},
		},
	}
	count, err := NewDispatcher().Dispatch(context.Background(), models.AlertEvent{Type: "TOR"}, rules)
	require.Equal(t, 1, count)

	var derr *wxerr.DispatchError
	require.True(t, errors.As(err, &derr))
	require.Equal(t, 1, derr.Executed)
	require.Equal(t, http.StatusBadGateway, derr.Status)
	require.Equal(t, []string{"GET /first"}, ok.hits)
}

func TestDispatch_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // connection refused from here on

	rules := RuleSet{
		Severity: map[string][]Action{"warning": {{Method: "get", URL: srv.URL}}},
	}
	count, err := NewDispatcher().Dispatch(context.Background(), models.AlertEvent{Type: "TOR"}, rules)
	require.Equal(t, 0, count)

	var derr *wxerr.DispatchError
	require.True(t, errors.As(err, &derr))
	require.Zero(t, derr.Status)
	require.Error(t, derr.Err)
}

func TestRuleSetValidate(t *testing.T) {
	good := RuleSet{
		Severity: map[string][]Action{"warning": {{Method: "post", URL: "http://example.com/hook"}}},
		SAME: map[string]SAMERule{
			"037077": {Type: map[string][]Action{"TOR": {{Method: "get", URL: "http://example.com"}}}},
		},
	}
	require.NoError(t, good.Validate())

	badMethod := RuleSet{
		Severity: map[string][]Action{"warning": {{Method: "delete", URL: "http://example.com"}}},
	}
	var cerr *wxerr.ClientError
	require.True(t, errors.As(badMethod.Validate(), &cerr))

	missingURL := RuleSet{
		SAME: map[string]SAMERule{"037077": {Actions: []Action{{Method: "get"}}}},
	}
	require.True(t, errors.As(missingURL.Validate(), &cerr))
}

func TestNewDispatcherTimeout(t *testing.T) {
	d := NewDispatcher()
	require.Equal(t, dispatchTimeout, d.httpClient.Timeout)
	require.Less(t, d.httpClient.Timeout, httputil.DefaultTimeout)
}
