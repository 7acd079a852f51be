package alert

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wxgate/wxgate/internal/httputil"
	"github.com/wxgate/wxgate/internal/metrics"
	"github.com/wxgate/wxgate/internal/models"
	"github.com/wxgate/wxgate/internal/wxerr"
)

// Action is one configured webhook call.
type Action struct {
	Method  string            `yaml:"method" json:"method"`
	URL     string            `yaml:"url" json:"url"`
	Headers map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
}

// SAMERule is the per-geo-code rule block: direct actions plus nested
// severity- and type-keyed action lists.
type SAMERule struct {
	Actions  []Action            `yaml:"actions,omitempty" json:"actions,omitempty"`
	Severity map[string][]Action `yaml:"severity,omitempty" json:"severity,omitempty"`
	Type     map[string][]Action `yaml:"type,omitempty" json:"type,omitempty"`
}

// RuleSet holds the three independent matching axes. Every axis that matches
// an event fires all of its actions; there is no first-match-wins and no
// deduplication, so an action reachable through two axes runs twice.
type RuleSet struct {
	Severity map[string][]Action `yaml:"severity,omitempty" json:"severity,omitempty"`
	Type     map[string][]Action `yaml:"type,omitempty" json:"type,omitempty"`
	SAME     map[string]SAMERule `yaml:"same,omitempty" json:"same,omitempty"`
}

// Validate rejects malformed rule configuration before it is installed.
func (r RuleSet) Validate() error {
	for tier, actions := range r.Severity {
		if err := validateActions(actions); err != nil {
			return wxerr.Clientf("severity rule %q: %v", tier, err)
		}
	}
	for code, actions := range r.Type {
		if err := validateActions(actions); err != nil {
			return wxerr.Clientf("type rule %q: %v", code, err)
		}
	}
	for code, rule := range r.SAME {
		if err := validateActions(rule.Actions); err != nil {
			return wxerr.Clientf("same rule %q: %v", code, err)
		}
		for tier, actions := range rule.Severity {
			if err := validateActions(actions); err != nil {
				return wxerr.Clientf("same rule %q severity %q: %v", code, tier, err)
			}
		}
		for typ, actions := range rule.Type {
			if err := validateActions(actions); err != nil {
				return wxerr.Clientf("same rule %q type %q: %v", code, typ, err)
			}
		}
	}
	return nil
}

func validateActions(actions []Action) error {
	for _, a := range actions {
		switch strings.ToUpper(a.Method) {
		case http.MethodGet, http.MethodPost, http.MethodPut:
		default:
			return fmt.Errorf("unsupported method %q", a.Method)
		}
		if a.URL == "" {
			return fmt.Errorf("missing url")
		}
	}
	return nil
}

// Webhook targets get a shorter deadline than upstream forecast calls: a slow
// receiver must not hold an alert delivery open for the full default timeout.
const dispatchTimeout = 10 * time.Second

// Dispatcher executes matched actions over a shared HTTP client.
type Dispatcher struct {
	httpClient *http.Client
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{httpClient: httputil.NewClientTimeout(dispatchTimeout)}
}

// Dispatch classifies the event, gathers actions from every matching axis,
// and executes them in order: global severity, global type, then per-geo-code
// rules in the event's code order (direct actions, then nested severity, then
// nested type). Returns the count of actions executed. The first failing
// action aborts the rest; the error carries the count accumulated before it.
func (d *Dispatcher) Dispatch(ctx context.Context, event models.AlertEvent, rules RuleSet) (int, error) {
	severity := Classify(event.Type)
	if severity == SeverityUnknown {
		return 0, wxerr.Clientf("unrecognized alert type %q", event.Type)
	}

	var actions []Action
	actions = append(actions, rules.Severity[string(severity)]...)
	actions = append(actions, rules.Type[event.Type]...)
	for _, code := range event.Codes {
		rule, ok := rules.SAME[code]
		if !ok {
			continue
		}
		actions = append(actions, rule.Actions...)
		actions = append(actions, rule.Severity[string(severity)]...)
		actions = append(actions, rule.Type[event.Type]...)
	}

	executed := 0
	for _, action := range actions {
		if err := d.execute(ctx, action, event); err != nil {
			metrics.DispatchFailures.Inc()
			err.Executed = executed
			return executed, err
		}
		executed++
		metrics.ActionsDispatched.Inc()
	}
	return executed, nil
}

func (d *Dispatcher) execute(ctx context.Context, action Action, event models.AlertEvent) *wxerr.DispatchError {
	method := strings.ToUpper(action.Method)

	var body io.Reader
	if method == http.MethodPost || method == http.MethodPut {
		body = bytes.NewReader(event.Raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, action.URL, body)
	if err != nil {
		return &wxerr.DispatchError{Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range action.Headers {
		req.Header.Set(k, v)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return &wxerr.DispatchError{Err: err}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &wxerr.DispatchError{Status: resp.StatusCode}
	}
	return nil
}
