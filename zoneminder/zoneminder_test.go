package zoneminder

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

// scripted is an http.RoundTripper that records request URLs and serves
// responses keyed by URL substring.
type scripted struct {
	t        *testing.T
	requests []string
	bodies   []string
	routes   map[string]string
}

func (s *scripted) RoundTrip(req *http.Request) (*http.Response, error) {
	u := req.URL.String()
	s.requests = append(s.requests, req.Method+" "+u)
	if req.Body != nil {
		b, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		s.bodies = append(s.bodies, string(b))
	} else {
		s.bodies = append(s.bodies, "")
	}
	if body, ok := s.routes[u]; ok {
		return &http.Response{
			StatusCode: http.StatusOK,
			Status:     "200 OK",
			Body:       io.NopCloser(strings.NewReader(body)),
		}, nil
	}
	for key, body := range s.routes {
		if strings.Contains(strings.TrimPrefix(u, "http://zm.example/zm/"), key) {
			return &http.Response{
				StatusCode: http.StatusOK,
				Status:     "200 OK",
				Body:       io.NopCloser(strings.NewReader(body)),
			}, nil
		}
	}
	s.t.Fatalf("unexpected request: %s", u)
	return nil, nil
}

// logins counts how many requests were form logins.
func (s *scripted) logins() int {
	n := 0
	for i, r := range s.requests {
		if strings.HasSuffix(r, "/zm/") && strings.Contains(s.bodies[i], "action=login") {
			n++
		}
	}
	return n
}

func newTestClient(t *testing.T, routes map[string]string) (*Client, *scripted, *time.Time) {
	t.Helper()
	c, err := New("http://zm.example/zm/", "admin", "hunter2")
	if err != nil {
		t.Fatalf("couldn't create client: %v", err)
	}
	spy := &scripted{t: t, routes: routes}
	if spy.routes == nil {
		spy.routes = map[string]string{}
	}
	spy.routes["http://zm.example/zm/"] = "<html>console</html>"
	c.http.Transport = spy
	clock := time.Date(2016, 5, 14, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }
	return c, spy, &clock
}

const monitorsJSON = `{"monitors":[
	{"Monitor":{"Id":"1","Name":"Garage","Function":"Modect","Enabled":"1"}},
	{"Monitor":{"Id":"2","Name":"Front Door","Function":"Monitor","Enabled":"0"}}
]}`

func TestMonitors(t *testing.T) {
	c, _, _ := newTestClient(t, map[string]string{"monitors.json": monitorsJSON})
	l, err := c.Monitors(context.Background())
	if err != nil {
		t.Fatalf("couldn't load monitors: %v", err)
	}
	if len(l) != 2 {
		t.Fatalf("want 2 monitors, got %d", len(l))
	}
	if l[0].Name != "Garage" || !l[0].IsEnabled() {
		t.Errorf("wrong first monitor: %+v", l[0])
	}
	if m := l.Find("fRoNt DoOr"); m == nil || m.ID != "2" {
		t.Errorf("case-insensitive find failed: %+v", m)
	}
	if m := l.Find("attic"); m != nil {
		t.Errorf("found a monitor that doesn't exist: %+v", m)
	}
}

func TestSessionRelogin(t *testing.T) {
	c, spy, clock := newTestClient(t, map[string]string{"monitors.json": monitorsJSON})
	ctx := context.Background()
	if _, err := c.Monitors(ctx); err != nil {
		t.Fatalf("first load failed: %v", err)
	}
	if got := spy.logins(); got != 1 {
		t.Fatalf("want 1 login after first request, got %d", got)
	}
	// A request inside the expiry window reuses the session.
	*clock = clock.Add(10 * time.Minute)
	if _, err := c.Monitors(ctx); err != nil {
		t.Fatalf("second load failed: %v", err)
	}
	if got := spy.logins(); got != 1 {
		t.Errorf("logged in again inside the expiry window: %d logins", got)
	}
	// Successful requests refresh the session, so expiry counts from the
	// last request, not the last login.
	*clock = clock.Add(25 * time.Minute)
	if _, err := c.Monitors(ctx); err != nil {
		t.Fatalf("third load failed: %v", err)
	}
	if got := spy.logins(); got != 1 {
		t.Errorf("refresh did not extend the session: %d logins", got)
	}
	// Past the window with no traffic, the client logs in again.
	*clock = clock.Add(31 * time.Minute)
	if _, err := c.Monitors(ctx); err != nil {
		t.Fatalf("fourth load failed: %v", err)
	}
	if got := spy.logins(); got != 2 {
		t.Errorf("want 2 logins after expiry, got %d", got)
	}
}

func TestSetState(t *testing.T) {
	cases := []struct {
		name   string
		saved  string
		after  string
		enable bool
		want   string
	}{
		{
			name:   "enabled",
			saved:  `{"message":"Saved"}`,
			after:  `{"monitors":[{"Monitor":{"Id":"1","Name":"Garage","Function":"Modect","Enabled":"1"}}]}`,
			enable: true,
			want:   "changed to enabled",
		},
		{
			name:  "disabled",
			saved: `{"message":"Saved"}`,
			after: `{"monitors":[{"Monitor":{"Id":"1","Name":"Garage","Function":"Modect","Enabled":"0"}}]}`,
			want:  "changed to disabled",
		},
		{
			name:   "rejected",
			saved:  `{"message":"Invalid value"}`,
			after:  monitorsJSON,
			enable: true,
			want:   "not changed: Invalid value",
		},
		{
			name:   "gone after change",
			saved:  `{"message":"Saved"}`,
			after:  `{"monitors":[]}`,
			enable: true,
			want:   "no longer available",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, spy, _ := newTestClient(t, map[string]string{
				"monitors/1.json": tc.saved,
				"monitors.json":   tc.after,
			})
			m := &Monitor{ID: "1", Name: "Garage"}
			got, err := c.SetState(context.Background(), m, tc.enable)
			if err != nil {
				t.Fatalf("couldn't set state: %v", err)
			}
			if got != tc.want {
				t.Errorf("wrong result: want %q, got %q", tc.want, got)
			}
			wantForm := "Monitor%5BEnabled%5D=0"
			if tc.enable {
				wantForm = "Monitor%5BEnabled%5D=1"
			}
			found := false
			for _, b := range spy.bodies {
				if b == wantForm {
					found = true
				}
			}
			if !found {
				t.Errorf("no request carried %q: %q", wantForm, spy.bodies)
			}
		})
	}
}

func TestStatus(t *testing.T) {
	c, _, _ := newTestClient(t, map[string]string{
		"getVersion.json":  `{"version":"1.36.33","apiversion":"2.0"}`,
		"daemonCheck.json": `{"result":1}`,
		"getLoad.json":     `{"load":[0.12,0.34,0.56]}`,
	})
	s, err := c.Status(context.Background())
	if err != nil {
		t.Fatalf("couldn't query status: %v", err)
	}
	if s.Version != "1.36.33" || s.APIVersion != "2.0" {
		t.Errorf("wrong version: %+v", s)
	}
	if !s.DaemonRunning {
		t.Error("daemon reported down")
	}
	if s.Load != [3]float64{0.12, 0.34, 0.56} {
		t.Errorf("wrong load: %v", s.Load)
	}
}

func TestStatusNeverQueriesDiskUsage(t *testing.T) {
	c, spy, _ := newTestClient(t, map[string]string{
		"getVersion.json":  `{"version":"1.36.33","apiversion":"2.0"}`,
		"daemonCheck.json": `{"result":0}`,
		"getLoad.json":     `{"load":[1,1,1]}`,
	})
	if _, err := c.Status(context.Background()); err != nil {
		t.Fatalf("couldn't query status: %v", err)
	}
	for _, r := range spy.requests {
		if strings.Contains(r, "getDiskPercent") {
			t.Errorf("status queried disk usage: %s", r)
		}
	}
}

func TestMonitorStill(t *testing.T) {
	c, spy, _ := newTestClient(t, map[string]string{"nph-zms": "jpegbytes"})
	m := &Monitor{ID: "7", Name: "Garage"}
	b, err := c.MonitorStill(context.Background(), m)
	if err != nil {
		t.Fatalf("couldn't fetch still: %v", err)
	}
	if string(b) != "jpegbytes" {
		t.Errorf("wrong bytes: %q", b)
	}
	found := false
	for _, r := range spy.requests {
		if strings.Contains(r, "mode=single") && strings.Contains(r, "monitor=7") {
			found = true
		}
	}
	if !found {
		t.Errorf("no still request made: %q", spy.requests)
	}
}
