package pin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type driverResult struct {
	err  error
	resp *Response
	body string
}

func getSync(t *testing.T, d Driver, req Request) driverResult {
	t.Helper()
	results := make(chan driverResult, 1)
	d.Get(context.Background(), req, func(err error, resp *Response, body string) {
		results <- driverResult{err, resp, body}
	})
	select {
	case r := <-results:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for driver callback")
		return driverResult{}
	}
}

func TestHTTPDriver_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		w.Header().Set("X-Served-By", r.Header.Get("X-Client"))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("Awesome"))
	}))
	defer server.Close()

	d := NewHTTPDriver(time.Second)
	defer d.Close()

	r := getSync(t, d, Request{URL: server.URL, Header: map[string]string{"X-Client": "pin"}})
	if r.err != nil {
		t.Fatalf("err = %v", r.err)
	}
	if r.resp == nil {
		t.Fatal("resp = nil, want response")
	}
	if r.resp.StatusCode != http.StatusCreated {
		t.Errorf("StatusCode = %d, want %d", r.resp.StatusCode, http.StatusCreated)
	}
	if r.resp.Status != "201 Created" {
		t.Errorf("Status = %q, want %q", r.resp.Status, "201 Created")
	}
	if got := r.resp.Header.Get("X-Served-By"); got != "pin" {
		t.Errorf("X-Served-By = %q, want %q", got, "pin")
	}
	if r.body != "Awesome" {
		t.Errorf("body = %q, want %q", r.body, "Awesome")
	}
}

func TestHTTPDriver_ErrorStatusIsNotTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	r := getSync(t, NewHTTPDriver(time.Second), Request{URL: server.URL})
	if r.err != nil {
		t.Errorf("err = %v, want nil for 404", r.err)
	}
	if r.resp == nil || r.resp.StatusCode != http.StatusNotFound {
		t.Errorf("resp = %+v, want 404", r.resp)
	}
}

func TestHTTPDriver_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	r := getSync(t, NewHTTPDriver(time.Second), Request{URL: url})
	if r.err == nil {
		t.Error("err = nil, want connection error")
	}
	if r.resp != nil {
		t.Errorf("resp = %+v, want nil", r.resp)
	}
}

func TestHTTPDriver_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	d := NewHTTPDriver(20 * time.Millisecond)
	r := getSync(t, d, Request{URL: server.URL})
	if r.err == nil {
		t.Error("err = nil, want timeout error")
	}
	if r.resp != nil {
		t.Errorf("resp = %+v, want nil", r.resp)
	}
}

func TestHTTPDriver_IsAsynchronous(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()
	defer close(release)

	d := NewHTTPDriver(time.Second)
	returned := make(chan struct{})
	go func() {
		d.Get(context.Background(), Request{URL: server.URL}, func(error, *Response, string) {})
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Get() blocked until the response arrived")
	}
}

func TestNewHTTPDriver_DefaultTimeout(t *testing.T) {
	for _, timeout := range []time.Duration{0, -time.Second} {
		if got := NewHTTPDriver(timeout).Timeout(); got != DefaultTimeout {
			t.Errorf("NewHTTPDriver(%v).Timeout() = %v, want %v", timeout, got, DefaultTimeout)
		}
	}

	var nilDriver *HTTPDriver
	nilDriver.Close() // must not panic
}

func TestRequest_Clone(t *testing.T) {
	orig := Request{URL: "http://example.com", Header: map[string]string{"A": "1"}}
	cp := orig.Clone()
	cp.Header["A"] = "2"
	cp.Header["B"] = "3"

	if orig.Header["A"] != "1" {
		t.Errorf("original header mutated: %v", orig.Header)
	}
	if _, ok := orig.Header["B"]; ok {
		t.Error("original header gained a key")
	}
	if cp.URL != orig.URL {
		t.Errorf("Clone().URL = %q, want %q", cp.URL, orig.URL)
	}

	if (Request{}).Clone().Header != nil {
		t.Error("Clone() of nil header should stay nil")
	}
}

func TestDriverFunc(t *testing.T) {
	var got Request
	d := DriverFunc(func(ctx context.Context, req Request, done Callback) {
		got = req
		done(nil, &Response{StatusCode: 200}, "ok")
	})

	r := getSync(t, d, Request{URL: "http://example.com"})
	if got.URL != "http://example.com" {
		t.Errorf("DriverFunc received URL %q", got.URL)
	}
	if r.body != "ok" || r.resp.StatusCode != 200 {
		t.Errorf("DriverFunc result = %+v", r)
	}
}

func TestInfo_DurationMillis(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want float64
	}{
		{0, 0},
		{time.Millisecond, 1},
		{1500 * time.Microsecond, 1.5},
		{2 * time.Second, 2000},
	}
	for _, tt := range tests {
		if got := (Info{Duration: tt.d}).DurationMillis(); got != tt.want {
			t.Errorf("DurationMillis(%v) = %v, want %v", tt.d, got, tt.want)
		}
	}
}

func TestOutcome_StatusCode(t *testing.T) {
	if got := (Outcome{}).StatusCode(); got != 0 {
		t.Errorf("StatusCode() without response = %d, want 0", got)
	}
	if got := (Outcome{Response: &Response{StatusCode: 503}}).StatusCode(); got != 503 {
		t.Errorf("StatusCode() = %d, want 503", got)
	}
}
