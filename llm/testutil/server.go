// Package testutil provides a scripted fake provider server for testing
// dispatcher retry behavior against real HTTP round trips.
package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
)

// Reply is one scripted provider response.
type Reply struct {
	Status int
	Header map[string]string
	Body   string
}

// FakeProvider is an httptest-backed provider that replays scripted replies
// in order, repeating the last one when the script runs out. It captures
// every request body for assertions.
//
//	provider := testutil.NewFakeProvider(
//	    testutil.Reply{Status: 429, Body: `{"error": "try again in 0.05s"}`},
//	    testutil.Reply{Status: 200, Body: successBody},
//	)
//	defer provider.Close()
type FakeProvider struct {
	mu      sync.Mutex
	replies []Reply
	calls   int
	bodies  [][]byte
	headers []http.Header

	Server *httptest.Server
}

// NewFakeProvider starts a fake provider scripted with the given replies.
func NewFakeProvider(replies ...Reply) *FakeProvider {
	f := &FakeProvider{replies: replies}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	return f
}

func (f *FakeProvider) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.bodies = append(f.bodies, body)
	f.headers = append(f.headers, r.Header.Clone())
	idx := f.calls
	if idx >= len(f.replies) {
		idx = len(f.replies) - 1
	}
	f.calls++
	var reply Reply
	if idx >= 0 {
		reply = f.replies[idx]
	}
	f.mu.Unlock()

	for k, v := range reply.Header {
		w.Header().Set(k, v)
	}
	w.Header().Set("Content-Type", "application/json")
	status := reply.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write([]byte(reply.Body))
}

// URL returns the server's base URL.
func (f *FakeProvider) URL() string {
	return f.Server.URL
}

// Calls returns how many requests the provider has received.
func (f *FakeProvider) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// RequestBody returns the captured body of the i-th request (0-based), or
// nil if fewer requests were received.
func (f *FakeProvider) RequestBody(i int) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i < 0 || i >= len(f.bodies) {
		return nil
	}
	return f.bodies[i]
}

// RequestHeader returns the captured headers of the i-th request (0-based).
func (f *FakeProvider) RequestHeader(i int) http.Header {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i < 0 || i >= len(f.headers) {
		return nil
	}
	return f.headers[i]
}

// Close shuts the server down.
func (f *FakeProvider) Close() {
	f.Server.Close()
}
