package watch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// configServer serves a mutable configuration document over HTTP.
type configServer struct {
	mu  sync.Mutex
	doc string
}

func (c *configServer) set(doc string) {
	c.mu.Lock()
	c.doc = doc
	c.mu.Unlock()
}

func (c *configServer) handler(w http.ResponseWriter, r *http.Request) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = w.Write([]byte(c.doc))
}

func TestHTTPSource_InitialFetch(t *testing.T) {
	cs := &configServer{doc: fileDocA}
	server := httptest.NewServer(http.HandlerFunc(cs.handler))
	defer server.Close()

	src := NewHTTP(server.URL)
	src.Logger = testLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := src.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	select {
	case ev := <-events:
		if ev.Err != nil || len(ev.Snapshot) != 1 || ev.Snapshot[0].Path != "https://a.test/h" {
			t.Errorf("unexpected initial event: %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("initial snapshot never delivered")
	}
}

func TestHTTPSource_DeliversOnChange(t *testing.T) {
	cs := &configServer{doc: fileDocA}
	server := httptest.NewServer(http.HandlerFunc(cs.handler))
	defer server.Close()

	src := NewHTTP(server.URL)
	src.PollInterval = 20 * time.Millisecond
	src.Logger = testLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := src.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	<-events // initial snapshot

	cs.set(fileDocB)

	select {
	case ev := <-events:
		if ev.Err != nil || ev.Snapshot[0].Path != "https://b.test/h" {
			t.Errorf("unexpected change event: %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("change never delivered")
	}
}

func TestHTTPSource_IdenticalBytesSuppressed(t *testing.T) {
	cs := &configServer{doc: fileDocA}
	server := httptest.NewServer(http.HandlerFunc(cs.handler))
	defer server.Close()

	src := NewHTTP(server.URL)
	src.PollInterval = 10 * time.Millisecond
	src.Logger = testLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := src.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	<-events // initial snapshot

	// document never changes; several polls must deliver nothing
	select {
	case ev := <-events:
		t.Errorf("unexpected event for identical document: %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHTTPSource_SendsConfiguredHeader(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(fileDocA))
	}))
	defer server.Close()

	src := NewHTTP(server.URL)
	src.Header = http.Header{"Authorization": []string{"Bearer token"}}
	src.Logger = testLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := src.Watch(ctx); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	if gotAuth != "Bearer token" {
		t.Errorf("Authorization = %q, want the configured header", gotAuth)
	}
}

func TestHTTPSource_UnreachableServerFailsWatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	src := NewHTTP(url)
	src.Logger = testLogger()

	if _, err := src.Watch(context.Background()); err == nil {
		t.Error("expected Watch to fail for an unreachable server")
	}
}

func TestHTTPSource_NonOKStatusFailsWatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	src := NewHTTP(server.URL)
	src.Logger = testLogger()

	if _, err := src.Watch(context.Background()); err == nil {
		t.Error("expected Watch to fail for a 404 document")
	}
}
