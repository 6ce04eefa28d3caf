// Package apitest runs the API on the in-memory store with scripted AI
// responses, for tests that need a live server.
package apitest

import (
	"context"
	"net"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/david/studio-desk/internal/ai"
	"github.com/david/studio-desk/internal/api"
	"github.com/david/studio-desk/internal/db"
	"github.com/david/studio-desk/internal/ingest"
	"github.com/david/studio-desk/internal/studio"
)

// StubAI answers extraction and critique calls from fixed data.
type StubAI struct {
	mu            sync.Mutex
	Opportunities []ai.ExtractedOpportunity
	Feedback      string
	Err           error
	Texts         []string
}

func (s *StubAI) ExtractOpportunities(_ context.Context, text string) ([]ai.ExtractedOpportunity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Texts = append(s.Texts, text)
	if s.Err != nil {
		return nil, s.Err
	}
	return append([]ai.ExtractedOpportunity(nil), s.Opportunities...), nil
}

func (s *StubAI) CritiqueSection(_ context.Context, title, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return "", s.Err
	}
	if s.Feedback != "" {
		return s.Feedback, nil
	}
	return "- Sharpen the lede of " + title, nil
}

// SetOpportunities replaces the candidates returned by the next extraction.
func (s *StubAI) SetOpportunities(items ...ai.ExtractedOpportunity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Opportunities = items
}

// SetErr makes every later AI call fail with err. Nil restores normal replies.
func (s *StubAI) SetErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Err = err
}

// Prompts returns the texts sent for extraction so far.
func (s *StubAI) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.Texts...)
}

// StubFetcher serves pages from memory keyed by URL.
type StubFetcher struct {
	mu    sync.Mutex
	pages map[string]*ingest.FetchedDocument
}

// AddPage serves an HTML page with status 200 at url.
func (f *StubFetcher) AddPage(url, html string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[url] = &ingest.FetchedDocument{
		URL:         url,
		StatusCode:  200,
		ContentType: "text/html; charset=utf-8",
		Body:        []byte(html),
	}
}

func (f *StubFetcher) Fetch(_ context.Context, url string) (*ingest.FetchedDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if doc, ok := f.pages[url]; ok {
		return doc, nil
	}
	return &ingest.FetchedDocument{URL: url, StatusCode: 404}, nil
}

type Env struct {
	Server  *httptest.Server
	API     *api.Server
	Store   *db.MemoryStore
	AI      *StubAI
	Fetcher *StubFetcher
}

// URL is the API base including the version prefix.
func (e *Env) URL() string {
	return e.Server.URL + "/api/v1"
}

// New starts a server that is closed when the test ends. Every host resolves
// to a public documentation address so import-from-URL can be exercised.
func New(t testing.TB) *Env {
	t.Helper()

	store := db.NewMemoryStore()
	stub := &StubAI{}
	fetcher := &StubFetcher{pages: map[string]*ingest.FetchedDocument{}}
	svc := studio.NewService(store, ingest.NewPipeline(store, stub, fetcher), stub)

	srv := api.NewServer(svc, api.Options{
		MaxUploadBytes: 1 << 20,
		LookupIP: func(string) ([]net.IP, error) {
			return []net.IP{net.ParseIP("93.184.216.34")}, nil
		},
	})
	ts := httptest.NewServer(srv.Echo)
	t.Cleanup(ts.Close)

	return &Env{Server: ts, API: srv, Store: store, AI: stub, Fetcher: fetcher}
}
