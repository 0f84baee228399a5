package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eduvantage/internal/model"
	"eduvantage/internal/search"
)

type fakeStore struct {
	pages     []model.SitePage
	matchErr  error
	existing  map[string]bool
	existsErr error
	insertErr error
	inserted  []model.SitePage
	names     []string
	namesErr  error

	lastEmbedding []float32
	lastCount     int
	lastFilter    string
}

func (f *fakeStore) MatchSitePages(_ context.Context, queryEmbedding []float32, matchCount int, universityName string) ([]model.SitePage, error) {
	f.lastEmbedding = queryEmbedding
	f.lastCount = matchCount
	f.lastFilter = universityName
	if f.matchErr != nil {
		return nil, f.matchErr
	}
	return f.pages, nil
}

func (f *fakeStore) PageExistsByURL(_ context.Context, pageURL string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return f.existing[pageURL], nil
}

func (f *fakeStore) InsertPage(_ context.Context, page model.SitePage) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	if f.existing == nil {
		f.existing = make(map[string]bool)
	}
	f.existing[page.URL] = true
	f.inserted = append(f.inserted, page)
	return nil
}

func (f *fakeStore) ListUniversityNames(_ context.Context) ([]string, error) {
	return f.names, f.namesErr
}

type fakeEmbedder struct {
	vec    []float32
	err    error
	inputs []string
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.inputs = append(f.inputs, text)
	if f.err != nil {
		return nil, f.err
	}
	return f.vec, nil
}

type fakeSearcher struct {
	resp  *search.SearchResponse
	err   error
	calls int
}

func (f *fakeSearcher) Search(_ context.Context, _ string) (*search.SearchResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func newTestService(store *fakeStore, embedder *fakeEmbedder, searcher *fakeSearcher) *RetrievalService {
	if embedder == nil {
		embedder = &fakeEmbedder{vec: []float32{0.1, 0.2}}
	}
	if searcher == nil {
		searcher = &fakeSearcher{resp: &search.SearchResponse{}}
	}
	return NewRetrievalService(store, embedder, searcher, 1536)
}

func TestRetrieve_NoUniversityReturnsGuidance(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, nil, nil)

	out := svc.Retrieve(context.Background(), "What is the weather today")
	assert.Equal(t, MsgAskForUniversity, out)
	// The store is never touched without a resolved university.
	assert.Zero(t, store.lastCount)
}

func TestRetrieve_StoreErrorReturnsFixedString(t *testing.T) {
	store := &fakeStore{matchErr: errors.New("rpc down")}
	svc := newTestService(store, nil, nil)

	out := svc.Retrieve(context.Background(), "admissions at lums")
	assert.Equal(t, MsgStoreError, out)
}

func TestRetrieve_PassesFilterAndMatchCount(t *testing.T) {
	store := &fakeStore{pages: []model.SitePage{
		{Title: "LUMS", Summary: "s", Metadata: map[string]string{"university_name": "lums"}},
	}}
	svc := newTestService(store, nil, nil)

	svc.Retrieve(context.Background(), "admissions at lums")
	assert.Equal(t, 5, store.lastCount)
	assert.Equal(t, "lums", store.lastFilter)
}

func TestRetrieve_EmptyStoreDelegatesToFallback(t *testing.T) {
	store := &fakeStore{}
	searcher := &fakeSearcher{resp: &search.SearchResponse{
		Answer: "NUST was founded in 1991.",
		Results: []search.SearchResult{
			{URL: "https://example.org/nust", Title: "NUST", Content: "Full page text"},
		},
	}}
	svc := newTestService(store, nil, searcher)

	out := svc.Retrieve(context.Background(), "history of nust")
	assert.Equal(t, "NUST was founded in 1991.", out)
	assert.Equal(t, 1, searcher.calls)
}

func TestRetrieve_RefilterIsEnforced(t *testing.T) {
	// The store ignores its filter and returns chunks for another
	// university; the orchestrator must drop them all and fall back.
	store := &fakeStore{pages: []model.SitePage{
		{Title: "Oxford A", Summary: "s", Metadata: map[string]string{"university_name": "oxford"}},
		{Title: "No metadata"},
	}}
	searcher := &fakeSearcher{resp: &search.SearchResponse{Answer: "web answer"}}
	svc := newTestService(store, nil, searcher)

	out := svc.Retrieve(context.Background(), "courses at nust")
	assert.Equal(t, "web answer", out)
	assert.Equal(t, 1, searcher.calls)
}

func TestRetrieve_FormatsMatchingCandidates(t *testing.T) {
	store := &fakeStore{pages: []model.SitePage{
		{Title: "Admissions", Summary: "How to apply", Metadata: map[string]string{"university_name": "nust"}},
		{Title: "Fees", Summary: "What it costs", Metadata: map[string]string{"university_name": "NUST"}},
		{Title: "Oxford page", Summary: "dropped", Metadata: map[string]string{"university_name": "oxford"}},
	}}
	searcher := &fakeSearcher{}
	svc := newTestService(store, nil, searcher)

	out := svc.Retrieve(context.Background(), "tell me about nust")
	sections := strings.Split(out, "\n\n---\n\n")
	require.Len(t, sections, 2)
	assert.Equal(t, "# Admissions\n\nHow to apply", sections[0])
	assert.Equal(t, "# Fees\n\nWhat it costs", sections[1])
	assert.Zero(t, searcher.calls)
}

func TestRetrieve_TruncatesContentWithoutSummary(t *testing.T) {
	longContent := strings.Repeat("x", 400)
	store := &fakeStore{pages: []model.SitePage{
		{Title: "Campus", Content: longContent, Metadata: map[string]string{"university_name": "giki"}},
	}}
	svc := newTestService(store, nil, nil)

	out := svc.Retrieve(context.Background(), "campus life at giki")
	assert.Equal(t, "# Campus\n\n"+strings.Repeat("x", 300)+"...", out)
}

func TestRetrieve_EndToEndNUST(t *testing.T) {
	store := &fakeStore{pages: []model.SitePage{
		{
			Title:    "NUST Admissions",
			Summary:  "Apply online before July.",
			Metadata: map[string]string{"university_name": "nust"},
		},
	}}
	svc := newTestService(store, nil, nil)

	out := svc.Retrieve(context.Background(), "Tell me about admissions at NUST")
	assert.Equal(t, "# NUST Admissions\n\nApply online before July.", out)
}

func TestFallback_SearchErrorReturnsFixedString(t *testing.T) {
	store := &fakeStore{}
	searcher := &fakeSearcher{err: errors.New("network")}
	svc := newTestService(store, nil, searcher)

	out := svc.Retrieve(context.Background(), "latest news about caltech")
	assert.Equal(t, MsgWebSearchError, out)
}

func TestFallback_DefaultsWhenNoResults(t *testing.T) {
	store := &fakeStore{}
	searcher := &fakeSearcher{resp: &search.SearchResponse{Answer: "Only an answer"}}
	svc := newTestService(store, nil, searcher)

	out := svc.Retrieve(context.Background(), "latest news about caltech")
	assert.Equal(t, "Only an answer", out)

	require.Len(t, store.inserted, 1)
	cached := store.inserted[0]
	assert.Equal(t, "N/A", cached.URL)
	assert.Equal(t, "N/A", cached.Title)
	assert.Equal(t, "Only an answer", cached.Content)
	assert.Equal(t, "Only an answer", cached.Summary)
	assert.Equal(t, 0, cached.ChunkNumber)
}

func TestFallback_NoAnswerSentinel(t *testing.T) {
	store := &fakeStore{}
	searcher := &fakeSearcher{resp: &search.SearchResponse{}}
	svc := newTestService(store, nil, searcher)

	out := svc.Retrieve(context.Background(), "latest news about caltech")
	assert.Equal(t, MsgNoAnswer, out)
}

func TestFallback_EmbedsAnswerNotQuery(t *testing.T) {
	store := &fakeStore{}
	embedder := &fakeEmbedder{vec: []float32{1}}
	searcher := &fakeSearcher{resp: &search.SearchResponse{Answer: "the answer"}}
	svc := newTestService(store, embedder, searcher)

	svc.Retrieve(context.Background(), "news about iba")
	require.Len(t, embedder.inputs, 2)
	assert.Equal(t, "news about iba", embedder.inputs[0])
	assert.Equal(t, "the answer", embedder.inputs[1])
}

func TestCacheWebAnswer_IdempotentByURL(t *testing.T) {
	store := &fakeStore{}
	searcher := &fakeSearcher{resp: &search.SearchResponse{
		Answer:  "same answer",
		Results: []search.SearchResult{{URL: "https://example.org/p", Title: "P", Content: "c"}},
	}}
	svc := newTestService(store, nil, searcher)

	svc.Retrieve(context.Background(), "news about iba")
	svc.Retrieve(context.Background(), "news about iba")

	assert.Len(t, store.inserted, 1)
}

func TestCacheWebAnswer_InsertFailureStillReturnsAnswer(t *testing.T) {
	store := &fakeStore{insertErr: errors.New("write denied")}
	searcher := &fakeSearcher{resp: &search.SearchResponse{Answer: "still useful"}}
	svc := newTestService(store, nil, searcher)

	out := svc.Retrieve(context.Background(), "news about iba")
	assert.Equal(t, "still useful", out)
}

func TestEmbedOrZero_DegradesToZeroVector(t *testing.T) {
	store := &fakeStore{pages: []model.SitePage{
		{Title: "T", Summary: "s", Metadata: map[string]string{"university_name": "mit"}},
	}}
	embedder := &fakeEmbedder{err: errors.New("provider down")}
	svc := newTestService(store, embedder, nil)

	out := svc.Retrieve(context.Background(), "research at mit")
	assert.Equal(t, "# T\n\ns", out)

	require.Len(t, store.lastEmbedding, 1536)
	for _, v := range store.lastEmbedding {
		if v != 0 {
			t.Fatalf("expected all-zero vector, found %v", v)
		}
	}
}

func TestListUniversities_NormalisesAndSorts(t *testing.T) {
	store := &fakeStore{names: []string{" nust ", "LUMS", "nust", "", "giki"}}
	svc := newTestService(store, nil, nil)

	out := svc.ListUniversities(context.Background())
	assert.Equal(t, []string{"GIKI", "LUMS", "NUST"}, out)
}

func TestListUniversities_EmptyOnStoreFailure(t *testing.T) {
	store := &fakeStore{namesErr: errors.New("boom")}
	svc := newTestService(store, nil, nil)

	out := svc.ListUniversities(context.Background())
	require.NotNil(t, out)
	assert.Empty(t, out)
}
