package app

import (
	"context"
	"log"
	"sort"
	"strings"

	"eduvantage/internal/model"
	"eduvantage/internal/search"
)

const (
	defaultEmbeddingDim = 1536
	matchCount          = 5
	contentPreviewRunes = 300
	sectionSeparator    = "\n\n---\n\n"
)

// Fixed user-facing strings. These are terminal responses, not errors; the
// HTTP layer returns them with a 200.
const (
	MsgAskForUniversity = "Please mention a specific university in your query (e.g., NUST, FAST, LUMS)."
	MsgStoreError       = "There was an error fetching data. Please try again."
	MsgWebSearchError   = "There was an error retrieving the latest web result. Please try again later."
	MsgNoAnswer         = "No answer found."

	notAvailable = "N/A"
)

// VectorStore is the external chunk store: similarity search plus the plain
// table access the cache populator needs.
type VectorStore interface {
	MatchSitePages(ctx context.Context, queryEmbedding []float32, matchCount int, universityName string) ([]model.SitePage, error)
	PageExistsByURL(ctx context.Context, pageURL string) (bool, error)
	InsertPage(ctx context.Context, page model.SitePage) error
	ListUniversityNames(ctx context.Context) ([]string, error)
}

// Embedder converts text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// WebSearcher is the live web-search provider used when local retrieval
// comes up empty.
type WebSearcher interface {
	Search(ctx context.Context, query string) (*search.SearchResponse, error)
}

// RetrievalService is the decision engine behind the retrieve_university_info
// tool: resolve the university, search the store, re-filter, fall back to web
// search, and cache the fallback result.
type RetrievalService struct {
	store        VectorStore
	embedder     Embedder
	searcher     WebSearcher
	embeddingDim int
}

func NewRetrievalService(store VectorStore, embedder Embedder, searcher WebSearcher, embeddingDim int) *RetrievalService {
	if embeddingDim <= 0 {
		embeddingDim = defaultEmbeddingDim
	}
	return &RetrievalService{
		store:        store,
		embedder:     embedder,
		searcher:     searcher,
		embeddingDim: embeddingDim,
	}
}

// Retrieve answers a university query from stored content, delegating to web
// search when nothing usable is stored. The returned string is always safe to
// show the user; failures become fixed apology strings here and never
// propagate.
func (s *RetrievalService) Retrieve(ctx context.Context, query string) string {
	embedding := s.embedOrZero(ctx, query)

	university, ok := ResolveUniversity(query)
	if !ok {
		return MsgAskForUniversity
	}

	pages, err := s.store.MatchSitePages(ctx, embedding, matchCount, university)
	if err != nil {
		log.Printf("retrieve university info failed: %v", err)
		return MsgStoreError
	}
	if len(pages) == 0 {
		log.Printf("no stored chunks for %q, falling back to web search", university)
		return s.webSearchFallback(ctx, query)
	}

	// The store's own filter is advisory; re-check ownership before
	// returning anything.
	filtered := make([]model.SitePage, 0, len(pages))
	for _, page := range pages {
		if strings.EqualFold(page.UniversityName(), university) {
			filtered = append(filtered, page)
		}
	}
	if len(filtered) == 0 {
		log.Printf("no chunks matched %q after filtering, falling back to web search", university)
		return s.webSearchFallback(ctx, query)
	}

	sections := make([]string, 0, len(filtered))
	for _, page := range filtered {
		sections = append(sections, formatSection(page))
	}
	return strings.Join(sections, sectionSeparator)
}

// ListUniversities returns all distinct university names present in the
// store, uppercased and sorted. Store failures yield an empty list.
func (s *RetrievalService) ListUniversities(ctx context.Context) []string {
	names, err := s.store.ListUniversityNames(ctx)
	if err != nil {
		log.Printf("list universities failed: %v", err)
		return []string{}
	}

	seen := make(map[string]struct{})
	universities := make([]string, 0, len(names))
	for _, name := range names {
		trimmed := strings.ToUpper(strings.TrimSpace(name))
		if trimmed == "" {
			continue
		}
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		universities = append(universities, trimmed)
	}
	sort.Strings(universities)
	return universities
}

// webSearchFallback asks the web-search provider, caches the result as a new
// chunk, and returns the synthesized answer.
func (s *RetrievalService) webSearchFallback(ctx context.Context, query string) string {
	resp, err := s.searcher.Search(ctx, query)
	if err != nil {
		log.Printf("web search failed: %v", err)
		return MsgWebSearchError
	}

	answer := resp.Answer
	if answer == "" {
		answer = MsgNoAnswer
	}

	pageURL, title, content := notAvailable, notAvailable, answer
	if len(resp.Results) > 0 {
		pageURL = resp.Results[0].URL
		title = resp.Results[0].Title
		content = resp.Results[0].Content
	}

	// The answer text, not the original query, is what gets embedded: the
	// cached chunk should be found by questions the answer covers.
	embedding := s.embedOrZero(ctx, answer)

	s.cacheWebAnswer(ctx, model.SitePage{
		URL:         pageURL,
		Title:       title,
		Content:     content,
		Summary:     answer,
		Embedding:   embedding,
		ChunkNumber: 0,
	})

	return answer
}

// cacheWebAnswer stores a web-search result for future retrieval, skipping
// URLs already present. Best effort: failures are logged, never surfaced.
// The existence check and the insert are separate calls, so two concurrent
// misses for the same URL can both insert.
func (s *RetrievalService) cacheWebAnswer(ctx context.Context, page model.SitePage) {
	exists, err := s.store.PageExistsByURL(ctx, page.URL)
	if err != nil {
		log.Printf("check cached page failed: %v", err)
		return
	}
	if exists {
		return
	}
	if err := s.store.InsertPage(ctx, page); err != nil {
		log.Printf("cache web answer failed: %v", err)
	}
}

// embedOrZero never fails: any provider error degrades to an all-zero vector.
// A zero vector is indistinguishable from a legitimate degenerate embedding.
func (s *RetrievalService) embedOrZero(ctx context.Context, text string) []float32 {
	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		log.Printf("get embedding failed: %v", err)
		return make([]float32, s.embeddingDim)
	}
	return vec
}

func formatSection(page model.SitePage) string {
	body := page.Summary
	if body == "" {
		body = truncateRunes(page.Content, contentPreviewRunes) + "..."
	}
	return "# " + page.Title + "\n\n" + body
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
