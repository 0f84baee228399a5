package model

// SitePage is a retrievable chunk of university content stored in Supabase.
// Rows come either from the crawling pipeline or from cached web-search
// answers (chunk_number 0).
type SitePage struct {
	ID          int64             `json:"id,omitempty"`
	URL         string            `json:"url"`
	Title       string            `json:"title"`
	Content     string            `json:"content"`
	Summary     string            `json:"summary,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Embedding   []float32         `json:"embedding,omitempty"`
	ChunkNumber int               `json:"chunk_number"`
}

// UniversityName returns the owning university from metadata, or "" when the
// chunk carries none.
func (p *SitePage) UniversityName() string {
	if p.Metadata == nil {
		return ""
	}
	return p.Metadata["university_name"]
}
