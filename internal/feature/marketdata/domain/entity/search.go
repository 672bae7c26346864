package entity

// MaxSearchResults caps the number of matches returned by a symbol search.
const MaxSearchResults = 10

// SearchMatch is a single symbol search hit.
type SearchMatch struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange"`
	Type     string `json:"type"`
	Sector   string `json:"sector"`
	Industry string `json:"industry"`
}

// SearchResult is the response of a symbol search.
type SearchResult struct {
	Query   string        `json:"query"`
	Results []SearchMatch `json:"results"`
	Count   int           `json:"count"`
	Error   string        `json:"error,omitempty"`
}
