package model

// SearchResult is the rendered outcome of a search, ready for the delivery
// layer. SearchID correlates a later "show more" interaction to this result.
type SearchResult struct {
	ParsedCriteria          *SearchCriteria `json:"parsed_criteria"`
	HasEvents               bool            `json:"has_events"`
	Message                 string          `json:"message"`
	MessageAfterShowingMore string          `json:"message_after_showing_more,omitempty"`
	AddShowMoreButton       bool            `json:"add_show_more_button"`
	SearchID                string          `json:"search_id"`
}
