package upc

// Item is one product returned by the upstream lookup service.
type Item struct {
	EAN         string   `json:"ean"`
	UPC         string   `json:"upc,omitempty"`
	Title       string   `json:"title"`
	Brand       string   `json:"brand"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Images      []string `json:"images,omitempty"`
}

// LookupResponse mirrors the upstream response body.
type LookupResponse struct {
	Code    string `json:"code"`
	Total   int    `json:"total"`
	Message string `json:"message,omitempty"`
	Items   []Item `json:"items"`
}

// RateLimit carries the upstream rate-limit headers so they can be
// forwarded to the browser.
type RateLimit struct {
	Limit     string
	Remaining string
	Reset     string
}
