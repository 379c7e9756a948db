package model

// Defaults reported for fields absent from a stored record.
const (
	DefaultTitle         = "No Title"
	DefaultPublishedYear = "N/A"
	DefaultAuthor        = "No Author"
)

// Book represents a book record in the library collection.
// Author holds the hex form of an author identifier; it is not checked against an author store.
// PublishedYear is free text and is never validated as a number.
type Book struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	PublishedYear string `json:"published_year"`
	Author        string `json:"author"`
}

// OrDefault returns v when the stored field was present, def otherwise.
// A present but empty value is kept as is.
func OrDefault(v string, present bool, def string) string {
	if !present {
		return def
	}
	return v
}
