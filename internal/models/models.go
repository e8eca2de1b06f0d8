package models

// Recipe represents a recipe in the collection
type Recipe struct {
	ID           string
	Name         string
	Ingredients  []string
	Instructions string
	Tags         []string
}

// FAQEntry represents a cached cooking question with its generated answer
type FAQEntry struct {
	Question   string
	Answer     string
	QueryCount uint64
}
