package models

// Category groups posts by topic.
type Category struct {
	ID   string
	Name string
}
