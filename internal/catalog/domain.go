// Package catalog serves the permission-gated product and post demo data.
package catalog

import "context"

// Product is a read-only catalogue item.
type Product struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
}

// Post is an editable article.
type Post struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Author  string `json:"author"`
}

// PostUpdate replaces the editable fields of a post.
type PostUpdate struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"required"`
	Author  string `json:"author" validate:"required,max=100"`
}

// Repository stores products and posts.
type Repository interface {
	ListProducts(ctx context.Context) ([]Product, error)
	DeletePost(ctx context.Context, id int) (Post, error)
	UpdatePost(ctx context.Context, id int, in PostUpdate) (Post, error)
}

// DefaultProducts is the initial product catalogue.
func DefaultProducts() []Product {
	return []Product{
		{ID: 1, Name: "Laptop", Price: 1000.0, Category: "Electronics"},
		{ID: 2, Name: "Book", Price: 20.0, Category: "Education"},
		{ID: 3, Name: "Phone", Price: 500.0, Category: "Electronics"},
		{ID: 4, Name: "Chair", Price: 150.0, Category: "Furniture"},
		{ID: 5, Name: "Notebook", Price: 5.0, Category: "Education"},
	}
}

// DefaultPosts is the initial set of posts.
func DefaultPosts() []Post {
	return []Post{
		{ID: 1, Title: "First Post", Content: "This is a sample post.", Author: "user1"},
		{ID: 2, Title: "Second Post", Content: "Another example.", Author: "admin"},
		{ID: 3, Title: "Third Post", Content: "Discussing tech trends.", Author: "user2"},
		{ID: 4, Title: "Fourth Post", Content: "A guide to productivity.", Author: "admin"},
		{ID: 5, Title: "Fifth Post", Content: "Random thoughts on life.", Author: "user1"},
	}
}
