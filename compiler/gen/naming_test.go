package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnake(t *testing.T) {
	tests := map[string]string{
		"Author":     "author",
		"AuthorID":   "author_id",
		"CreatedAt":  "created_at",
		"HTTPServer": "http_server",
		"ISBN13":     "isbn13",
		"Page2Count": "page2_count",
		"id":         "id",
	}
	for in, want := range tests {
		assert.Equal(t, want, snake(in), in)
	}
}

func TestPascal(t *testing.T) {
	assert.Equal(t, "BookTags", pascal("book_tags"))
	assert.Equal(t, "AuthorID", pascal("author_id"))
	assert.Equal(t, "Parent", pascal("parent"))
	assert.Equal(t, "BooksTitle", pascal("books.title"))
}

func TestPlural(t *testing.T) {
	assert.Equal(t, "authors", plural("author"))
	assert.Equal(t, "categories", plural("category"))
	assert.Equal(t, "people", plural("person"))
}

func TestReceiverAndLowerFirst(t *testing.T) {
	assert.Equal(t, "a", receiver("Author"))
	assert.Equal(t, "x", receiver(""))
	assert.Equal(t, "authorService", lowerFirst("AuthorService"))
	assert.Equal(t, "", lowerFirst(""))
}
