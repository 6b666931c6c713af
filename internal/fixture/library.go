// Package fixture holds a small library schema and its generated CRUD code.
// Its tests run the generated services end to end against an in-memory
// SQLite database.
package fixture

//go:generate go run ../../cmd/crudgen generate .

import "github.com/google/uuid"

// Author writes books.
//
//crud:entity name=author default_sort=name
//crud:relation name=books kind=has_many entity=Book column=author_id
type Author struct {
	ID    uuid.UUID `db:"id" json:"id" crud:"primary_key,exclude(create),on_create=uuid.New()"`
	Name  string    `db:"name" json:"name" crud:"sortable,filterable,fulltext,validate='required,max=100'"`
	Bio   *string   `db:"bio" json:"bio"`
	Books []Book    `db:"-" json:"books" crud:"join(one,depth=2)"`
}

//crud:entity name=book
//crud:relation name=author kind=belongs_to entity=Author column=author_id
type Book struct {
	ID       int64     `db:"id" json:"id" crud:"primary_key,sortable"`
	Title    string    `db:"title" json:"title" crud:"sortable,filterable,validate='required'"`
	AuthorID uuid.UUID `db:"author_id" json:"author_id" crud:"filterable,exact"`
	Author   *Author   `db:"-" json:"author,omitempty" crud:"join(one,all,depth=1)"`
}

// Schema creates the tables of the library.
const Schema = `
CREATE TABLE authors (
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	bio  TEXT
);
CREATE TABLE books (
	id        INTEGER PRIMARY KEY,
	title     TEXT NOT NULL,
	author_id TEXT NOT NULL REFERENCES authors (id)
);
CREATE TABLE readers (
	id          INTEGER PRIMARY KEY,
	name        TEXT NOT NULL,
	revision    INTEGER NOT NULL,
	referrer_id INTEGER REFERENCES readers (id)
);
CREATE TABLE cards (
	id        INTEGER PRIMARY KEY,
	reader_id INTEGER NOT NULL UNIQUE REFERENCES readers (id),
	number    TEXT NOT NULL UNIQUE
);
`
