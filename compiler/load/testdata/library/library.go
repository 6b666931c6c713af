package library

import (
	"context"
	stdtime "time"
)

// Shelf is a bookcase.
//
//crud:entity name=shelf description='Shelves in the reading room'
//crud:relation name=books kind=has_many entity=Volume column=shelf_id
//crud:hook create::one::pre=checkShelf
type Shelf struct {
	ID        int64          `db:"id" json:"id" crud:"primary_key,sortable"`
	Label     string         `db:"label" json:"label" crud:"filterable"`
	Note      *string        `db:"note" json:"note"`
	CreatedAt stdtime.Time   `db:"created_at" json:"created_at" crud:"exclude(create,update),on_create=stdtime.Now"`
	Books     []Volume       `db:"-" json:"books" crud:"non_db,join(one,depth=1)"`
	Tags      map[string]any `db:"-" json:"-"`
	internal  int
}

//crud:entity
type Volume struct {
	ID      int64 `db:"id" crud:"primary_key"`
	ShelfID int64 `db:"shelf_id"`
}

// Plain is not an entity.
type Plain struct {
	Name string
}

// checkShelf takes the create model written by the generator, which does
// not exist yet when the package is loaded.
func checkShelf(ctx context.Context, _ any, in *ShelfCreate) error {
	_ = ctx
	_ = in
	return nil
}

func defaultLabel() string { return "new" }
