package fixture

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/syssam/crudgen"
	"github.com/syssam/crudgen/dialect/sql"
)

// Reader holds a library card and may have been referred by another reader.
//
//crud:entity name=reader
//crud:relation name=card kind=has_one entity=Card column=reader_id
//crud:relation name=referrer kind=belongs_to entity=Reader column=referrer_id
//crud:hook create::one::pre=screenReader, create::one::body=enrollReader, create::one::post=welcomeReader
type Reader struct {
	ID         int64   `db:"id" json:"id" crud:"primary_key,sortable"`
	Name       string  `db:"name" json:"name" crud:"sortable,filterable,validate='required'"`
	Revision   int64   `db:"revision" json:"revision" crud:"exclude(create,update),on_create=nextRevision(),on_update=nextRevision()"`
	ReferrerID *int64  `db:"referrer_id" json:"referrer_id" crud:"filterable"`
	IssueCard  *Card   `db:"-" json:"issue_card,omitempty" crud:"non_db,use_target_models,exclude(update,list,one)"`
	Card       *Card   `db:"-" json:"card,omitempty" crud:"join(one,all,depth=1)"`
	Referrer   *Reader `db:"-" json:"referrer,omitempty" crud:"join(one,depth=3)"`
}

// Card is the library card of a reader.
//
//crud:entity name=card
type Card struct {
	ID       int64  `db:"id" json:"id" crud:"primary_key"`
	ReaderID int64  `db:"reader_id" json:"reader_id" crud:"filterable"`
	Number   string `db:"number" json:"number" crud:"filterable,exact,validate='required'"`
}

var revision atomic.Int64

// nextRevision stamps every write of a reader.
func nextRevision() int64 {
	return revision.Add(1)
}

// barred names are refused a card.
var barred = []string{"Mallory"}

func screenReader(_ context.Context, _ sql.Querier, in *ReaderCreate) error {
	if slices.Contains(barred, in.Name) {
		return crudgen.Invalidf("name", "%s is barred from the library", in.Name)
	}
	return nil
}

// enrollReader creates the reader and, when requested, issues its card in
// the same transaction.
func enrollReader(ctx context.Context, db sql.Querier, in *ReaderCreate) (*Reader, error) {
	var out *Reader
	err := sql.WithTx(ctx, db, func(tx sql.Querier) error {
		m, err := ReaderService{}.createOne(ctx, tx, in)
		if err != nil {
			return err
		}
		if in.IssueCard != nil {
			card := *in.IssueCard
			card.ReaderID = m.ID
			if _, err := (CardService{}).createOne(ctx, tx, &card); err != nil {
				return err
			}
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// welcomed lists the readers enrolled so far, in order.
var welcomed struct {
	sync.Mutex
	names []string
}

func welcomeReader(_ context.Context, _ sql.Querier, m *Reader) error {
	welcomed.Lock()
	defer welcomed.Unlock()
	welcomed.names = append(welcomed.names, m.Name)
	return nil
}
