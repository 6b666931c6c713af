package shop

import (
	"context"
	"errors"
	"time"

	"github.com/syssam/crudgen/dialect/sql"
)

// Customer places orders.
//
//crud:entity name=customer
//crud:relation name=orders kind=has_many entity=Order column=customer_id
//crud:hook create::one::pre=checkCustomer
type Customer struct {
	ID        int64     `db:"id" json:"id" crud:"primary_key,sortable,exclude(create)"`
	Name      string    `db:"name" json:"name" crud:"sortable,filterable,validate='required'"`
	CreatedAt time.Time `db:"created_at" json:"created_at" crud:"exclude(create,update),on_create=time.Now"`
	Orders    []Order   `db:"-" json:"orders" crud:"join(one,depth=1)"`
}

//crud:entity
type Order struct {
	ID         int64 `db:"id" json:"id" crud:"primary_key"`
	CustomerID int64 `db:"customer_id" json:"customer_id" crud:"filterable"`
	Total      int64 `db:"total" json:"total" crud:"sortable"`
}

func checkCustomer(_ context.Context, _ sql.Querier, in *CustomerCreate) error {
	if in.Name == "" {
		return errors.New("customer needs a name")
	}
	return nil
}
