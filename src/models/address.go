package models

type Address struct {
	ID      int    `db:"id" json:"id"`
	Street  string `db:"street" json:"street"`
	State   string `db:"state" json:"state"`
	Zipcode string `db:"zipcode" json:"zipcode"`
}
