package models

import (
	"github.com/uptrace/bun"
)

// Book is a row of the books table. The column names keep their original
// capitalization, which is also what clients see in JSON.
type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID        int    `bun:"id,pk,autoincrement" json:"id"`
	Name      string `bun:"Name,notnull" json:"Name"`
	Author    string `bun:"Author,notnull" json:"Author"`
	Publisher string `bun:"Publisher,notnull" json:"Publisher"`
}
