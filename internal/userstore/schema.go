package userstore

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// UsersColumns holds the columns for the "users" table.
	UsersColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "username", Type: field.TypeString, Unique: true, Size: 50},
		{Name: "hashed_password", Type: field.TypeString, Size: 100},
		{Name: "firstname", Type: field.TypeString, Size: 50},
		{Name: "lastname", Type: field.TypeString, Size: 50},
		{Name: "phoneno", Type: field.TypeString, Size: 10},
	}
	// UsersTable holds the schema information for the "users" table.
	UsersTable = &schema.Table{
		Name:       "users",
		Columns:    UsersColumns,
		PrimaryKey: []*schema.Column{UsersColumns[0]},
		Indexes: []*schema.Index{
			{Name: "user_firstname", Unique: false, Columns: []*schema.Column{UsersColumns[3]}},
			{Name: "user_lastname", Unique: false, Columns: []*schema.Column{UsersColumns[4]}},
			{Name: "user_phoneno", Unique: false, Columns: []*schema.Column{UsersColumns[5]}},
		},
	}
	// Tables lists every table migrated at Open.
	Tables = []*schema.Table{UsersTable}
)

const (
	columnID             = "id"
	columnUsername       = "username"
	columnHashedPassword = "hashed_password"
	columnFirstName      = "firstname"
	columnLastName       = "lastname"
	columnPhoneNo        = "phoneno"
)

var userColumns = []string{columnID, columnUsername, columnHashedPassword, columnFirstName, columnLastName, columnPhoneNo}
