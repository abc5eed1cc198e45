package models

// User mirrors a row of the users table.
type User struct {
	ID             int
	Username       string
	HashedPassword string
	FirstName      string
	LastName       string
	PhoneNo        string
}

// NewUser carries the fields needed to register a user; Password is plain text
// and never stored.
type NewUser struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	PhoneNo   string
}
