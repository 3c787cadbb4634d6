package domain

import "time"

// User is the owner of transactions, a report setting and reports.
// Credentials live with the auth collaborator and are not modelled here.
type User struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
}
