package messages

import "time"

// Message is the stored record. ReadAt stays nil until the recipient marks
// the message read; once set it is never cleared.
type Message struct {
	ID           string     `json:"id"`
	FromUsername string     `json:"from_username"`
	ToUsername   string     `json:"to_username"`
	Body         string     `json:"body"`
	SentAt       time.Time  `json:"sent_at"`
	ReadAt       *time.Time `json:"read_at"`
}

// Participant is the reduced profile joined into message reads.
type Participant struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// Detail is a message joined with both participant profiles.
type Detail struct {
	ID       string      `json:"id"`
	Body     string      `json:"body"`
	SentAt   time.Time   `json:"sent_at"`
	ReadAt   *time.Time  `json:"read_at"`
	FromUser Participant `json:"from_user"`
	ToUser   Participant `json:"to_user"`
}

// VisibleTo reports whether username is a participant of the message.
// Participants are the only identities permitted to view it.
func (d *Detail) VisibleTo(username string) bool {
	return username == d.FromUser.Username || username == d.ToUser.Username
}

// Sent is a row of the sent listing, projected with the recipient's profile.
type Sent struct {
	ID     string      `json:"id"`
	Body   string      `json:"body"`
	SentAt time.Time   `json:"sent_at"`
	ReadAt *time.Time  `json:"read_at"`
	ToUser Participant `json:"to_user"`
}

// Received is a row of the inbox listing, projected with the sender's profile.
type Received struct {
	ID       string      `json:"id"`
	Body     string      `json:"body"`
	SentAt   time.Time   `json:"sent_at"`
	ReadAt   *time.Time  `json:"read_at"`
	FromUser Participant `json:"from_user"`
}

// ReadReceipt is the projection returned by MarkRead.
type ReadReceipt struct {
	ID     string    `json:"id"`
	ReadAt time.Time `json:"read_at"`
}
