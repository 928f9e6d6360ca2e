package models

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
)

type Source string

const (
	SourceWebsite Source = "website"
	SourceBeta    Source = "beta"
)

// Subscriber is one row of the subscribers table.
type Subscriber struct {
	ID               int64
	Email            string
	DogName          *string
	Status           Status
	ConfirmToken     *string
	ConsentTimestamp time.Time
	ConsentText      string
	IPAddress        string
	Source           Source
	ConfirmedAt      *time.Time
	UpdatedAt        time.Time
	CreatedAt        time.Time
}

// PendingSubscriber holds the fields written when a new email signs up.
type PendingSubscriber struct {
	Email            string
	DogName          *string
	ConfirmToken     string
	ConsentTimestamp time.Time
	ConsentText      string
	IPAddress        string
	Source           Source
}

// ConfirmedSubscriber is a row of the admin export.
type ConfirmedSubscriber struct {
	Email            string
	DogName          *string
	Source           Source
	ConsentTimestamp time.Time
	ConfirmedAt      time.Time
}

type Stats struct {
	Pending        int64 `json:"pending"`
	Confirmed      int64 `json:"confirmed"`
	ConfirmedToday int64 `json:"confirmedToday"`
}
