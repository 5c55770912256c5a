// Package email normalizes raw email records from the supported sources into
// one canonical shape.
package email

import (
	"errors"
	"fmt"
)

// Internal schema keys.
const (
	KeyAuthor  = "author"
	KeyTo      = "to"
	KeySubject = "subject"
	KeyThread  = "email_thread"
)

// Gmail schema keys. Casing is exact.
const (
	KeyFrom = "from"
	KeyBody = "body"
	KeyID   = "id"
)

var (
	internalKeys = []string{KeyAuthor, KeyTo, KeySubject, KeyThread}
	gmailKeys    = []string{KeyFrom, KeyTo, KeySubject, KeyBody, KeyID}
)

// ErrMissingField indicates a record lacks a key its schema requires.
var ErrMissingField = errors.New("missing required field")

// MissingFieldError names the absent key.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: %q", ErrMissingField, e.Field)
}

// Is reports whether target is ErrMissingField.
func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// Record is the canonical email shape. ID is empty for sources that do not
// carry one.
type Record struct {
	Author  string `json:"author" yaml:"author"`
	To      string `json:"to" yaml:"to"`
	Subject string `json:"subject" yaml:"subject"`
	Thread  string `json:"thread" yaml:"thread"`
	ID      string `json:"id,omitempty" yaml:"id,omitempty"`
}

// Internal returns the record in internal schema order.
func (r Record) Internal() (author, to, subject, thread string) {
	return r.Author, r.To, r.Subject, r.Thread
}

// Gmail returns the record in Gmail schema order, id last.
func (r Record) Gmail() (author, to, subject, thread, id string) {
	return r.Author, r.To, r.Subject, r.Thread, r.ID
}

// ParseInternal extracts author, to, subject and email_thread. Values are
// taken as-is.
func ParseInternal(record map[string]string) (Record, error) {
	if err := requireKeys(record, internalKeys); err != nil {
		return Record{}, err
	}

	return Record{
		Author:  record[KeyAuthor],
		To:      record[KeyTo],
		Subject: record[KeySubject],
		Thread:  record[KeyThread],
	}, nil
}

// ParseGmail extracts from, to, subject, body and id.
func ParseGmail(record map[string]string) (Record, error) {
	if err := requireKeys(record, gmailKeys); err != nil {
		return Record{}, err
	}

	return Record{
		Author:  record[KeyFrom],
		To:      record[KeyTo],
		Subject: record[KeySubject],
		Thread:  record[KeyBody],
		ID:      record[KeyID],
	}, nil
}

// requireKeys reports the first absent key in schema order.
func requireKeys(record map[string]string, keys []string) error {
	for _, k := range keys {
		if _, ok := record[k]; !ok {
			return &MissingFieldError{Field: k}
		}
	}
	return nil
}
