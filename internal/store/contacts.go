package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/leonardotrapani/flowwispr/internal/contacts"
)

// SaveContact upserts a contact by name: on conflict it overwrites
// everything but the ID, name and creation time.
func (s *Store) SaveContact(c contacts.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var lastContacted any
	if !c.LastContacted.IsZero() {
		lastContacted = c.LastContacted.UTC().Format(time.RFC3339)
	}

	_, err := s.db.Exec(
		`INSERT INTO contacts (id, name, organization, category, frequency, last_contacted, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		     organization = excluded.organization,
		     category = excluded.category,
		     frequency = excluded.frequency,
		     last_contacted = excluded.last_contacted,
		     updated_at = excluded.updated_at`,
		c.ID, c.Name, nullString(c.Organization), string(c.Category), c.Frequency,
		lastContacted, c.CreatedAt.UTC().Format(time.RFC3339), c.UpdatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// GetContactByName returns the stored contact with the given name, if any.
func (s *Store) GetContactByName(name string) (contacts.Contact, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRow(
		`SELECT id, name, organization, category, frequency, last_contacted, created_at, updated_at
		 FROM contacts WHERE name = ?`,
		name,
	)
	c, err := scanContactRows(row)
	if errors.Is(err, sql.ErrNoRows) {
		return contacts.Contact{}, false, nil
	}
	if err != nil {
		return contacts.Contact{}, false, err
	}
	return c, true, nil
}

// GetAllContacts returns every stored contact, ordered by descending frequency.
func (s *Store) GetAllContacts() ([]contacts.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(
		`SELECT id, name, organization, category, frequency, last_contacted, created_at, updated_at
		 FROM contacts ORDER BY frequency DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []contacts.Contact
	for rows.Next() {
		c, err := scanContactRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type scannable interface {
	Scan(dest ...any) error
}

func scanContactRows(row scannable) (contacts.Contact, error) {
	var c contacts.Contact
	var organization, lastContacted *string
	var category, createdAt, updatedAt string
	if err := row.Scan(&c.ID, &c.Name, &organization, &category, &c.Frequency, &lastContacted, &createdAt, &updatedAt); err != nil {
		return contacts.Contact{}, err
	}
	c.Category = contacts.Category(category)
	if organization != nil {
		c.Organization = *organization
	}
	if lastContacted != nil {
		c.LastContacted = parseTime(*lastContacted)
	}
	c.CreatedAt = parseTime(createdAt)
	c.UpdatedAt = parseTime(updatedAt)
	return c, nil
}
