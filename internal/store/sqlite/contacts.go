// SPDX-License-Identifier: MIT

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"contactd/internal/store"
)

const contactColumns = "id, firstname, lastname, email, phone_number, date_of_birth, relation, created_at, user_id"

func scanContact(row interface{ Scan(...any) error }) (*store.Contact, error) {
	var c store.Contact
	var dob, createdAt string
	if err := row.Scan(&c.ID, &c.Firstname, &c.Lastname, &c.Email, &c.PhoneNumber, &dob, &c.Relation, &createdAt, &c.UserID); err != nil {
		return nil, err
	}
	c.DateOfBirth = parseDate(dob)
	c.CreatedAt = parseTimestamp(createdAt)
	return &c, nil
}

func collectContacts(rows *sql.Rows) ([]store.Contact, error) {
	defer rows.Close()
	out := []store.Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// ListContacts returns the user's contacts with offset/limit pagination.
func (s *Store) ListContacts(ctx context.Context, userID int64, skip, limit int) ([]store.Contact, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+contactColumns+" FROM contacts WHERE user_id = ? ORDER BY id LIMIT ? OFFSET ?",
		userID, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list contacts: %w", err)
	}
	return collectContacts(rows)
}

// GetContact returns one contact, scoped to the owning user.
func (s *Store) GetContact(ctx context.Context, userID, contactID int64) (*store.Contact, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+contactColumns+" FROM contacts WHERE id = ? AND user_id = ?",
		contactID, userID)
	c, err := scanContact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get contact: %w", err)
	}
	return c, nil
}

// CreateContact inserts a contact for contact.UserID.
func (s *Store) CreateContact(ctx context.Context, contact *store.Contact) (*store.Contact, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO contacts (firstname, lastname, email, phone_number, date_of_birth, relation, user_id) VALUES (?, ?, ?, ?, ?, ?, ?)",
		contact.Firstname, contact.Lastname, contact.Email, contact.PhoneNumber,
		contact.DateOfBirth.Format(dateLayout), contact.Relation, contact.UserID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: create contact: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("sqlite: create contact id: %w", err)
	}
	return s.GetContact(ctx, contact.UserID, id)
}

// UpdateContact replaces every mutable field, scoped to the owning user.
func (s *Store) UpdateContact(ctx context.Context, userID, contactID int64, contact *store.Contact) (*store.Contact, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE contacts SET firstname = ?, lastname = ?, email = ?, phone_number = ?, date_of_birth = ?, relation = ? WHERE id = ? AND user_id = ?",
		contact.Firstname, contact.Lastname, contact.Email, contact.PhoneNumber,
		contact.DateOfBirth.Format(dateLayout), contact.Relation, contactID, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: update contact: %w", err)
	}
	if err := requireRowAffected(res); err != nil {
		return nil, err
	}
	return s.GetContact(ctx, userID, contactID)
}

// DeleteContact removes the contact and returns its last state.
func (s *Store) DeleteContact(ctx context.Context, userID, contactID int64) (*store.Contact, error) {
	c, err := s.GetContact(ctx, userID, contactID)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM contacts WHERE id = ? AND user_id = ?", contactID, userID); err != nil {
		return nil, fmt.Errorf("sqlite: delete contact: %w", err)
	}
	return c, nil
}

// FindContacts searches with case-insensitive substring matches.
func (s *Store) FindContacts(ctx context.Context, userID int64, filter store.ContactFilter) ([]store.Contact, error) {
	query := "SELECT " + contactColumns + " FROM contacts WHERE user_id = ?"
	args := []any{userID}
	if filter.Firstname != "" {
		query += " AND firstname LIKE ? COLLATE NOCASE"
		args = append(args, "%"+filter.Firstname+"%")
	}
	if filter.Lastname != "" {
		query += " AND lastname LIKE ? COLLATE NOCASE"
		args = append(args, "%"+filter.Lastname+"%")
	}
	if filter.Email != "" {
		query += " AND email LIKE ? COLLATE NOCASE"
		args = append(args, "%"+filter.Email+"%")
	}
	query += " ORDER BY id"
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: find contacts: %w", err)
	}
	return collectContacts(rows)
}

// UpcomingBirthdays filters in Go after loading the user's contacts so the
// year-normalization rule stays in one place (store.BirthdayWithin).
func (s *Store) UpcomingBirthdays(ctx context.Context, userID int64, today time.Time, days int) ([]store.Contact, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+contactColumns+" FROM contacts WHERE user_id = ? ORDER BY id", userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: birthdays: %w", err)
	}
	all, err := collectContacts(rows)
	if err != nil {
		return nil, err
	}
	out := []store.Contact{}
	for _, c := range all {
		if store.BirthdayWithin(c.DateOfBirth, today, days) {
			out = append(out, c)
		}
	}
	return out, nil
}
