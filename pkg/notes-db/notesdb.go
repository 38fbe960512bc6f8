// Package notesdb is the sqlite persistence layer for notes-web. The
// schema lives in embedded goose migrations and is applied on open.
package notesdb

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"github.com/mrshanahan/notes-web/pkg/notes"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Initialize opens the sqlite database at path (creating it if needed),
// verifies the connection and applies any pending migrations.
func Initialize(path string) (*sql.DB, error) {
	return open("file:" + path + "?_foreign_keys=on")
}

// InitializeInMemory opens a uniquely-named shared-cache in-memory
// database. Each call yields a fully isolated database that lives for
// as long as the returned handle is open.
func InitializeInMemory() (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	return open(dsn)
}

func open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open notes db: %w", err)
	}

	// Keep at least one connection alive; an in-memory database is
	// dropped when its last connection closes.
	db.SetMaxIdleConns(2)

	if err := retry.Do(
		db.Ping,
		retry.Attempts(5),
		retry.Delay(300*time.Millisecond),
	); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping notes db: %w", err)
	}

	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("sqlite3"); err != nil {
		db.Close()
		return nil, err
	}
	if err := goose.Up(db, "migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate notes db: %w", err)
	}

	return db, nil
}

// IsUniqueViolation reports whether err is a sqlite UNIQUE constraint
// failure. It is the backstop behind the form-level uniqueness checks.
func IsUniqueViolation(err error) bool {
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		return serr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

// Notes

func CreateNote(db *sql.DB, authorID int64, title, text, slug string) (*notes.Note, error) {
	stmt, err := db.Prepare(`
		INSERT INTO notes (author_id, title, text, slug, created_on, updated_on)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	now := formatTime(time.Now().UTC())
	result, err := stmt.Exec(authorID, title, text, slug, now, now)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return GetNote(db, id)
}

// GetNote returns the note with the given id, or nil if there is none.
func GetNote(db *sql.DB, id int64) (*notes.Note, error) {
	stmt, err := db.Prepare(selectNote + " WHERE id = ?")
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	note, err := scanNoteRow(stmt.QueryRow(id))
	if err != nil && errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return note, nil
}

// GetNoteBySlugForAuthor returns the note with the given slug only if
// it belongs to authorID; any other user's note is invisible here,
// which is what turns a non-owner request into a 404.
func GetNoteBySlugForAuthor(db *sql.DB, slug string, authorID int64) (*notes.Note, error) {
	stmt, err := db.Prepare(selectNote + " WHERE slug = ? AND author_id = ?")
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	note, err := scanNoteRow(stmt.QueryRow(slug, authorID))
	if err != nil && errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return note, nil
}

func GetNotesByAuthor(db *sql.DB, authorID int64) ([]*notes.Note, error) {
	stmt, err := db.Prepare(selectNote + " WHERE author_id = ? ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	rows, err := stmt.Query(authorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []*notes.Note{}
	for rows.Next() {
		note, err := scanNoteRows(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, note)
	}
	return result, rows.Err()
}

// SlugExists reports whether any note other than excludeID already
// uses slug. Pass excludeID 0 when creating.
func SlugExists(db *sql.DB, slug string, excludeID int64) (bool, error) {
	stmt, err := db.Prepare("SELECT COUNT(*) FROM notes WHERE slug = ? AND id != ?")
	if err != nil {
		return false, err
	}
	defer stmt.Close()

	var count int
	if err := stmt.QueryRow(slug, excludeID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func UpdateNote(db *sql.DB, id int64, title, text, slug string) error {
	stmt, err := db.Prepare(`
		UPDATE notes SET title = ?, text = ?, slug = ?, updated_on = ?
		WHERE id = ?`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.Exec(title, text, slug, formatTime(time.Now().UTC()), id)
	return err
}

func DeleteNote(db *sql.DB, id int64) error {
	stmt, err := db.Prepare("DELETE FROM notes WHERE id = ?")
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.Exec(id)
	return err
}

func CountNotes(db *sql.DB) (int, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM notes").Scan(&count)
	return count, err
}

// Private

const selectNote = "SELECT id, author_id, title, text, slug, created_on, updated_on FROM notes"

func scanNoteRow(row *sql.Row) (*notes.Note, error) {
	note := &notes.Note{}
	var createdOn, updatedOn string
	err := row.Scan(&note.ID, &note.AuthorID, &note.Title, &note.Text, &note.Slug, &createdOn, &updatedOn)
	if err != nil {
		return nil, err
	}
	return note, parseNoteTimes(note, createdOn, updatedOn)
}

func scanNoteRows(rows *sql.Rows) (*notes.Note, error) {
	note := &notes.Note{}
	var createdOn, updatedOn string
	err := rows.Scan(&note.ID, &note.AuthorID, &note.Title, &note.Text, &note.Slug, &createdOn, &updatedOn)
	if err != nil {
		return nil, err
	}
	return note, parseNoteTimes(note, createdOn, updatedOn)
}

func parseNoteTimes(note *notes.Note, createdOn, updatedOn string) error {
	var err error
	note.CreatedOn, err = parseTime(createdOn)
	if err != nil {
		return err
	}
	note.UpdatedOn, err = parseTime(updatedOn)
	return err
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
