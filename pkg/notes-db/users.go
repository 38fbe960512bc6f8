package notesdb

import (
	"database/sql"
	"errors"
	"time"

	"github.com/mrshanahan/notes-web/pkg/notes"
)

// CreateUser inserts a user with an already-hashed password. A duplicate
// username surfaces as a UNIQUE violation (see IsUniqueViolation).
func CreateUser(db *sql.DB, username, passwordHash string) (*notes.User, error) {
	stmt, err := db.Prepare(`
		INSERT INTO users (username, password_hash, created_on)
		VALUES (?, ?, ?)`)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	result, err := stmt.Exec(username, passwordHash, formatTime(time.Now().UTC()))
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return GetUser(db, id)
}

// GetUser returns the user with the given id, or nil if there is none.
func GetUser(db *sql.DB, id int64) (*notes.User, error) {
	stmt, err := db.Prepare("SELECT id, username, created_on FROM users WHERE id = ?")
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	user, _, err := scanUserRow(stmt.QueryRow(id), false)
	return user, err
}

// GetUserByUsername returns the user and their password hash, or a nil
// user if the username is unknown.
func GetUserByUsername(db *sql.DB, username string) (*notes.User, string, error) {
	stmt, err := db.Prepare("SELECT id, username, created_on, password_hash FROM users WHERE username = ?")
	if err != nil {
		return nil, "", err
	}
	defer stmt.Close()

	return scanUserRow(stmt.QueryRow(username), true)
}

// Private

func scanUserRow(row *sql.Row, withHash bool) (*notes.User, string, error) {
	user := &notes.User{}
	var createdOn, hash string
	var err error
	if withHash {
		err = row.Scan(&user.ID, &user.Username, &createdOn, &hash)
	} else {
		err = row.Scan(&user.ID, &user.Username, &createdOn)
	}
	if err != nil && errors.Is(err, sql.ErrNoRows) {
		return nil, "", nil
	} else if err != nil {
		return nil, "", err
	}

	user.CreatedOn, err = parseTime(createdOn)
	if err != nil {
		return nil, "", err
	}
	return user, hash, nil
}
