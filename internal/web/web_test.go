package web_test

import (
	"database/sql"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mrshanahan/notes-web/internal/web"
	"github.com/mrshanahan/notes-web/pkg/client"
	"github.com/mrshanahan/notes-web/pkg/notes"
	notesdb "github.com/mrshanahan/notes-web/pkg/notes-db"
)

const testPassword = "password"

func newTestApp(t *testing.T) (*fiber.App, *sql.DB) {
	t.Helper()
	db, err := notesdb.InitializeInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return web.NewServer(db, time.Hour).Router(), db
}

func createUser(t *testing.T, db *sql.DB, username string) *notes.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	user, err := notesdb.CreateUser(db, username, string(hash))
	require.NoError(t, err)
	return user
}

func createNote(t *testing.T, db *sql.DB, author *notes.User, title, text, slug string) *notes.Note {
	t.Helper()
	note, err := notesdb.CreateNote(db, author.ID, title, text, slug)
	require.NoError(t, err)
	return note
}

// loginAs returns a client holding a session for the given user.
func loginAs(t *testing.T, app *fiber.App, username string) *client.Client {
	t.Helper()
	c := client.NewTestClient(app)
	resp, err := c.Login(username, testPassword)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode, "login should redirect")
	return c
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	s, err := client.ReadBody(resp)
	require.NoError(t, err)
	return s
}

func countNotes(t *testing.T, db *sql.DB) int {
	t.Helper()
	count, err := notesdb.CountNotes(db)
	require.NoError(t, err)
	return count
}
