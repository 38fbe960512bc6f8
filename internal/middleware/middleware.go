package middleware

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/mrshanahan/notes-web/pkg/notes"
	notesdb "github.com/mrshanahan/notes-web/pkg/notes-db"
)

// SessionUserKey is the session key under which the logged-in user's id
// is stored.
const SessionUserKey = "user_id"

// RequireLogin redirects anonymous requests to the login page with a
// `next` query parameter pointing back at the requested URL. For
// authenticated requests it loads the user row into Locals.
func RequireLogin(store *session.Store, db *sql.DB, userLocal string, loginPath string) func(*fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		toLogin := func() error {
			return c.Redirect(fmt.Sprintf("%s?next=%s", loginPath, c.OriginalURL()), fiber.StatusFound)
		}

		sess, err := store.Get(c)
		if err != nil {
			slog.Error("failed to load session", "err", err)
			return c.SendStatus(fiber.StatusInternalServerError)
		}

		id, ok := sess.Get(SessionUserKey).(int64)
		if !ok {
			return toLogin()
		}

		user, err := notesdb.GetUser(db, id)
		if err != nil {
			slog.Error("failed to execute query to retrieve user",
				"id", id,
				"err", err)
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		if user == nil {
			// Stale session referencing a removed user.
			return toLogin()
		}

		c.Locals(userLocal, user)
		return c.Next()
	}
}

// LoadNoteFromRoute resolves the :slug route parameter to a note owned
// by the authenticated user and stores it in Locals. The query is
// filtered by author, so another user's slug behaves as if it did not
// exist.
func LoadNoteFromRoute(localName string, param string, userLocal string, db *sql.DB) func(*fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		user := c.Locals(userLocal).(*notes.User)
		slug := c.Params(param)

		found, err := notesdb.GetNoteBySlugForAuthor(db, slug, user.ID)
		if err != nil {
			slog.Error("failed to execute query to retrieve note",
				"slug", slug,
				"err", err)
			c.Status(fiber.StatusInternalServerError)
			return c.SendString("failed to load note")
		}
		if found == nil {
			c.Status(fiber.StatusNotFound)
			return c.SendString("note not found")
		}
		c.Locals(localName, found)
		return c.Next()
	}
}
