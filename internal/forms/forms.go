// Package forms holds the HTML form models and their validation rules.
// A form that fails validation is re-rendered with Errors set instead
// of being persisted.
package forms

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gosimple/slug"

	notesdb "github.com/mrshanahan/notes-web/pkg/notes-db"
)

type NoteForm struct {
	Title  string
	Text   string
	Slug   string
	Errors map[string]string
}

func NoteFormFromRequest(c *fiber.Ctx) *NoteForm {
	return &NoteForm{
		Title: strings.TrimSpace(c.FormValue("title")),
		Text:  strings.TrimSpace(c.FormValue("text")),
		Slug:  strings.TrimSpace(c.FormValue("slug")),
	}
}

// Validate checks required fields, derives the slug from the title when
// it was omitted and enforces slug uniqueness. excludeID is the id of
// the note being edited, or 0 when creating.
func (f *NoteForm) Validate(db *sql.DB, excludeID int64) (bool, error) {
	f.Errors = map[string]string{}

	if f.Title == "" {
		f.Errors["title"] = "Title is required."
	}
	if f.Text == "" {
		f.Errors["text"] = "Text is required."
	}
	if f.Slug == "" && f.Title != "" {
		f.Slug = slug.Make(f.Title)
	}

	if f.Slug != "" {
		exists, err := notesdb.SlugExists(db, f.Slug, excludeID)
		if err != nil {
			return false, err
		}
		if exists {
			f.Errors["slug"] = fmt.Sprintf("%s - such slug already exists, choose a unique value.", f.Slug)
		}
	}

	return len(f.Errors) == 0, nil
}

type SignupForm struct {
	Username string
	Password string
	Confirm  string
	Errors   map[string]string
}

func SignupFormFromRequest(c *fiber.Ctx) *SignupForm {
	return &SignupForm{
		Username: strings.TrimSpace(c.FormValue("username")),
		Password: c.FormValue("password"),
		Confirm:  c.FormValue("confirm"),
	}
}

func (f *SignupForm) Validate(db *sql.DB) (bool, error) {
	f.Errors = map[string]string{}

	if f.Username == "" {
		f.Errors["username"] = "Username is required."
	}
	if f.Password == "" {
		f.Errors["password"] = "Password is required."
	} else if f.Password != f.Confirm {
		f.Errors["confirm"] = "Passwords do not match."
	}

	if f.Username != "" {
		existing, _, err := notesdb.GetUserByUsername(db, f.Username)
		if err != nil {
			return false, err
		}
		if existing != nil {
			f.Errors["username"] = fmt.Sprintf("%s - such username already exists, choose a unique value.", f.Username)
		}
	}

	return len(f.Errors) == 0, nil
}

type LoginForm struct {
	Username string
	Password string
	Next     string
	Errors   map[string]string
}

func LoginFormFromRequest(c *fiber.Ctx) *LoginForm {
	next := c.FormValue("next")
	if next == "" {
		next = c.Query("next")
	}
	return &LoginForm{
		Username: strings.TrimSpace(c.FormValue("username")),
		Password: c.FormValue("password"),
		Next:     next,
	}
}

func (f *LoginForm) Validate() bool {
	f.Errors = map[string]string{}
	if f.Username == "" || f.Password == "" {
		f.Errors["form"] = "Username and password are required."
	}
	return len(f.Errors) == 0
}

// Fail marks the form with the generic credentials error. The message
// deliberately does not say which of the two fields was wrong.
func (f *LoginForm) Fail() {
	f.Errors["form"] = "Invalid username or password."
}
