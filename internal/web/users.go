package web

import (
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/mrshanahan/notes-web/internal/forms"
	"github.com/mrshanahan/notes-web/internal/middleware"
	notesdb "github.com/mrshanahan/notes-web/pkg/notes-db"
)

func (s *Server) LoginForm(c *fiber.Ctx) error {
	return c.Render("users/login", fiber.Map{
		"Form": &forms.LoginForm{Next: c.Query("next")},
	})
}

func (s *Server) Login(c *fiber.Ctx) error {
	form := forms.LoginFormFromRequest(c)

	renderForm := func() error {
		return c.Render("users/login", fiber.Map{"Form": form})
	}

	if !form.Validate() {
		return renderForm()
	}

	user, hash, err := notesdb.GetUserByUsername(s.db, form.Username)
	if err != nil {
		slog.Error("failed to execute query to retrieve user",
			"username", form.Username,
			"err", err)
		return c.SendStatus(fiber.StatusInternalServerError)
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(hash), []byte(form.Password)) != nil {
		form.Fail()
		return renderForm()
	}

	sess, err := s.sessions.Get(c)
	if err != nil {
		slog.Error("failed to load session", "err", err)
		return c.SendStatus(fiber.StatusInternalServerError)
	}
	sess.Set(middleware.SessionUserKey, user.ID)
	if err := sess.Save(); err != nil {
		slog.Error("failed to save session", "err", err)
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.Redirect(safeNext(form.Next), fiber.StatusFound)
}

func (s *Server) Logout(c *fiber.Ctx) error {
	sess, err := s.sessions.Get(c)
	if err == nil {
		if derr := sess.Destroy(); derr != nil {
			slog.Error("failed to destroy session", "err", derr)
		}
	}
	return c.Render("users/logout", fiber.Map{})
}

func (s *Server) SignupForm(c *fiber.Ctx) error {
	return c.Render("users/signup", fiber.Map{
		"Form": &forms.SignupForm{},
	})
}

func (s *Server) Signup(c *fiber.Ctx) error {
	form := forms.SignupFormFromRequest(c)

	renderForm := func() error {
		return c.Render("users/signup", fiber.Map{"Form": form})
	}

	ok, err := form.Validate(s.db)
	if err != nil {
		slog.Error("failed to validate signup form", "err", err)
		return c.SendStatus(fiber.StatusInternalServerError)
	}
	if !ok {
		return renderForm()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("failed to hash password", "err", err)
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	if _, err := notesdb.CreateUser(s.db, form.Username, string(hash)); err != nil {
		if notesdb.IsUniqueViolation(err) {
			form.Errors["username"] = form.Username + " - such username already exists, choose a unique value."
			return renderForm()
		}
		slog.Error("failed to create user",
			"username", form.Username,
			"err", err)
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.Redirect(PathLogin, fiber.StatusFound)
}

// safeNext only honors local redirect targets; anything else falls back
// to the notes list.
func safeNext(next string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") {
		return next
	}
	return PathNotesList
}
