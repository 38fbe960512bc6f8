package web

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/mrshanahan/notes-web/internal/forms"
	notesdb "github.com/mrshanahan/notes-web/pkg/notes-db"
)

func (s *Server) ListNotes(c *fiber.Ctx) error {
	user := currentUser(c)

	list, err := notesdb.GetNotesByAuthor(s.db, user.ID)
	if err != nil {
		slog.Error("failed to execute query to retrieve notes",
			"author", user.ID,
			"err", err)
		return c.SendStatus(fiber.StatusInternalServerError)
	}
	return c.Render("notes/list", fiber.Map{
		"User":  user,
		"Notes": list,
	})
}

func (s *Server) AddNoteForm(c *fiber.Ctx) error {
	return c.Render("notes/form", fiber.Map{
		"User":   currentUser(c),
		"Form":   &forms.NoteForm{},
		"Action": PathNotesAdd,
	})
}

func (s *Server) AddNote(c *fiber.Ctx) error {
	user := currentUser(c)
	form := forms.NoteFormFromRequest(c)

	renderForm := func() error {
		// Validation failure re-renders the form with a 200, nothing
		// is persisted.
		return c.Render("notes/form", fiber.Map{
			"User":   user,
			"Form":   form,
			"Action": PathNotesAdd,
		})
	}

	ok, err := form.Validate(s.db, 0)
	if err != nil {
		slog.Error("failed to validate note form", "err", err)
		return c.SendStatus(fiber.StatusInternalServerError)
	}
	if !ok {
		return renderForm()
	}

	if _, err := notesdb.CreateNote(s.db, user.ID, form.Title, form.Text, form.Slug); err != nil {
		if notesdb.IsUniqueViolation(err) {
			// Lost the race against a concurrent insert with the same
			// slug; treat it like the form-level check.
			form.Errors["slug"] = form.Slug + " - such slug already exists, choose a unique value."
			return renderForm()
		}
		slog.Error("failed to create note",
			"title", form.Title,
			"err", err)
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.Redirect(PathNotesSuccess, fiber.StatusFound)
}

func (s *Server) Success(c *fiber.Ctx) error {
	return c.Render("notes/success", fiber.Map{
		"User": currentUser(c),
	})
}

func (s *Server) GetNote(c *fiber.Ctx) error {
	return c.Render("notes/detail", fiber.Map{
		"User": currentUser(c),
		"Note": noteFromContext(c),
	})
}

func (s *Server) EditNoteForm(c *fiber.Ctx) error {
	note := noteFromContext(c)
	form := &forms.NoteForm{
		Title: note.Title,
		Text:  note.Text,
		Slug:  note.Slug,
	}
	return c.Render("notes/form", fiber.Map{
		"User":   currentUser(c),
		"Form":   form,
		"Action": PathNoteEdit(note.Slug),
	})
}

func (s *Server) EditNote(c *fiber.Ctx) error {
	user := currentUser(c)
	note := noteFromContext(c)
	form := forms.NoteFormFromRequest(c)

	renderForm := func() error {
		return c.Render("notes/form", fiber.Map{
			"User":   user,
			"Form":   form,
			"Action": PathNoteEdit(note.Slug),
		})
	}

	ok, err := form.Validate(s.db, note.ID)
	if err != nil {
		slog.Error("failed to validate note form", "err", err)
		return c.SendStatus(fiber.StatusInternalServerError)
	}
	if !ok {
		return renderForm()
	}

	if err := notesdb.UpdateNote(s.db, note.ID, form.Title, form.Text, form.Slug); err != nil {
		if notesdb.IsUniqueViolation(err) {
			// Lost the race against a concurrent insert with the same
			// slug; treat it like the form-level check.
			form.Errors["slug"] = form.Slug + " - such slug already exists, choose a unique value."
			return renderForm()
		}
		slog.Error("failed to update note",
			"noteID", note.ID,
			"err", err)
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.Redirect(PathNotesSuccess, fiber.StatusFound)
}

func (s *Server) DeleteNoteForm(c *fiber.Ctx) error {
	note := noteFromContext(c)
	return c.Render("notes/delete", fiber.Map{
		"User":   currentUser(c),
		"Note":   note,
		"Action": PathNoteDelete(note.Slug),
	})
}

func (s *Server) DeleteNote(c *fiber.Ctx) error {
	note := noteFromContext(c)
	if err := notesdb.DeleteNote(s.db, note.ID); err != nil {
		slog.Error("failed to remove note",
			"noteID", note.ID,
			"err", err)
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.Redirect(PathNotesSuccess, fiber.StatusFound)
}
