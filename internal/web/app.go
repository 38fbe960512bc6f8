// Package web assembles the fiber application: routing, sessions,
// templates and the request handlers.
package web

import (
	"database/sql"
	"embed"
	"io/fs"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/template/html/v2"

	"github.com/mrshanahan/notes-web/internal/middleware"
	"github.com/mrshanahan/notes-web/pkg/notes"
)

var (
	UserLocalName string = "user"
	NoteLocalName string = "note"
)

// Route paths, used by handlers for redirects and by the test suite in
// place of URL literals.
const (
	PathHome         = "/"
	PathNotesList    = "/notes/"
	PathNotesAdd     = "/notes/add"
	PathNotesSuccess = "/notes/done"
	PathLogin        = "/auth/login"
	PathLogout       = "/auth/logout"
	PathSignup       = "/auth/signup"
)

func PathNoteDetail(slug string) string { return "/notes/" + slug }
func PathNoteEdit(slug string) string   { return "/notes/" + slug + "/edit" }
func PathNoteDelete(slug string) string { return "/notes/" + slug + "/delete" }

//go:embed templates
var templatesFS embed.FS

type Server struct {
	db       *sql.DB
	sessions *session.Store
}

func NewServer(db *sql.DB, sessionExpiration time.Duration) *Server {
	return &Server{
		db: db,
		sessions: session.New(session.Config{
			Expiration: sessionExpiration,
			KeyLookup:  "cookie:notes_session",
		}),
	}
}

// Router builds the fiber app with all routes registered.
func (s *Server) Router() *fiber.App {
	engine := html.NewFileSystem(views(), ".html")

	app := fiber.New(fiber.Config{
		Views:       engine,
		ViewsLayout: "layouts/main",
	})
	app.Use(requestid.New(), logger.New(), recover.New())

	app.Get(PathHome, s.Home)

	ng := app.Group("/notes", middleware.RequireLogin(s.sessions, s.db, UserLocalName, PathLogin))
	ng.Get("/", s.ListNotes)
	ng.Get("/add", s.AddNoteForm)
	ng.Post("/add", s.AddNote)
	ng.Get("/done", s.Success)

	// Static /notes routes above are matched before the :slug group.
	note := ng.Group("/:slug", middleware.LoadNoteFromRoute(NoteLocalName, "slug", UserLocalName, s.db))
	note.Get("/", s.GetNote)
	note.Get("/edit", s.EditNoteForm)
	note.Post("/edit", s.EditNote)
	note.Get("/delete", s.DeleteNoteForm)
	note.Post("/delete", s.DeleteNote)
	note.Delete("/delete", s.DeleteNote)

	auth := app.Group("/auth")
	auth.Get("/login", s.LoginForm)
	auth.Post("/login", s.Login)
	auth.Get("/logout", s.Logout)
	auth.Get("/signup", s.SignupForm)
	auth.Post("/signup", s.Signup)

	return app
}

func (s *Server) Home(c *fiber.Ctx) error {
	return c.Render("home", fiber.Map{})
}

func views() http.FileSystem {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

func currentUser(c *fiber.Ctx) *notes.User {
	return c.Locals(UserLocalName).(*notes.User)
}

func noteFromContext(c *fiber.Ctx) *notes.Note {
	return c.Locals(NoteLocalName).(*notes.Note)
}
