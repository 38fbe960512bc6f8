// notes-smoke walks a signup/login/create/edit/delete round trip
// against a running notes-web server. It is a manual smoke harness,
// not part of the automated test suite.
package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/mrshanahan/notes-web/pkg/client"
)

func main() {
	base := os.Getenv("NOTES_WEB_URL")
	if base == "" {
		base = "http://localhost:3333"
	}
	c := client.NewClient(base)

	suffix := strings.Split(uuid.NewString(), "-")[0]
	username := "smoke-" + suffix
	password := "smoke-password"
	slug := "smoke-note-" + suffix

	resp, err := c.Signup(username, password)
	check("signup", err, resp, http.StatusFound)

	resp, err = c.Login(username, password)
	check("login", err, resp, http.StatusFound)

	resp, err = c.CreateNote("Smoke note", "created by notes-smoke", slug)
	check("create note", err, resp, http.StatusFound)

	resp, err = c.Get("/notes/")
	check("list notes", err, resp, http.StatusOK)
	body, err := client.ReadBody(resp)
	if err != nil {
		fail("list notes", err)
	}
	if !strings.Contains(body, "Smoke note") {
		fail("list notes", fmt.Errorf("created note missing from list"))
	}

	resp, err = c.EditNote(slug, "Smoke note (edited)", "edited by notes-smoke", slug)
	check("edit note", err, resp, http.StatusFound)

	resp, err = c.DeleteNote(slug)
	check("delete note", err, resp, http.StatusFound)

	resp, err = c.Logout()
	check("logout", err, resp, http.StatusOK)

	fmt.Println("smoke test passed")
}

func check(step string, err error, resp *http.Response, wantStatus int) {
	if err != nil {
		fail(step, err)
	}
	if resp.StatusCode != wantStatus {
		fail(step, fmt.Errorf("expected status %d, got %d", wantStatus, resp.StatusCode))
	}
	fmt.Printf("%-12s OK (%d)\n", step, resp.StatusCode)
}

func fail(step string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %s\n", step, err)
	os.Exit(1)
}
