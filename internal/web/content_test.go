package web_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrshanahan/notes-web/internal/web"
)

func TestListShowsOnlyOwnNotes(t *testing.T) {
	app, db := newTestApp(t)
	author := createUser(t, db, "author")
	reader := createUser(t, db, "reader")
	createNote(t, db, author, "authors note", "text", "slug")
	createNote(t, db, reader, "readers note", "other text", "other-slug")

	authorClient := loginAs(t, app, "author")
	resp, err := authorClient.Get(web.PathNotesList)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := body(t, resp)
	assert.Contains(t, page, "authors note")
	assert.NotContains(t, page, "readers note")

	readerClient := loginAs(t, app, "reader")
	resp, err = readerClient.Get(web.PathNotesList)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page = body(t, resp)
	assert.Contains(t, page, "readers note")
	assert.NotContains(t, page, "authors note")
}

func TestAddAndEditPagesContainForm(t *testing.T) {
	app, db := newTestApp(t)
	author := createUser(t, db, "author")
	note := createNote(t, db, author, "title", "text", "slug")
	c := loginAs(t, app, "author")

	for _, path := range []string{web.PathNotesAdd, web.PathNoteEdit(note.Slug)} {
		t.Run(path, func(t *testing.T) {
			resp, err := c.Get(path)
			require.NoError(t, err)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			page := body(t, resp)
			assert.Contains(t, page, "<form")
			assert.Contains(t, page, `name="title"`)
			assert.Contains(t, page, `name="text"`)
			assert.Contains(t, page, `name="slug"`)
		})
	}
}

func TestEditFormIsPrefilledWithNote(t *testing.T) {
	app, db := newTestApp(t)
	author := createUser(t, db, "author")
	note := createNote(t, db, author, "title", "some text", "slug")
	c := loginAs(t, app, "author")

	resp, err := c.Get(web.PathNoteEdit(note.Slug))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := body(t, resp)
	assert.Contains(t, page, `value="title"`)
	assert.Contains(t, page, "some text")
	assert.Contains(t, page, `value="slug"`)
}
