package notesdb_test

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	notesdb "github.com/mrshanahan/notes-web/pkg/notes-db"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := notesdb.InitializeInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCreateAndGetNote(t *testing.T) {
	db := newTestDB(t)
	user, err := notesdb.CreateUser(db, "author", "hash")
	require.NoError(t, err)

	note, err := notesdb.CreateNote(db, user.ID, "title", "text", "slug")
	require.NoError(t, err)
	require.NotNil(t, note)
	assert.Equal(t, "title", note.Title)
	assert.Equal(t, "text", note.Text)
	assert.Equal(t, "slug", note.Slug)
	assert.Equal(t, user.ID, note.AuthorID)
	assert.False(t, note.CreatedOn.IsZero())

	got, err := notesdb.GetNote(db, note.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, note.ID, got.ID)
}

func TestGetNoteMissingReturnsNil(t *testing.T) {
	db := newTestDB(t)

	note, err := notesdb.GetNote(db, 42)
	require.NoError(t, err)
	assert.Nil(t, note)
}

func TestSlugIsUniqueAcrossUsers(t *testing.T) {
	db := newTestDB(t)
	author, err := notesdb.CreateUser(db, "author", "hash")
	require.NoError(t, err)
	reader, err := notesdb.CreateUser(db, "reader", "hash")
	require.NoError(t, err)

	_, err = notesdb.CreateNote(db, author.ID, "title", "text", "slug")
	require.NoError(t, err)

	// Same slug on a different user still violates the index.
	_, err = notesdb.CreateNote(db, reader.ID, "other", "other", "slug")
	require.Error(t, err)
	assert.True(t, notesdb.IsUniqueViolation(err))

	count, err := notesdb.CountNotes(db)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSlugExists(t *testing.T) {
	db := newTestDB(t)
	user, err := notesdb.CreateUser(db, "author", "hash")
	require.NoError(t, err)
	note, err := notesdb.CreateNote(db, user.ID, "title", "text", "slug")
	require.NoError(t, err)

	exists, err := notesdb.SlugExists(db, "slug", 0)
	require.NoError(t, err)
	assert.True(t, exists)

	// The note itself is excluded when editing.
	exists, err = notesdb.SlugExists(db, "slug", note.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = notesdb.SlugExists(db, "unused", 0)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGetNoteBySlugFiltersByAuthor(t *testing.T) {
	db := newTestDB(t)
	author, err := notesdb.CreateUser(db, "author", "hash")
	require.NoError(t, err)
	reader, err := notesdb.CreateUser(db, "reader", "hash")
	require.NoError(t, err)
	_, err = notesdb.CreateNote(db, author.ID, "title", "text", "slug")
	require.NoError(t, err)

	note, err := notesdb.GetNoteBySlugForAuthor(db, "slug", author.ID)
	require.NoError(t, err)
	assert.NotNil(t, note)

	note, err = notesdb.GetNoteBySlugForAuthor(db, "slug", reader.ID)
	require.NoError(t, err)
	assert.Nil(t, note, "another user's note should be invisible")
}

func TestGetNotesByAuthor(t *testing.T) {
	db := newTestDB(t)
	author, err := notesdb.CreateUser(db, "author", "hash")
	require.NoError(t, err)
	reader, err := notesdb.CreateUser(db, "reader", "hash")
	require.NoError(t, err)
	_, err = notesdb.CreateNote(db, author.ID, "first", "text", "first")
	require.NoError(t, err)
	_, err = notesdb.CreateNote(db, author.ID, "second", "text", "second")
	require.NoError(t, err)
	_, err = notesdb.CreateNote(db, reader.ID, "other", "text", "other")
	require.NoError(t, err)

	list, err := notesdb.GetNotesByAuthor(db, author.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "first", list[0].Slug)
	assert.Equal(t, "second", list[1].Slug)
}

func TestUpdateNote(t *testing.T) {
	db := newTestDB(t)
	user, err := notesdb.CreateUser(db, "author", "hash")
	require.NoError(t, err)
	note, err := notesdb.CreateNote(db, user.ID, "title", "text", "slug")
	require.NoError(t, err)

	require.NoError(t, notesdb.UpdateNote(db, note.ID, "new title", "new text", "new-slug"))

	updated, err := notesdb.GetNote(db, note.ID)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "new title", updated.Title)
	assert.Equal(t, "new text", updated.Text)
	assert.Equal(t, "new-slug", updated.Slug)
}

func TestUpdateNoteToTakenSlugIsUniqueViolation(t *testing.T) {
	db := newTestDB(t)
	user, err := notesdb.CreateUser(db, "author", "hash")
	require.NoError(t, err)
	_, err = notesdb.CreateNote(db, user.ID, "a", "text", "taken")
	require.NoError(t, err)
	other, err := notesdb.CreateNote(db, user.ID, "b", "text", "free")
	require.NoError(t, err)

	// The index backstop for updates must surface the same error class
	// the handlers check for.
	err = notesdb.UpdateNote(db, other.ID, "b", "text", "taken")
	require.Error(t, err)
	assert.True(t, notesdb.IsUniqueViolation(err))

	unchanged, err := notesdb.GetNote(db, other.ID)
	require.NoError(t, err)
	require.NotNil(t, unchanged)
	assert.Equal(t, "free", unchanged.Slug)
}

func TestDeleteNote(t *testing.T) {
	db := newTestDB(t)
	user, err := notesdb.CreateUser(db, "author", "hash")
	require.NoError(t, err)
	note, err := notesdb.CreateNote(db, user.ID, "title", "text", "slug")
	require.NoError(t, err)

	require.NoError(t, notesdb.DeleteNote(db, note.ID))

	count, err := notesdb.CountNotes(db)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestUsernameIsUnique(t *testing.T) {
	db := newTestDB(t)
	_, err := notesdb.CreateUser(db, "author", "hash")
	require.NoError(t, err)

	_, err = notesdb.CreateUser(db, "author", "otherhash")
	require.Error(t, err)
	assert.True(t, notesdb.IsUniqueViolation(err))
}

func TestGetUserByUsername(t *testing.T) {
	db := newTestDB(t)
	created, err := notesdb.CreateUser(db, "author", "hash")
	require.NoError(t, err)

	user, hash, err := notesdb.GetUserByUsername(db, "author")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, created.ID, user.ID)
	assert.Equal(t, "hash", hash)

	user, _, err = notesdb.GetUserByUsername(db, "nobody")
	require.NoError(t, err)
	assert.Nil(t, user)
}
