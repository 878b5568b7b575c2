package core

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}

	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestPreferencesFind(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	repo := NewPreferencesRepository(db)
	updatedAt := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"user_id", "layout_type", "window_size", "updated_at"}).
			AddRow("alice", "SPEAKER", 6, updatedAt)
		mock.ExpectQuery("SELECT (.+) FROM layout_preferences").WithArgs("alice").WillReturnRows(rows)

		prefs, err := repo.Find("alice")
		require.Nil(t, err)

		assert.Equal(t, "alice", prefs.UserID)
		assert.Equal(t, SpeakerLayout, prefs.LayoutType)
		assert.Equal(t, 6, prefs.WindowSize)
		assert.Equal(t, updatedAt, prefs.UpdatedAt)
	})

	t.Run("not found", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"user_id", "layout_type", "window_size", "updated_at"})
		mock.ExpectQuery("SELECT (.+) FROM layout_preferences").WithArgs("bob").WillReturnRows(rows)

		prefs, err := repo.Find("bob")
		assert.Nil(t, prefs)
		assert.Equal(t, ErrPreferencesNotFound, err)
	})

	t.Run("database error", func(t *testing.T) {
		boom := errors.New("Boom!")
		mock.ExpectQuery("SELECT (.+) FROM layout_preferences").WithArgs("carol").WillReturnError(boom)

		_, err := repo.Find("carol")
		assert.Equal(t, boom, err)
	})

	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestPreferencesSave(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	repo := NewPreferencesRepository(db)
	updatedAt := time.Date(2026, 10, 2, 8, 30, 0, 0, time.UTC)

	t.Run("upserts valid preferences", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"updated_at"}).AddRow(updatedAt)
		mock.ExpectQuery("INSERT INTO layout_preferences").
			WithArgs("alice", "GRID", 4).
			WillReturnRows(rows)

		prefs, err := repo.Save(&LayoutPreferences{UserID: "alice", LayoutType: GridLayout, WindowSize: 4})
		require.Nil(t, err)
		assert.Equal(t, updatedAt, prefs.UpdatedAt)
	})

	t.Run("rejects invalid preferences without touching the database", func(t *testing.T) {
		_, err := repo.Save(&LayoutPreferences{UserID: "alice", LayoutType: "MOSAIC", WindowSize: 4})
		assert.Equal(t, ErrUnknownLayoutType, err)

		_, err = repo.Save(&LayoutPreferences{UserID: "alice", LayoutType: GridLayout, WindowSize: 0})
		assert.Equal(t, errPreferencesWindowSize, err)

		_, err = repo.Save(&LayoutPreferences{LayoutType: GridLayout, WindowSize: 4})
		assert.Equal(t, errPreferencesUserID, err)
	})

	assert.Nil(t, mock.ExpectationsWereMet())
}
