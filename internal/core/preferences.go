package core

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

const (
	preferencesWindowSizeMin int = 1
	preferencesWindowSizeMax int = 16
)

var (
	ErrPreferencesNotFound   = errors.New("layout preferences not found")
	errPreferencesUserID     = errors.New("user id is required")
	errPreferencesWindowSize = errors.New("window size is out of range")
)

// LayoutPreferences are the layout settings the user saved last time
type LayoutPreferences struct {
	UserID     string     `json:"user_id" db:"user_id"`
	LayoutType LayoutType `json:"layout_type" db:"layout_type"`
	WindowSize int        `json:"window_size" db:"window_size"`
	UpdatedAt  time.Time  `json:"updated_at,omitempty" db:"updated_at"`
}

func (p *LayoutPreferences) Validate() error {
	if p.UserID == "" {
		return errPreferencesUserID
	}
	if err := p.LayoutType.Validate(); err != nil {
		return err
	}
	if p.WindowSize < preferencesWindowSizeMin || p.WindowSize > preferencesWindowSizeMax {
		return errPreferencesWindowSize
	}
	return nil
}

type PreferencesStorer interface {
	Find(userID string) (*LayoutPreferences, error)
	Save(prefs *LayoutPreferences) (*LayoutPreferences, error)
}

type PreferencesRepository struct {
	db *sqlx.DB
}

func NewPreferencesRepository(db *sqlx.DB) *PreferencesRepository {
	return &PreferencesRepository{
		db: db,
	}
}

func (r *PreferencesRepository) Find(userID string) (*LayoutPreferences, error) {
	prefs := &LayoutPreferences{}

	err := r.db.Get(prefs,
		`SELECT
			user_id,
			layout_type,
			window_size,
			updated_at
		FROM layout_preferences
		WHERE user_id = $1 LIMIT 1`,
		userID,
	)
	if err == sql.ErrNoRows {
		return nil, ErrPreferencesNotFound
	}
	if err != nil {
		return nil, err
	}

	return prefs, nil
}

func (r *PreferencesRepository) Save(prefs *LayoutPreferences) (*LayoutPreferences, error) {
	if err := prefs.Validate(); err != nil {
		return nil, err
	}

	var updatedAt time.Time

	err := r.db.Get(&updatedAt,
		`INSERT INTO layout_preferences
			(user_id, layout_type, window_size, updated_at)
		VALUES ($1, $2, $3, NOW()) ON CONFLICT (user_id) DO UPDATE
			SET
				layout_type = EXCLUDED.layout_type,
				window_size = EXCLUDED.window_size,
				updated_at = EXCLUDED.updated_at
		RETURNING updated_at`,
		prefs.UserID,
		string(prefs.LayoutType),
		prefs.WindowSize,
	)
	if err != nil {
		return nil, err
	}
	prefs.UpdatedAt = updatedAt

	return prefs, nil
}
