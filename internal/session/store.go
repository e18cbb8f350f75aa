package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	userDatamodel "github.com/gestaolite/backoffice/internal/core/datamodel/user"
	"github.com/gestaolite/backoffice/internal/core/datamodel/worksession"
)

const (
	keyCurrentUser       = "currentUser"
	keyActiveWorkSession = "activeWorkSession"
)

// Entry is one durable storage slot. The store is a plain key/value table:
// the same two keys the browser build kept in localStorage.
type Entry struct {
	Key       string    `gorm:"primaryKey;column:key"`
	Value     string    `gorm:"column:value"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Entry) TableName() string { return "session_entries" }

// Store persists the logged-in identity and the in-progress work session in
// an embedded sqlite file. Corrupt or partially written entries are treated
// as "logged out" and silently cleared, never surfaced as errors.
type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewStore(path string, logger *slog.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	return NewStoreWithDB(db, logger)
}

// NewStoreWithDB wraps an already opened database. Tests use this with an
// in-memory sqlite handle.
func NewStoreWithDB(db *gorm.DB, logger *slog.Logger) (*Store, error) {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, err
	}
	return &Store{db: db, logger: logger}, nil
}

// Load restores the persisted identity. It returns nil (no session) when the
// slot is empty, unreadable, or holds a record without both name and phone;
// unusable slots are cleared on the way out.
func (s *Store) Load() (*userDatamodel.User, error) {
	raw, ok, err := s.get(keyCurrentUser)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var u userDatamodel.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		s.logger.Warn("stored session is corrupt, clearing", "error", err)
		return nil, s.Clear()
	}
	if !u.IsValid() {
		s.logger.Warn("stored session is incomplete, clearing")
		return nil, s.Clear()
	}
	return &u, nil
}

func (s *Store) Save(u *userDatamodel.User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return s.put(keyCurrentUser, string(raw))
}

// Clear removes the identity and any session-scoped ephemeral state.
func (s *Store) Clear() error {
	return s.db.Delete(&Entry{}, "key IN ?", []string{keyCurrentUser, keyActiveWorkSession}).Error
}

func (s *Store) SaveWorkSession(ws *worksession.WorkSession) error {
	raw, err := json.Marshal(ws)
	if err != nil {
		return err
	}
	return s.put(keyActiveWorkSession, string(raw))
}

func (s *Store) LoadWorkSession() (*worksession.WorkSession, error) {
	raw, ok, err := s.get(keyActiveWorkSession)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var ws worksession.WorkSession
	if err := json.Unmarshal([]byte(raw), &ws); err != nil {
		s.logger.Warn("stored work session is corrupt, clearing", "error", err)
		return nil, s.ClearWorkSession()
	}
	return &ws, nil
}

func (s *Store) ClearWorkSession() error {
	return s.db.Delete(&Entry{}, "key = ?", keyActiveWorkSession).Error
}

func (s *Store) get(key string) (string, bool, error) {
	var entry Entry
	err := s.db.First(&entry, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return entry.Value, true, nil
}

func (s *Store) put(key, value string) error {
	entry := Entry{Key: key, Value: value, UpdatedAt: time.Now()}
	return s.db.Save(&entry).Error
}

// Ping checks that the underlying database handle is usable.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
