package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/webcraft/backend/internal/kv"
	"github.com/webcraft/backend/internal/model"
)

const (
	// ProfileKey is the key the admin profile is stored under.
	ProfileKey = "adminProfile"

	profileVersion = 1
)

// ErrProfileVersion is returned when the stored profile was written by a
// newer schema than this build understands.
var ErrProfileVersion = errors.New("unsupported profile version")

// profileEnvelope is the stored shape. Version 0 (absent) means the value is
// a bare profile object.
type profileEnvelope struct {
	Version int                 `json:"version"`
	Profile *model.AdminProfile `json:"profile"`
}

// ProfileStore loads and saves the admin display profile through a kv.Store.
type ProfileStore struct {
	kv       kv.Store
	key      string
	mu       sync.Mutex
	updating atomic.Bool
}

// NewProfileStore creates a ProfileStore that keeps the profile under ProfileKey.
func NewProfileStore(store kv.Store) *ProfileStore {
	return &ProfileStore{kv: store, key: ProfileKey}
}

// Load returns the stored profile, or defaults derived from email when
// nothing has been saved yet.
func (s *ProfileStore) Load(ctx context.Context, email string) (model.AdminProfile, error) {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return model.AdminProfile{}, fmt.Errorf("load profile: %w", err)
	}
	if !ok || raw == "" {
		return model.DefaultAdminProfile(email), nil
	}

	p, version, err := decodeProfile(raw)
	if err != nil {
		return model.AdminProfile{}, err
	}
	if version < profileVersion {
		if err := s.write(ctx, p); err != nil {
			slog.WarnContext(ctx, "profile migration not persisted", "from_version", version, "error", err)
		} else {
			slog.InfoContext(ctx, "profile migrated", "from_version", version, "to_version", profileVersion)
		}
	}
	return p, nil
}

// Save replaces the stored profile with p. Updating reports true while the
// write is in flight.
func (s *ProfileStore) Save(ctx context.Context, p model.AdminProfile) error {
	s.updating.Store(true)
	defer s.updating.Store(false)
	if err := s.write(ctx, p); err != nil {
		return err
	}
	slog.InfoContext(ctx, "profile saved")
	return nil
}

func (s *ProfileStore) Updating() bool {
	return s.updating.Load()
}

func (s *ProfileStore) write(ctx context.Context, p model.AdminProfile) error {
	b, err := json.Marshal(profileEnvelope{Version: profileVersion, Profile: &p})
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Set(ctx, s.key, string(b)); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func decodeProfile(raw string) (model.AdminProfile, int, error) {
	var env profileEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return model.AdminProfile{}, 0, fmt.Errorf("decode profile: %w", err)
	}
	switch {
	case env.Version > profileVersion:
		return model.AdminProfile{}, env.Version, fmt.Errorf("%w: %d", ErrProfileVersion, env.Version)
	case env.Version == 0:
		var p model.AdminProfile
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return model.AdminProfile{}, 0, fmt.Errorf("decode legacy profile: %w", err)
		}
		return p, 0, nil
	case env.Profile == nil:
		return model.AdminProfile{}, env.Version, errors.New("decode profile: missing profile")
	}
	return *env.Profile, env.Version, nil
}
