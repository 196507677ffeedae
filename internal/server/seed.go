package server

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/atrium-dev/atrium/internal/auth"
	"github.com/atrium-dev/atrium/internal/models"
)

// seedFixture is the YAML document loaded at startup to provision the
// initial accounts, typically the first superuser.
type seedFixture struct {
	Users []seedUser `yaml:"users"`
}

type seedUser struct {
	Email       string `yaml:"email"`
	Password    string `yaml:"password"`
	FullName    string `yaml:"full_name"`
	IsSuperuser bool   `yaml:"is_superuser"`
	IsActive    *bool  `yaml:"is_active"`
}

// loadSeedFixture creates the users listed in the fixture file. Users that
// already exist (matched by email) are left untouched, so the fixture can
// stay configured across restarts.
func (s *Server) loadSeedFixture(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read seed fixture %s: %w", path, err)
	}

	var fixture seedFixture
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		return fmt.Errorf("failed to parse seed fixture %s: %w", path, err)
	}

	for _, entry := range fixture.Users {
		if entry.Email == "" || entry.Password == "" {
			return fmt.Errorf("seed fixture %s: user entries require email and password", path)
		}

		var count int64
		if err := s.db.Model(&models.User{}).Where("email = ?", entry.Email).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check existing user %s: %w", entry.Email, err)
		}
		if count > 0 {
			continue
		}

		hash, err := auth.HashPassword(entry.Password)
		if err != nil {
			return fmt.Errorf("failed to hash password for %s: %w", entry.Email, err)
		}

		active := true
		if entry.IsActive != nil {
			active = *entry.IsActive
		}

		user := models.User{
			Email:        entry.Email,
			PasswordHash: hash,
			FullName:     entry.FullName,
			IsActive:     active,
			IsSuperuser:  entry.IsSuperuser,
		}
		if err := s.db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create seeded user %s: %w", entry.Email, err)
		}

		s.logger.Info().
			Str("email", entry.Email).
			Bool("is_superuser", entry.IsSuperuser).
			Msg("Seeded user account")
	}

	return nil
}
