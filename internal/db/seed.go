package db

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/widiatmoko/jurnalku/internal/domain/user"
	"github.com/widiatmoko/jurnalku/internal/security"
)

// SeedRoster builds the fixed initial roster that an empty store is seeded
// with on the first user listing (and again after a full data reset).
func SeedRoster() ([]user.User, error) {
	now := time.Now().UTC()

	hash := func(pw string) (string, error) {
		return security.HashPassword(pw)
	}

	adminHash, err := hash("admin123")
	if err != nil {
		return nil, fmt.Errorf("seed roster: %w", err)
	}
	teacherHash, err := hash("guru123")
	if err != nil {
		return nil, fmt.Errorf("seed roster: %w", err)
	}
	studentHash, err := hash("siswa123")
	if err != nil {
		return nil, fmt.Errorf("seed roster: %w", err)
	}
	parentHash, err := hash("ortu123")
	if err != nil {
		return nil, fmt.Errorf("seed roster: %w", err)
	}

	siti := user.User{
		ID:           uuid.NewString(),
		Name:         "Siti Rahma",
		Role:         user.RoleStudent,
		NISN:         "0051234567",
		Avatar:       "avatars/siti.png",
		PasswordHash: studentHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	agus := user.User{
		ID:           uuid.NewString(),
		Name:         "Agus Wijaya",
		Role:         user.RoleStudent,
		NISN:         "0049876543",
		Avatar:       "avatars/agus.png",
		PasswordHash: studentHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	return []user.User{
		{
			ID:           uuid.NewString(),
			Name:         "Administrator",
			Role:         user.RoleAdmin,
			Username:     "admin",
			Avatar:       "avatars/admin.png",
			PasswordHash: adminHash,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		{
			ID:           uuid.NewString(),
			Name:         "Budi Santoso, S.Pd.",
			Role:         user.RoleTeacher,
			NIP:          "198501012010011001",
			Avatar:       "avatars/budi.png",
			PasswordHash: teacherHash,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		siti,
		agus,
		{
			ID:           uuid.NewString(),
			Name:         "Hendra Wijaya",
			Role:         user.RoleParent,
			NIK:          "3201234567890001",
			Avatar:       "avatars/hendra.png",
			ChildIDs:     []string{siti.ID, agus.ID},
			PasswordHash: parentHash,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
	}, nil
}
