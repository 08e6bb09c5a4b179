// Package prefs persists the small UI settings bundle: theme, journal
// categories, attendance window and school name. Each field is independent;
// a missing one is filled from its default on load.
package prefs

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

type Settings struct {
	Theme           string   `json:"theme"`
	Categories      []string `json:"categories"`
	AttendanceStart string   `json:"attendanceStart"`
	AttendanceEnd   string   `json:"attendanceEnd"`
	SchoolName      string   `json:"schoolName"`
}

func DefaultSettings() Settings {
	return Settings{
		Theme:           ThemeLight,
		Categories:      []string{"Pelajaran", "Tugas", "Sakit", "Izin"},
		AttendanceStart: "06:30",
		AttendanceEnd:   "07:30",
		SchoolName:      "SMP Harapan Bangsa",
	}
}

const prefsFile = "prefs.json"

type Store struct {
	path string
}

func NewStore(dir string) *Store {
	return &Store{path: filepath.Join(dir, prefsFile)}
}

// Load reads the settings, seeding any missing field with its default. The
// first-ever load persists the seeded bundle so later runs see stable values.
func (s *Store) Load() (Settings, error) {
	defaults := DefaultSettings()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if err := s.Save(defaults); err != nil {
				return Settings{}, err
			}
			return defaults, nil
		}
		return Settings{}, err
	}

	var got Settings
	if err := json.Unmarshal(data, &got); err != nil {
		return Settings{}, err
	}

	seeded := false
	if got.Theme == "" {
		got.Theme = defaults.Theme
		seeded = true
	}
	if len(got.Categories) == 0 {
		got.Categories = defaults.Categories
		seeded = true
	}
	if got.AttendanceStart == "" {
		got.AttendanceStart = defaults.AttendanceStart
		seeded = true
	}
	if got.AttendanceEnd == "" {
		got.AttendanceEnd = defaults.AttendanceEnd
		seeded = true
	}
	if got.SchoolName == "" {
		got.SchoolName = defaults.SchoolName
		seeded = true
	}

	if seeded {
		if err := s.Save(got); err != nil {
			return Settings{}, err
		}
	}
	return got, nil
}

func (s *Store) Save(set Settings) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

func (s *Store) SetTheme(theme string) error {
	return s.update(func(set *Settings) { set.Theme = theme })
}

func (s *Store) SetCategories(categories []string) error {
	return s.update(func(set *Settings) { set.Categories = categories })
}

func (s *Store) SetAttendanceWindow(start, end string) error {
	return s.update(func(set *Settings) {
		set.AttendanceStart = start
		set.AttendanceEnd = end
	})
}

func (s *Store) SetSchoolName(name string) error {
	return s.update(func(set *Settings) { set.SchoolName = name })
}

func (s *Store) update(fn func(*Settings)) error {
	set, err := s.Load()
	if err != nil {
		return err
	}
	fn(&set)
	return s.Save(set)
}
