package models

import "time"

// Genre is the closed set of movie genres offered by the form
type Genre string

const (
	GenreAction    Genre = "动作"
	GenreSciFi     Genre = "科幻"
	GenreDrama     Genre = "剧情"
	GenreComedy    Genre = "喜剧"
	GenreHorror    Genre = "恐怖"
	GenreAnimation Genre = "动画"
	GenreOther     Genre = "其他"
)

// AllGenres lists every valid genre, in form display order
var AllGenres = []Genre{
	GenreAction,
	GenreSciFi,
	GenreDrama,
	GenreComedy,
	GenreHorror,
	GenreAnimation,
	GenreOther,
}

// ValidGenre reports whether g is one of the allowed genres
func ValidGenre(g Genre) bool {
	for _, v := range AllGenres {
		if v == g {
			return true
		}
	}
	return false
}

// Movie represents one watchlist entry
type Movie struct {
	ID     uint   `gorm:"primaryKey"`
	Title  string `gorm:"not null"`
	Year   int    `gorm:"not null"`
	Genre  Genre  `gorm:"not null"`
	Rating int    `gorm:"not null"`
	Notes  string

	// CoverPath names a file in the cover store; nil means no cover
	CoverPath *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasCover reports whether the movie currently owns a cover file
func (m *Movie) HasCover() bool {
	return m.CoverPath != nil && *m.CoverPath != ""
}

// CoverName returns the stored cover name, or "" when there is none
func (m *Movie) CoverName() string {
	if m.CoverPath == nil {
		return ""
	}
	return *m.CoverPath
}
