package entries

import (
	"time"

	"github.com/folio-journal/backend/internal/content"
)

// Entry models a persisted journal entry. The descriptive fields are
// nullable: an absent value is stored and served as null, never coerced to
// the empty string.
type Entry struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Title      *string   `gorm:"column:title;type:text"`
	Author     *string   `gorm:"column:author;type:text"`
	Caption    *string   `gorm:"column:caption;type:text"`
	Image      *string   `gorm:"column:image;type:text"`
	Text       *string   `gorm:"column:text;type:text"`
	TextFormat string    `gorm:"column:text_format;size:16;not null;default:''"`
	Date       time.Time `gorm:"column:date;not null"`
}

// TableName provides the explicit table binding for GORM.
func (Entry) TableName() string {
	return "journals"
}

// Format returns the entry's text encoding, resolving untagged legacy rows
// by sniffing the stored text.
func (e Entry) Format() content.Format {
	text := ""
	if e.Text != nil {
		text = *e.Text
	}
	return content.EffectiveFormat(content.Format(e.TextFormat), text)
}

// Draft carries the fields supplied when creating an entry. The id and date
// are assigned by the store.
type Draft struct {
	Title      *string
	Author     *string
	Caption    *string
	Image      *string
	Text       *string
	TextFormat content.Format
}

// Patch carries a partial update. Nil fields are left untouched; non-nil
// fields replace the stored value.
type Patch struct {
	Title      *string
	Author     *string
	Caption    *string
	Image      *string
	Text       *string
	TextFormat *content.Format
}
