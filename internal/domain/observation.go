package domain

import (
	"fmt"
	"time"
)

const (
	// StatusClosed is the only status with meaning: closed records never show up as open or overdue.
	StatusClosed = "Closed"

	// DateLayout is the creation date format, a calendar date without a time component.
	DateLayout = "2006-01-02"
)

type Observation struct {
	ID          int64  `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Name        string `gorm:"column:name" json:"name"`
	Department  string `gorm:"column:department" json:"department"`
	Description string `gorm:"column:description" json:"description"`
	Fix         string `gorm:"column:fix" json:"fix"`
	Status      string `gorm:"column:status" json:"status"`
	Date        string `gorm:"column:date" json:"date"`
}

func (Observation) TableName() string { return "observations" }

func (o *Observation) IsOpen() bool {
	return o != nil && o.Status != StatusClosed
}

// FormatDate renders t as a creation date in t's own location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// AgeDays returns the number of calendar days between the creation date and now.
func (o *Observation) AgeDays(now time.Time) (int, error) {
	if o == nil {
		return 0, fmt.Errorf("nil observation")
	}
	created, err := time.Parse(DateLayout, o.Date)
	if err != nil {
		return 0, fmt.Errorf("parse observation date %q: %w", o.Date, err)
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return int(today.Sub(created).Hours() / 24), nil
}

// OverdueAt reports whether an open observation is older than afterDays at now.
func (o *Observation) OverdueAt(now time.Time, afterDays int) (bool, error) {
	if !o.IsOpen() {
		return false, nil
	}
	age, err := o.AgeDays(now)
	if err != nil {
		return false, err
	}
	return age > afterDays, nil
}
