package models

import (
	"time"

	"github.com/dustin/go-humanize"
)

const isoDate = "2006-01-02"

// FormatLong renders t as "October 18th, 2026". The zero time renders empty.
func FormatLong(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("January") + " " + humanize.Ordinal(t.Day()) + ", " + t.Format("2006")
}

// FormatISO renders t as YYYY-MM-DD for date inputs. The zero time renders empty.
func FormatISO(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(isoDate)
}

func deref(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
