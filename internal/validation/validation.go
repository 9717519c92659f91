// Package validation trims, checks and HTML-escapes submitted form fields.
package validation

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/araddon/dateparse"
	"github.com/samber/lo"
)

// Rule describes how one form field is checked. Rules run in the order
// given and produce errors in that order.
type Rule struct {
	Field    string
	Label    string
	Required bool
	// Min and Max bound the trimmed length in characters; zero means unbounded.
	Min, Max int
	// Date requires a parseable date; an empty value passes unless Required.
	Date bool
	// OneOf restricts a non-empty value to the listed choices.
	OneOf []string
	// Multi keeps every submitted value instead of the first one.
	Multi bool
}

type FieldError struct {
	Field string
	Msg   string
}

// Errors is an ordered list of field errors.
type Errors []FieldError

func (e Errors) Error() string {
	return strings.Join(lo.Map(e, func(fe FieldError, _ int) string { return fe.Msg }), "; ")
}

// Has reports whether field has at least one error.
func (e Errors) Has(field string) bool {
	return lo.ContainsBy(e, func(fe FieldError) bool { return fe.Field == field })
}

// Form holds the sanitized values of a submission and any errors found.
type Form struct {
	values map[string][]string
	dates  map[string]time.Time
	Errors Errors
}

// Check sanitizes raw against rules. Fields without a rule are dropped.
// Sanitized values are available even when the form has errors, so the
// form can be redisplayed with what the user typed.
func Check(raw url.Values, rules ...Rule) *Form {
	f := &Form{
		values: make(map[string][]string, len(rules)),
		dates:  make(map[string]time.Time),
	}

	for _, rule := range rules {
		submitted := raw[rule.Field]
		if !rule.Multi && len(submitted) > 1 {
			submitted = submitted[:1]
		}

		values := lo.Map(submitted, func(v string, _ int) string { return strings.TrimSpace(v) })
		if rule.Multi {
			values = lo.Compact(values)
		}

		first := ""
		if len(values) > 0 {
			first = values[0]
		}

		switch {
		case first == "" && rule.Required:
			f.fail(rule, "%s must be specified.", rule.Label)
		case first != "":
			f.checkValue(rule, first)
		}

		f.values[rule.Field] = lo.Map(values, func(v string, _ int) string { return Escape(v) })
	}
	return f
}

func (f *Form) checkValue(rule Rule, value string) {
	n := utf8.RuneCountInString(value)
	switch {
	case rule.Min > 0 && rule.Max > 0 && (n < rule.Min || n > rule.Max):
		f.fail(rule, "%s must be between %d and %d characters.", rule.Label, rule.Min, rule.Max)
		return
	case rule.Min > 0 && n < rule.Min:
		f.fail(rule, "%s must be at least %d characters.", rule.Label, rule.Min)
		return
	case rule.Max > 0 && n > rule.Max:
		f.fail(rule, "%s must not exceed %d characters.", rule.Label, rule.Max)
		return
	}

	if rule.Date {
		t, err := dateparse.ParseIn(value, time.UTC)
		if err != nil {
			f.fail(rule, "Invalid %s.", strings.ToLower(rule.Label))
			return
		}
		f.dates[rule.Field] = t
	}

	if len(rule.OneOf) > 0 && !lo.Contains(rule.OneOf, value) {
		f.fail(rule, "Invalid %s.", strings.ToLower(rule.Label))
	}
}

func (f *Form) fail(rule Rule, format string, args ...any) {
	f.Errors = append(f.Errors, FieldError{Field: rule.Field, Msg: fmt.Sprintf(format, args...)})
}

// AddError records an error found outside the rules, such as a malformed reference.
func (f *Form) AddError(field, msg string) {
	f.Errors = append(f.Errors, FieldError{Field: field, Msg: msg})
}

func (f *Form) Valid() bool {
	return len(f.Errors) == 0
}

// Get returns the first sanitized value of field, or "".
func (f *Form) Get(field string) string {
	if vs := f.values[field]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// List returns every sanitized value of a Multi field.
func (f *Form) List(field string) []string {
	return f.values[field]
}

// Date returns the parsed date of a Date field, or nil when it was empty or invalid.
func (f *Form) Date(field string) *time.Time {
	t, ok := f.dates[field]
	if !ok {
		return nil
	}
	return &t
}

var escaper = strings.NewReplacer(
	"&", "&amp;",
	`"`, "&quot;",
	"'", "&#x27;",
	"<", "&lt;",
	">", "&gt;",
	"/", "&#x2F;",
	`\`, "&#x5C;",
	"`", "&#96;",
)

// Escape replaces the characters that are significant in HTML with entities.
func Escape(s string) string {
	return escaper.Replace(s)
}
