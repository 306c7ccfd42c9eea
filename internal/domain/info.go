package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"time"
	"unicode"
)

const (
	DefaultTitle   = "QHH - 327"
	DefaultFileURL = "https://github.com/fedelagarmilla/qhh-revista/blob/main/QHH-327.pdf"

	// TimestampLayout matches ISO-8601 in UTC with millisecond precision.
	TimestampLayout = "2006-01-02T15:04:05.000Z"
)

var (
	ErrInvalidPayload = errors.New("invalid JSON payload")
	ErrNoFields       = errors.New("no title or file_url to update")
)

// Info is the single document served at /api/info.
type Info struct {
	Title       string `json:"title"`
	FileURL     string `json:"file_url"`
	UpdatedDate string `json:"updated_date"`
}

// Update carries the accepted fields of an update payload. Nil means the
// field was absent or rejected.
type Update struct {
	Title   *string
	FileURL *string
}

func (u Update) Empty() bool {
	return u.Title == nil && u.FileURL == nil
}

func DefaultInfo(now time.Time) Info {
	return Info{
		Title:       DefaultTitle,
		FileURL:     DefaultFileURL,
		UpdatedDate: Timestamp(now),
	}
}

// Apply returns a copy of i with the fields of u overwritten and
// UpdatedDate set to updatedDate.
func (i Info) Apply(u Update, updatedDate string) Info {
	next := i
	if u.Title != nil {
		next.Title = *u.Title
	}
	if u.FileURL != nil {
		next.FileURL = *u.FileURL
	}
	next.UpdatedDate = updatedDate
	return next
}

func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// NextTimestamp formats now, unless that would not sort strictly after
// prev, in which case it returns prev plus one millisecond.
func NextTimestamp(prev string, now time.Time) string {
	now = now.UTC().Truncate(time.Millisecond)
	if prev == "" {
		return Timestamp(now)
	}
	last, err := time.Parse(time.RFC3339Nano, prev)
	if err != nil {
		return Timestamp(now)
	}
	if !now.After(last) {
		now = last.Add(time.Millisecond)
	}
	return Timestamp(now)
}

// ParseUpdate extracts title and file_url from a request body. An empty
// body counts as an empty object. Values must be strings that are
// non-empty after trimming; anything else is ignored.
func ParseUpdate(body []byte) (Update, error) {
	if len(body) == 0 {
		return Update{}, ErrNoFields
	}

	// Numbers stay json.Number so out-of-range values in ignored fields
	// do not fail the whole payload.
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var payload any
	if err := dec.Decode(&payload); err != nil {
		return Update{}, ErrInvalidPayload
	}
	if _, err := dec.Token(); err != io.EOF {
		return Update{}, ErrInvalidPayload
	}
	if payload == nil {
		return Update{}, ErrInvalidPayload
	}

	var update Update
	if fields, ok := payload.(map[string]any); ok {
		update.FileURL = acceptString(fields["file_url"])
		update.Title = acceptString(fields["title"])
	}

	if update.Empty() {
		return Update{}, ErrNoFields
	}
	return update, nil
}

func acceptString(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimFunc(s, isTrimSpace)
	if s == "" {
		return nil
	}
	return &s
}

// isTrimSpace matches the ECMAScript String.prototype.trim set:
// unicode.IsSpace without NEL (U+0085), plus the byte order mark (U+FEFF).
func isTrimSpace(r rune) bool {
	if r == '\uFEFF' {
		return true
	}
	return r != '\u0085' && unicode.IsSpace(r)
}
