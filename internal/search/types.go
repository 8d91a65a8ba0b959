package search

import (
	"bytes"
	"encoding/json"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	errors "github.com/Laisky/errors/v2"
)

// naiveTimestampLayout matches the zone-less ISO timestamps the backend emits
// for rows stored without a time zone. Those values are UTC.
const naiveTimestampLayout = "2006-01-02T15:04:05.999999999"

// sniffLen is how many leading bytes http.DetectContentType looks at.
const sniffLen = 512

// ItemID identifies a catalog entry. The backend sends UUID strings; older
// payloads and fixtures sometimes use bare numbers.
type ItemID string

// UnmarshalJSON accepts either a JSON string or a JSON number.
func (id *ItemID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return errors.Wrap(err, "decode item id")
		}
		*id = ItemID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return errors.Wrapf(err, "decode item id %s", string(trimmed))
	}
	*id = ItemID(n.String())
	return nil
}

// ResultItem is one catalog entry returned by the backend search.
type ResultItem struct {
	ID        ItemID    `json:"items_id"`
	Title     string    `json:"title"`
	Link      string    `json:"link"`
	Timestamp time.Time `json:"timestamp"`

	// LegacyID is set when the entry arrived with the deprecated "id" field
	// instead of "items_id".
	LegacyID bool `json:"-"`
}

// UnmarshalJSON decodes the backend item shape. "items_id" is canonical; "id"
// is only read when "items_id" is absent and marks the item as LegacyID.
func (r *ResultItem) UnmarshalJSON(data []byte) error {
	var raw struct {
		ItemsID   *ItemID `json:"items_id"`
		ID        *ItemID `json:"id"`
		Title     string  `json:"title"`
		Link      string  `json:"link"`
		Timestamp string  `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "decode result item")
	}

	*r = ResultItem{
		Title:     strings.TrimSpace(raw.Title),
		Link:      strings.TrimSpace(raw.Link),
		Timestamp: parseTime(raw.Timestamp),
	}
	switch {
	case raw.ItemsID != nil:
		r.ID = *raw.ItemsID
	case raw.ID != nil:
		r.ID = *raw.ID
		r.LegacyID = true
	}
	return nil
}

// ResultSet is an ordered list of items in server order. An empty, non-nil
// set means "loaded, nothing matched".
type ResultSet []ResultItem

// legacyCount reports how many items used the deprecated id field.
func (s ResultSet) legacyCount() int {
	n := 0
	for _, item := range s {
		if item.LegacyID {
			n++
		}
	}
	return n
}

func parseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	if t, err := time.ParseInLocation(naiveTimestampLayout, value, time.UTC); err == nil {
		return t
	}
	return time.Time{}
}

// UploadRequest is one image payload ready for SubmitImage.
type UploadRequest struct {
	Filename  string
	MediaType string
	Data      []byte
}

// NewUploadRequest reads the file at path and wraps it for upload. Missing,
// unreadable or non-image files yield a *ValidationError.
func NewUploadRequest(path string) (UploadRequest, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return UploadRequest{}, errNoFile()
	}

	info, err := os.Stat(path)
	if err != nil {
		return UploadRequest{}, &ValidationError{Reason: "cannot read file", Err: err}
	}
	if !info.Mode().IsRegular() {
		return UploadRequest{}, &ValidationError{Reason: "not a regular file"}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return UploadRequest{}, &ValidationError{Reason: "cannot read file", Err: err}
	}
	if len(data) == 0 {
		return UploadRequest{}, &ValidationError{Reason: "file is empty"}
	}

	mediaType := detectMediaType(filepath.Ext(path), data)
	if !strings.HasPrefix(mediaType, "image/") {
		return UploadRequest{}, &ValidationError{Reason: "not an image: " + mediaType}
	}

	return UploadRequest{
		Filename:  filepath.Base(path),
		MediaType: mediaType,
		Data:      data,
	}, nil
}

// detectMediaType sniffs content first and only trusts the extension when
// sniffing is inconclusive.
func detectMediaType(ext string, data []byte) string {
	head := data
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	sniffed := http.DetectContentType(head)
	if strings.HasPrefix(sniffed, "image/") {
		return sniffed
	}
	if byExt := mime.TypeByExtension(strings.ToLower(ext)); byExt != "" {
		if mediaType, _, err := mime.ParseMediaType(byExt); err == nil && strings.HasPrefix(mediaType, "image/") {
			// Sniffing misses formats like HEIC/AVIF; accept them only when
			// the content isn't recognizably something else.
			if sniffed == "application/octet-stream" {
				return mediaType
			}
		}
	}
	mediaType, _, err := mime.ParseMediaType(sniffed)
	if err != nil {
		return sniffed
	}
	return mediaType
}
