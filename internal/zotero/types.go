// Package zotero provides a client for the Zotero Web API v3 group libraries.
package zotero

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Default values for fields a record may omit.
const (
	NoTitle         = "No title"
	UnknownItemType = "unknown"
)

// CollectionRef addresses the set of items to fetch: a group library, optionally
// narrowed to one collection inside it.
type CollectionRef struct {
	Group      string `json:"group"`
	Collection string `json:"collection,omitempty"`
}

// root returns the API path of the group or collection.
func (r CollectionRef) root() string {
	if r.Collection != "" {
		return fmt.Sprintf("/groups/%s/collections/%s", r.Group, r.Collection)
	}
	return fmt.Sprintf("/groups/%s", r.Group)
}

// ItemsPath returns the API path listing the referenced items.
func (r CollectionRef) ItemsPath() string {
	return r.root() + "/items"
}

// ItemPath returns the API path of a single item in the group.
func (r CollectionRef) ItemPath(key string) string {
	return fmt.Sprintf("/groups/%s/items/%s", r.Group, key)
}

// String returns a human-readable form for logs.
func (r CollectionRef) String() string {
	if r.Collection != "" {
		return r.Group + "/" + r.Collection
	}
	return r.Group
}

// Record is one bibliographic entry as returned by the items endpoint.
// Data is nil when the response carried no data payload.
type Record struct {
	Key     string      `json:"key"`
	Version int         `json:"version,omitempty"`
	Data    *RecordData `json:"data,omitempty"`
}

// RecordData holds the bibliographic fields nested under "data".
type RecordData struct {
	ItemType string    `json:"itemType"`
	Title    string    `json:"title,omitempty"`
	Date     string    `json:"date,omitempty"`
	Creators []Creator `json:"creators,omitempty"`
}

// HasData reports whether the record carries a data payload.
func (r Record) HasData() bool {
	return r.Data != nil
}

// Title returns the record title or NoTitle.
func (r Record) Title() string {
	if r.Data == nil || r.Data.Title == "" {
		return NoTitle
	}
	return r.Data.Title
}

// ItemType returns the record's item type or UnknownItemType.
func (r Record) ItemType() string {
	if r.Data == nil || r.Data.ItemType == "" {
		return UnknownItemType
	}
	return r.Data.ItemType
}

// Creators returns the record's creators, empty when there is no data.
func (r Record) Creators() []Creator {
	if r.Data == nil {
		return nil
	}
	return r.Data.Creators
}

// Creator is a named contributor attached to a record.
type Creator struct {
	CreatorType string `json:"creatorType"`
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
}

// FullName joins the trimmed first and last names with a single space.
// It is empty when both parts are empty.
func (c Creator) FullName() string {
	first := strings.TrimSpace(c.FirstName)
	last := strings.TrimSpace(c.LastName)
	return strings.TrimSpace(first + " " + last)
}

// citationResponse is the single-item response with include=bib.
type citationResponse struct {
	Key string  `json:"key"`
	Bib *string `json:"bib"`
}

// decodePage coerces a page body into records. The API may return a bare
// array or an object wrapping the array under "data"; anything else is
// ErrInvalidResponse.
func decodePage(body []byte) ([]Record, error) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty body", ErrInvalidResponse)
	}

	switch trimmed[0] {
	case '[':
		var records []Record
		if err := json.Unmarshal(body, &records); err != nil {
			return nil, fmt.Errorf("%w: parsing item array: %v", ErrInvalidResponse, err)
		}
		return records, nil
	case '{':
		var wrapper struct {
			Data []Record `json:"data"`
		}
		if err := json.Unmarshal(body, &wrapper); err != nil {
			return nil, fmt.Errorf("%w: parsing item object: %v", ErrInvalidResponse, err)
		}
		return wrapper.Data, nil
	default:
		return nil, fmt.Errorf("%w: unexpected top-level JSON %q", ErrInvalidResponse, trimmed[:1])
	}
}
