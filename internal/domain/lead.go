package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// LeadStatus is an open-ended pipeline status tag.
type LeadStatus string

const (
	LeadStatusNew        LeadStatus = "new"
	LeadStatusQualified  LeadStatus = "qualified"
	LeadStatusInProgress LeadStatus = "in-progress"
	LeadStatusConverted  LeadStatus = "converted"
	LeadStatusLost       LeadStatus = "lost"
)

// LeadID accepts both JSON strings and numbers. Integral numbers are stored
// in integer form so 1, 1.0 and 1e0 name the same lead. Any other JSON type
// yields an empty identifier.
type LeadID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *LeadID) UnmarshalJSON(data []byte) error {
	var v looseText
	if err := v.UnmarshalJSON(data); err != nil {
		return err
	}
	*id = LeadID(v)
	return nil
}

// looseText decodes strings as-is and numbers as their canonical text.
// Booleans, objects and arrays decode to "".
type looseText string

func (t *looseText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*t = ""
	if len(data) == 0 {
		return nil
	}
	switch {
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = looseText(s)
	case data[0] == '-' || (data[0] >= '0' && data[0] <= '9'):
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return nil
		}
		*t = looseText(canonicalNumber(n))
	}
	return nil
}

func canonicalNumber(n json.Number) string {
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10)
	}
	f, err := n.Float64()
	if err != nil || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return n.String()
	}
	return strconv.FormatInt(int64(f), 10)
}

// looseBool accepts booleans, "true"/"false" style strings and numbers.
// Anything else decodes to false.
type looseBool bool

func (b *looseBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*b = false
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case 't':
		*b = looseBool(bytes.Equal(data, []byte("true")))
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseBool(strings.TrimSpace(s))
		*b = looseBool(err == nil && v)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err == nil {
			f, err := n.Float64()
			*b = looseBool(err == nil && f != 0)
		}
	}
	return nil
}

// Lead is a CRM contact tracked through pipeline stages. Records are written
// by external lead-management screens; this service only reads them.
type Lead struct {
	ID              LeadID     `json:"id"`
	Name            string     `json:"name,omitempty"`
	Phone           string     `json:"phone,omitempty"`
	Email           string     `json:"email,omitempty"`
	Status          LeadStatus `json:"status"`
	LastContact     string     `json:"lastContact,omitempty"`
	CreatedAt       string     `json:"createdAt,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	Source          string     `json:"source,omitempty"`
	IsDuplicate     bool       `json:"isDuplicate,omitempty"`
	DuplicateStatus string     `json:"duplicateStatus,omitempty"`
	AssignedTo      string     `json:"assignedTo,omitempty"`
	Employee        string     `json:"employee,omitempty"`
}

// UnmarshalJSON decodes a lead leniently. Fields of an unexpected JSON type
// fall back to their zero value instead of rejecting the record.
func (l *Lead) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID              LeadID    `json:"id"`
		Name            looseText `json:"name"`
		Phone           looseText `json:"phone"`
		Email           looseText `json:"email"`
		Status          looseText `json:"status"`
		LastContact     looseText `json:"lastContact"`
		CreatedAt       looseText `json:"createdAt"`
		Notes           looseText `json:"notes"`
		Source          looseText `json:"source"`
		IsDuplicate     looseBool `json:"isDuplicate"`
		DuplicateStatus looseText `json:"duplicateStatus"`
		AssignedTo      looseText `json:"assignedTo"`
		Employee        looseText `json:"employee"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*l = Lead{
		ID:              raw.ID,
		Name:            string(raw.Name),
		Phone:           string(raw.Phone),
		Email:           string(raw.Email),
		Status:          LeadStatus(raw.Status),
		LastContact:     string(raw.LastContact),
		CreatedAt:       string(raw.CreatedAt),
		Notes:           string(raw.Notes),
		Source:          string(raw.Source),
		IsDuplicate:     bool(raw.IsDuplicate),
		DuplicateStatus: string(raw.DuplicateStatus),
		AssignedTo:      string(raw.AssignedTo),
		Employee:        string(raw.Employee),
	}
	return nil
}

// Owner returns the trimmed owner name, preferring assignedTo.
func (l Lead) Owner() string {
	if owner := strings.TrimSpace(l.AssignedTo); owner != "" {
		return owner
	}
	return strings.TrimSpace(l.Employee)
}

// LastActionDate returns the raw date used for recency: lastContact, else createdAt.
func (l Lead) LastActionDate() string {
	if strings.TrimSpace(l.LastContact) != "" {
		return l.LastContact
	}
	return l.CreatedAt
}

// RelevantDate returns the raw date used for range filtering: createdAt, else lastContact.
func (l Lead) RelevantDate() string {
	if strings.TrimSpace(l.CreatedAt) != "" {
		return l.CreatedAt
	}
	return l.LastContact
}

// Duplicate reports whether the lead is flagged as a duplicate.
func (l Lead) Duplicate() bool {
	return l.IsDuplicate || strings.EqualFold(strings.TrimSpace(l.DuplicateStatus), "duplicate")
}
