package entities

import (
	"time"
)

// Status is an outcome of the latest certificate check.
type Status string

// Known statuses.
const (
	StatusOnline  Status = "Online"
	StatusOffline Status = "Offline"
	StatusError   Status = "Error"
)

// DomainRecord is the latest known certificate state of a single domain.
type DomainRecord struct {
	Status        Status    `json:"status"`
	HasSSL        bool      `json:"has_ssl"`
	CommonName    string    `json:"common_name,omitempty"`
	ValidFrom     time.Time `json:"valid_from,omitzero"`
	ValidUntil    time.Time `json:"valid_until,omitzero"`
	DaysRemaining *int      `json:"days_remaining,omitempty"`
	ErrorMessage  string    `json:"error_message,omitempty"`
	LastCheck     time.Time `json:"last_check"`
	Note          string    `json:"note,omitempty"`
}

// Checked reports whether the record has been probed at least once.
func (r DomainRecord) Checked() bool {
	return !r.LastCheck.IsZero()
}

// Days returns days remaining and whether the value is known.
func (r DomainRecord) Days() (int, bool) {
	if r.DaysRemaining == nil {
		return 0, false
	}
	return *r.DaysRemaining, true
}

// Merge returns r overwritten by the probe result next, keeping the note.
func (r DomainRecord) Merge(next DomainRecord) DomainRecord {
	next.Note = r.Note
	return next.Clone()
}

// Clone returns a copy that shares no memory with r.
func (r DomainRecord) Clone() DomainRecord {
	if r.DaysRemaining != nil {
		d := *r.DaysRemaining
		r.DaysRemaining = &d
	}
	return r
}

// Domains holds domain name -> DomainRecord.
type Domains map[string]DomainRecord

// Clone returns a deep copy of d.
func (d Domains) Clone() Domains {
	out := make(Domains, len(d))
	for name, rec := range d { //nolint:gocritic
		out[name] = rec.Clone()
	}
	return out
}

// IntPtr is a helper for optional integer fields.
func IntPtr(v int) *int {
	return &v
}
