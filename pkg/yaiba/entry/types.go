package entry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// DefaultLocation is the fixed offset the VRChat client writes its log
// timestamps in.
var DefaultLocation = time.FixedZone("JST", 9*60*60)

// Timestamp is a point in time taken from a log line.
// The zero value means "unknown" and encodes as JSON null.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// TimestampFromSeconds converts POSIX seconds (fraction preserved) into a
// Timestamp in DefaultLocation.
func TimestampFromSeconds(sec float64) Timestamp {
	whole, frac := math.Modf(sec)
	nsec := int64(math.Round(frac * 1e9))
	return Timestamp{Time: time.Unix(int64(whole), nsec).In(DefaultLocation)}
}

// Seconds returns the POSIX seconds of t, including the fractional part.
func (t Timestamp) Seconds() float64 {
	return float64(t.Unix()) + float64(t.Nanosecond())/1e9
}

// Equal reports whether t and u are the same instant.
func (t Timestamp) Equal(u Timestamp) bool {
	return t.Time.Equal(u.Time)
}

// MarshalJSON encodes t as numeric POSIX seconds.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Seconds())
}

// UnmarshalJSON decodes numeric POSIX seconds. null leaves t unchanged.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var sec float64
	if err := json.Unmarshal(data, &sec); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	*t = TimestampFromSeconds(sec)
	return nil
}

// UserName is a display name exactly as it appeared in the log.
type UserName string

// PseudoUserName is a pseudonymized UserName.
type PseudoUserName string

// PlayerID is the world-internal player id. It is only meaningful within
// one world session.
type PlayerID int

// Raw is one log entry which is not parsed yet, e.g.
// "2022.03.04 21:50:19 Log        -  [Behaviour] Entering Room: Some Room".
type Raw string

// SchemaVersion is a self-declared player position stream revision.
type SchemaVersion struct {
	Major int
	Minor int
	Patch int
}

// Compare returns -1, 0 or +1 depending on whether v is lower than,
// equal to, or greater than w.
func (v SchemaVersion) Compare(w SchemaVersion) int {
	switch {
	case v.Major != w.Major:
		return cmpInt(v.Major, w.Major)
	case v.Minor != w.Minor:
		return cmpInt(v.Minor, w.Minor)
	default:
		return cmpInt(v.Patch, w.Patch)
	}
}

func (v SchemaVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
