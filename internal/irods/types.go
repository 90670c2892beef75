package irods

import (
	"path"
	"sort"
	"strings"
	"time"
)

// AVU is a single attribute/value/units metadata triple on a catalog entity.
type AVU struct {
	Attribute string `json:"attribute"`
	Value     string `json:"value"`
	Units     string `json:"units,omitempty"`
}

// Access is one entry in an entity's access control list.
type Access struct {
	Owner string `json:"owner"`
	Zone  string `json:"zone,omitempty"`
	Level string `json:"level"`
}

// Access levels understood by the catalog.
const (
	AccessNull  = "null"
	AccessRead  = "read"
	AccessWrite = "write"
	AccessOwn   = "own"
)

// Replica describes one physical copy of a data object.
type Replica struct {
	Number   int    `json:"number"`
	Checksum string `json:"checksum"`
	Valid    bool   `json:"valid"`
	Resource string `json:"resource,omitempty"`
	Location string `json:"location,omitempty"`
}

// DataObject is the catalog view of a single data object.
type DataObject struct {
	Path     string
	Checksum string
	Size     int64
	AVUs     []AVU
	Access   []Access
	Replicas []Replica
	Created  time.Time
	Modified time.Time
}

// Collection is the catalog view of a collection. Contents holds every
// member path; Objects and Collections split the members by kind.
type Collection struct {
	Path        string
	AVUs        []AVU
	Access      []Access
	Contents    []string
	Objects     []string
	Collections []string
}

// MetaValues returns all values of the named attribute, sorted.
func (d *DataObject) MetaValues(attribute string) []string {
	return metaValues(d.AVUs, attribute)
}

// HasMeta reports whether the object carries the exact AVU.
func (d *DataObject) HasMeta(avu AVU) bool {
	for _, existing := range d.AVUs {
		if existing == avu {
			return true
		}
	}
	return false
}

// MetaValues returns all values of the named attribute, sorted.
func (c *Collection) MetaValues(attribute string) []string {
	return metaValues(c.AVUs, attribute)
}

// HasMeta reports whether the collection carries the exact AVU.
func (c *Collection) HasMeta(avu AVU) bool {
	for _, existing := range c.AVUs {
		if existing == avu {
			return true
		}
	}
	return false
}

// ValidReplicas returns the replicas flagged valid by the catalog.
func (d *DataObject) ValidReplicas() []Replica {
	valid := make([]Replica, 0, len(d.Replicas))
	for _, replica := range d.Replicas {
		if replica.Valid {
			valid = append(valid, replica)
		}
	}
	return valid
}

// InvalidReplicas returns the replicas flagged stale or invalid.
func (d *DataObject) InvalidReplicas() []Replica {
	invalid := make([]Replica, 0)
	for _, replica := range d.Replicas {
		if !replica.Valid {
			invalid = append(invalid, replica)
		}
	}
	return invalid
}

// ConsensusChecksum returns the checksum shared by every valid replica, or
// false when the valid replicas disagree or none exist.
func (d *DataObject) ConsensusChecksum() (string, bool) {
	valid := d.ValidReplicas()
	if len(valid) == 0 {
		return "", false
	}
	checksum := valid[0].Checksum
	for _, replica := range valid[1:] {
		if replica.Checksum != checksum {
			return "", false
		}
	}
	if checksum == "" {
		return "", false
	}
	return checksum, true
}

func metaValues(avus []AVU, attribute string) []string {
	var values []string
	for _, avu := range avus {
		if avu.Attribute == attribute {
			values = append(values, avu.Value)
		}
	}
	sort.Strings(values)
	return values
}

// SplitPath splits an absolute data object path into its collection and name.
func SplitPath(objPath string) (collection, name string) {
	cleaned := path.Clean(strings.TrimSpace(objPath))
	return path.Dir(cleaned), path.Base(cleaned)
}
