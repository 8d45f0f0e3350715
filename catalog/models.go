package catalog

import (
	"path/filepath"
	"strings"
	"time"
)

// SnapshotVersion is written into every persisted catalog.
const SnapshotVersion = 1

// Tag is a name/value pair attached to a photo, e.g. person=alice or location=Prague.
type Tag struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Matches reports whether the tag equals name/value ignoring case on both fields.
func (t Tag) Matches(name, value string) bool {
	return strings.EqualFold(t.Name, name) && strings.EqualFold(t.Value, value)
}

func (t Tag) String() string { return t.Name + "=" + t.Value }

// PhotoID identifies a photo inside its owner's photo table.
type PhotoID string

// Photo is a single image file known to the catalog. Albums refer to photos by ID,
// so one Photo may appear in several albums of the same user.
type Photo struct {
	ID          PhotoID   `json:"id" yaml:"id"`
	Path        string    `json:"path" yaml:"path"`
	Caption     string    `json:"caption" yaml:"caption"`
	CaptureDate time.Time `json:"capture_date" yaml:"capture_date"`
	Tags        []Tag     `json:"tags" yaml:"tags"`
}

// DisplayName returns the caption, or the file name when no caption is set.
func (p *Photo) DisplayName() string {
	if p.Caption == "" {
		return filepath.Base(p.Path)
	}
	return p.Caption
}

// HasTag reports whether any of the photo's tags matches name/value case-insensitively.
func (p *Photo) HasTag(name, value string) bool {
	for _, t := range p.Tags {
		if t.Matches(name, value) {
			return true
		}
	}
	return false
}

// Album is a named, ordered list of photo IDs.
type Album struct {
	Name     string    `json:"name" yaml:"name"`
	PhotoIDs []PhotoID `json:"photo_ids" yaml:"photo_ids"`
}

// Size returns the number of photos in the album.
func (a *Album) Size() int { return len(a.PhotoIDs) }

// Contains reports whether id is referenced by the album.
func (a *Album) Contains(id PhotoID) bool {
	return a.indexOf(id) >= 0
}

func (a *Album) indexOf(id PhotoID) int {
	for i, pid := range a.PhotoIDs {
		if pid == id {
			return i
		}
	}
	return -1
}

// Role distinguishes regular accounts from the administrator account.
type Role string

const (
	RoleRegular       Role = "regular"
	RoleAdministrator Role = "administrator"
)

// User owns albums and the photo table those albums point into.
type User struct {
	Username     string             `json:"username" yaml:"username"`
	Role         Role               `json:"role" yaml:"role"`
	PasswordHash string             `json:"password_hash,omitempty" yaml:"password_hash,omitempty"`
	Protected    bool               `json:"protected,omitempty" yaml:"protected,omitempty"`
	Photos       map[PhotoID]*Photo `json:"photos" yaml:"photos"`
	Albums       []*Album           `json:"albums" yaml:"albums"`
}

// NewUser returns an empty regular account.
func NewUser(username string) *User {
	return &User{
		Username: username,
		Role:     RoleRegular,
		Photos:   make(map[PhotoID]*Photo),
	}
}

// IsAdmin reports whether the account carries the administrator role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdministrator }

// HasPassword reports whether login requires a password.
func (u *User) HasPassword() bool { return u.PasswordHash != "" }

// Catalog is the whole persisted state: every user with their albums and photos.
type Catalog struct {
	Version int     `json:"version" yaml:"version"`
	Users   []*User `json:"users" yaml:"users"`
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{Version: SnapshotVersion}
}

// User looks a user up by exact username.
func (c *Catalog) User(username string) (*User, bool) {
	for _, u := range c.Users {
		if u.Username == username {
			return u, true
		}
	}
	return nil, false
}

// Administrator returns the first account with the administrator role.
func (c *Catalog) Administrator() (*User, bool) {
	for _, u := range c.Users {
		if u.IsAdmin() {
			return u, true
		}
	}
	return nil, false
}
