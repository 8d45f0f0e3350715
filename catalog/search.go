package catalog

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the accepted format for date-range search bounds.
const DateLayout = "2006-01-02"

// Combinator joins two tag predicates.
type Combinator int

const (
	OpAnd Combinator = iota
	OpOr
)

func (c Combinator) String() string {
	if c == OpOr {
		return "OR"
	}
	return "AND"
}

// ParseCombinator accepts "and" or "or" in any case. An empty string means AND.
func ParseCombinator(s string) (Combinator, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "and":
		return OpAnd, nil
	case "or":
		return OpOr, nil
	}
	return OpAnd, fmt.Errorf("%w: combinator %q must be AND or OR", ErrInvalidInput, s)
}

// TagPair is one name/value condition of a tag search. The zero value means "unset".
type TagPair struct {
	Name  string
	Value string
}

func (tp TagPair) trimmed() TagPair {
	return TagPair{Name: strings.TrimSpace(tp.Name), Value: strings.TrimSpace(tp.Value)}
}

func (tp TagPair) set() bool { return tp.Name != "" || tp.Value != "" }

// TagQuery searches for up to two tag pairs combined with Op.
type TagQuery struct {
	First  TagPair
	Second TagPair
	Op     Combinator
}

// AllPhotos returns the user's photos across all albums, each once, in first-encounter order.
func (m *Manager) AllPhotos(u *User) []*Photo {
	seen := make(map[PhotoID]bool, len(u.Photos))
	var out []*Photo
	for _, a := range u.Albums {
		for _, id := range a.PhotoIDs {
			if seen[id] {
				continue
			}
			seen[id] = true
			if p, ok := u.Photos[id]; ok {
				out = append(out, p)
			}
		}
	}
	return out
}

// ParseDateRange parses two DateLayout dates in loc.
func ParseDateRange(from, to string, loc *time.Location) (time.Time, time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	lo, err := time.ParseInLocation(DateLayout, strings.TrimSpace(from), loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: from date %q, want yyyy-mm-dd", ErrInvalidInput, from)
	}
	hi, err := time.ParseInLocation(DateLayout, strings.TrimSpace(to), loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: to date %q, want yyyy-mm-dd", ErrInvalidInput, to)
	}
	return lo, hi, nil
}

// SearchByDate returns photos captured on a calendar day between from and to, inclusive.
// Days are cut in the manager's location.
func (m *Manager) SearchByDate(u *User, from, to time.Time) ([]*Photo, error) {
	if err := ownsPhotos(u); err != nil {
		return nil, err
	}
	lo, hi := m.day(from), m.day(to)
	if lo.After(hi) {
		return nil, fmt.Errorf("%w: from date %s is after to date %s", ErrInvalidInput,
			lo.Format(DateLayout), hi.Format(DateLayout))
	}
	var out []*Photo
	for _, p := range m.AllPhotos(u) {
		d := m.day(p.CaptureDate)
		if !d.Before(lo) && !d.After(hi) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *Manager) day(t time.Time) time.Time {
	t = t.In(m.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, m.loc)
}

// SearchByTags returns photos matching the query. With one pair set, a photo matches when
// one of its tags equals the pair ignoring case; with two, the pair predicates are joined
// by q.Op.
func (m *Manager) SearchByTags(u *User, q TagQuery) ([]*Photo, error) {
	if err := ownsPhotos(u); err != nil {
		return nil, err
	}
	first, second := q.First.trimmed(), q.Second.trimmed()
	var pairs []TagPair
	for _, tp := range []TagPair{first, second} {
		if !tp.set() {
			continue
		}
		if tp.Name == "" || tp.Value == "" {
			return nil, fmt.Errorf("%w: tag condition needs both a name and a value", ErrInvalidInput)
		}
		pairs = append(pairs, tp)
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("%w: enter at least one tag name=value", ErrInvalidInput)
	}

	match := func(p *Photo) bool { return p.HasTag(pairs[0].Name, pairs[0].Value) }
	if len(pairs) == 2 {
		a, b := pairs[0], pairs[1]
		if q.Op == OpOr {
			match = func(p *Photo) bool { return p.HasTag(a.Name, a.Value) || p.HasTag(b.Name, b.Value) }
		} else {
			match = func(p *Photo) bool { return p.HasTag(a.Name, a.Value) && p.HasTag(b.Name, b.Value) }
		}
	}

	var out []*Photo
	for _, p := range m.AllPhotos(u) {
		if match(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

// SaveResultsAsAlbum creates an album holding the same photos as results.
func (m *Manager) SaveResultsAsAlbum(u *User, name string, results []*Photo) (*Album, error) {
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: no results to save", ErrInvalidInput)
	}
	n, err := m.checkAlbumName(u, name, nil)
	if err != nil {
		return nil, err
	}
	a := &Album{Name: n}
	for _, p := range results {
		if _, ok := u.Photos[p.ID]; !ok {
			return nil, fmt.Errorf("%w: photo %q does not belong to %s", ErrNotFound, p.ID, u.Username)
		}
		if !a.Contains(p.ID) {
			a.PhotoIDs = append(a.PhotoIDs, p.ID)
		}
	}
	u.Albums = append(u.Albums, a)
	return a, m.Save()
}
