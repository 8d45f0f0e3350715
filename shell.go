package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"photo-catalog/catalog"
	"photo-catalog/thumbnail"
)

const thumbBox = 160

// shell is the interactive session: one logged-in user at a time and an optional open album.
type shell struct {
	*prompter
	mgr    *catalog.Manager
	sess   *catalog.Session
	thumbs *thumbnail.Decoder
	loc    *time.Location

	album *catalog.Album
}

func newShell(p *prompter, mgr *catalog.Manager, sess *catalog.Session, thumbs *thumbnail.Decoder, loc *time.Location) *shell {
	if loc == nil {
		loc = time.Local
	}
	return &shell{prompter: p, mgr: mgr, sess: sess, thumbs: thumbs, loc: loc}
}

func (s *shell) printHelp() {
	fmt.Fprintln(s.out, "Available commands:")
	fmt.Fprintln(s.out, "  Session: login, logout, whoami, passwd")
	fmt.Fprintln(s.out, "  Albums: list albums, create album, rename album, delete album, open album, close album")
	fmt.Fprintln(s.out, "  Photos: list photos, add photo, remove photo, show photo, caption, tag, untag, copy photo, move photo")
	fmt.Fprintln(s.out, "  Search: search date, search tags")
	fmt.Fprintln(s.out, "  Admin: list users, add user, delete user")
	fmt.Fprintln(s.out, "  System: help, exit")
}

func (s *shell) run() {
	fmt.Fprintln(s.out, "Welcome to the Photo Catalog!")
	s.printHelp()

	for {
		fmt.Fprint(s.out, "\n> ")
		if !s.sc.Scan() {
			break
		}
		cmd := strings.ToLower(strings.Join(strings.Fields(s.sc.Text()), " "))

		switch cmd {
		case "":
			continue
		case "help":
			s.printHelp()
		case "login":
			s.handleLogin()
		case "logout":
			s.handleLogout()
		case "whoami":
			s.handleWhoami()
		case "passwd":
			s.handlePasswd()
		case "list albums":
			s.handleListAlbums()
		case "create album":
			s.handleCreateAlbum()
		case "rename album":
			s.handleRenameAlbum()
		case "delete album":
			s.handleDeleteAlbum()
		case "open album":
			s.handleOpenAlbum()
		case "close album":
			s.album = nil
			fmt.Fprintln(s.out, "Album closed.")
		case "list photos":
			s.handleListPhotos()
		case "add photo":
			s.handleAddPhoto()
		case "remove photo":
			s.handleRemovePhoto()
		case "show photo":
			s.handleShowPhoto()
		case "caption":
			s.handleCaption()
		case "tag":
			s.handleTag()
		case "untag":
			s.handleUntag()
		case "copy photo":
			s.handleTransfer(false)
		case "move photo":
			s.handleTransfer(true)
		case "search date":
			s.handleSearchDate()
		case "search tags":
			s.handleSearchTags()
		case "list users":
			s.handleListUsers()
		case "add user":
			s.handleAddUser()
		case "delete user":
			s.handleDeleteUser()
		case "exit", "quit":
			fmt.Fprintln(s.out, "Goodbye!")
			return
		default:
			fmt.Fprintln(s.out, "Unknown command. Type 'help' to see the available commands.")
		}
	}
}

// report prints done when err is nil. A persistence failure means the change is applied
// but not saved, so done is still printed along with a warning.
func (s *shell) report(err error, done string) {
	switch {
	case err == nil:
		fmt.Fprintln(s.out, done)
	case errors.Is(err, catalog.ErrPersistence):
		fmt.Fprintln(s.out, done)
		fmt.Fprintf(s.out, "Warning: changes could not be saved: %v\n", err)
	default:
		fmt.Fprintf(s.out, "Error: %v\n", err)
	}
}

func (s *shell) user() (*catalog.User, bool) {
	u, err := s.sess.RequireUser()
	if err != nil {
		fmt.Fprintln(s.out, "Please log in first.")
		return nil, false
	}
	return u, true
}

func (s *shell) admin() bool {
	if err := s.sess.RequireAdmin(); err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return false
	}
	return true
}

// owner is user for commands that work on albums; the administrator has none.
func (s *shell) owner() (*catalog.User, bool) {
	u, err := s.sess.RequireOwner()
	switch {
	case errors.Is(err, catalog.ErrNotLoggedIn):
		fmt.Fprintln(s.out, "Please log in first.")
		return nil, false
	case err != nil:
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return nil, false
	}
	return u, true
}

// openAlbum returns the album selected with 'open album'.
func (s *shell) openAlbum() (*catalog.User, *catalog.Album, bool) {
	u, ok := s.owner()
	if !ok {
		return nil, nil, false
	}
	if s.album == nil {
		fmt.Fprintln(s.out, "No album is open. Use 'open album' first.")
		return nil, nil, false
	}
	return u, s.album, true
}

func (s *shell) askAlbum(u *catalog.User, label string) (*catalog.Album, bool) {
	name, ok := s.ask(label)
	if !ok {
		return nil, false
	}
	a, err := s.mgr.Album(u, name)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return nil, false
	}
	return a, true
}

// askPhoto asks for a 1-based position in the open album.
func (s *shell) askPhoto() (*catalog.User, *catalog.Album, *catalog.Photo, bool) {
	u, a, ok := s.openAlbum()
	if !ok {
		return nil, nil, nil, false
	}
	raw, ok := s.ask("Photo #: ")
	if !ok {
		return nil, nil, nil, false
	}
	n, err := strconv.Atoi(raw)
	photos := s.mgr.AlbumPhotos(u, a)
	if err != nil || n < 1 || n > len(photos) {
		fmt.Fprintf(s.out, "Invalid photo number: %s\n", raw)
		return nil, nil, nil, false
	}
	return u, a, photos[n-1], true
}

// ---------------------------------------------------------------------------
// Session
// ---------------------------------------------------------------------------

func (s *shell) handleLogin() {
	name, ok := s.ask("Username: ")
	if !ok {
		return
	}
	var password string
	if needsPassword(s.mgr.Catalog(), name) {
		var err error
		if password, err = s.readPassword("Password: "); err != nil {
			fmt.Fprintf(s.out, "Error reading password: %v\n", err)
			return
		}
	}

	u, err := s.sess.Login(name, password)
	if u == nil {
		fmt.Fprintf(s.out, "Login failed: %v\n", err)
		return
	}
	s.album = nil
	role := "user"
	if u.IsAdmin() {
		role = "administrator"
	}
	s.report(err, fmt.Sprintf("Logged in as %s (%s).", u.Username, role))
}

func (s *shell) handleLogout() {
	if s.sess.Current() == nil {
		fmt.Fprintln(s.out, "Nobody is logged in.")
		return
	}
	s.sess.Logout()
	s.album = nil
	fmt.Fprintln(s.out, "Logged out.")
}

func (s *shell) handleWhoami() {
	u := s.sess.Current()
	if u == nil {
		fmt.Fprintln(s.out, "Nobody is logged in.")
		return
	}
	open := "none"
	if s.album != nil {
		open = s.album.Name
	}
	fmt.Fprintf(s.out, "%s (%s), open album: %s\n", u.Username, u.Role, open)
}

func (s *shell) handlePasswd() {
	u, ok := s.user()
	if !ok {
		return
	}
	password, err := s.readPassword(fmt.Sprintf("New password for %s (blank to remove): ", u.Username))
	if err != nil {
		fmt.Fprintf(s.out, "Error reading password: %v\n", err)
		return
	}
	s.report(s.mgr.SetPassword(u, password), "Password updated.")
}

// ---------------------------------------------------------------------------
// Albums
// ---------------------------------------------------------------------------

func (s *shell) handleListAlbums() {
	u, ok := s.owner()
	if !ok {
		return
	}
	if len(u.Albums) == 0 {
		fmt.Fprintln(s.out, "No albums yet.")
		return
	}

	fmt.Fprintf(s.out, "%-30s %-7s %-12s %-12s\n", "Album", "Photos", "Earliest", "Latest")
	fmt.Fprintln(s.out, strings.Repeat("-", 64))
	for _, a := range u.Albums {
		first, okFirst := s.mgr.EarliestDate(u, a)
		last, okLast := s.mgr.LatestDate(u, a)
		fmt.Fprintf(s.out, "%-30s %-7d %-12s %-12s\n",
			truncateString(a.Name, 30),
			s.mgr.AlbumSize(a),
			formatDate(first, okFirst, s.loc),
			formatDate(last, okLast, s.loc))
	}
}

func (s *shell) handleCreateAlbum() {
	u, ok := s.owner()
	if !ok {
		return
	}
	name, ok := s.ask("Album name: ")
	if !ok {
		return
	}
	a, err := s.mgr.CreateAlbum(u, name)
	if a == nil {
		s.report(err, "")
		return
	}
	s.report(err, fmt.Sprintf("Created album '%s'.", a.Name))
}

func (s *shell) handleRenameAlbum() {
	u, ok := s.owner()
	if !ok {
		return
	}
	a, ok := s.askAlbum(u, "Album to rename: ")
	if !ok {
		return
	}
	newName, ok := s.ask("New name: ")
	if !ok {
		return
	}
	old := a.Name
	s.report(s.mgr.RenameAlbum(u, a, newName), fmt.Sprintf("Renamed '%s' to '%s'.", old, strings.TrimSpace(newName)))
}

func (s *shell) handleDeleteAlbum() {
	u, ok := s.owner()
	if !ok {
		return
	}
	a, ok := s.askAlbum(u, "Album to delete: ")
	if !ok {
		return
	}
	if !s.confirm(fmt.Sprintf("Delete album '%s' with %d photo(s)?", a.Name, a.Size())) {
		fmt.Fprintln(s.out, "Cancelled.")
		return
	}
	if s.album == a {
		s.album = nil
	}
	s.report(s.mgr.DeleteAlbum(u, a), fmt.Sprintf("Deleted album '%s'.", a.Name))
}

func (s *shell) handleOpenAlbum() {
	u, ok := s.owner()
	if !ok {
		return
	}
	a, ok := s.askAlbum(u, "Album: ")
	if !ok {
		return
	}
	s.album = a
	fmt.Fprintf(s.out, "Opened '%s' (%d photo(s)).\n", a.Name, a.Size())
}

// ---------------------------------------------------------------------------
// Photos
// ---------------------------------------------------------------------------

func (s *shell) printPhotos(photos []*catalog.Photo) {
	fmt.Fprintf(s.out, "%-4s %-30s %-12s %s\n", "#", "Photo", "Date", "Tags")
	fmt.Fprintln(s.out, strings.Repeat("-", 80))
	for i, p := range photos {
		fmt.Fprintf(s.out, "%-4d %-30s %-12s %s\n",
			i+1,
			truncateString(p.DisplayName(), 30),
			formatDate(p.CaptureDate, true, s.loc),
			tagList(p))
	}
}

func (s *shell) handleListPhotos() {
	u, a, ok := s.openAlbum()
	if !ok {
		return
	}
	photos := s.mgr.AlbumPhotos(u, a)
	if len(photos) == 0 {
		fmt.Fprintf(s.out, "Album '%s' is empty.\n", a.Name)
		return
	}
	s.printPhotos(photos)
}

func (s *shell) handleAddPhoto() {
	u, a, ok := s.openAlbum()
	if !ok {
		return
	}
	path, ok := s.ask("Path to image: ")
	if !ok {
		return
	}
	p, err := s.mgr.AddPhoto(u, a, path)
	if p == nil {
		s.report(err, "")
		return
	}
	s.report(err, fmt.Sprintf("Added %s to '%s'.", p.DisplayName(), a.Name))
}

func (s *shell) handleRemovePhoto() {
	u, a, p, ok := s.askPhoto()
	if !ok {
		return
	}
	s.report(s.mgr.RemovePhoto(u, a, p.ID), fmt.Sprintf("Removed %s from '%s'.", p.DisplayName(), a.Name))
}

func (s *shell) handleShowPhoto() {
	_, _, p, ok := s.askPhoto()
	if !ok {
		return
	}
	fmt.Fprintf(s.out, "Path:    %s\n", p.Path)
	fmt.Fprintf(s.out, "Caption: %s\n", p.Caption)
	fmt.Fprintf(s.out, "Date:    %s\n", p.CaptureDate.In(s.loc).Format("2006-01-02 15:04:05"))
	fmt.Fprintf(s.out, "Tags:    %s\n", tagList(p))

	if s.thumbs == nil {
		return
	}
	img, err := s.thumbs.Thumbnail(p.Path, thumbBox, thumbBox)
	if err != nil {
		fmt.Fprintln(s.out, "Preview: no image")
		return
	}
	b := img.Bounds()
	fmt.Fprintf(s.out, "Preview: %dx%d\n", b.Dx(), b.Dy())
}

func (s *shell) handleCaption() {
	u, _, p, ok := s.askPhoto()
	if !ok {
		return
	}
	text, ok := s.ask("Caption: ")
	if !ok {
		return
	}
	s.report(s.mgr.SetCaption(u, p.ID, text), "Caption updated.")
}

func (s *shell) handleTag() {
	u, _, p, ok := s.askPhoto()
	if !ok {
		return
	}
	raw, ok := s.ask("Tag (name=value): ")
	if !ok {
		return
	}
	t, err := catalog.ParseTag(raw)
	if err != nil {
		s.report(err, "")
		return
	}
	t, err = s.mgr.AddTag(u, p.ID, t.Name, t.Value)
	s.report(err, fmt.Sprintf("Tagged %s with %s.", p.DisplayName(), t))
}

func (s *shell) handleUntag() {
	u, _, p, ok := s.askPhoto()
	if !ok {
		return
	}
	raw, ok := s.ask("Tag to remove (name=value): ")
	if !ok {
		return
	}
	t, err := catalog.ParseTag(raw)
	if err != nil {
		s.report(err, "")
		return
	}
	s.report(s.mgr.RemoveTag(u, p.ID, t), fmt.Sprintf("Removed tag %s.", t))
}

func (s *shell) handleTransfer(move bool) {
	u, from, p, ok := s.askPhoto()
	if !ok {
		return
	}
	to, ok := s.askAlbum(u, "Target album: ")
	if !ok {
		return
	}
	if move {
		s.report(s.mgr.MovePhoto(u, p.ID, from, to), fmt.Sprintf("Moved %s to '%s'.", p.DisplayName(), to.Name))
		return
	}
	s.report(s.mgr.CopyPhoto(u, p.ID, from, to), fmt.Sprintf("Copied %s to '%s'.", p.DisplayName(), to.Name))
}

// ---------------------------------------------------------------------------
// Search
// ---------------------------------------------------------------------------

func (s *shell) handleSearchDate() {
	u, ok := s.owner()
	if !ok {
		return
	}
	fromStr, ok := s.ask("From (YYYY-MM-DD): ")
	if !ok {
		return
	}
	toStr, ok := s.ask("To (YYYY-MM-DD): ")
	if !ok {
		return
	}
	from, to, err := catalog.ParseDateRange(fromStr, toStr, s.loc)
	if err != nil {
		s.report(err, "")
		return
	}
	results, err := s.mgr.SearchByDate(u, from, to)
	if err != nil {
		s.report(err, "")
		return
	}
	s.showResults(u, results)
}

func (s *shell) handleSearchTags() {
	u, ok := s.owner()
	if !ok {
		return
	}
	var q catalog.TagQuery
	first, ok := s.askTagPair("First tag (name=value): ")
	if !ok {
		return
	}
	q.First = first
	second, ok := s.askTagPair("Second tag (name=value, blank for none): ")
	if !ok {
		return
	}
	q.Second = second
	if q.First != (catalog.TagPair{}) && q.Second != (catalog.TagPair{}) {
		raw, ok := s.ask("Combine with (and/or): ")
		if !ok {
			return
		}
		op, err := catalog.ParseCombinator(raw)
		if err != nil {
			s.report(err, "")
			return
		}
		q.Op = op
	}

	results, err := s.mgr.SearchByTags(u, q)
	if err != nil {
		s.report(err, "")
		return
	}
	s.showResults(u, results)
}

// askTagPair reads an optional name=value pair. Blank input yields the zero pair.
func (s *shell) askTagPair(label string) (catalog.TagPair, bool) {
	raw, ok := s.ask(label)
	if !ok {
		return catalog.TagPair{}, false
	}
	if raw == "" {
		return catalog.TagPair{}, true
	}
	name, value, _ := strings.Cut(raw, "=")
	return catalog.TagPair{Name: name, Value: value}, true
}

func (s *shell) showResults(u *catalog.User, results []*catalog.Photo) {
	if len(results) == 0 {
		fmt.Fprintln(s.out, "No matching photos.")
		return
	}
	fmt.Fprintf(s.out, "Found %d photo(s):\n", len(results))
	s.printPhotos(results)

	name, ok := s.ask("Save results as album (blank to skip): ")
	if !ok || name == "" {
		return
	}
	a, err := s.mgr.SaveResultsAsAlbum(u, name, results)
	if a == nil {
		s.report(err, "")
		return
	}
	s.report(err, fmt.Sprintf("Saved %d photo(s) to '%s'.", a.Size(), a.Name))
}

// ---------------------------------------------------------------------------
// Admin
// ---------------------------------------------------------------------------

func (s *shell) handleListUsers() {
	if !s.admin() {
		return
	}
	fmt.Fprintf(s.out, "%-25s %-15s %-8s %-10s\n", "Username", "Role", "Albums", "Password")
	fmt.Fprintln(s.out, strings.Repeat("-", 62))
	for _, u := range s.mgr.Users() {
		passwordStatus := "No"
		if u.HasPassword() {
			passwordStatus = "Yes"
		}
		fmt.Fprintf(s.out, "%-25s %-15s %-8d %-10s\n", truncateString(u.Username, 25), u.Role, len(u.Albums), passwordStatus)
	}
}

func (s *shell) handleAddUser() {
	if !s.admin() {
		return
	}
	name, ok := s.ask("Username: ")
	if !ok {
		return
	}
	password, err := s.readPassword(fmt.Sprintf("Password for %s (blank for none): ", name))
	if err != nil {
		fmt.Fprintf(s.out, "Error reading password: %v\n", err)
		return
	}
	u, err := s.mgr.CreateUser(name, password)
	if u == nil {
		s.report(err, "")
		return
	}
	s.report(err, fmt.Sprintf("Added user '%s'.", u.Username))
}

func (s *shell) handleDeleteUser() {
	if !s.admin() {
		return
	}
	name, ok := s.ask("Username: ")
	if !ok {
		return
	}
	if !s.confirm(fmt.Sprintf("Delete user '%s' and all their albums?", name)) {
		fmt.Fprintln(s.out, "Cancelled.")
		return
	}
	s.report(s.mgr.DeleteUser(name), fmt.Sprintf("Deleted user '%s'.", name))
}
