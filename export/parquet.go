// Package export writes a user's photo index to Parquet for analysis outside the catalog.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	"photo-catalog/catalog"
)

// Row is one (album, photo) pair. A photo shared by two albums yields two rows with the same PhotoID.
type Row struct {
	User          string `parquet:"user"`
	Album         string `parquet:"album"`
	Position      int32  `parquet:"position"`
	PhotoID       string `parquet:"photo_id"`
	Path          string `parquet:"path"`
	Caption       string `parquet:"caption"`
	CaptureUnixNs int64  `parquet:"capture_unix_ns"`
	Tags          string `parquet:"tags"`
}

// CaptureTime returns the capture date in UTC.
func (r Row) CaptureTime() time.Time { return time.Unix(0, r.CaptureUnixNs).UTC() }

// Rows flattens u's albums in album order, then photo order.
func Rows(u *catalog.User) []Row {
	var rows []Row
	for _, a := range u.Albums {
		for i, id := range a.PhotoIDs {
			p, ok := u.Photos[id]
			if !ok {
				continue
			}
			tags := make([]string, len(p.Tags))
			for j, t := range p.Tags {
				tags[j] = t.String()
			}
			rows = append(rows, Row{
				User:          u.Username,
				Album:         a.Name,
				Position:      int32(i),
				PhotoID:       string(p.ID),
				Path:          p.Path,
				Caption:       p.Caption,
				CaptureUnixNs: p.CaptureDate.UnixNano(),
				Tags:          strings.Join(tags, ";"),
			})
		}
	}
	return rows
}

// WriteParquet writes u's rows to w and returns how many were written.
func WriteParquet(w io.Writer, u *catalog.User) (int, error) {
	rows := Rows(u)
	pw := parquet.NewGenericWriter[Row](w)
	n, err := pw.Write(rows)
	if err != nil {
		pw.Close()
		return n, fmt.Errorf("write rows: %w", err)
	}
	if err := pw.Close(); err != nil {
		return n, fmt.Errorf("close parquet writer: %w", err)
	}
	return n, nil
}

// WriteFile writes u's rows to a new parquet file at path.
func WriteFile(path string, u *catalog.User) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	n, err := WriteParquet(f, u)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return n, err
}

// ReadParquet reads every row back.
func ReadParquet(r io.ReaderAt, size int64) ([]Row, error) {
	pf, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}
	reader := parquet.NewGenericReader[Row](pf)
	defer reader.Close()

	out := make([]Row, 0, pf.NumRows())
	batch := make([]Row, 128)
	for {
		n, err := reader.Read(batch)
		out = append(out, batch[:n]...)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read rows: %w", err)
		}
		if n == 0 {
			return out, nil
		}
	}
}

// ReadFile opens path and reads every row.
func ReadFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return ReadParquet(f, info.Size())
}
