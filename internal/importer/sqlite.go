package importer

import (
	"context"
	"database/sql"
	"regexp"
	"strings"

	"github.com/FocuswithJustin/vulgata/core/errors"
	"github.com/FocuswithJustin/vulgata/core/sqlite"
)

var tablePrefix = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// findTranslation returns the first prefix T for which both T_books and
// T_verses exist, the layout of the scrollmapper SQLite exports.
func findTranslation(tables []string) (string, bool) {
	have := make(map[string]bool, len(tables))
	for _, t := range tables {
		have[t] = true
	}
	for _, t := range tables {
		prefix, ok := strings.CutSuffix(t, "_books")
		if !ok || prefix == "" || !tablePrefix.MatchString(prefix) {
			continue
		}
		if have[prefix+"_verses"] {
			return prefix, true
		}
	}
	return "", false
}

// readSQLite reads a scrollmapper SQLite database into a Document, with books
// in id order and verses in (chapter, verse) order.
func readSQLite(ctx context.Context, path string) (*Document, error) {
	db, err := sqlite.OpenReadOnly(path)
	if err != nil {
		return nil, errors.NewIO("open database", path, err)
	}
	defer db.Close()

	tables, err := sqlite.Tables(ctx, db)
	if err != nil {
		return nil, errors.NewParse("SQLite", path, err)
	}
	prefix, ok := findTranslation(tables)
	if !ok {
		return nil, errors.NewUnsupported("SQLite layout in "+path, "no <translation>_books and <translation>_verses tables")
	}

	books, order, err := readSQLiteBooks(ctx, db, prefix)
	if err != nil {
		return nil, errors.NewParse("SQLite", path, err)
	}

	rows, err := db.QueryContext(ctx,
		`SELECT book_id, chapter, text FROM "`+prefix+`_verses" ORDER BY book_id, chapter, verse`)
	if err != nil {
		return nil, errors.NewParse("SQLite", path, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			bookID, chapter int64
			text            sql.NullString
		)
		if err := rows.Scan(&bookID, &chapter, &text); err != nil {
			return nil, errors.NewParse("SQLite", path, err)
		}
		b, ok := books[bookID]
		if !ok {
			continue
		}
		n := len(b.Chapters)
		if n == 0 || int64(b.Chapters[n-1].Chapter) != chapter {
			b.Chapters = append(b.Chapters, SourceChapter{Chapter: Number(chapter)})
			n++
		}
		ch := &b.Chapters[n-1]
		ch.Verses = append(ch.Verses, SourceVerse{Text: text.String})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewParse("SQLite", path, err)
	}

	doc := &Document{Books: make([]SourceBook, 0, len(order))}
	for _, id := range order {
		doc.Books = append(doc.Books, *books[id])
	}
	return doc, nil
}

func readSQLiteBooks(ctx context.Context, db *sql.DB, prefix string) (map[int64]*SourceBook, []int64, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, name FROM "`+prefix+`_books" ORDER BY id`)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	books := make(map[int64]*SourceBook)
	var order []int64
	for rows.Next() {
		var (
			id   int64
			name sql.NullString
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, nil, err
		}
		books[id] = &SourceBook{Name: name.String}
		order = append(order, id)
	}
	return books, order, rows.Err()
}
