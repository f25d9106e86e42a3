package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/ulikunitz/xz"

	"github.com/FocuswithJustin/vulgata/core/book"
	"github.com/FocuswithJustin/vulgata/core/errors"
	"github.com/FocuswithJustin/vulgata/core/sqlite"
)

const genesisDoc = `{
  "translation": "VulgClementine",
  "books": [
    {
      "name": "Genesis",
      "chapters": [
        {"chapter": 1, "verses": [
          {"verse": 1, "text": " In principio creavit Deus caelum et terram. "},
          {"verse": 2, "text": "Terra autem erat inanis et vacua"}
        ]},
        {"chapter": 2, "verses": [
          {"verse": 1, "text": "Igitur perfecti sunt caeli et terra"}
        ]}
      ]
    }
  ]
}`

const genesisFile = `{
  "name": "Genesis",
  "slug": "genesis",
  "chapters": {
    "1": [
      "In principio creavit Deus caelum et terram.",
      "Terra autem erat inanis et vacua"
    ],
    "2": [
      "Igitur perfecti sunt caeli et terra"
    ]
  }
}`

func TestNumberUnmarshal(t *testing.T) {
	tests := []struct {
		in      string
		want    Number
		wantErr bool
	}{
		{`1`, 1, false},
		{`150`, 150, false},
		{`"3"`, 3, false},
		{`" 12 "`, 12, false},
		{`2.0`, 2, false},
		{`null`, 0, false},
		{`"x"`, 0, true},
		{`true`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var n Number
			err := json.Unmarshal([]byte(tt.in), &n)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal(%s) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && n != tt.want {
				t.Errorf("Unmarshal(%s) = %d, want %d", tt.in, n, tt.want)
			}
		})
	}
}

func TestDecodeDocument_MissingText(t *testing.T) {
	doc, err := DecodeDocument([]byte(`{"books":[{"name":"Ruth","chapters":[{"chapter":"1","verses":[{},{"text":null}]}]}]}`), "test")
	if err != nil {
		t.Fatalf("DecodeDocument: %v", err)
	}
	got := Convert(context.Background(), doc)
	want := []book.Book{{Name: "Ruth", Slug: "ruth", Chapters: book.Chapters{1: {"", ""}}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Convert mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeDocument_IgnoresVerseNumbers(t *testing.T) {
	src := `{"books":[{"name":"Genesis","chapters":[{"chapter":1,"verses":[{"verse":"1a","text":"In principio"},{"verse":{"n":2},"text":"Terra autem"}]}]}]}`
	doc, err := DecodeDocument([]byte(src), "test")
	if err != nil {
		t.Fatalf("DecodeDocument: %v", err)
	}
	got := Convert(context.Background(), doc)
	want := []book.Book{{Name: "Genesis", Slug: "genesis", Chapters: book.Chapters{1: {"In principio", "Terra autem"}}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Convert mismatch (-want +got):\n%s", diff)
	}

	dir := t.TempDir()
	if n, err := WriteBooks(context.Background(), dir, got); err != nil || n != 1 {
		t.Fatalf("WriteBooks = %d, %v", n, err)
	}
	if _, err := os.Stat(filepath.Join(dir, "genesis.json")); err != nil {
		t.Errorf("genesis.json not written: %v", err)
	}
}

func TestConvert(t *testing.T) {
	doc := &Document{Books: []SourceBook{
		{Name: "", Chapters: []SourceChapter{{Chapter: 1, Verses: []SourceVerse{{Text: "x"}}}}},
		{Name: "Abdias"},
		{Name: "Empty", Chapters: []SourceChapter{{Chapter: 1}}},
		{Name: "Canticum Canticorum", Chapters: []SourceChapter{
			{Chapter: 2, Verses: []SourceVerse{{Text: "Ego flos campi"}}},
			{Chapter: 0, Verses: []SourceVerse{{Text: "zero"}}},
			{Chapter: -1, Verses: []SourceVerse{{Text: "negative"}}},
			{Chapter: 1, Verses: []SourceVerse{{Text: "first"}}},
			{Chapter: 1, Verses: []SourceVerse{{Text: "\tOsculetur me osculo oris sui\n"}}},
		}},
		{Name: "Isaías", Chapters: []SourceChapter{{Chapter: 7, Verses: []SourceVerse{{Text: "Ecce virgo"}}}}},
	}}

	got := Convert(context.Background(), doc)
	want := []book.Book{
		{
			Name: "Canticum Canticorum",
			Slug: "canticum-canticorum",
			Chapters: book.Chapters{
				1: {"Osculetur me osculo oris sui"},
				2: {"Ego flos campi"},
			},
		},
		{Name: "Isaías", Slug: "isaias", Chapters: book.Chapters{7: {"Ecce virgo"}}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Convert mismatch (-want +got):\n%s", diff)
	}

	if Convert(context.Background(), nil) != nil {
		t.Error("Convert(nil) should return nil")
	}
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.json":
			w.Write([]byte(genesisDoc))
		case "/broken.json":
			w.Write([]byte(`{"books": [`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	ctx := context.Background()

	doc, err := FetchDocument(ctx, srv.Client(), srv.URL+"/ok.json", 0)
	if err != nil {
		t.Fatalf("FetchDocument: %v", err)
	}
	if len(doc.Books) != 1 || doc.Books[0].Name != "Genesis" {
		t.Errorf("unexpected document: %+v", doc)
	}

	_, err = FetchDocument(ctx, srv.Client(), srv.URL+"/missing.json", 0)
	var fetchErr *errors.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("error = %v, want FetchError", err)
	}
	if fetchErr.Status != http.StatusNotFound {
		t.Errorf("Status = %d, want 404", fetchErr.Status)
	}
	if !errors.Is(err, errors.ErrFetch) {
		t.Error("FetchError should match ErrFetch")
	}

	_, err = FetchDocument(ctx, srv.Client(), srv.URL+"/broken.json", 0)
	var parseErr *errors.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error = %v, want ParseError", err)
	}
	if parseErr.Format != "JSON" || parseErr.Path != srv.URL+"/broken.json" {
		t.Errorf("ParseError = %+v", parseErr)
	}
}

func TestFetch_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	_, err := Fetch(context.Background(), srv.Client(), srv.URL, 50*time.Millisecond)
	if !errors.Is(err, errors.ErrFetch) {
		t.Fatalf("error = %v, want fetch failure", err)
	}
}

func TestWriteBooks(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	doc, err := DecodeDocument([]byte(genesisDoc), "test")
	if err != nil {
		t.Fatal(err)
	}

	n, err := WriteBooks(context.Background(), dir, Convert(context.Background(), doc))
	if err != nil {
		t.Fatalf("WriteBooks: %v", err)
	}
	if n != 1 {
		t.Errorf("wrote %d files, want 1", n)
	}

	data, err := os.ReadFile(filepath.Join(dir, "genesis.json"))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(genesisFile, string(data)); diff != "" {
		t.Errorf("genesis.json mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteBooks_DuplicateSlugOverwrites(t *testing.T) {
	dir := t.TempDir()
	books := []book.Book{
		{Name: "Iob", Slug: "iob", Chapters: book.Chapters{1: {"first"}}},
		{Name: "IOB", Slug: "iob", Chapters: book.Chapters{1: {"second"}}},
	}
	n, err := WriteBooks(context.Background(), dir, books)
	if err != nil {
		t.Fatalf("WriteBooks: %v", err)
	}
	if n != 2 {
		t.Errorf("wrote %d files, want 2", n)
	}
	b, err := book.LoadFile(filepath.Join(dir, "iob.json"))
	if err != nil {
		t.Fatal(err)
	}
	if b.Name != "IOB" || b.Chapters[1][0] != "second" {
		t.Errorf("later book should win, got %+v", b)
	}
}

func TestRun(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(genesisDoc))
	}))
	defer srv.Close()

	dir := filepath.Join(t.TempDir(), "data")
	var out bytes.Buffer
	res, err := Run(context.Background(), Options{Source: srv.URL + "/VulgClementine.json", DataDir: dir, Client: srv.Client()}, &out)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Files != 1 || res.Books != 1 {
		t.Errorf("Result = %+v", res)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	want := []string{
		"Downloading " + srv.URL + "/VulgClementine.json...",
		"Converting and writing per book...",
		"Wrote 1 file(s) to " + dir,
	}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Errorf("progress output mismatch (-want +got):\n%s", diff)
	}

	lib, err := book.LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if diff := cmp.Diff([]book.Meta{{Name: "Genesis", Slug: "genesis", Chapters: 2}}, lib.List); diff != "" {
		t.Errorf("library mismatch (-want +got):\n%s", diff)
	}
}

func TestOpen_LocalSources(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	jsonPath := filepath.Join(dir, "vulgate.json")
	if err := os.WriteFile(jsonPath, []byte(genesisDoc), 0644); err != nil {
		t.Fatal(err)
	}

	xzPath := filepath.Join(dir, "vulgate.json.xz")
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte(genesisDoc)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(xzPath, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}

	xmlPath := filepath.Join(dir, "vulgate.xml")
	zefania := `<?xml version="1.0" encoding="utf-8"?>
<XMLBIBLE biblename="Vulgata">
  <BIBLEBOOK bnumber="1" bname="Genesis">
    <CHAPTER cnumber="1">
      <VERS vnumber="1"> In principio creavit Deus caelum et terram. </VERS>
      <VERS vnumber="2">Terra autem erat inanis et vacua</VERS>
    </CHAPTER>
    <CHAPTER cnumber="2">
      <VERS vnumber="1">Igitur perfecti sunt caeli et terra</VERS>
    </CHAPTER>
  </BIBLEBOOK>
</XMLBIBLE>`
	if err := os.WriteFile(xmlPath, []byte(zefania), 0644); err != nil {
		t.Fatal(err)
	}

	dbPath := filepath.Join(dir, "vulgate.db")
	createSQLiteSource(t, dbPath)

	want := []book.Book{{
		Name: "Genesis",
		Slug: "genesis",
		Chapters: book.Chapters{
			1: {"In principio creavit Deus caelum et terram.", "Terra autem erat inanis et vacua"},
			2: {"Igitur perfecti sunt caeli et terra"},
		},
	}}

	for _, path := range []string{jsonPath, xzPath, xmlPath, dbPath} {
		t.Run(filepath.Base(path), func(t *testing.T) {
			doc, err := Open(ctx, Options{Source: path})
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			if diff := cmp.Diff(want, Convert(ctx, doc)); diff != "" {
				t.Errorf("Convert mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func createSQLiteSource(t *testing.T, path string) {
	t.Helper()
	db, err := sqlite.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	for _, stmt := range []string{
		`CREATE TABLE VulgClementine_books (id INTEGER PRIMARY KEY, name TEXT)`,
		`CREATE TABLE VulgClementine_verses (id INTEGER PRIMARY KEY, book_id INTEGER, chapter INTEGER, verse INTEGER, text TEXT)`,
		`INSERT INTO VulgClementine_books (id, name) VALUES (1, 'Genesis')`,
		`INSERT INTO VulgClementine_verses (book_id, chapter, verse, text) VALUES
			(1, 2, 1, 'Igitur perfecti sunt caeli et terra'),
			(1, 1, 2, 'Terra autem erat inanis et vacua'),
			(1, 1, 1, ' In principio creavit Deus caelum et terram. '),
			(9, 1, 1, 'orphan verse')`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}
}

func TestOpen_Unsupported(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	binPath := filepath.Join(dir, "vulgate.bin")
	if err := os.WriteFile(binPath, []byte{0x01, 0x02, 0x03, 0x04}, 0644); err != nil {
		t.Fatal(err)
	}
	_, err := Open(ctx, Options{Source: binPath})
	if !errors.Is(err, errors.ErrUnsupported) {
		t.Errorf("Open(bin) error = %v, want ErrUnsupported", err)
	}

	mislabelled := filepath.Join(dir, "vulgate.db")
	if err := os.WriteFile(mislabelled, []byte(genesisDoc), 0644); err != nil {
		t.Fatal(err)
	}
	_, err = Open(ctx, Options{Source: mislabelled})
	if !errors.Is(err, errors.ErrUnsupported) {
		t.Errorf("Open(mislabelled) error = %v, want ErrUnsupported", err)
	}

	emptyDB := filepath.Join(dir, "empty.sqlite")
	db, err := sqlite.Open(emptyDB)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`CREATE TABLE notes (id INTEGER)`); err != nil {
		t.Fatal(err)
	}
	db.Close()
	_, err = Open(ctx, Options{Source: emptyDB})
	if !errors.Is(err, errors.ErrUnsupported) {
		t.Errorf("Open(foreign sqlite) error = %v, want ErrUnsupported", err)
	}

	_, err = Open(ctx, Options{Source: filepath.Join(dir, "missing.json")})
	var ioErr *errors.IOError
	if !errors.As(err, &ioErr) {
		t.Errorf("Open(missing) error = %v, want IOError", err)
	}
}

func TestFindTranslation(t *testing.T) {
	tests := []struct {
		tables []string
		want   string
		ok     bool
	}{
		{[]string{"KJV_books", "KJV_verses", "translations"}, "KJV", true},
		{[]string{"KJV_books"}, "", false},
		{[]string{"bad name_books", "bad name_verses"}, "", false},
		{[]string{"A_books", "A_verses", "B_books", "B_verses"}, "A", true},
	}
	for _, tt := range tests {
		got, ok := findTranslation(tt.tables)
		if got != tt.want || ok != tt.ok {
			t.Errorf("findTranslation(%v) = %q, %v; want %q, %v", tt.tables, got, ok, tt.want, tt.ok)
		}
	}
}
