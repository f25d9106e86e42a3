// Package canon holds the traditional order and Latin display names of the
// Vulgate books. The table is authoritative: a book whose slug appears here is
// shown under the Latin name and in this position.
package canon

// Entry pairs a preferred display name with the slug it applies to.
type Entry struct {
	Name string
	Slug string
}

// entries lists every canonical book in traditional order.
var entries = []Entry{
	// ── Pentateuch ────────────────────────────────────────────────────────────
	{"Genesis", "genesis"},
	{"Exodus", "exodus"},
	{"Leviticus", "leviticus"},
	{"Numeri", "numbers"},
	{"Deuteronomium", "deuteronomy"},
	// ── Historical ────────────────────────────────────────────────────────────
	{"Iosue", "joshua"},
	{"Iudices", "judges"},
	{"Ruth", "ruth"},
	{"I Regum", "i-samuel"},
	{"II Regum", "ii-samuel"},
	{"III Regum", "i-kings"},
	{"IV Regum", "ii-kings"},
	{"I Paralipomenon", "i-chronicles"},
	{"II Paralipomenon", "ii-chronicles"},
	{"Esdrae I", "ezra"},
	{"Esdrae II (Nehemias)", "nehemiah"},
	{"Tobias", "tobit"},
	{"Iudith", "judith"},
	{"Esther", "esther"},
	{"I Machabaeorum", "i-maccabees"},
	{"II Machabaeorum", "ii-maccabees"},
	// ── Wisdom ────────────────────────────────────────────────────────────────
	{"Iob", "job"},
	{"Psalmi", "psalms"},
	{"Proverbia", "proverbs"},
	{"Ecclesiastes", "ecclesiastes"},
	{"Canticum Canticorum", "song-of-solomon"},
	{"Sapientia", "wisdom"},
	{"Ecclesiasticus (Sirach)", "sirach"},
	// ── Prophets ──────────────────────────────────────────────────────────────
	{"Isaias", "isaiah"},
	{"Ieremias", "jeremiah"},
	{"Lamentationes", "lamentations"},
	{"Baruch", "baruch"},
	{"Ezechiel", "ezekiel"},
	{"Daniel", "daniel"},
	{"Osee", "hosea"},
	{"Ioel", "joel"},
	{"Amos", "amos"},
	{"Abdias", "obadiah"},
	{"Ionas", "jonah"},
	{"Michaeas", "micah"},
	{"Nahum", "nahum"},
	{"Habacuc", "habakkuk"},
	{"Sophonias", "zephaniah"},
	{"Aggaeus", "haggai"},
	{"Zacharias", "zechariah"},
	{"Malachias", "malachi"},
	// ── New Testament ─────────────────────────────────────────────────────────
	{"Matthaeus", "matthew"},
	{"Marcus", "mark"},
	{"Lucas", "luke"},
	{"Ioannes", "john"},
	{"Actus Apostolorum", "acts"},
	{"Ad Romanos", "romans"},
	{"I ad Corinthios", "i-corinthians"},
	{"II ad Corinthios", "ii-corinthians"},
	{"Ad Galatas", "galatians"},
	{"Ad Ephesios", "ephesians"},
	{"Ad Philippenses", "philippians"},
	{"Ad Colossenses", "colossians"},
	{"I ad Thessalonicenses", "i-thessalonians"},
	{"II ad Thessalonicenses", "ii-thessalonians"},
	{"I ad Timotheum", "i-timothy"},
	{"II ad Timotheum", "ii-timothy"},
	{"Ad Titum", "titus"},
	{"Ad Philemonem", "philemon"},
	{"Ad Hebraeos", "hebrews"},
	{"Iacobi", "james"},
	{"I Petri", "i-peter"},
	{"II Petri", "ii-peter"},
	{"I Ioannis", "i-john"},
	{"II Ioannis", "ii-john"},
	{"III Ioannis", "iii-john"},
	{"Iudae", "jude"},
	{"Apocalypsis Ioannis", "revelation-of-john"},
}

// bySlug maps a slug to its preferred name.
var bySlug = func() map[string]string {
	m := make(map[string]string, len(entries))
	for _, e := range entries {
		m[e.Slug] = e.Name
	}
	return m
}()

// Lookup returns the preferred name for slug, if the slug is canonical.
func Lookup(slug string) (string, bool) {
	name, ok := bySlug[slug]
	return name, ok
}

// Entries returns a copy of the table in canonical order.
func Entries() []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

// Slugs returns all canonical slugs in order.
func Slugs() []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Slug
	}
	return out
}

// Len returns the number of canonical books.
func Len() int {
	return len(entries)
}
