package importer

import (
	"strconv"
	"strings"

	"github.com/FocuswithJustin/vulgata/core/errors"
	"github.com/FocuswithJustin/vulgata/core/xml"
)

// readZefania reads a Zefania XML bible:
//
//	<XMLBIBLE><BIBLEBOOK bname=".."><CHAPTER cnumber="1"><VERS vnumber="1">..
func readZefania(payload []byte, origin string) (*Document, error) {
	doc, err := xml.Parse(payload)
	if err != nil {
		return nil, errors.NewParse("XML", origin, err)
	}
	if root := doc.Root(); root == nil || !strings.EqualFold(root.Name(), "XMLBIBLE") {
		return nil, errors.NewUnsupported("XML layout in "+origin, "root element is not XMLBIBLE")
	}

	books, err := doc.XPath("/*/BIBLEBOOK")
	if err != nil {
		return nil, errors.NewParse("XML", origin, err)
	}

	out := &Document{Books: make([]SourceBook, 0, len(books))}
	for _, b := range books {
		name := b.Attr("bname")
		if name == "" {
			name = b.Attr("bsname")
		}
		sb := SourceBook{Name: strings.TrimSpace(name)}

		chapters, err := b.XPath("CHAPTER")
		if err != nil {
			return nil, errors.NewParse("XML", origin, err)
		}
		for _, c := range chapters {
			sc := SourceChapter{Chapter: xmlNumber(c.Attr("cnumber"))}
			verses, err := c.XPath("VERS")
			if err != nil {
				return nil, errors.NewParse("XML", origin, err)
			}
			for _, v := range verses {
				sc.Verses = append(sc.Verses, SourceVerse{Text: v.Text()})
			}
			sb.Chapters = append(sb.Chapters, sc)
		}
		out.Books = append(out.Books, sb)
	}
	return out, nil
}

// xmlNumber parses an attribute number; anything unparsable is 0 and the
// chapter is later skipped by Convert.
func xmlNumber(s string) Number {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return Number(n)
}
