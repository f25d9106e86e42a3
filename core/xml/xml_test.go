package xml

import (
	"testing"
)

const sample = `<?xml version="1.0" encoding="utf-8"?>
<XMLBIBLE biblename="Vulgata Clementina">
  <BIBLEBOOK bnumber="1" bname="Genesis">
    <CHAPTER cnumber="1">
      <VERS vnumber="1">In principio creavit Deus caelum et terram.</VERS>
      <VERS vnumber="2">Terra autem erat <STYLE fs="italic">inanis</STYLE> et vacua.</VERS>
    </CHAPTER>
  </BIBLEBOOK>
  <BIBLEBOOK bnumber="2" BNAME="Exodus"/>
</XMLBIBLE>`

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	root := doc.Root()
	if root.Name() != "XMLBIBLE" {
		t.Errorf("Root().Name() = %q", root.Name())
	}
	if got := len(root.Children()); got != 2 {
		t.Errorf("root has %d element children, want 2", got)
	}
}

func TestParseInvalidXML(t *testing.T) {
	for _, data := range []string{"<root><element></root>", "<root></other>"} {
		if _, err := Parse([]byte(data)); err == nil {
			t.Errorf("Parse(%q) succeeded", data)
		}
	}
}

func TestXPath(t *testing.T) {
	doc, err := Parse([]byte(sample))
	if err != nil {
		t.Fatal(err)
	}

	books, err := doc.XPath("//BIBLEBOOK")
	if err != nil {
		t.Fatalf("XPath: %v", err)
	}
	if len(books) != 2 {
		t.Fatalf("got %d books, want 2", len(books))
	}
	if books[0].Attr("bname") != "Genesis" {
		t.Errorf("bname = %q", books[0].Attr("bname"))
	}
	if books[1].Attr("bname") != "Exodus" {
		t.Errorf("attribute lookup should ignore case, got %q", books[1].Attr("bname"))
	}

	verses, err := books[0].XPath("CHAPTER/VERS")
	if err != nil {
		t.Fatalf("relative XPath: %v", err)
	}
	if len(verses) != 2 {
		t.Fatalf("got %d verses, want 2", len(verses))
	}
	if verses[1].Text() != "Terra autem erat inanis et vacua." {
		t.Errorf("Text() = %q", verses[1].Text())
	}
}

func TestXPathFirst(t *testing.T) {
	doc, err := Parse([]byte(sample))
	if err != nil {
		t.Fatal(err)
	}
	n, err := doc.XPathFirst("//CHAPTER")
	if err != nil || n == nil {
		t.Fatalf("XPathFirst = %v, %v", n, err)
	}
	if n.Attr("cnumber") != "1" {
		t.Errorf("cnumber = %q", n.Attr("cnumber"))
	}

	n, err = doc.XPathFirst("//MISSING")
	if err != nil || n != nil {
		t.Errorf("XPathFirst(missing) = %v, %v", n, err)
	}
}

func TestXPathInvalidExpression(t *testing.T) {
	doc, err := Parse([]byte(sample))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := doc.XPath("//["); err == nil {
		t.Error("expected error for invalid expression")
	}
	if _, err := doc.XPathFirst("//["); err == nil {
		t.Error("expected error for invalid expression")
	}
}

func TestNilNodes(t *testing.T) {
	var n *Node
	if n.Name() != "" || n.Text() != "" || n.Attr("x") != "" || n.Children() != nil {
		t.Error("nil node accessors should return zero values")
	}
}
