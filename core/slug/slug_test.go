package slug

import "testing"

func TestMake(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Genesis", "genesis"},
		{"spaces", "Song of Solomon", "song-of-solomon"},
		{"roman prefix", "I Samuel", "i-samuel"},
		{"punctuation run", "Esdrae II (Nehemias)", "esdrae-ii-nehemias"},
		{"diacritics", "Ecclésiaste", "ecclesiaste"},
		{"decomposed input", "Cantique des Cantiqués", "cantique-des-cantiques"},
		{"leading and trailing", "  --Acts!--  ", "acts"},
		{"digits kept", "1 Maccabees", "1-maccabees"},
		{"non latin letters", "Ἰωάννης", Fallback},
		{"empty", "", Fallback},
		{"only punctuation", "...", Fallback},
		{"ligature dropped", "Æsop", "sop"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Make(tt.in); got != tt.want {
				t.Errorf("Make(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMakeIsIdempotent(t *testing.T) {
	for _, in := range []string{"Apocalypsis Ioannis", "III Ioannis", "Ad Philemonem"} {
		once := Make(in)
		if twice := Make(once); twice != once {
			t.Errorf("Make(Make(%q)) = %q, want %q", in, twice, once)
		}
	}
}
