package encodings

import "testing"

func TestNameKnownType(t *testing.T) {
	if got := Raw.Name(); got != "Raw" {
		t.Errorf("Raw.Name() = %q, want %q", got, "Raw")
	}
	if got := ZRLE.Name(); got != "ZRLE" {
		t.Errorf("ZRLE.Name() = %q, want %q", got, "ZRLE")
	}
	if got := CursorPseudo.Name(); got != "CursorPseudo" {
		t.Errorf("CursorPseudo.Name() = %q, want %q", got, "CursorPseudo")
	}
}

func TestNameUnknownTypeFallsBackToNumeric(t *testing.T) {
	unknown := Type(9999)
	if got := unknown.Name(); got != "9999" {
		t.Errorf("unknown.Name() = %q, want %q", got, "9999")
	}
}
