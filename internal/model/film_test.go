package model

import "testing"

func TestFilmIsLocal(t *testing.T) {
	if (Film{ID: LocalIDOffset - 1}).IsLocal() {
		t.Fatal("catalog id flagged as local")
	}
	if !(Film{ID: LocalIDOffset}).IsLocal() {
		t.Fatal("offset boundary must count as local")
	}
}

func TestFilmDisplayable(t *testing.T) {
	cases := []struct {
		title, image string
		want         bool
	}{
		{"t", "i", true},
		{"", "i", false},
		{"t", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		f := Film{Title: c.title, ImageURL: c.image}
		if f.Displayable() != c.want {
			t.Fatalf("Displayable(%q,%q) = %v", c.title, c.image, !c.want)
		}
	}
}

func TestGenreListRoundTrip(t *testing.T) {
	v, err := GenreList{"драма", "комедия"}.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}

	var got GenreList
	if err := got.Scan(v); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(got) != 2 || got[0] != "драма" || got[1] != "комедия" {
		t.Fatalf("unexpected list: %v", got)
	}
}

func TestGenreListStoresEmptyAsArray(t *testing.T) {
	var g GenreList
	v, err := g.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	if string(v.([]byte)) != "[]" {
		t.Fatalf("nil list must store as [], got %s", v)
	}
}

func TestGenreListScanNull(t *testing.T) {
	var g GenreList
	if err := g.Scan(nil); err != nil {
		t.Fatalf("scan nil: %v", err)
	}
	if g == nil || len(g) != 0 {
		t.Fatalf("NULL column must scan to an empty list, got %#v", g)
	}
}
