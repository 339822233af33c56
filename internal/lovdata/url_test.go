package lovdata

import "testing"

func TestDocumentURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		base string
		want string
	}{
		{"LOV-1981-04-08-7", "https://lovdata.no/dokument/NL/lov/1981-04-08-7"},
		{"FOR-2011-12-06-1357", "https://lovdata.no/dokument/NL/forskrift/2011-12-06-1357"},
		{"for-2011-12-06-1357", "https://lovdata.no/dokument/NL/forskrift/2011-12-06-1357"},
		{"arbeidsmiljoloven", "https://lovdata.no/dokument/NL/lov/arbeidsmiljoloven"},
		{"LOV-2005", "https://lovdata.no/dokument/NL/lov/LOV-2005"},
	}
	for _, tt := range tests {
		if got := DocumentURL("https://lovdata.no/", tt.base); got != tt.want {
			t.Errorf("DocumentURL(%q) = %q, want %q", tt.base, got, tt.want)
		}
	}
}

func TestSearchURL(t *testing.T) {
	t.Parallel()

	got := SearchURL("https://lovdata.no", "arbeids miljø")
	want := "https://lovdata.no/sok?q=arbeids+milj%C3%B8&type=ALL"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestAbsolute(t *testing.T) {
	t.Parallel()

	tests := []struct{ link, want string }{
		{"/dokument/NL/lov/1", "https://lovdata.no/dokument/NL/lov/1"},
		{"dokument/NL/lov/1", "https://lovdata.no/dokument/NL/lov/1"},
		{"https://example.org/x", "https://example.org/x"},
	}
	for _, tt := range tests {
		if got := absolute("https://lovdata.no", tt.link); got != tt.want {
			t.Errorf("absolute(%q) = %q, want %q", tt.link, got, tt.want)
		}
	}
}
