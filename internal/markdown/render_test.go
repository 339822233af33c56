package markdown

import (
	"strings"
	"testing"

	"github.com/jcdickinson/lovvelger/internal/law"
)

func testLaw() law.Law {
	return law.Parse(law.RawDocument{
		Base:       "LOV-2005-06-17-62",
		Title:      "Lov om arbeidsmiljø",
		ShortTitle: "Arbeidsmiljøloven",
		Chapters: []law.RawChapter{{
			ID:    "kapittel-1",
			Title: "Kapittel 1. Innledende bestemmelser",
			Paragraphs: []law.RawParagraph{{
				ID:      "kapittel-1-paragraf-1",
				Number:  "§ 1-1",
				Content: "§ 1-1. Lovens formål",
				Children: []law.RawNode{
					{Type: "ledd", Content: "Lovens formål er:", Children: []law.RawNode{
						{Type: "bokstav", Content: "å sikre et arbeidsmiljø"},
						{Type: "bokstav", Content: "å sikre trygge\nforhold"},
					}},
					{Type: "ledd", Content: "Loven skal legge til rette for tilpasninger."},
				},
			}, {
				ID:      "kapittel-1-paragraf-2",
				Number:  "§ 1-2",
				Content: "§ 1-2. Lovens virkeområde",
			}},
			SubChapters: []law.RawChapter{{
				ID:    "kapittel-1-a",
				Title: "Kapittel 1 A. Tillegg",
			}},
		}},
	}, "")
}

func TestRenderLaw(t *testing.T) {
	t.Parallel()

	got := RenderLaw(testLaw())
	for _, want := range []string{
		"# Arbeidsmiljøloven\n",
		"Lov om arbeidsmiljø\n",
		"## Kapittel 1. Innledende bestemmelser\n",
		"- [§ 1-1 Lovens formål](lov://LOV-2005-06-17-62_kapittel-1-paragraf-1)\n",
		"- [§ 1-2 Lovens virkeområde](lov://LOV-2005-06-17-62_kapittel-1-paragraf-2)\n",
		"### Kapittel 1 A. Tillegg\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
	if refs := References(got); len(refs) != 2 {
		t.Errorf("expected 2 references, got %v", refs)
	}
}

func TestRenderLaw_NotLoaded(t *testing.T) {
	t.Parallel()

	got := RenderLaw(law.Stub("LOV-1", "Testloven"))
	if !strings.Contains(got, "not loaded") {
		t.Errorf("got %q", got)
	}
}

func TestRenderChapter(t *testing.T) {
	t.Parallel()

	l := testLaw()
	got := RenderChapter(l, l.Chapters[0])
	if !strings.HasPrefix(got, "**Arbeidsmiljøloven**\n\n# Kapittel 1. Innledende bestemmelser\n") {
		t.Errorf("got:\n%s", got)
	}
	if !strings.Contains(got, "## Kapittel 1 A. Tillegg") {
		t.Errorf("sub-chapter missing:\n%s", got)
	}
}

func TestRenderParagraph(t *testing.T) {
	t.Parallel()

	l := testLaw()
	c, p, ok := l.FindParagraph("kapittel-1-paragraf-1")
	if !ok {
		t.Fatal("paragraph not found")
	}
	got := RenderParagraph(l, c, p)
	want := "# § 1-1. Lovens formål\n\n" +
		"**Arbeidsmiljøloven**, Kapittel 1. Innledende bestemmelser\n\n" +
		"1. Lovens formål er:\n" +
		"   - a) å sikre et arbeidsmiljø\n" +
		"   - b) å sikre trygge forhold\n" +
		"2. Loven skal legge til rette for tilpasninger.\n"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderParagraph_ContentFallback(t *testing.T) {
	t.Parallel()

	l := testLaw()
	c, p, _ := l.FindParagraph("kapittel-1-paragraf-2")
	got := RenderParagraph(l, c, p)
	if !strings.HasSuffix(got, "§ 1-2. Lovens virkeområde\n") {
		t.Errorf("got:\n%s", got)
	}
}

func TestAddFrontMatter(t *testing.T) {
	t.Parallel()

	t.Run("sorted_keys", func(t *testing.T) {
		got := AddFrontMatter("# Doc", map[string]string{
			"url":       "https://lovdata.no",
			"reference": "LOV-1",
		})
		want := "---\nreference: LOV-1\nurl: https://lovdata.no\n---\n\n# Doc"
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("empty_map", func(t *testing.T) {
		if got := AddFrontMatter("body", nil); got != "body" {
			t.Errorf("expected unchanged for empty map, got %q", got)
		}
	})
}

func TestToHTML(t *testing.T) {
	t.Parallel()

	got := ToHTML("# Tittel\n\n- [§ 1](https://lovdata.no/x)\n")
	if !strings.Contains(got, "<h1") || !strings.Contains(got, "Tittel</h1>") {
		t.Errorf("heading missing: %s", got)
	}
	if !strings.Contains(got, `href="https://lovdata.no/x"`) {
		t.Errorf("link missing: %s", got)
	}
	if !strings.Contains(got, "<li>") {
		t.Errorf("list missing: %s", got)
	}
}
