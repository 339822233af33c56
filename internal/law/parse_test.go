package law

import (
	"strconv"
	"testing"
)

func exampleDocument() RawDocument {
	return RawDocument{
		Base:  "LOV-2005-1",
		Title: "Eksempel",
		Chapters: []RawChapter{{
			Title: "Kapittel 2",
			Paragraphs: []RawParagraph{{
				Content: "§ 3. Virkeområde. Denne paragrafen gjelder alle.",
			}},
		}},
	}
}

func TestParse_Example(t *testing.T) {
	t.Parallel()

	l := Parse(exampleDocument(), "ignored")
	if l.ID != "LOV-2005-1" || l.Base != "LOV-2005-1" {
		t.Errorf("identity: got id=%q base=%q", l.ID, l.Base)
	}
	if l.ShortName != "Eksempel" || l.FullName != "Eksempel" {
		t.Errorf("names: got short=%q full=%q", l.ShortName, l.FullName)
	}
	if !l.Loaded {
		t.Error("parsed law should be loaded")
	}
	if len(l.Chapters) != 1 {
		t.Fatalf("expected 1 chapter, got %d", len(l.Chapters))
	}
	c := l.Chapters[0]
	if c.Number != "Kapittel 2" {
		t.Errorf("chapter number: got %q", c.Number)
	}
	if c.ID != "chapter-0" || c.ChapterIndex != "kapittel-0" {
		t.Errorf("chapter ids: got id=%q index=%q", c.ID, c.ChapterIndex)
	}
	if len(c.Paragraphs) != 1 {
		t.Fatalf("expected 1 paragraph, got %d", len(c.Paragraphs))
	}
	p := c.Paragraphs[0]
	if p.Number != "§ 3" {
		t.Errorf("paragraph number: got %q", p.Number)
	}
	if want := "Virkeområde. Denne paragrafen gjelder alle."; p.Title != want {
		t.Errorf("title: got %q, want %q", p.Title, want)
	}
	if want := "§ 3. Virkeområde. Denne paragrafen gjelder alle."; p.JuridicalReference != want {
		t.Errorf("juridical reference: got %q, want %q", p.JuridicalReference, want)
	}
	if p.ID != "chapter-0-para-0" || p.ChapterIndex != "kapittel-0-paragraf-0" {
		t.Errorf("paragraph ids: got id=%q index=%q", p.ID, p.ChapterIndex)
	}
}

func TestParse_IdentityFallbacks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		raw       RawDocument
		wantBase  string
		wantShort string
		wantFull  string
	}{
		{"no titles", RawDocument{}, "LOV-1", "LOV-1", "LOV-1"},
		{"title only", RawDocument{Title: "Lov om x"}, "LOV-1", "Lov om x", "Lov om x"},
		{"short title", RawDocument{Title: "Lov om x", ShortTitle: "x-loven"}, "LOV-1", "x-loven", "Lov om x"},
		{"payload base wins", RawDocument{Base: "LOV-2"}, "LOV-2", "LOV-2", "LOV-2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := Parse(tt.raw, "LOV-1")
			if l.Base != tt.wantBase || l.ID != tt.wantBase {
				t.Errorf("base: got %q/%q, want %q", l.Base, l.ID, tt.wantBase)
			}
			if l.ShortName != tt.wantShort {
				t.Errorf("short: got %q, want %q", l.ShortName, tt.wantShort)
			}
			if l.FullName != tt.wantFull {
				t.Errorf("full: got %q, want %q", l.FullName, tt.wantFull)
			}
		})
	}
}

func TestParse_PositionalFallbacks(t *testing.T) {
	t.Parallel()

	raw := RawDocument{Chapters: []RawChapter{
		{Paragraphs: []RawParagraph{{}, {Content: "Ingen punktum"}}},
		{ID: "KAPITTEL_2", Title: "Kapittel 7a. Diverse", Paragraphs: []RawParagraph{{ID: "PARAGRAF_1", Number: "§ 12"}}},
	}}
	l := Parse(raw, "LOV-1")

	c0 := l.Chapters[0]
	if c0.Number != "Kapittel 1" || c0.Title != "Kapittel 1" {
		t.Errorf("chapter 0: got number=%q title=%q", c0.Number, c0.Title)
	}
	if c0.Paragraphs[0].Number != "§ 1" || c0.Paragraphs[1].Number != "§ 2" {
		t.Errorf("synthesized numbers: got %q, %q", c0.Paragraphs[0].Number, c0.Paragraphs[1].Number)
	}
	if c0.Paragraphs[1].Title != "" {
		t.Errorf("expected empty title without a period, got %q", c0.Paragraphs[1].Title)
	}
	if c0.Paragraphs[1].JuridicalReference != "§ 2" {
		t.Errorf("juridical reference without title: got %q", c0.Paragraphs[1].JuridicalReference)
	}

	c1 := l.Chapters[1]
	if c1.Number != "Kapittel 7a" {
		t.Errorf("chapter 1 number: got %q", c1.Number)
	}
	if c1.ID != "KAPITTEL_2" || c1.ChapterIndex != "KAPITTEL_2" {
		t.Errorf("raw chapter id not kept: %q/%q", c1.ID, c1.ChapterIndex)
	}
	p := c1.Paragraphs[0]
	if p.ID != "PARAGRAF_1" || p.ChapterIndex != "PARAGRAF_1" || p.Number != "§ 12" {
		t.Errorf("raw paragraph fields not kept: %+v", p)
	}
}

func TestParse_IDsUniqueWithinLaw(t *testing.T) {
	t.Parallel()

	raw := RawDocument{Chapters: []RawChapter{
		{Paragraphs: []RawParagraph{{}, {}, {}}},
		{Paragraphs: []RawParagraph{{}, {}}, SubChapters: []RawChapter{{Paragraphs: []RawParagraph{{}}}}},
	}}
	l := Parse(raw, "LOV-1")

	seen := make(map[string]bool)
	l.Walk(func(_ Chapter, p Paragraph) {
		if seen[p.ChapterIndex] {
			t.Errorf("duplicate chapter index %q", p.ChapterIndex)
		}
		seen[p.ChapterIndex] = true
	})
	if len(seen) != 6 {
		t.Errorf("expected 6 paragraphs, got %d", len(seen))
	}
}

func TestParse_SubChapters(t *testing.T) {
	t.Parallel()

	raw := RawDocument{Chapters: []RawChapter{{
		ID:    "del-1",
		Title: "Del I",
		SubChapters: []RawChapter{
			{Title: "Kapittel 1. Innledning", Paragraphs: []RawParagraph{{Content: "§ 1. Formål."}}},
			{ID: "k2", Title: "Kapittel 2"},
		},
	}}}
	l := Parse(raw, "LOV-1")

	subs := l.Chapters[0].SubChapters
	if len(subs) != 2 {
		t.Fatalf("expected 2 sub-chapters, got %d", len(subs))
	}
	if subs[0].ChapterIndex != "del-1-kapittel-0" {
		t.Errorf("sub-chapter index: got %q", subs[0].ChapterIndex)
	}
	if subs[1].ChapterIndex != "del-1-k2" {
		t.Errorf("sub-chapter raw index: got %q", subs[1].ChapterIndex)
	}
	if subs[0].Number != "Kapittel 1" {
		t.Errorf("sub-chapter number: got %q", subs[0].Number)
	}
	if got := subs[0].Paragraphs[0].ChapterIndex; got != "del-1-kapittel-0-paragraf-0" {
		t.Errorf("nested paragraph index: got %q", got)
	}
	if l.ParagraphCount() != 1 {
		t.Errorf("paragraph count: got %d", l.ParagraphCount())
	}
}

func TestParse_Clauses(t *testing.T) {
	t.Parallel()

	raw := RawDocument{Chapters: []RawChapter{{
		Paragraphs: []RawParagraph{{
			Number: "§ 4",
			Children: []RawNode{
				{Class: "legalP ledd", Content: "Første ledd."},
				{Type: "note", Content: "ignored"},
				{Type: "ledd", Text: "Andre ledd.", Children: []RawNode{
					{Type: "bokstav", Content: "første"},
					{Class: "listItem bokstav", Text: "andre"},
					{Class: "other", Content: "ignored"},
				}},
			},
		}},
	}}}
	p := Parse(raw, "LOV-1").Chapters[0].Paragraphs[0]

	if len(p.Ledd) != 2 {
		t.Fatalf("expected 2 clauses, got %d", len(p.Ledd))
	}
	for i, c := range p.Ledd {
		if c.Number != i+1 {
			t.Errorf("clause %d numbered %d", i, c.Number)
		}
	}
	if p.Ledd[1].Content != "Andre ledd." {
		t.Errorf("text fallback: got %q", p.Ledd[1].Content)
	}
	if want := "§ 4, ledd 2"; p.Ledd[1].JuridicalReference != want {
		t.Errorf("clause reference: got %q, want %q", p.Ledd[1].JuridicalReference, want)
	}
	if want := "kapittel-0-paragraf-0-ledd-2"; p.Ledd[1].ID != want {
		t.Errorf("clause id: got %q, want %q", p.Ledd[1].ID, want)
	}

	items := p.Ledd[1].Bokstaver
	if len(items) != 2 {
		t.Fatalf("expected 2 lettered items, got %d", len(items))
	}
	if items[1].Letter != "b" || items[1].Content != "andre" {
		t.Errorf("item b: got %+v", items[1])
	}
	if want := "§ 4, ledd 2, bokstav b"; items[1].JuridicalReference != want {
		t.Errorf("item reference: got %q, want %q", items[1].JuridicalReference, want)
	}
	if want := "kapittel-0-paragraf-0-ledd-2-bokstav-b"; items[1].ID != want {
		t.Errorf("item id: got %q, want %q", items[1].ID, want)
	}
}

func TestParse_LetterFallbackAfterAlphabet(t *testing.T) {
	t.Parallel()

	children := make([]RawNode, 27)
	for i := range children {
		children[i] = RawNode{Type: "bokstav", Content: strconv.Itoa(i)}
	}
	raw := RawDocument{Chapters: []RawChapter{{
		Paragraphs: []RawParagraph{{Children: []RawNode{{Type: "ledd", Children: children}}}},
	}}}
	items := Parse(raw, "LOV-1").Chapters[0].Paragraphs[0].Ledd[0].Bokstaver

	if len(items) != 27 {
		t.Fatalf("expected 27 items, got %d", len(items))
	}
	for i := 0; i < 26; i++ {
		if want := string(rune('a' + i)); items[i].Letter != want {
			t.Errorf("item %d: got %q, want %q", i+1, items[i].Letter, want)
		}
	}
	if items[26].Letter != "27" {
		t.Errorf("item 27: got %q, want %q", items[26].Letter, "27")
	}
}

func TestParse_DoesNotPanicOnEmptyInput(t *testing.T) {
	t.Parallel()

	l := Parse(RawDocument{}, "")
	if l.Chapters == nil {
		t.Error("chapters should be an empty sequence, not nil")
	}
	if l.ParagraphCount() != 0 {
		t.Error("expected no paragraphs")
	}
}

func TestChapterNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		title    string
		position int
		want     string
	}{
		{"Kapittel 3. Arbeidstid", 0, "Kapittel 3"},
		{"kapittel  12B Overgang", 0, "Kapittel 12B"},
		{"Innledende bestemmelser", 4, "Kapittel 5"},
		{"", 0, "Kapittel 1"},
	}
	for _, tt := range tests {
		if got := ChapterNumber(tt.title, tt.position); got != tt.want {
			t.Errorf("ChapterNumber(%q, %d) = %q, want %q", tt.title, tt.position, got, tt.want)
		}
	}
}

func TestParagraphTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		content string
		want    string
	}{
		{"§ 1. Formål", "Formål"},
		{"§ 1.  Formål. Mer tekst.", "Formål. Mer tekst."},
		{"Ingen punktum", ""},
		{"", ""},
		{"Jf. § 2. Noe", "§ 2. Noe"},
	}
	for _, tt := range tests {
		if got := ParagraphTitle(tt.content); got != tt.want {
			t.Errorf("ParagraphTitle(%q) = %q, want %q", tt.content, got, tt.want)
		}
	}
}

func TestWithDisplayName(t *testing.T) {
	t.Parallel()

	raw := RawDocument{Base: "LOV-1", Title: PlaceholderTitle}
	parsed := Parse(raw, "")
	fixed := WithDisplayName(parsed, "Arbeidsmiljøloven")

	if fixed.ShortName != "Arbeidsmiljøloven" || fixed.FullName != "Arbeidsmiljøloven" {
		t.Errorf("names not substituted: %+v", fixed)
	}
	if parsed.ShortName != PlaceholderTitle {
		t.Errorf("input law mutated: %q", parsed.ShortName)
	}
	again := Parse(raw, "")
	if again.ShortName != PlaceholderTitle {
		t.Errorf("reparse affected by earlier substitution: %q", again.ShortName)
	}

	named := Parse(RawDocument{Base: "LOV-2", Title: "Straffeloven"}, "")
	if got := WithDisplayName(named, "Other"); got.ShortName != "Straffeloven" {
		t.Errorf("real title replaced: %q", got.ShortName)
	}
}

func TestStubAndReplaceChapters(t *testing.T) {
	t.Parallel()

	stub := Stub("LOV-2005-1", "Eksempelloven")
	if stub.Loaded || len(stub.Chapters) != 0 {
		t.Fatalf("stub should be unloaded and empty: %+v", stub)
	}

	loaded := ReplaceChapters(stub, Parse(exampleDocument(), ""))
	if !loaded.Loaded || len(loaded.Chapters) != 1 {
		t.Errorf("chapters not replaced: %+v", loaded)
	}
	if loaded.ShortName != "Eksempelloven" {
		t.Errorf("stub name not kept: %q", loaded.ShortName)
	}
	if stub.Loaded || len(stub.Chapters) != 0 {
		t.Error("stub mutated")
	}

	empty := ReplaceChapters(stub, Parse(RawDocument{}, "LOV-2005-1"))
	if !empty.Loaded || len(empty.Chapters) != 0 {
		t.Errorf("loaded-but-empty law: %+v", empty)
	}
}
