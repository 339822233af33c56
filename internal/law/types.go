package law

// RawDocument is the scraped document payload handed to Parse.
// Unknown JSON fields are ignored.
type RawDocument struct {
	Base       string       `json:"base"`
	Title      string       `json:"title,omitempty"`
	ShortTitle string       `json:"shortTitle,omitempty"`
	URL        string       `json:"url,omitempty"`
	Chapters   []RawChapter `json:"chapters"`
}

// RawChapter is a loosely structured chapter block.
type RawChapter struct {
	ID          string         `json:"id,omitempty"`
	Title       string         `json:"title,omitempty"`
	Paragraphs  []RawParagraph `json:"paragraphs"`
	SubChapters []RawChapter   `json:"subChapters,omitempty"`
}

// RawParagraph is a single § block. Children carry the clause/lettered
// item markup when the scraper found any.
type RawParagraph struct {
	ID       string    `json:"id,omitempty"`
	Number   string    `json:"number,omitempty"`
	Content  string    `json:"content,omitempty"`
	Children []RawNode `json:"children,omitempty"`
}

// RawNode is a generic child element: either an explicit type tag
// ("ledd", "bokstav") or a class hint identifies what it is.
type RawNode struct {
	Type     string    `json:"type,omitempty"`
	Class    string    `json:"className,omitempty"`
	Content  string    `json:"content,omitempty"`
	Text     string    `json:"text,omitempty"`
	Children []RawNode `json:"children,omitempty"`
}

// Law is a parsed statute or regulation.
type Law struct {
	ID        string    `json:"id"`
	Base      string    `json:"base"`
	ShortName string    `json:"shortName"`
	FullName  string    `json:"fullName"`
	Chapters  []Chapter `json:"chapters"`
	// Loaded reports whether Chapters reflects a fetched document. An
	// unloaded law has no chapters yet; a loaded one may legitimately
	// have none.
	Loaded bool `json:"loaded"`
}

type Chapter struct {
	ID           string      `json:"id"`
	Number       string      `json:"number"`
	Title        string      `json:"title"`
	ChapterIndex string      `json:"chapterIndex"`
	Paragraphs   []Paragraph `json:"paragraphs"`
	SubChapters  []Chapter   `json:"subChapters"`
}

type Paragraph struct {
	ID                 string   `json:"id"`
	Number             string   `json:"number"`
	Title              string   `json:"title"`
	Content            string   `json:"content,omitempty"`
	ChapterIndex       string   `json:"chapterIndex"`
	JuridicalReference string   `json:"juridicalReference"`
	Ledd               []Clause `json:"ledd,omitempty"`
}

// Clause is a numbered "ledd" within a paragraph. Number is 1-based and
// contiguous within its paragraph.
type Clause struct {
	ID                 string         `json:"id"`
	Number             int            `json:"number"`
	Content            string         `json:"content"`
	JuridicalReference string         `json:"juridicalReference"`
	Bokstaver          []LetteredItem `json:"bokstaver,omitempty"`
}

// LetteredItem is a "bokstav" within a clause.
type LetteredItem struct {
	ID                 string `json:"id"`
	Letter             string `json:"letter"`
	Content            string `json:"content"`
	JuridicalReference string `json:"juridicalReference"`
}

// LawFilter restricts a law to an allow-list of chapters and paragraphs.
// LawBase and PreselectedReference are informational only.
type LawFilter struct {
	LawBase              string   `json:"lawBase" yaml:"law_base" mapstructure:"law_base"`
	AllowedChapters      []string `json:"allowedChapters,omitempty" yaml:"allowed_chapters" mapstructure:"allowed_chapters"`
	AllowedParagraphs    []string `json:"allowedParagraphs,omitempty" yaml:"allowed_paragraphs" mapstructure:"allowed_paragraphs"`
	PreselectedReference string   `json:"preselectedReference,omitempty" yaml:"preselected_reference" mapstructure:"preselected_reference"`
}

// IsZero reports whether the filter allows everything.
func (f LawFilter) IsZero() bool {
	return len(f.AllowedChapters) == 0 && len(f.AllowedParagraphs) == 0
}

// ParagraphCount returns the number of paragraphs in the law, including
// those in nested sub-chapters.
func (l Law) ParagraphCount() int {
	n := 0
	for _, c := range l.Chapters {
		n += c.paragraphCount()
	}
	return n
}

func (c Chapter) paragraphCount() int {
	n := len(c.Paragraphs)
	for _, sc := range c.SubChapters {
		n += sc.paragraphCount()
	}
	return n
}

// Walk calls fn for every paragraph in document order, passing the chapter
// that directly contains it.
func (l Law) Walk(fn func(c Chapter, p Paragraph)) {
	var walk func(c Chapter)
	walk = func(c Chapter) {
		for _, p := range c.Paragraphs {
			fn(c, p)
		}
		for _, sc := range c.SubChapters {
			walk(sc)
		}
	}
	for _, c := range l.Chapters {
		walk(c)
	}
}

// FindParagraph looks up a paragraph by its chapter index.
func (l Law) FindParagraph(chapterIndex string) (Chapter, Paragraph, bool) {
	var (
		chapter Chapter
		found   Paragraph
		ok      bool
	)
	l.Walk(func(c Chapter, p Paragraph) {
		if !ok && p.ChapterIndex == chapterIndex {
			chapter, found, ok = c, p, true
		}
	})
	return chapter, found, ok
}

// FindChapter looks up a chapter (at any depth) by its chapter index.
func (l Law) FindChapter(chapterIndex string) (Chapter, bool) {
	var find func(cs []Chapter) (Chapter, bool)
	find = func(cs []Chapter) (Chapter, bool) {
		for _, c := range cs {
			if c.ChapterIndex == chapterIndex {
				return c, true
			}
			if sc, ok := find(c.SubChapters); ok {
				return sc, true
			}
		}
		return Chapter{}, false
	}
	return find(l.Chapters)
}
