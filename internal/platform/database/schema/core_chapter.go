package schema

// CoreChapterTable represents the 'chapters' table
type CoreChapterTable struct {
	Table         string
	ID            string
	ComicID       string
	ChapterNumber string
	Title         string
	Slug          string
	SourceURL     string
	PageCount     string
	CreatedAt     string
	UpdatedAt     string
}

// CoreChapter is the schema definition for chapters
var CoreChapter = CoreChapterTable{
	Table:         "chapters",
	ID:            "id",
	ComicID:       "comic_id",
	ChapterNumber: "chapter_number",
	Title:         "title",
	Slug:          "slug",
	SourceURL:     "source_url",
	PageCount:     "page_count",
	CreatedAt:     "created_at",
	UpdatedAt:     "updated_at",
}

func (t CoreChapterTable) Columns() []string {
	return []string{
		t.ID, t.ComicID, t.ChapterNumber, t.Title, t.Slug,
		t.SourceURL, t.PageCount, t.CreatedAt, t.UpdatedAt,
	}
}
