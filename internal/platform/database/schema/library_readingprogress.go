package schema

// LibraryReadingProgressTable represents the 'reading_progress' table
type LibraryReadingProgressTable struct {
	Table      string
	ID         string
	UserID     string
	ComicID    string
	ChapterID  string
	PageID     string
	LastReadAt string
	CreatedAt  string
	UpdatedAt  string
}

// LibraryReadingProgress is the schema definition for reading_progress
var LibraryReadingProgress = LibraryReadingProgressTable{
	Table:      "reading_progress",
	ID:         "id",
	UserID:     "user_id",
	ComicID:    "comic_id",
	ChapterID:  "chapter_id",
	PageID:     "page_id",
	LastReadAt: "last_read_at",
	CreatedAt:  "created_at",
	UpdatedAt:  "updated_at",
}

func (t LibraryReadingProgressTable) Columns() []string {
	return []string{
		t.ID, t.UserID, t.ComicID, t.ChapterID, t.PageID,
		t.LastReadAt, t.CreatedAt, t.UpdatedAt,
	}
}
