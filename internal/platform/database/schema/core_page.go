package schema

// CorePageTable represents the 'comic_pages' table
type CorePageTable struct {
	Table          string
	ID             string
	ChapterID      string
	PageNumber     string
	ImageURL       string
	SourceURL      string
	OCRText        string
	OCRProcessedAt string
	CreatedAt      string
	UpdatedAt      string
}

// CorePage is the schema definition for comic_pages
var CorePage = CorePageTable{
	Table:          "comic_pages",
	ID:             "id",
	ChapterID:      "chapter_id",
	PageNumber:     "page_number",
	ImageURL:       "image_url",
	SourceURL:      "source_url",
	OCRText:        "ocr_text",
	OCRProcessedAt: "ocr_processed_at",
	CreatedAt:      "created_at",
	UpdatedAt:      "updated_at",
}

func (t CorePageTable) Columns() []string {
	return []string{
		t.ID, t.ChapterID, t.PageNumber, t.ImageURL, t.SourceURL,
		t.OCRText, t.OCRProcessedAt, t.CreatedAt, t.UpdatedAt,
	}
}
