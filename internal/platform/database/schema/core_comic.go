package schema

// CoreComicTable represents the 'comics' table
type CoreComicTable struct {
	Table        string
	ID           string
	Title        string
	Slug         string
	Description  string
	ThumbnailURL string
	SourceURL    string
	Status       string
	CreatedAt    string
	UpdatedAt    string
}

// CoreComic is the schema definition for comics
var CoreComic = CoreComicTable{
	Table:        "comics",
	ID:           "id",
	Title:        "title",
	Slug:         "slug",
	Description:  "description",
	ThumbnailURL: "thumbnail_url",
	SourceURL:    "source_url",
	Status:       "status",
	CreatedAt:    "created_at",
	UpdatedAt:    "updated_at",
}

func (t CoreComicTable) Columns() []string {
	return []string{
		t.ID, t.Title, t.Slug, t.Description, t.ThumbnailURL,
		t.SourceURL, t.Status, t.CreatedAt, t.UpdatedAt,
	}
}
