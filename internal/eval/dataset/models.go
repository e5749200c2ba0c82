package dataset

// ShelfRecord is one labeled shelf photo: the image and the books a person
// verified are actually on it.
type ShelfRecord struct {
	ImagePath string         `json:"image_path" parquet:"image_path"`
	Books     []ExpectedBook `json:"books" parquet:"books,list"`
}

// ExpectedBook is a ground-truth book entry
type ExpectedBook struct {
	Title  string `json:"title" parquet:"title"`
	Author string `json:"author" parquet:"author"`
}
