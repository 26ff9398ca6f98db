package models

// Attachment represents an uploaded file held in temporary storage for the
// duration of one viewing request
type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	FilePath    string `json:"-"`
	SizeBytes   int64  `json:"size_bytes"`
}
