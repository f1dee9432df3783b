package files

import "time"

// Category is the coarse media classification computed once at upload.
type Category string

const (
	CategoryImage    Category = "IMAGE"
	CategoryVideo    Category = "VIDEO"
	CategoryAudio    Category = "AUDIO"
	CategoryDocument Category = "DOCUMENT"
	CategoryOther    Category = "OTHER"
)

// File is a stored binary object plus its metadata row. Data is
// immutable after creation; FileSize always equals len(Data) at write
// time. Removed is only ever observed transiently while a hard delete
// is in flight; the final state is row removal.
type File struct {
	ID          string
	UserID      string
	FileName    string
	FileType    string
	FileSize    int64
	Data        []byte
	Thumbnail   []byte
	Category    Category
	Description string
	Removed     bool
	UploadedAt  time.Time
}
