package files

import "testing"

func TestCategoryForMediaTypes(t *testing.T) {
	cases := []struct {
		mediaType string
		fileName  string
		want      Category
	}{
		{"image/jpeg", "photo.jpg", CategoryImage},
		{"image/png", "shot.png", CategoryImage},
		{"video/mp4", "clip.mp4", CategoryVideo},
		{"audio/mpeg", "song.mp3", CategoryAudio},
		{"application/pdf", "report.pdf", CategoryDocument},
		{"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "cv.docx", CategoryDocument},
		{"application/vnd.ms-excel", "sheet.xls", CategoryDocument},
		{"application/vnd.ms-powerpoint", "deck.ppt", CategoryDocument},
		{"text/plain", "notes.txt", CategoryDocument},
		{"application/zip", "bundle.zip", CategoryOther},
	}
	for _, tc := range cases {
		if got := CategoryFor(tc.mediaType, tc.fileName); got != tc.want {
			t.Fatalf("CategoryFor(%q, %q) = %s, want %s", tc.mediaType, tc.fileName, got, tc.want)
		}
	}
}

func TestCategoryForExtensionFallback(t *testing.T) {
	if got := CategoryFor("", "holiday.JPG"); got != CategoryImage {
		t.Fatalf("expected IMAGE from extension, got %s", got)
	}
	if got := CategoryFor("application/octet-stream", "trip.mkv"); got != CategoryVideo {
		t.Fatalf("expected VIDEO from extension, got %s", got)
	}
	if got := CategoryFor("", "mystery.bin"); got != CategoryOther {
		t.Fatalf("expected OTHER, got %s", got)
	}
}

func TestAuthorize(t *testing.T) {
	f := File{ID: "f1", UserID: "owner-1"}

	if got := Authorize(Caller{UserID: "owner-1"}, f); got != AccessOwner {
		t.Fatalf("owner should get AccessOwner, got %d", got)
	}
	if got := Authorize(Caller{UserID: "other", Admin: true}, f); got != AccessAdmin {
		t.Fatalf("admin should get AccessAdmin, got %d", got)
	}
	if got := Authorize(Caller{UserID: "other"}, f); got != AccessDenied {
		t.Fatalf("stranger should get AccessDenied, got %d", got)
	}
	if got := Authorize(Caller{}, f); got != AccessDenied {
		t.Fatalf("anonymous should get AccessDenied, got %d", got)
	}
}
