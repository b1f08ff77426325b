package domain

import "time"

// Receipt records one successful publish. It is the only state that outlives
// a run besides the sheet's status column.
type Receipt struct {
	RowNum       int       `json:"row_num"`
	DisplayCount int       `json:"display_count"`
	MediaID      string    `json:"media_id"`
	SlideCount   int       `json:"slide_count"`
	Caption      string    `json:"caption"`
	PostedAt     time.Time `json:"posted_at"`
}
