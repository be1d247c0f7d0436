package model

import "time"

// BlockedWindow is an administrator-declared unavailable period. The engine
// only reads these; administration owns creation and deletion. A recurring
// window repeats every year on the same month and day.
type BlockedWindow struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty"`
	Date      string    `json:"date" bson:"date"`
	WholeDay  bool      `json:"whole_day" bson:"whole_day"`
	StartTime string    `json:"start_time,omitempty" bson:"start_time,omitempty"`
	EndTime   string    `json:"end_time,omitempty" bson:"end_time,omitempty"`
	Reason    string    `json:"reason" bson:"reason"`
	Recurring bool      `json:"recurring" bson:"recurring"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
