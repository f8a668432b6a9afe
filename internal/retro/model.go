package retro

import "time"

type User struct {
	Id    string `json:"id" bson:"_id"`
	Name  string `json:"name" bson:"name"`
	Color string `json:"color" bson:"color"`
}

type Retrospective struct {
	Id           string       `json:"id" bson:"_id"`
	Title        string       `json:"title" bson:"title"`
	TemplateType TemplateType `json:"templateType" bson:"templateType"`
	CreatedAt    Timestamp    `json:"createdAt" bson:"createdAt"`
	UpdatedAt    Timestamp    `json:"updatedAt" bson:"updatedAt"`
	Participants []User       `json:"participants" bson:"participants"`
}

func (r *Retrospective) HasParticipant(userId string) bool {
	for _, p := range r.Participants {
		if p.Id == userId {
			return true
		}
	}

	return false
}

type Note struct {
	Id              string    `json:"id" bson:"_id"`
	Content         string    `json:"content" bson:"content"`
	Author          User      `json:"author" bson:"author"`
	Column          string    `json:"column" bson:"column"`
	RetrospectiveId string    `json:"retrospectiveId" bson:"retrospectiveId"`
	CreatedAt       Timestamp `json:"createdAt" bson:"createdAt"`
	UpdatedAt       Timestamp `json:"updatedAt" bson:"updatedAt"`
}

// Timestamp is an RFC 3339 UTC string with millisecond precision, which keeps
// lexical and chronological order identical.
type Timestamp string

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp(t.UTC().Format(timestampLayout))
}

func Now() Timestamp {
	return NewTimestamp(time.Now())
}

func (t Timestamp) Time() (time.Time, error) {
	return time.Parse(time.RFC3339Nano, string(t))
}
