package models

import "time"

type Role string

const (
	RoleUser      Role = "user"      // candidate
	RoleAssistant Role = "assistant" // AI interviewer
)

const (
	DefaultTechStack = "General"
	DefaultCompany   = "Practice Session"
)

// TranscriptMessage is the stored form of one utterance. Timestamp is RFC 3339.
type TranscriptMessage struct {
	ID        string `bson:"id" firestore:"id" json:"id"`
	Role      Role   `bson:"role" firestore:"role" json:"role"`
	Message   string `bson:"message" firestore:"message" json:"message"`
	Timestamp string `bson:"timestamp" firestore:"timestamp" json:"timestamp"`
}

// Interview is written once when a session ends and never updated.
type Interview struct {
	ID     string `bson:"_id" firestore:"-" json:"id"`
	UserID string `bson:"user_id" firestore:"userId" json:"user_id"`

	Transcript []TranscriptMessage `bson:"transcript" firestore:"transcript" json:"transcript"`

	StartTime time.Time `bson:"start_time" firestore:"startTime" json:"start_time"`
	EndTime   time.Time `bson:"end_time" firestore:"endTime" json:"end_time"`
	Duration  int       `bson:"duration" firestore:"duration" json:"duration"` // minutes, >= 1

	TotalMessages     int `bson:"total_messages" firestore:"totalMessages" json:"total_messages"`
	UserMessages      int `bson:"user_messages" firestore:"userMessages" json:"user_messages"`
	AssistantMessages int `bson:"assistant_messages" firestore:"assistantMessages" json:"assistant_messages"`

	TechStack  string `bson:"tech_stack" firestore:"techStack" json:"tech_stack"`
	Company    string `bson:"company" firestore:"company" json:"company"`
	Conclusion string `bson:"conclusion" firestore:"conclusion" json:"conclusion"`

	// set by the repository at write time
	CreatedAt time.Time `bson:"created_at" firestore:"createdAt,serverTimestamp" json:"created_at"`
}

// InterviewSummary is the short, non-authoritative digest of the latest
// saved interview. It lives in the cache only.
type InterviewSummary struct {
	InterviewID string    `json:"interview_id"`
	Company     string    `json:"company"`
	TechStack   string    `json:"tech_stack"`
	CompletedOn time.Time `json:"completed_on"`
	Duration    int       `json:"duration"`
	Conclusion  string    `json:"conclusion"`
	Text        string    `json:"text"`
}
