// Package models defines the data structures shared across the pipeline.
package models

import "time"

// TranscriptMessage is the payload published on the transcript topic and
// consumed by every assessment worker and the transcript persister.
type TranscriptMessage struct {
	CallID     string `json:"call_id"`
	Transcript string `json:"transcript"`
}

// TranscriptRecord is the durable form of a raw transcript.
type TranscriptRecord struct {
	ID         string    `bson:"_id" json:"id"`
	CallID     string    `bson:"call_id" json:"call_id"`
	Transcript string    `bson:"transcript" json:"transcript"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}

// AssessmentRecord is the durable form of one scored dimension for one call.
// Assessment holds the model output keyed per dimension, e.g.
// {"politeness_score": 4, "summary": "...", "reasoning": "..."}.
type AssessmentRecord struct {
	ID         string         `bson:"_id" json:"id"`
	CallID     string         `bson:"call_id" json:"call_id"`
	Assessment map[string]any `bson:"assessment" json:"assessment"`
	Type       string         `bson:"type" json:"type"`
	CreatedAt  time.Time      `bson:"created_at" json:"created_at"`
}

// TranscriptView is the read-side projection returned by the query endpoint.
type TranscriptView struct {
	ID         string `bson:"_id" json:"id"`
	CallID     string `bson:"call_id" json:"call_id"`
	Transcript string `bson:"transcript" json:"transcript"`
}
