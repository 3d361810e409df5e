package models

import (
	"encoding/json"
	"time"
)

// TraitScores holds the three dark-triad trait scores.
type TraitScores struct {
	Narcissism       float64 `json:"narcissism"`
	Machiavellianism float64 `json:"machiavellianism"`
	Psychopathy      float64 `json:"psychopathy"`
}

// DiagnosisResult is the scored outcome of one completed survey.
// Created once per participant on submission and immutable afterwards.
// Name and email are denormalized from the participant at submission
// time so results stay readable if the participant is later deleted.
type DiagnosisResult struct {
	ID               string          `json:"id"`
	ParticipantCode  string          `json:"participantCode"`
	ParticipantName  string          `json:"participantName"`
	ParticipantEmail string          `json:"participantEmail"`
	Scores           TraitScores     `json:"scores"`
	AvgScore         float64         `json:"avgScore"`
	Answers          json.RawMessage `json:"answers,omitempty"`
	Questions        json.RawMessage `json:"questions,omitempty"`
	CompletedAt      time.Time       `json:"completedAt"`
}
