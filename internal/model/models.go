package model

import (
	"time"

	"gorm.io/datatypes"
)

// GameRecord is the summary of one finished game on a table. A table that
// plays again produces one record per round.
type GameRecord struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	SessionID   string `gorm:"size:64;not null;uniqueIndex:idx_session_round"`
	Round       int    `gorm:"not null;uniqueIndex:idx_session_round"`
	Code        string `gorm:"size:16"`
	PlayerCount int
	WinnerName  string `gorm:"size:64"` // empty when nobody won
	EndReason   string `gorm:"size:32"` // last_player/time_up/no_eligible_player
	ClockTicks  int
	PileSize    int
	RulesJSON   datatypes.JSON
	StartedAt   time.Time
	EndedAt     time.Time
	CreatedAt   time.Time

	Players []GameRecordPlayer `gorm:"foreignKey:RecordID"`
}

// GameRecordPlayer is one seat's outcome within a GameRecord.
type GameRecordPlayer struct {
	ID                int64 `gorm:"primaryKey;autoIncrement"`
	RecordID          int64 `gorm:"index;not null"`
	Seat              int
	Name              string `gorm:"size:64"`
	Status            string `gorm:"size:16"` // winner/loser/kicked
	CardsHeld         int
	AutoPlayCount     int
	ShufflesRemaining int
}
