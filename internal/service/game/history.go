package game

import (
	"context"
	"encoding/json"
	"errors"

	"satta-service/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type HistoryResult struct {
	Items []model.GameRecord
	Total int64
}

var errGameNotFinished = errors.New("game is not finished")

// RecordResult stores the outcome of a finished game. Recording the same
// session round twice is a no-op.
func (s *Service) RecordResult(ctx context.Context, req FinishedGame) (*model.GameRecord, error) {
	st := req.State
	if st.Status != StatusFinished {
		return nil, errGameNotFinished
	}

	record := model.GameRecord{
		SessionID:   req.SessionID,
		Round:       req.Round,
		Code:        req.Code,
		PlayerCount: len(st.Players),
		EndReason:   string(st.EndReason),
		ClockTicks:  st.Clock,
		PileSize:    len(st.TablePile),
		RulesJSON:   mustJSON(st.Rules),
		StartedAt:   req.StartedAt,
		EndedAt:     req.EndedAt,
	}
	if w, ok := st.Winner(); ok {
		record.WinnerName = w.Name
	}
	for i, p := range st.Players {
		record.Players = append(record.Players, model.GameRecordPlayer{
			Seat:              i,
			Name:              p.Name,
			Status:            string(p.Status),
			CardsHeld:         len(p.Hand),
			AutoPlayCount:     p.AutoPlayCount,
			ShufflesRemaining: p.ShufflesRemaining,
		})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&model.GameRecord{}).
			Where("session_id = ? AND round = ?", req.SessionID, req.Round).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *Service) ListHistory(ctx context.Context, page, size int) (*HistoryResult, error) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	if size > 100 {
		size = 100
	}

	var total int64
	if err := s.db.WithContext(ctx).
		Model(&model.GameRecord{}).
		Count(&total).Error; err != nil {
		return nil, err
	}

	var items []model.GameRecord
	if total > 0 {
		offset := (page - 1) * size
		if err := s.db.WithContext(ctx).
			Model(&model.GameRecord{}).
			Preload("Players", func(db *gorm.DB) *gorm.DB {
				return db.Order("seat ASC")
			}).
			Order("id DESC").
			Limit(size).
			Offset(offset).
			Find(&items).Error; err != nil {
			return nil, err
		}
	}

	return &HistoryResult{Items: items, Total: total}, nil
}

func mustJSON(v interface{}) datatypes.JSON {
	data, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON([]byte("{}"))
	}
	return datatypes.JSON(data)
}
