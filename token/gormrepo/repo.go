package gormrepo

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	bserrors "badstats/internal/errors"
	"badstats/token"
)

type tokenModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	Token     string    `gorm:"type:text;not null"`
	Expires   time.Time `gorm:"type:timestamptz;not null"`
	Refresh   *string   `gorm:"type:text"`
	TokenType string    `gorm:"type:text;not null;index"`
	SessionID *string   `gorm:"type:text;index"`
}

func (tokenModel) TableName() string { return "tokens" }

func (m tokenModel) toRecord() *token.Record {
	rec := &token.Record{
		ID:      m.ID,
		Value:   m.Token,
		Expires: m.Expires,
		Kind:    token.Kind(m.TokenType),
	}
	if m.Refresh != nil {
		rec.Refresh = *m.Refresh
	}
	if m.SessionID != nil {
		rec.SessionID = *m.SessionID
	}
	return rec
}

// Repo is the Postgres-backed token store.
type Repo struct {
	db *gorm.DB
}

var _ token.Repo = (*Repo)(nil)

func New(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// Model returns the persisted model for schema migration.
func Model() interface{} { return &tokenModel{} }

func (r *Repo) Insert(ctx context.Context, rec *token.Record) error {
	m := tokenModel{
		Token:     rec.Value,
		Expires:   rec.Expires,
		TokenType: string(rec.Kind),
	}
	if rec.Refresh != "" {
		m.Refresh = &rec.Refresh
	}
	if rec.SessionID != "" {
		m.SessionID = &rec.SessionID
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return errors.Wrap(err, "gormrepo.Insert")
	}
	rec.ID = m.ID
	return nil
}

func (r *Repo) FindClient(ctx context.Context) (*token.Record, error) {
	var m tokenModel
	err := r.db.WithContext(ctx).
		Where("token_type = ?", string(token.KindClient)).
		Order("id").
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, bserrors.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "gormrepo.FindClient")
	}
	return m.toRecord(), nil
}

func (r *Repo) FindBySession(ctx context.Context, sessionID string) (*token.Record, error) {
	var m tokenModel
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, bserrors.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "gormrepo.FindBySession")
	}
	return m.toRecord(), nil
}

func (r *Repo) UpdateBySession(ctx context.Context, sessionID, value string, expires time.Time, refresh string) error {
	res := r.db.WithContext(ctx).
		Model(&tokenModel{}).
		Where("session_id = ?", sessionID).
		Updates(map[string]interface{}{
			"token":   value,
			"expires": expires,
			"refresh": refresh,
		})
	if res.Error != nil {
		return errors.Wrap(res.Error, "gormrepo.UpdateBySession")
	}
	if res.RowsAffected == 0 {
		return bserrors.ErrNotFound
	}
	return nil
}

func (r *Repo) DeleteByID(ctx context.Context, id int64) error {
	if err := r.db.WithContext(ctx).Delete(&tokenModel{}, id).Error; err != nil {
		return errors.Wrap(err, "gormrepo.DeleteByID")
	}
	return nil
}

func (r *Repo) DeleteBySession(ctx context.Context, sessionID string) error {
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Delete(&tokenModel{}).Error
	if err != nil {
		return errors.Wrap(err, "gormrepo.DeleteBySession")
	}
	return nil
}
