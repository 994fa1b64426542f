package gormrepo

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"badstats/csrf"
	bserrors "badstats/internal/errors"
)

type csrfModel struct {
	Token   string    `gorm:"primaryKey;type:text"`
	Created time.Time `gorm:"type:timestamptz;not null"`
}

func (csrfModel) TableName() string { return "csrf_tokens" }

// Repo is the Postgres-backed CSRF token store.
type Repo struct {
	db *gorm.DB
}

var _ csrf.Repo = (*Repo)(nil)

func New(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// Model returns the persisted model for schema migration.
func Model() interface{} { return &csrfModel{} }

func (r *Repo) Insert(ctx context.Context, rec *csrf.Record) error {
	m := csrfModel{Token: rec.Token, Created: rec.Created}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return errors.Wrap(err, "gormrepo.Insert")
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, tokenValue string) (*csrf.Record, error) {
	var m csrfModel
	err := r.db.WithContext(ctx).Where("token = ?", tokenValue).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, bserrors.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "gormrepo.Get")
	}
	return &csrf.Record{Token: m.Token, Created: m.Created}, nil
}

func (r *Repo) Delete(ctx context.Context, tokenValue string) error {
	err := r.db.WithContext(ctx).Where("token = ?", tokenValue).Delete(&csrfModel{}).Error
	if err != nil {
		return errors.Wrap(err, "gormrepo.Delete")
	}
	return nil
}
