package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/atvirokodosprendimai/feedbackapi/internal/adapters/sqlite/gormsqlite"
	"github.com/atvirokodosprendimai/feedbackapi/internal/core/domain"
)

type principalModel struct {
	ID           string    `gorm:"column:id;primaryKey"`
	Email        string    `gorm:"column:email;not null"`
	Name         string    `gorm:"column:name;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;not null;autoCreateTime:false"`
	UpdatedAt    time.Time `gorm:"column:updated_at;not null;autoUpdateTime:false"`
}

func (principalModel) TableName() string {
	return "principals"
}

type PrincipalRepository struct {
	db *gormsqlite.DB
}

func NewPrincipalRepository(db *gormsqlite.DB) *PrincipalRepository {
	return &PrincipalRepository{db: db}
}

func (r *PrincipalRepository) Create(ctx context.Context, principal domain.Principal) (domain.Principal, error) {
	model := principalModel{
		ID:           principal.ID,
		Email:        principal.Email,
		Name:         principal.Name,
		PasswordHash: principal.PasswordHash,
		CreatedAt:    principal.CreatedAt.UTC(),
		UpdatedAt:    principal.UpdatedAt.UTC(),
	}
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Create(&model).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Principal{}, domain.ErrEmailTaken
		}
		return domain.Principal{}, fmt.Errorf("create principal: %w", err)
	}
	return principalToDomain(model), nil
}

func (r *PrincipalRepository) Get(ctx context.Context, id string) (domain.Principal, error) {
	return r.first(ctx, "get principal", func(tx *gormsqlite.Tx) *gorm.DB {
		return tx.Where("id = ?", id)
	})
}

func (r *PrincipalRepository) FindByEmail(ctx context.Context, email string) (domain.Principal, error) {
	return r.first(ctx, "find principal by email", func(tx *gormsqlite.Tx) *gorm.DB {
		return tx.Where("email = ?", email)
	})
}

func (r *PrincipalRepository) First(ctx context.Context) (domain.Principal, error) {
	return r.first(ctx, "first principal", func(tx *gormsqlite.Tx) *gorm.DB {
		return tx.Order("created_at ASC, id ASC")
	})
}

func (r *PrincipalRepository) first(ctx context.Context, op string, scope func(tx *gormsqlite.Tx) *gorm.DB) (domain.Principal, error) {
	var model principalModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return scope(tx).First(&model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Principal{}, domain.ErrNotFound
		}
		return domain.Principal{}, fmt.Errorf("%s: %w", op, err)
	}
	return principalToDomain(model), nil
}

func principalToDomain(model principalModel) domain.Principal {
	return domain.Principal{
		ID:           model.ID,
		Email:        model.Email,
		Name:         model.Name,
		PasswordHash: model.PasswordHash,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}
