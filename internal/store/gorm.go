package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"notes-service/internal/model"
)

// GormStore implements Store on top of a gorm database handle.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a store backed by the given database connection.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) FindPrincipalByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	result := s.db.WithContext(ctx).Preload("Tenant").First(&user, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

func (s *GormStore) FindUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	result := s.db.WithContext(ctx).Preload("Tenant").Where("email = ?", email).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

func (s *GormStore) CreateUser(ctx context.Context, user *model.User) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrEmailTaken
	}
	return s.db.WithContext(ctx).Create(user).Error
}

func (s *GormStore) CreateTenant(ctx context.Context, tenant *model.Tenant) error {
	return s.db.WithContext(ctx).Create(tenant).Error
}

func (s *GormStore) FindTenantByID(ctx context.Context, id uint) (*model.Tenant, error) {
	var tenant model.Tenant
	result := s.db.WithContext(ctx).First(&tenant, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, result.Error
	}
	return &tenant, nil
}

func (s *GormStore) FindTenantBySlug(ctx context.Context, slug string) (*model.Tenant, error) {
	var tenant model.Tenant
	result := s.db.WithContext(ctx).Where("slug = ?", slug).First(&tenant)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, result.Error
	}
	return &tenant, nil
}

func (s *GormStore) UpgradeTenantPlan(ctx context.Context, slug string) (*model.Tenant, error) {
	var tenant model.Tenant
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the tenant row so the conditional plan write cannot race
		// another upgrade for the same tenant.
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("slug = ?", slug).First(&tenant)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return ErrTenantNotFound
			}
			return result.Error
		}
		if tenant.Plan == model.PlanPro {
			return ErrAlreadyPro
		}
		tenant.Plan = model.PlanPro
		return tx.Model(&tenant).Update("plan", model.PlanPro).Error
	})
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (s *GormStore) CountNotesByTenant(ctx context.Context, tenantID uint) (int64, error) {
	var count int64
	result := s.db.WithContext(ctx).Model(&model.Note{}).Where("tenant_id = ?", tenantID).Count(&count)
	return count, result.Error
}

func (s *GormStore) CreateNoteWithinQuota(ctx context.Context, note *model.Note, limit int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if limit >= 0 {
			// Lock the tenant row for the duration of the transaction so
			// concurrent creates for the same tenant serialize on the
			// count check. Without this, two requests could both observe
			// count below the limit and overshoot the cap.
			var tenant model.Tenant
			result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&tenant, note.TenantID)
			if result.Error != nil {
				if errors.Is(result.Error, gorm.ErrRecordNotFound) {
					return ErrTenantNotFound
				}
				return result.Error
			}
			var count int64
			if err := tx.Model(&model.Note{}).Where("tenant_id = ?", note.TenantID).Count(&count).Error; err != nil {
				return err
			}
			if count >= int64(limit) {
				return ErrQuotaExceeded
			}
		}
		return tx.Create(note).Error
	})
}

func (s *GormStore) FindNoteByIDAndTenant(ctx context.Context, id, tenantID uint) (*model.Note, error) {
	var note model.Note
	result := s.db.WithContext(ctx).Preload("User").Where("id = ? AND tenant_id = ?", id, tenantID).First(&note)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return &note, nil
}

func (s *GormStore) ListNotesByTenant(ctx context.Context, tenantID uint) ([]model.Note, error) {
	var notes []model.Note
	result := s.db.WithContext(ctx).Preload("User").
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&notes)
	if result.Error != nil {
		return nil, result.Error
	}
	return notes, nil
}

func (s *GormStore) UpdateNote(ctx context.Context, id, tenantID uint, title, content string) (*model.Note, error) {
	// The tenant scope is part of the UPDATE's own WHERE clause, so the
	// scope check and the mutation are one statement; zero affected rows
	// means the note is missing or belongs to another tenant.
	result := s.db.WithContext(ctx).Model(&model.Note{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Updates(map[string]interface{}{"title": title, "content": content})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.FindNoteByIDAndTenant(ctx, id, tenantID)
}

func (s *GormStore) DeleteNote(ctx context.Context, id, tenantID uint) error {
	result := s.db.WithContext(ctx).Where("id = ? AND tenant_id = ?", id, tenantID).Delete(&model.Note{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
