package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amirphl/notification-hub/models"
	"gorm.io/gorm"
)

// ErrInvalidQuery is returned when an operator supplied audience query fails to run
var ErrInvalidQuery = errors.New("invalid audience query")

// AudienceMemberRepositoryImpl implements AudienceMemberRepository
type AudienceMemberRepositoryImpl struct {
	*BaseRepository[models.AudienceMember, models.AudienceMemberFilter]
}

func NewAudienceMemberRepository(db *gorm.DB) AudienceMemberRepository {
	return &AudienceMemberRepositoryImpl{BaseRepository: NewBaseRepository[models.AudienceMember, models.AudienceMemberFilter](db)}
}

func (r *AudienceMemberRepositoryImpl) applyFilter(db *gorm.DB, f models.AudienceMemberFilter) *gorm.DB {
	if f.OnlyActive {
		db = db.Where("audience_members.is_active = ?", true)
	}
	if len(f.UserTypes) > 0 {
		db = db.Where("audience_members.user_type IN ?", f.UserTypes)
	}
	if len(f.Classifications) > 0 {
		db = db.Where("audience_members.classification IN ?", f.Classifications)
	}
	if len(f.Zones) > 0 {
		db = db.Where("audience_members.zone IN ?", f.Zones)
	}
	if f.Inventory != nil {
		db = db.Where("audience_members.inventory_active = ? AND audience_members.inventory_quantity >= ?", true, f.Inventory.Quantity)
	}
	if f.Leads != nil {
		leads := db.Session(&gorm.Session{NewDB: true}).
			Model(&models.MemberLead{}).
			Select("COUNT(*)").
			Where("member_leads.member_id = audience_members.id")
		if f.LeadsSince != nil {
			leads = leads.Where("member_leads.received_at >= ?", *f.LeadsSince)
		}
		db = db.Where("(?) >= ?", leads, f.Leads.Quantity)
	}
	return db
}

// CountByFilter counts the members matched by a feed audience
func (r *AudienceMemberRepositoryImpl) CountByFilter(ctx context.Context, filter models.AudienceMemberFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.AudienceMember{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count audience members: %w", err)
	}
	return count, nil
}

// CountByQuery counts the rows returned by an operator supplied SELECT. The query runs
// in a read only transaction bounded by a statement timeout.
func (r *AudienceMemberRepositoryImpl) CountByQuery(ctx context.Context, query string, timeout time.Duration) (int64, error) {
	query = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(query), ";"))
	if query == "" {
		return 0, fmt.Errorf("%w: empty query", ErrInvalidQuery)
	}

	var count int64
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SET TRANSACTION READ ONLY").Error; err != nil {
			return err
		}
		if timeout > 0 {
			stmt := fmt.Sprintf("SET LOCAL statement_timeout = %d", timeout.Milliseconds())
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
		if err := tx.Raw("SELECT COUNT(*) FROM (" + query + ") AS q").Scan(&count).Error; err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return fmt.Errorf("%w: %v", ErrInvalidQuery, err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidQuery) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return 0, err
		}
		return 0, fmt.Errorf("failed to count audience query: %w", err)
	}
	return count, nil
}
