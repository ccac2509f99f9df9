package booking

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cservice/cservice-backend/internal/models"
)

// GormStore implements Store on a transactional relational database.
//
// Slot exclusivity is enforced twice: candidate active rows are locked FOR
// UPDATE before the conflict check, and a partial unique index on
// (scheduled_for) over active rows backstops the transaction so that even
// under weaker isolation two concurrent creates cannot both commit.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

type gormTxn struct {
	tx *gorm.DB
}

func (t gormTxn) HasConflict(at time.Time, excludeID uint) (bool, error) {
	q := t.tx.Model(&models.Booking{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("scheduled_for = ? AND status IN ?", at, models.ActiveStatuses())
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var existing models.Booking
	err := q.Take(&existing).Error
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, &StoreError{Op: "conflict check", Err: err}
}

func (s *GormStore) Create(ctx context.Context, b *models.Booking) error {
	slot := b.ScheduledFor
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		conflict, err := gormTxn{tx}.HasConflict(slot, 0)
		if err != nil {
			return err
		}
		if conflict {
			return &ConflictError{Slot: slot}
		}
		if err := tx.Create(b).Error; err != nil {
			if isUniqueViolation(err) {
				return &ConflictError{Slot: slot}
			}
			return &StoreError{Op: "insert booking", Err: err}
		}
		return nil
	})
	return err
}

func (s *GormStore) Get(ctx context.Context, ownerID, id uint) (*models.Booking, error) {
	var b models.Booking
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		First(&b, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{BookingID: id}
	}
	if err != nil {
		return nil, &StoreError{Op: "fetch booking", Err: err}
	}
	return &b, nil
}

func (s *GormStore) Mutate(ctx context.Context, ownerID, id uint, fn func(tx Txn, b *models.Booking) error) (*models.Booking, error) {
	var b models.Booking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the row first; guards must run against its current state,
		// not a stale read.
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("owner_id = ?", ownerID).
			First(&b, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{BookingID: id}
		}
		if err != nil {
			return &StoreError{Op: "fetch booking", Err: err}
		}

		if err := fn(gormTxn{tx}, &b); err != nil {
			return err
		}

		if err := tx.Save(&b).Error; err != nil {
			if isUniqueViolation(err) {
				return &ConflictError{Slot: b.ScheduledFor}
			}
			return &StoreError{Op: "update booking", Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *GormStore) List(ctx context.Context, ownerID uint, q ListQuery) ([]models.Booking, int64, error) {
	qb := s.db.WithContext(ctx).Model(&models.Booking{}).Where("owner_id = ?", ownerID)
	if q.Status != "" {
		qb = qb.Where("status = ?", q.Status)
	}
	if q.ServiceType != "" {
		qb = qb.Where("service_type LIKE ?", "%"+normalizeToken(q.ServiceType)+"%")
	}
	if q.DateFrom != nil {
		qb = qb.Where("scheduled_for >= ?", *q.DateFrom)
	}
	if q.DateTo != nil {
		qb = qb.Where("scheduled_for <= ?", *q.DateTo)
	}

	var total int64
	if err := qb.Count(&total).Error; err != nil {
		return nil, 0, &StoreError{Op: "count bookings", Err: err}
	}

	var out []models.Booking
	if err := qb.Order("scheduled_for DESC").
		Limit(q.PerPage).
		Offset(q.Offset()).
		Find(&out).Error; err != nil {
		return nil, 0, &StoreError{Op: "list bookings", Err: err}
	}
	return out, total, nil
}

func (s *GormStore) ActiveBetween(ctx context.Context, from, to time.Time) ([]models.Booking, error) {
	var out []models.Booking
	err := s.db.WithContext(ctx).
		Where("status IN ? AND scheduled_for >= ? AND scheduled_for < ?", models.ActiveStatuses(), from, to).
		Order("scheduled_for ASC").
		Find(&out).Error
	if err != nil {
		return nil, &StoreError{Op: "list active bookings", Err: err}
	}
	return out, nil
}

func (s *GormStore) OwnerEmail(ctx context.Context, ownerID uint) (string, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Select("email").First(&user, ownerID).Error; err != nil {
		return "", &StoreError{Op: "fetch owner contact", Err: err}
	}
	return user.Email, nil
}

// isUniqueViolation reports a Postgres unique-constraint failure, which
// here can only come from the active-slot index.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
