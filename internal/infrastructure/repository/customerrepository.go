package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/ptuchik/billing/internal/domain/customer"
	"github.com/ptuchik/billing/internal/infrastructure/persistence/mappers"
	"github.com/ptuchik/billing/internal/infrastructure/persistence/models"
	"github.com/ptuchik/billing/internal/shared/db"
	"github.com/ptuchik/billing/internal/shared/errors"
	"github.com/ptuchik/billing/internal/shared/logger"
)

// CustomerRepositoryImpl implements the customer.Repository interface
type CustomerRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.CustomerMapper
	logger logger.Interface
}

func NewCustomerRepository(db *gorm.DB, logger logger.Interface) customer.Repository {
	return &CustomerRepositoryImpl{
		db:     db,
		mapper: mappers.NewCustomerMapper(),
		logger: logger,
	}
}

func (r *CustomerRepositoryImpl) Create(ctx context.Context, c *customer.Customer) error {
	model, err := r.mapper.ToModel(c)
	if err != nil {
		r.logger.Errorw("failed to map customer entity to model", "error", err)
		return fmt.Errorf("failed to map customer entity: %w", err)
	}

	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Create(model).Error; err != nil {
		if errors.IsDuplicateError(err) {
			return errors.NewConflictError("customer with this email already exists", model.Email)
		}
		r.logger.Errorw("failed to create customer", "email", model.Email, "error", err)
		return fmt.Errorf("failed to create customer: %w", err)
	}

	if err := c.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set customer ID: %w", err)
	}

	r.logger.Infow("customer created successfully", "id", model.ID)
	return nil
}

// Update writes c unless a newer version was stored meanwhile. The entity
// may have been touched any number of times since it was loaded.
func (r *CustomerRepositoryImpl) Update(ctx context.Context, c *customer.Customer) error {
	model, err := r.mapper.ToModel(c)
	if err != nil {
		r.logger.Errorw("failed to map customer entity to model", "id", c.ID(), "error", err)
		return fmt.Errorf("failed to map customer entity: %w", err)
	}

	tx := db.GetTxFromContext(ctx, r.db)
	result := tx.Model(&models.CustomerModel{}).
		Where("id = ? AND version <= ?", model.ID, model.Version).
		Updates(map[string]interface{}{
			"first_name":         model.FirstName,
			"last_name":          model.LastName,
			"currency":           model.Currency,
			"balance":            model.Balance,
			"coupons":            model.Coupons,
			"referral_id":        model.ReferralID,
			"has_payment_method": model.HasPaymentMethod,
			"payment_gateway":    model.PaymentGateway,
			"active":             model.Active,
			"version":            model.Version,
			"updated_at":         model.UpdatedAt,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update customer", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update customer: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewConflictError(customer.ErrVersionConflict.Error())
	}

	r.logger.Debugw("customer updated", "id", model.ID, "version", model.Version)
	return nil
}

func (r *CustomerRepositoryImpl) GetByID(ctx context.Context, id uint) (*customer.Customer, error) {
	var model models.CustomerModel
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.First(&model, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get customer by ID", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *CustomerRepositoryImpl) GetByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	var model models.CustomerModel
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Where("email = ?", email).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get customer by email", "error", err)
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return r.mapper.ToEntity(&model)
}
