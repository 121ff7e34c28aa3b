package mappers

import (
	"fmt"

	"github.com/ptuchik/billing/internal/domain/customer"
	"github.com/ptuchik/billing/internal/infrastructure/persistence/models"
	"github.com/ptuchik/billing/internal/shared/mapper"
)

type CustomerMapper interface {
	ToEntity(model *models.CustomerModel) (*customer.Customer, error)
	ToModel(entity *customer.Customer) (*models.CustomerModel, error)
	ToEntities(models []*models.CustomerModel) ([]*customer.Customer, error)
}

type CustomerMapperImpl struct{}

func NewCustomerMapper() CustomerMapper {
	return &CustomerMapperImpl{}
}

func (m *CustomerMapperImpl) ToEntity(model *models.CustomerModel) (*customer.Customer, error) {
	if model == nil {
		return nil, nil
	}

	var coupons []string
	if err := fromJSON("coupons", model.Coupons, &coupons); err != nil {
		return nil, err
	}

	entity, err := customer.ReconstructCustomer(customer.CustomerParams{
		ID:               model.ID,
		Email:            model.Email,
		FirstName:        model.FirstName,
		LastName:         model.LastName,
		Currency:         model.Currency,
		Balance:          model.Balance,
		Coupons:          coupons,
		ReferralID:       model.ReferralID,
		HasPaymentMethod: model.HasPaymentMethod,
		PaymentGateway:   model.PaymentGateway,
		Active:           model.Active,
		Version:          model.Version,
		CreatedAt:        model.CreatedAt,
		UpdatedAt:        model.UpdatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct customer entity: %w", err)
	}
	return entity, nil
}

func (m *CustomerMapperImpl) ToModel(entity *customer.Customer) (*models.CustomerModel, error) {
	if entity == nil {
		return nil, nil
	}

	coupons, err := toJSON("coupons", entity.Coupons())
	if err != nil {
		return nil, err
	}

	return &models.CustomerModel{
		ID:               entity.ID(),
		Email:            entity.Email(),
		FirstName:        entity.FirstName(),
		LastName:         entity.LastName(),
		Currency:         entity.Currency(),
		Balance:          entity.Balance().Amount(),
		Coupons:          coupons,
		ReferralID:       entity.ReferralID(),
		HasPaymentMethod: entity.HasPaymentMethod(),
		PaymentGateway:   entity.PaymentGateway(),
		Active:           entity.IsActive(),
		Version:          entity.Version(),
		CreatedAt:        entity.CreatedAt(),
		UpdatedAt:        entity.UpdatedAt(),
	}, nil
}

func (m *CustomerMapperImpl) ToEntities(list []*models.CustomerModel) ([]*customer.Customer, error) {
	return mapper.MapSlicePtrWithID(list, m.ToEntity, func(model *models.CustomerModel) uint {
		return model.ID
	})
}
