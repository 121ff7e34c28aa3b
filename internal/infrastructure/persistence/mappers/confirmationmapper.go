package mappers

import (
	"github.com/ptuchik/billing/internal/domain/invoice"
	"github.com/ptuchik/billing/internal/infrastructure/persistence/models"
)

func ConfirmationToEntity(model *models.ConfirmationModel) *invoice.Confirmation {
	return &invoice.Confirmation{
		ID:        model.ID,
		Type:      invoice.ConfirmationType(model.Type),
		PackageID: model.PackageID,
		Device:    invoice.Device(model.Device),
		Title:     model.Title,
		Body:      model.Body,
		Button:    model.Button,
		URL:       model.URL,
	}
}

func ConfirmationToModel(c *invoice.Confirmation) *models.ConfirmationModel {
	device := c.Device
	if device == "" {
		device = invoice.DeviceAll
	}
	return &models.ConfirmationModel{
		ID:        c.ID,
		Type:      int(c.Type),
		PackageID: c.PackageID,
		Device:    string(device),
		Title:     c.Title,
		Body:      c.Body,
		Button:    c.Button,
		URL:       c.URL,
	}
}
