package service

import (
	"context"
	"testing"

	"voucher-service/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCreateProductRejectsNegativeValue(t *testing.T) {
	s := &InventoryService{}

	_, err := s.CreateProduct(context.Background(), &CreateProductRequest{
		ProductID: "X",
		Name:      "Broken",
		Value:     -1,
		Stock:     0,
	})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestCreateProductRejectsNegativeStock(t *testing.T) {
	s := &InventoryService{}

	_, err := s.CreateProduct(context.Background(), &CreateProductRequest{
		ProductID: "X",
		Name:      "Broken",
		Value:     10,
		Stock:     -5,
	})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestUpdateProductRejectsBadFields(t *testing.T) {
	s := &InventoryService{}

	badValue := -0.01
	_, err := s.UpdateProduct(context.Background(), "X", &UpdateProductRequest{Value: &badValue})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	badStatus := "RETIRED"
	_, err = s.UpdateProduct(context.Background(), "X", &UpdateProductRequest{Status: &badStatus})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestAdjustStockRejectsZeroDelta(t *testing.T) {
	s := &InventoryService{}

	_, err := s.AdjustStock(context.Background(), "X", 0)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}
