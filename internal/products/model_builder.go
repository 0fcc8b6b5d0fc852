package products

import (
	"github.com/google/uuid"

	"github.com/lumera-labs/marketplace-backend/pkg/db/models"
)

func newProductModel(sellerID uuid.UUID, input CreateProductInput) models.Product {
	images := input.Images
	if images == nil {
		images = []string{}
	}
	tags := input.Tags
	if tags == nil {
		tags = []string{}
	}
	return models.Product{
		SellerID:    &sellerID,
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Category:    input.Category,
		Brand:       input.Brand,
		Images:      images,
		Tags:        tags,
		Inventory:   input.Inventory,
		IsActive:    true,
	}
}

func applyUpdate(product *models.Product, input UpdateProductInput) {
	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.Category != nil {
		product.Category = *input.Category
	}
	if input.Brand != nil {
		product.Brand = *input.Brand
	}
	if input.Images != nil {
		product.Images = input.Images
	}
	if input.Tags != nil {
		product.Tags = input.Tags
	}
	if input.Inventory != nil {
		product.Inventory = *input.Inventory
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
}
