package business

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/byggassist/backend/store"
	"github.com/byggassist/backend/tool"
)

type CreateCustomerInput struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Type    string `json:"type,omitempty" jsonschema:"enum=private,enum=company"`
	Address string `json:"address,omitempty"`
	OwnerID string `json:"ownerId"`
}

type CreateCustomerOutput struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	Message string `json:"message"`
}

type ListCustomersInput struct {
	OwnerID string `json:"ownerId"`
}

type CustomerSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

func createCustomerTool(svc *Services) tool.Tool {
	return tool.NewTool("createCustomer",
		"Create a new customer record for the given owner. Type is 'private' or 'company'.",
		func(ctx context.Context, caller tool.Identity, input CreateCustomerInput) (CreateCustomerOutput, error) {
			owner, err := svc.Store.Users.Get(ctx, input.OwnerID)
			if err != nil {
				return CreateCustomerOutput{}, fmt.Errorf("look up owner: %w", err)
			}

			if owner.CompanyID == "" {
				return CreateCustomerOutput{
					Success: false,
					ID:      "",
					Message: "User has no company ID",
				}, nil
			}

			customerType := input.Type
			if customerType == "" {
				customerType = "private"
			}

			customer := &store.Customer{
				ID:        uuid.NewString(),
				CompanyID: owner.CompanyID,
				OwnerID:   input.OwnerID,
				Name:      input.Name,
				Email:     input.Email,
				Phone:     input.Phone,
				Type:      customerType,
				Address:   input.Address,
			}

			if input.Address != "" && svc.Geocoder != nil {
				coords, err := svc.Geocoder.Geocode(ctx, input.Address)
				if err != nil {
					// Coordinates are a convenience; a failed lookup must
					// not block customer creation.
					slog.WarnContext(ctx, "geocode failed", "address", input.Address, "error", err)
				} else {
					customer.Latitude = &coords.Latitude
					customer.Longitude = &coords.Longitude
				}
			}

			if err := svc.Store.Customers.Create(ctx, customer); err != nil {
				return CreateCustomerOutput{}, fmt.Errorf("create customer: %w", err)
			}

			return CreateCustomerOutput{
				Success: true,
				ID:      customer.ID,
				Message: fmt.Sprintf("Customer %q created", input.Name),
			}, nil
		})
}

func listCustomersTool(svc *Services) tool.Tool {
	return tool.NewTool("listCustomers",
		"List all customers belonging to the given owner.",
		func(ctx context.Context, caller tool.Identity, input ListCustomersInput) ([]CustomerSummary, error) {
			customers, err := svc.Store.Customers.ListByOwner(ctx, input.OwnerID)
			if err != nil {
				return nil, fmt.Errorf("list customers: %w", err)
			}

			summaries := make([]CustomerSummary, 0, len(customers))
			for _, c := range customers {
				summaries = append(summaries, CustomerSummary{
					ID:    c.ID,
					Name:  c.Name,
					Email: c.Email,
				})
			}
			return summaries, nil
		})
}
