package business

import (
	"context"
	"fmt"

	"github.com/byggassist/backend/tool"
)

type ListOffersInput struct {
	ProjectID string `json:"projectId"`
}

type OfferItemSummary struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unitPrice"`
}

type OfferSummary struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Items       []OfferItemSummary `json:"items"`
	TotalAmount string             `json:"totalAmount"`
	Status      string             `json:"status"`
}

func listOffersTool(svc *Services) tool.Tool {
	return tool.NewTool("listOffers",
		"List all offers attached to a project, including line items and totals.",
		func(ctx context.Context, caller tool.Identity, input ListOffersInput) ([]OfferSummary, error) {
			offers, err := svc.Store.Offers.ListByProject(ctx, input.ProjectID)
			if err != nil {
				return nil, fmt.Errorf("list offers: %w", err)
			}

			summaries := make([]OfferSummary, 0, len(offers))
			for _, o := range offers {
				items := make([]OfferItemSummary, 0, len(o.Items))
				for _, item := range o.Items {
					items = append(items, OfferItemSummary{
						Description: item.Description,
						Quantity:    item.Quantity.String(),
						UnitPrice:   item.UnitPrice.String(),
					})
				}
				summaries = append(summaries, OfferSummary{
					ID:          o.ID,
					Title:       o.Title,
					Items:       items,
					TotalAmount: o.TotalAmount.String(),
					Status:      o.Status,
				})
			}
			return summaries, nil
		})
}
