package business

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/byggassist/backend/docs"
	"github.com/byggassist/backend/store"
	"github.com/byggassist/backend/tool"
)

type LogReceiptInput struct {
	ProjectID   string   `json:"projectId"`
	Vendor      string   `json:"vendor,omitempty"`
	Date        string   `json:"date,omitempty"`
	TotalAmount *float64 `json:"totalAmount,omitempty"`
	Items       []string `json:"items,omitempty"`
	ImageBase64 string   `json:"imageBase64,omitempty"`
}

type LogReceiptOutput struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	DocLink string `json:"docLink,omitempty"`
}

func logReceiptTool(svc *Services) tool.Tool {
	return tool.NewTool("logReceipt",
		"Log a purchase receipt against a project, optionally attaching a photo of the receipt.",
		func(ctx context.Context, caller tool.Identity, input LogReceiptInput) (LogReceiptOutput, error) {
			if _, err := svc.Store.Projects.Get(ctx, input.ProjectID); err != nil {
				return LogReceiptOutput{}, fmt.Errorf("look up project: %w", err)
			}

			receipt := &store.Receipt{
				ID:        uuid.NewString(),
				ProjectID: input.ProjectID,
				Vendor:    input.Vendor,
				Date:      input.Date,
				Items:     input.Items,
			}
			if input.TotalAmount != nil {
				receipt.TotalAmount = decimal.NewFromFloat(*input.TotalAmount)
			}

			if input.ImageBase64 != "" {
				image, err := base64.StdEncoding.DecodeString(input.ImageBase64)
				if err != nil {
					return LogReceiptOutput{}, fmt.Errorf("decode receipt image: %w", err)
				}
				file, err := svc.Docs.StoreImage(ctx, "receipt-"+receipt.ID+".jpg", image)
				if err != nil {
					return LogReceiptOutput{}, fmt.Errorf("store receipt image: %w", err)
				}
				receipt.DocLink = file.WebViewLink
			}

			if err := svc.Store.Receipts.Create(ctx, receipt); err != nil {
				return LogReceiptOutput{}, fmt.Errorf("save receipt: %w", err)
			}

			return LogReceiptOutput{
				Success: true,
				Message: "Receipt logged",
				DocLink: receipt.DocLink,
			}, nil
		})
}

type GeneratePDFInput struct {
	Title          string `json:"title"`
	Content        string `json:"content"`
	TargetFolderID string `json:"targetFolderId,omitempty"`
}

type GeneratePDFOutput struct {
	FileID      string `json:"fileId"`
	WebViewLink string `json:"webViewLink"`
	Message     string `json:"message"`
}

func generatePDFTool(svc *Services) tool.Tool {
	return tool.NewTool("generatePdf",
		"Render a PDF document from a title and text content, optionally into a specific folder.",
		func(ctx context.Context, caller tool.Identity, input GeneratePDFInput) (GeneratePDFOutput, error) {
			file, err := svc.Docs.RenderPDF(ctx, docs.PDFRequest{
				Title:          input.Title,
				Content:        input.Content,
				TargetFolderID: input.TargetFolderID,
			})
			if err != nil {
				return GeneratePDFOutput{}, fmt.Errorf("render pdf: %w", err)
			}

			return GeneratePDFOutput{
				FileID:      file.ID,
				WebViewLink: file.WebViewLink,
				Message:     fmt.Sprintf("PDF %q generated", input.Title),
			}, nil
		})
}
