// Package business defines the fixed set of tools the assistant can call
// against the company's records. The set is registered once at startup.
package business

import (
	"github.com/byggassist/backend/docs"
	"github.com/byggassist/backend/geo"
	"github.com/byggassist/backend/store"
	"github.com/byggassist/backend/tool"
)

// Services are the collaborators the tool handlers run against.
type Services struct {
	Store    *store.Store
	Docs     docs.Service
	Geocoder geo.Geocoder
}

// Tools returns every business tool, ready for registration.
func Tools(svc *Services) []tool.Tool {
	return []tool.Tool{
		createCustomerTool(svc),
		listCustomersTool(svc),
		listOffersTool(svc),
		updateProjectTool(svc),
		logReceiptTool(svc),
		generatePDFTool(svc),
	}
}
