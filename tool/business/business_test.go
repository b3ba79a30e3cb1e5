package business

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/byggassist/backend/docs"
	"github.com/byggassist/backend/geo"
	"github.com/byggassist/backend/store"
	"github.com/byggassist/backend/tool"
)

type fakeDocs struct{}

func (fakeDocs) CreateDraft(ctx context.Context, req docs.DraftRequest) (*docs.File, error) {
	return &docs.File{ID: "draft", WebViewLink: "https://docs.example/draft"}, nil
}

func (fakeDocs) RenderPDF(ctx context.Context, req docs.PDFRequest) (*docs.File, error) {
	return &docs.File{ID: "pdf-1", WebViewLink: "https://docs.example/pdf"}, nil
}

func (fakeDocs) StoreImage(ctx context.Context, name string, data []byte) (*docs.File, error) {
	return &docs.File{ID: "img-1", WebViewLink: "https://docs.example/img"}, nil
}

type fixedGeocoder struct {
	coords geo.Coordinates
	calls  int
}

func (g *fixedGeocoder) Geocode(ctx context.Context, address string) (geo.Coordinates, error) {
	g.calls++
	return g.coords, nil
}

type testEnv struct {
	store    *store.Store
	executor *tool.Executor
	geocoder *fixedGeocoder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	st := store.New(db)

	geocoder := &fixedGeocoder{coords: geo.Coordinates{Latitude: 59.33, Longitude: 18.07}}
	registry := tool.NewRegistry()
	require.NoError(t, registry.Register(Tools(&Services{
		Store:    st,
		Docs:     fakeDocs{},
		Geocoder: geocoder,
	})...))

	return &testEnv{
		store:    st,
		executor: tool.NewExecutor(registry),
		geocoder: geocoder,
	}
}

func (e *testEnv) execute(t *testing.T, toolName string, args any) tool.Result {
	t.Helper()
	raw, err := json.Marshal(args)
	require.NoError(t, err)
	return e.executor.Execute(context.Background(), tool.Invocation{
		Tool:         toolName,
		RawArguments: raw,
		Caller:       tool.Identity{UserID: "u1", CompanyID: "c1"},
	})
}

func seedUser(t *testing.T, st *store.Store, id, companyID string) {
	t.Helper()
	require.NoError(t, st.Users.Create(context.Background(), &store.User{
		ID:        id,
		Name:      "Test User",
		CompanyID: companyID,
	}))
}

func TestCreateCustomer(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	seedUser(t, env.store, "u1", "c1")

	result := env.execute(t, "createCustomer", CreateCustomerInput{
		Name:    "Anna Svensson",
		Email:   "anna@example.com",
		Address: "Storgatan 1, Stockholm",
		OwnerID: "u1",
	})
	require.True(t, result.Success)

	var out CreateCustomerOutput
	require.NoError(t, json.Unmarshal(result.Payload, &out))
	require.True(t, out.Success)
	require.NotEmpty(t, out.ID)

	customer, err := env.store.Customers.Get(context.Background(), out.ID)
	require.NoError(t, err)
	require.Equal(t, "c1", customer.CompanyID)
	require.Equal(t, "private", customer.Type, "type defaults to private")
	require.NotNil(t, customer.Latitude)
	require.Equal(t, 1, env.geocoder.calls)
}

func TestCreateCustomerOwnerWithoutCompany(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	seedUser(t, env.store, "u2", "")

	result := env.execute(t, "createCustomer", CreateCustomerInput{
		Name:    "Anna Svensson",
		OwnerID: "u2",
	})

	// The handler ran fine; the refusal is carried in its payload.
	require.True(t, result.Success)

	var out CreateCustomerOutput
	require.NoError(t, json.Unmarshal(result.Payload, &out))
	require.False(t, out.Success)
	require.Empty(t, out.ID)
	require.Equal(t, "User has no company ID", out.Message)

	customers, err := env.store.Customers.ListByOwner(context.Background(), "u2")
	require.NoError(t, err)
	require.Empty(t, customers)
}

func TestCreateCustomerMissingName(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	seedUser(t, env.store, "u1", "c1")

	result := env.execute(t, "createCustomer", map[string]string{"ownerId": "u1"})
	require.False(t, result.Success)
	require.NotEmpty(t, result.Error)
}

func TestListCustomers(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	seedUser(t, env.store, "u1", "c1")

	for _, name := range []string{"Anna", "Bo"} {
		result := env.execute(t, "createCustomer", CreateCustomerInput{Name: name, OwnerID: "u1"})
		require.True(t, result.Success)
	}

	result := env.execute(t, "listCustomers", ListCustomersInput{OwnerID: "u1"})
	require.True(t, result.Success)

	var summaries []CustomerSummary
	require.NoError(t, json.Unmarshal(result.Payload, &summaries))
	require.Len(t, summaries, 2)
}

func TestUpdateProjectAppendsDescriptionByDefault(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	require.NoError(t, env.store.Projects.Create(context.Background(), &store.Project{
		ID:          "p1",
		CompanyID:   "c1",
		Name:        "Garage",
		Description: "Pour foundation",
		Status:      "active",
	}))

	result := env.execute(t, "updateProject", UpdateProjectInput{
		ProjectID:   "p1",
		Description: "Frame walls",
	})
	require.True(t, result.Success)

	project, err := env.store.Projects.Get(context.Background(), "p1")
	require.NoError(t, err)
	require.Equal(t, "Pour foundation\nFrame walls", project.Description)
}

func TestUpdateProjectReplaceDescription(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	require.NoError(t, env.store.Projects.Create(context.Background(), &store.Project{
		ID:          "p1",
		CompanyID:   "c1",
		Name:        "Garage",
		Description: "Old text",
		Status:      "active",
	}))

	replace := false
	result := env.execute(t, "updateProject", UpdateProjectInput{
		ProjectID:         "p1",
		Description:       "New text",
		AppendDescription: &replace,
	})
	require.True(t, result.Success)

	project, err := env.store.Projects.Get(context.Background(), "p1")
	require.NoError(t, err)
	require.Equal(t, "New text", project.Description)
}

func TestUpdateProjectNothingToDo(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	require.NoError(t, env.store.Projects.Create(context.Background(), &store.Project{
		ID: "p1", CompanyID: "c1", Name: "Garage", Status: "active",
	}))

	result := env.execute(t, "updateProject", UpdateProjectInput{ProjectID: "p1"})
	require.True(t, result.Success)

	var out UpdateProjectOutput
	require.NoError(t, json.Unmarshal(result.Payload, &out))
	require.False(t, out.Success)
	require.Contains(t, out.Message, "Nothing to update")
}

func TestListOffers(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	require.NoError(t, env.store.Projects.Create(context.Background(), &store.Project{
		ID: "p1", CompanyID: "c1", Name: "Garage", Status: "active",
	}))
	require.NoError(t, env.store.Offers.Create(context.Background(), &store.Offer{
		ID:        "o1",
		ProjectID: "p1",
		Title:     "Groundwork",
		Status:    "accepted",
		Items: []store.OfferItem{
			{Description: "Excavation", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(12000)},
		},
		TotalAmount: decimal.NewFromInt(12000),
	}))

	result := env.execute(t, "listOffers", ListOffersInput{ProjectID: "p1"})
	require.True(t, result.Success)

	var summaries []OfferSummary
	require.NoError(t, json.Unmarshal(result.Payload, &summaries))
	require.Len(t, summaries, 1)
	require.Equal(t, "Groundwork", summaries[0].Title)
	require.Equal(t, "12000", summaries[0].TotalAmount)
}

func TestLogReceiptWithImage(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	require.NoError(t, env.store.Projects.Create(context.Background(), &store.Project{
		ID: "p1", CompanyID: "c1", Name: "Garage", Status: "active",
	}))

	amount := 249.50
	result := env.execute(t, "logReceipt", LogReceiptInput{
		ProjectID:   "p1",
		Vendor:      "Bauhaus",
		Date:        "2026-08-15",
		TotalAmount: &amount,
		Items:       []string{"screws", "sealant"},
		ImageBase64: "aGVsbG8=",
	})
	require.True(t, result.Success)

	var out LogReceiptOutput
	require.NoError(t, json.Unmarshal(result.Payload, &out))
	require.True(t, out.Success)
	require.Equal(t, "https://docs.example/img", out.DocLink)
}

func TestLogReceiptUnknownProject(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	result := env.execute(t, "logReceipt", LogReceiptInput{ProjectID: "nope"})
	require.False(t, result.Success)
	require.NotEmpty(t, result.Error)
}

func TestGeneratePDF(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	result := env.execute(t, "generatePdf", GeneratePDFInput{
		Title:   "Offer",
		Content: "Line items...",
	})
	require.True(t, result.Success)

	var out GeneratePDFOutput
	require.NoError(t, json.Unmarshal(result.Payload, &out))
	require.Equal(t, "pdf-1", out.FileID)
	require.Equal(t, "https://docs.example/pdf", out.WebViewLink)
}
