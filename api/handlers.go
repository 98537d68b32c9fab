/*
handlers.go - HTTP API handlers for the stock ledger

PURPOSE:
  Exposes the ledger engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Events:
    GET    /api/events                 List events (optional from/to)
    POST   /api/events                 Record an event
    GET    /api/events/{id}            Get one event

  Reports:
    GET    /api/balances               Aggregate balance per (location, resource)
    GET    /api/statement              Filtered running-balance statement

  Master data:
    GET/POST /api/locations, /api/resource-types, /api/suppliers,
             /api/recipients, /api/projects

  Scenarios:
    GET    /api/scenarios              List demo scenarios
    POST   /api/scenarios/load         Load a demo scenario
    POST   /api/scenarios/reset        Wipe the database

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call domain logic (normalize, fold, statement)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid event references, self-transfers
  - 404: Resource not found
  - 409: Duplicate event id (retries are expected to hit this)
  - 500: Internal errors

VALIDATION STRATEGY:
  A submitted event is normalized against the current catalog BEFORE it is
  appended. Whatever the engine would reject at read time is rejected at
  write time with a 400, so the stored stream always folds cleanly.

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/stock-ledger/fuel"
	"github.com/warp/stock-ledger/ledger"
	"github.com/warp/stock-ledger/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store *sqlite.Store

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{Store: store}
}

// ledgerState loads the catalog and the normalized line snapshot. Every
// report handler starts here; the engine is stateless, so there is nothing
// to cache that the database doesn't already hold.
func (h *Handler) ledgerState(ctx context.Context) (*ledger.Engine, []ledger.Line, error) {
	catalog, err := h.Store.LoadCatalog(ctx)
	if err != nil {
		return nil, nil, err
	}
	events, err := h.Store.Snapshot(ctx)
	if err != nil {
		return nil, nil, err
	}
	engine := ledger.NewEngine(catalog)
	lines, err := engine.Normalize(events)
	if err != nil {
		return nil, nil, err
	}
	return engine, lines, nil
}

// =============================================================================
// EVENT HANDLERS
// =============================================================================

// ListEvents returns stored events in insertion order.
// GET /api/events?from=2026-01-01&to=2026-01-31
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	fromStr := r.URL.Query().Get("from")
	toStr := r.URL.Query().Get("to")

	var events []ledger.Event
	var err error
	if fromStr != "" || toStr != "" {
		from, to, perr := parseDateRange(fromStr, toStr)
		if perr != nil {
			writeError(w, http.StatusBadRequest, "Invalid date range", perr)
			return
		}
		events, err = h.Store.SnapshotRange(ctx, from, to)
	} else {
		events, err = h.Store.Snapshot(ctx)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list events", err)
		return
	}

	writeJSON(w, http.StatusOK, toEventDTOs(events))
}

// GetEvent returns a single event.
// GET /api/events/{id}
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id := ledger.EventID(chi.URLParam(r, "id"))

	ev, err := h.Store.Get(r.Context(), id)
	if errors.Is(err, ledger.ErrEventNotFound) {
		writeError(w, http.StatusNotFound, "Event not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get event", err)
		return
	}

	writeJSON(w, http.StatusOK, toEventDTO(ev))
}

// CreateEvent validates and records one ledger event.
// POST /api/events
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	catalog, err := h.Store.LoadCatalog(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load catalog", err)
		return
	}

	ev, err := eventFromRequest(req, catalog)
	if err != nil {
		eventsRejected.WithLabelValues("malformed").Inc()
		writeError(w, http.StatusBadRequest, "Invalid event", err)
		return
	}

	// Reject now whatever normalization would reject later.
	engine := ledger.NewEngine(catalog)
	if _, err := engine.Normalize([]ledger.Event{ev}); err != nil {
		eventsRejected.WithLabelValues(rejectionReason(err)).Inc()
		writeError(w, http.StatusBadRequest, "Invalid event", err)
		return
	}

	stored, err := h.Store.Append(ctx, ev)
	if errors.Is(err, ledger.ErrDuplicateEventID) {
		writeError(w, http.StatusConflict, "Event id already exists", err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to store event", err)
		return
	}

	eventsIngested.Inc()
	writeJSON(w, http.StatusCreated, toEventDTO(stored))
}

// eventFromRequest converts the wire shape into a domain event, generating
// an id when the client didn't supply one.
func eventFromRequest(req CreateEventRequest, catalog *ledger.Catalog) (ledger.Event, error) {
	date, err := ledger.ParseDate(req.Date)
	if err != nil {
		return ledger.Event{}, err
	}
	value, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		return ledger.Event{}, err
	}

	id := req.ID
	if id == "" {
		id = "ev-" + uuid.NewString()
	}

	resource := ledger.ResourceTypeID(req.Resource)

	return ledger.Event{
		ID:          ledger.EventID(id),
		Kind:        ledger.EventKind(req.Kind),
		Date:        date,
		Location:    ledger.LocationID(req.Location),
		Resource:    resource,
		Quantity:    ledger.Quantity{Value: value, Unit: catalog.ResourceUnit(resource)},
		Counterpart: ledger.LocationID(req.Counterpart),
		Supplier:    ledger.SupplierID(req.Supplier),
		Recipient:   ledger.RecipientID(req.Recipient),
		Project:     ledger.ProjectID(req.Project),
		Invoice:     req.Invoice,
		Notes:       req.Notes,
	}, nil
}

// rejectionReason maps a normalization error to a metric label. Labels are
// a closed set; anything unmapped lands in "other".
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ledger.ErrSelfTransfer):
		return "self_transfer"
	case errors.Is(err, ledger.ErrUnknownLocation):
		return "unknown_location"
	case errors.Is(err, ledger.ErrUnknownResourceType):
		return "unknown_resource"
	case errors.Is(err, ledger.ErrNegativeQuantity):
		return "negative_quantity"
	case errors.Is(err, ledger.ErrMissingCounterpart):
		return "missing_counterpart"
	case errors.Is(err, ledger.ErrUnknownKind):
		return "unknown_kind"
	default:
		return "other"
	}
}

// =============================================================================
// BALANCE HANDLER
// =============================================================================

// GetBalances returns the aggregate balance per (location, resource) pair.
// GET /api/balances?location=w1&resource=diesel
func (h *Handler) GetBalances(w http.ResponseWriter, r *http.Request) {
	engine, lines, err := h.ledgerState(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute balances", err)
		return
	}

	locFilter := r.URL.Query().Get("location")
	resFilter := r.URL.Query().Get("resource")

	balances := engine.Balances(lines)
	dtos := make([]BalanceDTO, 0, len(balances))
	for key, qty := range balances {
		if locFilter != "" && string(key.Location) != locFilter {
			continue
		}
		if resFilter != "" && string(key.Resource) != resFilter {
			continue
		}
		dtos = append(dtos, BalanceDTO{
			Location:     string(key.Location),
			LocationName: engine.Catalog.LocationName(key.Location),
			Resource:     string(key.Resource),
			ResourceName: engine.Catalog.ResourceTypeName(key.Resource),
			Balance:      qty.String(),
			Unit:         string(qty.Unit),
			Negative:     qty.IsNegative(),
		})
	}

	// Map iteration order is random; clients get a stable listing.
	sort.Slice(dtos, func(i, j int) bool {
		if dtos[i].Location != dtos[j].Location {
			return dtos[i].Location < dtos[j].Location
		}
		return dtos[i].Resource < dtos[j].Resource
	})

	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// STATEMENT HANDLER
// =============================================================================

// GetStatement returns the filtered running-balance statement.
// GET /api/statement?location=w1&resource=diesel&from=2026-01-01&to=2026-01-31
func (h *Handler) GetStatement(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	filter, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid filter", err)
		return
	}

	engine, lines, err := h.ledgerState(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute statement", err)
		return
	}

	result := engine.Statement(lines, filter)
	report := fuel.BuildReport(engine.Catalog, filter, result)

	statementsComputed.Inc()
	statementDuration.Observe(time.Since(start).Seconds())

	writeJSON(w, http.StatusOK, toStatementDTO(report, result.Opening))
}

// filterFromQuery builds the statement filter from query parameters.
// Missing parameters stay nil, which the engine reads as "no constraint".
func filterFromQuery(r *http.Request) (ledger.Filter, error) {
	q := r.URL.Query()
	var f ledger.Filter

	if v := q.Get("location"); v != "" {
		f.Location = ledger.LocationRef(ledger.LocationID(v))
	}
	if v := q.Get("resource"); v != "" {
		f.Resource = ledger.ResourceRef(ledger.ResourceTypeID(v))
	}
	if v := q.Get("supplier"); v != "" {
		f.Supplier = ledger.SupplierRef(ledger.SupplierID(v))
	}
	if v := q.Get("recipient"); v != "" {
		f.Recipient = ledger.RecipientRef(ledger.RecipientID(v))
	}
	if v := q.Get("project"); v != "" {
		f.Project = ledger.ProjectRef(ledger.ProjectID(v))
	}
	if v := q.Get("from"); v != "" {
		d, err := ledger.ParseDate(v)
		if err != nil {
			return f, err
		}
		f.From = ledger.DateRef(d)
	}
	if v := q.Get("to"); v != "" {
		d, err := ledger.ParseDate(v)
		if err != nil {
			return f, err
		}
		f.To = ledger.DateRef(d)
	}
	return f, nil
}

func parseDateRange(fromStr, toStr string) (ledger.Date, ledger.Date, error) {
	from := ledger.Date{}
	to := ledger.MustParseDate("9999-12-31")
	if fromStr != "" {
		d, err := ledger.ParseDate(fromStr)
		if err != nil {
			return from, to, err
		}
		from = d
	}
	if toStr != "" {
		d, err := ledger.ParseDate(toStr)
		if err != nil {
			return from, to, err
		}
		to = d
	}
	return from, to, nil
}

// =============================================================================
// MASTER DATA HANDLERS
// =============================================================================

// ListLocations returns all locations.
func (h *Handler) ListLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.Store.ListLocations(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list locations", err)
		return
	}
	dtos := make([]LocationDTO, len(locations))
	for i, l := range locations {
		dtos[i] = LocationDTO{ID: string(l.ID), Name: l.Name}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateLocation registers a warehouse.
func (h *Handler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	var req LocationDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}
	record := ledger.Location{ID: ledger.LocationID(req.ID), Name: req.Name}
	if err := h.Store.SaveLocation(r.Context(), record); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save location", err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

// ListResourceTypes returns all resource types.
func (h *Handler) ListResourceTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.Store.ListResourceTypes(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list resource types", err)
		return
	}
	dtos := make([]ResourceTypeDTO, len(types))
	for i, rt := range types {
		dtos[i] = ResourceTypeDTO{ID: string(rt.ID), Name: rt.Name, Unit: string(rt.Unit)}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateResourceType registers a stock variant.
func (h *Handler) CreateResourceType(w http.ResponseWriter, r *http.Request) {
	var req ResourceTypeDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" || req.Unit == "" {
		writeError(w, http.StatusBadRequest, "id, name, and unit are required", nil)
		return
	}
	record := ledger.ResourceType{
		ID:   ledger.ResourceTypeID(req.ID),
		Name: req.Name,
		Unit: ledger.Unit(req.Unit),
	}
	if err := h.Store.SaveResourceType(r.Context(), record); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save resource type", err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

// ListSuppliers returns all suppliers.
func (h *Handler) ListSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.Store.ListSuppliers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list suppliers", err)
		return
	}
	dtos := make([]SupplierDTO, len(suppliers))
	for i, s := range suppliers {
		dtos[i] = SupplierDTO{ID: string(s.ID), Name: s.Name}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateSupplier registers a supplier.
func (h *Handler) CreateSupplier(w http.ResponseWriter, r *http.Request) {
	var req SupplierDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}
	record := ledger.Supplier{ID: ledger.SupplierID(req.ID), Name: req.Name}
	if err := h.Store.SaveSupplier(r.Context(), record); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save supplier", err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

// ListRecipients returns all recipients with their resolved labels.
func (h *Handler) ListRecipients(w http.ResponseWriter, r *http.Request) {
	recipients, err := h.Store.ListRecipients(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list recipients", err)
		return
	}
	dtos := make([]RecipientDTO, len(recipients))
	for i, rec := range recipients {
		dtos[i] = RecipientDTO{
			ID:    string(rec.ID),
			Kind:  string(rec.Kind),
			Name:  rec.Name,
			Label: rec.Label(),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateRecipient registers a disbursement recipient.
func (h *Handler) CreateRecipient(w http.ResponseWriter, r *http.Request) {
	var req RecipientDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}
	record := ledger.Recipient{
		ID:   ledger.RecipientID(req.ID),
		Kind: ledger.RecipientKind(req.Kind),
		Name: req.Name,
	}
	if err := h.Store.SaveRecipient(r.Context(), record); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save recipient", err)
		return
	}
	req.Label = record.Label()
	writeJSON(w, http.StatusCreated, req)
}

// ListProjects returns all projects.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.Store.ListProjects(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list projects", err)
		return
	}
	dtos := make([]ProjectDTO, len(projects))
	for i, p := range projects {
		dtos[i] = ProjectDTO{ID: string(p.ID), Name: p.Name}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateProject registers a project.
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req ProjectDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}
	record := ledger.Project{ID: ledger.ProjectID(req.ID), Name: req.Name}
	if err := h.Store.SaveProject(r.Context(), record); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save project", err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

// =============================================================================
// SCENARIO HANDLERS
// =============================================================================

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	scenarios, err := fuel.Builtin()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenarios", err)
		return
	}
	dtos := make([]ScenarioDTO, len(scenarios))
	for i, s := range scenarios {
		dtos[i] = ScenarioDTO{ID: s.ID, Name: s.Name, Description: s.Description}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	if h.currentScenario == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	s, err := fuel.BuiltinByID(h.currentScenario)
	if err != nil {
		writeJSON(w, http.StatusOK, ScenarioDTO{ID: h.currentScenario, Name: h.currentScenario})
		return
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{ID: s.ID, Name: s.Name, Description: s.Description})
}

// LoadScenario resets the database and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScenarioID string `json:"scenario_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	scenario, err := fuel.BuiltinByID(req.ScenarioID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unknown scenario", err)
		return
	}

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""

	if err := scenario.Apply(ctx, h.Store, h.Store); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	h.currentScenario = req.ScenarioID
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// ResetDatabase wipes everything. Dev and demo environments only.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
