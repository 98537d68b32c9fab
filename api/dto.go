/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

QUANTITIES ON THE WIRE:
  Quantities travel as decimal strings ("250.5"), never floats. The
  client shows them verbatim; the server parses them with shopspring
  decimal so nothing is lost either way.

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/warp/stock-ledger/fuel"
	"github.com/warp/stock-ledger/ledger"
)

// =============================================================================
// EVENT TYPES
// =============================================================================

// EventDTO represents a ledger event in API responses.
type EventDTO struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	Date        string `json:"date"`
	Location    string `json:"location"`
	Resource    string `json:"resource"`
	Quantity    string `json:"quantity"`
	Unit        string `json:"unit"`
	Counterpart string `json:"counterpart,omitempty"`
	Supplier    string `json:"supplier,omitempty"`
	Recipient   string `json:"recipient,omitempty"`
	Project     string `json:"project,omitempty"`
	Invoice     string `json:"invoice,omitempty"`
	Notes       string `json:"notes,omitempty"`
	Seq         int64  `json:"seq"`
}

// CreateEventRequest is the request to record an event. ID is optional;
// the server generates one when absent.
type CreateEventRequest struct {
	ID          string `json:"id,omitempty"`
	Kind        string `json:"kind"`
	Date        string `json:"date"`
	Location    string `json:"location"`
	Resource    string `json:"resource"`
	Quantity    string `json:"quantity"`
	Counterpart string `json:"counterpart,omitempty"`
	Supplier    string `json:"supplier,omitempty"`
	Recipient   string `json:"recipient,omitempty"`
	Project     string `json:"project,omitempty"`
	Invoice     string `json:"invoice,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// =============================================================================
// BALANCE AND STATEMENT TYPES
// =============================================================================

// BalanceDTO is one (location, resource) aggregate balance.
type BalanceDTO struct {
	Location     string `json:"location"`
	LocationName string `json:"location_name"`
	Resource     string `json:"resource"`
	ResourceName string `json:"resource_name"`
	Balance      string `json:"balance"`
	Unit         string `json:"unit"`
	Negative     bool   `json:"negative"`
}

// StatementRowDTO is one line of a statement response.
type StatementRowDTO struct {
	EventID  string `json:"event_id,omitempty"`
	Date     string `json:"date"`
	Kind     string `json:"kind"`
	Label    string `json:"label"`
	Inbound  string `json:"inbound,omitempty"`
	Outbound string `json:"outbound,omitempty"`
	Balance  string `json:"balance"`
	Opening  bool   `json:"opening,omitempty"`
}

// StatementDTO wraps the computed statement plus its display report.
type StatementDTO struct {
	Location         string            `json:"location"`
	Resource         string            `json:"resource"`
	Unit             string            `json:"unit,omitempty"`
	Period           string            `json:"period"`
	Rows             []StatementRowDTO `json:"rows"`
	Opening          string            `json:"opening"`
	Closing          string            `json:"closing"`
	TotalInbound     string            `json:"total_inbound"`
	TotalOutbound    string            `json:"total_outbound"`
	NegativeObserved bool              `json:"negative_observed"`
}

// =============================================================================
// MASTER DATA TYPES
// =============================================================================

type LocationDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ResourceTypeDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Unit string `json:"unit"`
}

type SupplierDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type RecipientDTO struct {
	ID    string `json:"id"`
	Kind  string `json:"kind"`
	Name  string `json:"name"`
	Label string `json:"label"`
}

type ProjectDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toEventDTO(ev ledger.Event) EventDTO {
	return EventDTO{
		ID:          string(ev.ID),
		Kind:        string(ev.Kind),
		Date:        ev.Date.String(),
		Location:    string(ev.Location),
		Resource:    string(ev.Resource),
		Quantity:    ev.Quantity.String(),
		Unit:        string(ev.Quantity.Unit),
		Counterpart: string(ev.Counterpart),
		Supplier:    string(ev.Supplier),
		Recipient:   string(ev.Recipient),
		Project:     string(ev.Project),
		Invoice:     ev.Invoice,
		Notes:       ev.Notes,
		Seq:         ev.Seq,
	}
}

func toEventDTOs(evs []ledger.Event) []EventDTO {
	dtos := make([]EventDTO, len(evs))
	for i, ev := range evs {
		dtos[i] = toEventDTO(ev)
	}
	return dtos
}

func toStatementDTO(report fuel.Report, opening ledger.Quantity) StatementDTO {
	rows := make([]StatementRowDTO, len(report.Rows))
	for i, r := range report.Rows {
		rows[i] = StatementRowDTO{
			EventID:  r.EventID,
			Date:     r.Date,
			Kind:     r.Kind,
			Label:    r.Label,
			Inbound:  r.Inbound,
			Outbound: r.Outbound,
			Balance:  r.Balance,
			Opening:  r.Opening,
		}
	}
	return StatementDTO{
		Location:         report.Location,
		Resource:         report.Resource,
		Unit:             string(report.Unit),
		Period:           report.Period,
		Rows:             rows,
		Opening:          opening.String(),
		Closing:          report.Closing,
		TotalInbound:     report.TotalInbound,
		TotalOutbound:    report.TotalOutbound,
		NegativeObserved: report.NegativeObserved,
	}
}
