/*
filter.go - Predicate composition for statement queries

PURPOSE:
  Each filter field is an optional equality or range predicate; set fields
  AND together, nil means "no constraint". The split between MatchesScope
  (everything except dates) and InWindow (dates only) exists because the
  statement algorithm needs the scope WITHOUT the lower date bound to
  reconstruct the opening balance from lines before the window.
*/
package ledger

// Filter scopes a statement query. All fields optional.
type Filter struct {
	Location  *LocationID
	Resource  *ResourceTypeID
	Supplier  *SupplierID
	Recipient *RecipientID
	Project   *ProjectID
	From      *Date
	To        *Date
}

// MatchesScope applies every predicate except the date bounds. Note that a
// transfer's two legs carry different locations, so a location filter keeps
// only the leg that physically touched that warehouse.
func (f Filter) MatchesScope(l Line) bool {
	if f.Location != nil && l.Location != *f.Location {
		return false
	}
	if f.Resource != nil && l.Resource != *f.Resource {
		return false
	}
	if f.Supplier != nil && l.Supplier != *f.Supplier {
		return false
	}
	if f.Recipient != nil && l.Recipient != *f.Recipient {
		return false
	}
	if f.Project != nil && l.Project != *f.Project {
		return false
	}
	return true
}

// InWindow applies the date bounds: [From, To], either side open when nil.
func (f Filter) InWindow(d Date) bool {
	if f.From != nil && d.Before(*f.From) {
		return false
	}
	if f.To != nil && d.After(*f.To) {
		return false
	}
	return true
}

// Matches is the full conjunction.
func (f Filter) Matches(l Line) bool {
	return f.MatchesScope(l) && f.InWindow(l.Date)
}

// Pointer helpers for building filters from literals.
func LocationRef(id LocationID) *LocationID         { return &id }
func ResourceRef(id ResourceTypeID) *ResourceTypeID { return &id }
func SupplierRef(id SupplierID) *SupplierID         { return &id }
func RecipientRef(id RecipientID) *RecipientID      { return &id }
func ProjectRef(id ProjectID) *ProjectID            { return &id }
func DateRef(d Date) *Date                          { return &d }
