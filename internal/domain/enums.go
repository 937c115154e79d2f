package domain

// Source identifies which side of a reconciliation a record came from.
type Source string

const (
	SourceGSTR2B Source = "gstr2b"
	SourceBooks  Source = "books"
)

// Valid reports whether s is a known source.
func (s Source) Valid() bool {
	return s == SourceGSTR2B || s == SourceBooks
}

// MatchStatus is the reconciliation verdict for a unified invoice.
// The zero value means the invoice has not been scored yet.
type MatchStatus string

const (
	MatchStatusPending        MatchStatus = ""
	MatchStatusExact          MatchStatus = "exact_match"
	MatchStatusPartial        MatchStatus = "partial_match"
	MatchStatusProbable       MatchStatus = "probable_match"
	MatchStatusUnmatched      MatchStatus = "unmatched"
	MatchStatusOnlyInGSTR2B   MatchStatus = "only_in_gstr2b"
	MatchStatusOnlyInBooks    MatchStatus = "only_in_books"
	MatchStatusIneligibleITC  MatchStatus = "ineligible_itc"
	MatchStatusCarriedForward MatchStatus = "carried_forward"
)

// AllMatchStatuses lists every assignable status in display order.
var AllMatchStatuses = []MatchStatus{
	MatchStatusExact,
	MatchStatusPartial,
	MatchStatusProbable,
	MatchStatusUnmatched,
	MatchStatusOnlyInGSTR2B,
	MatchStatusOnlyInBooks,
	MatchStatusIneligibleITC,
	MatchStatusCarriedForward,
}

// Valid reports whether m is an assignable status. Pending is not.
func (m MatchStatus) Valid() bool {
	for _, s := range AllMatchStatuses {
		if m == s {
			return true
		}
	}
	return false
}

// IsMatched reports whether the status counts as a successful match for ITC.
func (m MatchStatus) IsMatched() bool {
	return m == MatchStatusExact || m == MatchStatusPartial || m == MatchStatusProbable
}

// Label returns the human readable form used in exports.
func (m MatchStatus) Label() string {
	switch m {
	case MatchStatusExact:
		return "Exact Match"
	case MatchStatusPartial:
		return "Partial Match"
	case MatchStatusProbable:
		return "Probable Match"
	case MatchStatusUnmatched:
		return "Unmatched"
	case MatchStatusOnlyInGSTR2B:
		return "Only in GSTR-2B"
	case MatchStatusOnlyInBooks:
		return "Only in Books"
	case MatchStatusIneligibleITC:
		return "Ineligible ITC"
	case MatchStatusCarriedForward:
		return "Carried Forward"
	default:
		return "Pending"
	}
}

// MatchBasis records which identity a unified invoice was keyed on.
type MatchBasis string

const (
	MatchBasisGSTIN MatchBasis = "gstin"
	MatchBasisName  MatchBasis = "name"
	MatchBasisNone  MatchBasis = "none"
)

// Sides describes which source records a unified invoice carries.
type Sides int

const (
	SidesNone Sides = iota
	SidesGSTR2BOnly
	SidesBooksOnly
	SidesBoth
)

// SessionStatus represents the lifecycle of a reconciliation session.
type SessionStatus string

const (
	SessionStatusDraft      SessionStatus = "draft"
	SessionStatusReconciled SessionStatus = "reconciled"
)

// UserRole defines the role carried in access tokens.
type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleMember UserRole = "member"
	RoleViewer UserRole = "viewer"
)

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	return r == RoleAdmin || r == RoleMember || r == RoleViewer
}
