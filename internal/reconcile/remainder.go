package reconcile

import (
	"strconv"

	"gstreco/internal/domain"
)

// idSet hands out invoice IDs that are unique within one result list.
type idSet map[string]struct{}

func newIDSet(invoices []domain.UnifiedInvoice) idSet {
	s := make(idSet, len(invoices))
	for i := range invoices {
		s[invoices[i].ID] = struct{}{}
	}
	return s
}

// claim returns base, or base-2, base-3 ... when base is already taken.
func (s idSet) claim(base string) string {
	id := base
	for n := 2; ; n++ {
		if _, taken := s[id]; !taken {
			break
		}
		id = base + "-" + strconv.Itoa(n)
	}
	s[id] = struct{}{}
	return id
}

// remainderID derives the identity of a single-sided invoice. GSTIN keys are
// used as is; name keys carry the source as a suffix so that a GSTR-2B and a
// Books orphan with the same supplier name and number never collide.
func remainderID(rec *domain.InvoiceRecord, source domain.Source) string {
	key, basis := IdentityKey(rec)
	switch basis {
	case domain.MatchBasisGSTIN:
		return key
	case domain.MatchBasisName:
		return key + "-" + string(source)
	default:
		return NormalizeName(rec.SupplierName) + "-" + NormalizeDocNo(rec.DocNo) + "-" + string(source)
	}
}

// classifyRemainders materializes one single-sided invoice per unmatched
// record: Books orphans first, then GSTR-2B orphans, each in input order.
// IDs are claimed against ids so the whole result set stays unique.
func classifyRemainders(ids idSet, gstr2bUnmatched, booksUnmatched []domain.InvoiceRecord) []domain.UnifiedInvoice {
	out := make([]domain.UnifiedInvoice, 0, len(gstr2bUnmatched)+len(booksUnmatched))
	for i := range booksUnmatched {
		out = append(out, singleSided(ids, booksUnmatched[i], domain.SourceBooks))
	}
	for i := range gstr2bUnmatched {
		out = append(out, singleSided(ids, gstr2bUnmatched[i], domain.SourceGSTR2B))
	}
	return out
}

func singleSided(ids idSet, rec domain.InvoiceRecord, source domain.Source) domain.UnifiedInvoice {
	inv := domain.UnifiedInvoice{
		ID:                 ids.claim(remainderID(&rec, source)),
		MatchBasis:         domain.MatchBasisNone,
		MismatchReasons:    []string{},
		Remarks:            provenanceRemark(rec.CarriedForwardFrom),
		CarriedForwardFrom: rec.CarriedForwardFrom,
	}
	if source == domain.SourceGSTR2B {
		inv.GSTR2B = &rec
		inv.InGSTR2B = true
		inv.MatchStatus = domain.MatchStatusOnlyInGSTR2B
	} else {
		inv.Books = &rec
		inv.InBooks = true
		inv.MatchStatus = domain.MatchStatusOnlyInBooks
	}
	return inv
}
