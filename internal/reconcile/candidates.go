package reconcile

import (
	"math"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"gstreco/internal/domain"
)

// Merge candidate weights.
const (
	candidateGSTINWeight  = 100.0
	candidateNameWeight   = 40.0
	candidateDocNoWeight  = 60.0
	candidateDateWeight   = 30.0
	candidateAmountWeight = 50.0

	candidateDatePenaltyCap = 30.0
)

// RankMergeCandidates scores every orphan on the opposite side of the orphan
// id against it and returns them best first.
//
// The score adds a GSTIN bonus, name and document number similarity, date
// proximity and tax amount proximity, all taken from the primary records.
// Dates more than three days apart are penalised by a third of a point per
// day, capped at thirty. Ties keep list order.
func RankMergeCandidates(invoices []domain.UnifiedInvoice, id string) ([]domain.MergeCandidate, error) {
	pos := indexOf(invoices, id)
	if pos < 0 {
		return nil, domain.ErrInvoiceNotFound
	}
	src := invoices[pos]

	var want domain.MatchStatus
	switch src.MatchStatus {
	case domain.MatchStatusOnlyInGSTR2B:
		want = domain.MatchStatusOnlyInBooks
	case domain.MatchStatusOnlyInBooks:
		want = domain.MatchStatusOnlyInGSTR2B
	default:
		return nil, domain.ErrInvalidMergePair
	}
	srcRec := src.Primary()
	if srcRec == nil {
		return nil, domain.ErrInvalidMergePair
	}

	out := []domain.MergeCandidate{}
	for i := range invoices {
		if invoices[i].MatchStatus != want || invoices[i].Primary() == nil {
			continue
		}
		out = append(out, scoreCandidate(srcRec, invoices[i]))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}

func scoreCandidate(src *domain.InvoiceRecord, inv domain.UnifiedInvoice) domain.MergeCandidate {
	rec := inv.Primary()
	var score float64

	if g := NormalizeGSTIN(src.SupplierGSTIN); g != "" && g == NormalizeGSTIN(rec.SupplierGSTIN) {
		score += candidateGSTINWeight
	}

	if nameSim, ok := similarity(NormalizeName(src.SupplierName), NormalizeName(rec.SupplierName)); ok {
		score += nameSim * candidateNameWeight
	}

	docSim, _ := similarity(NormalizeDocNo(src.DocNo), NormalizeDocNo(rec.DocNo))
	score += docSim * candidateDocNoWeight

	var dateDiff *float64
	if a, okA := ParseDocDate(src.DocDate); okA {
		if b, okB := ParseDocDate(rec.DocDate); okB {
			days := math.Abs(a.Sub(b).Hours()) / 24
			dateDiff = &days
			switch {
			case days <= 3:
				score += candidateDateWeight
			case days <= 15:
				score += candidateDateWeight / 2
			}
			score -= math.Min(days/3, candidateDatePenaltyCap)
		}
	}

	amountDiff := math.Abs(src.TotalTax - rec.TotalTax)
	proximity := math.Max(0, 1-amountDiff/math.Max(src.TotalTax, 1))
	score += proximity * candidateAmountWeight

	return domain.MergeCandidate{
		Invoice:         inv,
		Score:           score,
		AmountDiff:      amountDiff,
		DocNoSimilarity: docSim,
		DateDiffDays:    dateDiff,
	}
}

// similarity is one minus the edit distance over the longer length.
// It reports false when both strings are empty.
func similarity(a, b string) (float64, bool) {
	maxLen := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if maxLen == 0 {
		return 0, false
	}
	d := levenshtein.ComputeDistance(a, b)
	return float64(maxLen-d) / float64(maxLen), true
}

// ParseDocDate reads a DD-MM-YYYY or DD/MM/YYYY document date.
func ParseDocDate(s string) (time.Time, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), "/", "-")
	if strings.Count(s, "-") != 2 {
		return time.Time{}, false
	}
	t, err := time.Parse("2-1-2006", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
