package content

// Summary tags carried by a Report.
const (
	SummaryOK            = "OK"
	SummaryIncomplete    = "INCOMPLETO"
	SummaryMissing       = "Content ausente"
	SummaryEmpty         = "Content vazio"
	SummaryUnreadable    = "Não foi possível ler Content"
	SummaryUninitialized = "Paths/FS não inicializados"
	// SummaryPending is shown before the first validation pass.
	SummaryPending = "N/A"
)

// Report is the result of one validation pass. It is never modified
// after Validate returns it.
type Report struct {
	OK       bool
	Summary  string
	Problems []string // detection order
}

// Pending is the report held before anything was validated.
func Pending() Report {
	return Report{Summary: SummaryPending}
}

// Len returns the number of problems found.
func (r Report) Len() int {
	return len(r.Problems)
}

func failed(summary, problem string) Report {
	return Report{Summary: summary, Problems: []string{problem}}
}
