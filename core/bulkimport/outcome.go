package bulkimport

// RowStatus is the terminal classification of one spreadsheet row.
type RowStatus string

const (
	RowCreated   RowStatus = "created"
	RowInvalid   RowStatus = "invalid"
	RowDuplicate RowStatus = "duplicate"
	RowError     RowStatus = "error"
)

// EmailStatus records the fate of a row's welcome email. It never changes the
// row's create status.
type EmailStatus string

const (
	EmailSent         EmailStatus = "sent"
	EmailFailed       EmailStatus = "failed"
	EmailNotAttempted EmailStatus = "not_attempted"
)

type (
	EmailOutcome struct {
		Status    EmailStatus `json:"status"`
		MessageID string      `json:"message_id,omitempty"`
		Reason    string      `json:"reason,omitempty"`
	}

	// RowOutcome is the per-row result threaded through every pipeline stage.
	// Every raw row produces exactly one.
	RowOutcome struct {
		Row      int           `json:"row"`
		Status   RowStatus     `json:"status"`
		Reasons  []string      `json:"reasons,omitempty"`
		Existing string        `json:"existing,omitempty"`  // natural key of the already-stored record
		EntityID string        `json:"entity_id,omitempty"` // stored identity for created rows
		Email    *EmailOutcome `json:"email,omitempty"`
	}

	// JobSummary is the consolidated report returned to the caller, with
	// every row's fate in original file order.
	JobSummary struct {
		Total        int          `json:"total"`
		Valid        int          `json:"valid"`
		Invalid      int          `json:"invalid"`
		Duplicates   int          `json:"duplicates"`
		Created      int          `json:"created"`
		Errors       int          `json:"errors"`
		EmailsSent   int          `json:"emails_sent"`
		EmailsFailed int          `json:"emails_failed"`
		Rows         []RowOutcome `json:"rows"`
	}
)

func newJobSummary(capacity int) *JobSummary {
	return &JobSummary{Rows: make([]RowOutcome, 0, capacity)}
}

// add accumulates one resolved row outcome. Pure tallying; it cannot fail.
func (s *JobSummary) add(out RowOutcome) {
	s.Total++
	switch out.Status {
	case RowInvalid:
		s.Invalid++
	case RowDuplicate:
		s.Valid++
		s.Duplicates++
	case RowCreated:
		s.Valid++
		s.Created++
	case RowError:
		s.Valid++
		s.Errors++
	}
	if out.Email != nil {
		switch out.Email.Status {
		case EmailSent:
			s.EmailsSent++
		case EmailFailed:
			s.EmailsFailed++
		}
	}
	s.Rows = append(s.Rows, out)
}
