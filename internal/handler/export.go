package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"
)

var csvHeader = []string{
	"First Name", "Last Name", "Title", "Program", "Borough", "Email", "Status", "Registered At",
}

// ExportCSV handles GET /admin/registrations/export
// Streams the full roster as a date-stamped CSV download.
func (h *RegistrationHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	regs, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load registrations")
		return
	}

	filename := fmt.Sprintf("registrations-%s.csv", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return
	}
	for _, reg := range regs {
		row := []string{
			reg.FirstName,
			reg.LastName,
			reg.Title,
			reg.Program,
			string(reg.Region),
			reg.Email,
			string(reg.Status),
			reg.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return
		}
	}
	cw.Flush()
}
