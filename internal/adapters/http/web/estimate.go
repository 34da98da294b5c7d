package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/nandira/taksir/internal/domain/estimate"
	"github.com/nandira/taksir/internal/domain/model"
	"github.com/nandira/taksir/pkg/logger"
)

// handleEstimate handles POST /estimate requests. A successful estimate
// redirects back to the page (POST-redirect-GET); a rejected form is
// re-rendered with the error inline so the user can fix it.
func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request, token string) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		s.log.Warn(r.Context(), "rejecting malformed form", logger.Error(fmt.Errorf("%w: %w", ErrBadRequest, err)))
		s.render(w, r, token, "formulir tidak valid", http.StatusBadRequest)
		return
	}

	raw := model.RawLineItem{
		City:             r.PostFormValue("city"),
		Location:         r.PostFormValue("location"),
		ConstructionType: r.PostFormValue("construction_type"),
		WorkType:         r.PostFormValue("work_type"),
		WorkDescription:  r.PostFormValue("work_description"),
		Volume:           r.PostFormValue("volume"),
		Unit:             r.PostFormValue("unit"),
		UnitPrice:        r.PostFormValue("unit_price"),
	}

	_, err := s.deps.Estimate(r.Context(), token, raw)
	switch {
	case err == nil:
		http.Redirect(w, r, "/", http.StatusSeeOther)
	case errors.Is(err, estimate.ErrValidation):
		s.render(w, r, token, err.Error(), http.StatusBadRequest)
	case errors.Is(err, estimate.ErrModel):
		s.log.Error(r.Context(), "estimate failed", logger.Error(err))
		s.render(w, r, token, "perhitungan prediksi gagal, coba lagi", http.StatusInternalServerError)
	default:
		s.log.Error(r.Context(), "storing estimate failed", logger.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
