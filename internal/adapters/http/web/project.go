package web

import (
	"fmt"
	"net/http"

	"github.com/nandira/taksir/internal/domain/model"
	"github.com/nandira/taksir/pkg/logger"
)

// handleProjectInfo handles POST /project-info requests. The metadata is
// stored as-is; empty fields are allowed.
func (s *Server) handleProjectInfo(w http.ResponseWriter, r *http.Request, token string) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		s.log.Warn(r.Context(), "rejecting malformed form", logger.Error(fmt.Errorf("%w: %w", ErrBadRequest, err)))
		s.render(w, r, token, "formulir tidak valid", http.StatusBadRequest)
		return
	}

	info := model.ProjectInfo{
		SubActivity:     r.PostFormValue("sub_activity"),
		WorkName:        r.PostFormValue("work_name"),
		ProjectLocation: r.PostFormValue("project_location"),
	}
	if err := s.deps.SaveProjectInfo(r.Context(), token, info); err != nil {
		s.log.Error(r.Context(), "saving project info failed", logger.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
