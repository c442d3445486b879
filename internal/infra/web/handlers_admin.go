package web

import (
	"bytes"
	"net/http"
	"strings"
	"time"

	"promo-raffle/internal/domain/model"
	"promo-raffle/internal/infra/export"
	"promo-raffle/internal/infra/logging"
	"promo-raffle/internal/infra/metrics"

	"github.com/go-chi/chi/v5"
)

// ===== session =====

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Email     string    `json:"email"`
	Token     string    `json:"token,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, s.msgs.T("error.invalid_body"))
		return
	}
	if err := s.adminAuth.Authenticate(r.Context(), req.Email, req.Password); err != nil {
		s.fail(w, r, "admin_login", err)
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	token, exp, err := s.auth.Mint(w, email)
	if err != nil {
		s.fail(w, r, "admin_login", err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Email: email, Token: token, ExpiresAt: exp})
}

func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	s.auth.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	c := claimsFrom(r.Context())
	if c == nil {
		writeError(w, http.StatusUnauthorized, s.msgs.T("error.unauthorized"))
		return
	}
	resp := sessionResponse{Email: c.Subject}
	if c.ExpiresAt != nil {
		resp.ExpiresAt = c.ExpiresAt.Time
	}
	writeJSON(w, http.StatusOK, resp)
}

// ===== codes =====

type codeDTO struct {
	Code      string     `json:"code"`
	Used      bool       `json:"used"`
	CreatedAt time.Time  `json:"created_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
}

func toCodeDTOs(codes []*model.Code) []codeDTO {
	out := make([]codeDTO, 0, len(codes))
	for _, c := range codes {
		out = append(out, codeDTO{Code: c.Value, Used: c.Used, CreatedAt: c.CreatedAt, UsedAt: c.UsedAt})
	}
	return out
}

type issueRequest struct {
	Count int `json:"count"`
}

type issueResponse struct {
	Count int       `json:"count"`
	Codes []codeDTO `json:"codes"`
}

type issueFailure struct {
	errorResponse
	Issued []codeDTO `json:"issued"`
}

// handleIssueCodes issues a batch. With ?format=csv the batch comes back as a download.
func (s *Server) handleIssueCodes(w http.ResponseWriter, r *http.Request) {
	var req issueRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, s.msgs.T("error.invalid_body"))
		return
	}

	codes, err := s.issuer.Issue(r.Context(), req.Count)
	if err != nil {
		metrics.IncAdminAction("issue", "error")
		if len(codes) == 0 {
			s.fail(w, r, "issue_codes", err)
			return
		}
		// Part of the batch is already stored; hand it back so it can be printed.
		status, body := s.errorBody(err)
		l := logging.With(r.Context(), s.log)
		l.Error().Err(err).Int("issued", len(codes)).Int("requested", req.Count).Msg("partial code batch")
		writeJSON(w, status, issueFailure{
			errorResponse: body,
			Issued:        toCodeDTOs(codes),
		})
		return
	}
	metrics.IncAdminAction("issue", "ok")

	if r.URL.Query().Get("format") == "csv" {
		loc := s.location(r)
		var buf bytes.Buffer
		if err := export.WriteCodes(&buf, codes, loc); err != nil {
			s.fail(w, r, "issue_codes_csv", err)
			return
		}
		writeCSV(w, export.CodesFilename(s.clock.Now(), loc), buf.Bytes())
		return
	}
	writeJSON(w, http.StatusCreated, issueResponse{Count: len(codes), Codes: toCodeDTOs(codes)})
}

type purgeRequest struct {
	Confirm string `json:"confirm"`
}

func (s *Server) handlePurgeCodes(w http.ResponseWriter, r *http.Request) {
	var req purgeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, s.msgs.T("error.invalid_body"))
		return
	}
	n, err := s.issuer.PurgeAll(r.Context(), req.Confirm)
	if err != nil {
		metrics.IncAdminAction("purge", "error")
		s.fail(w, r, "purge_codes", err)
		return
	}
	metrics.IncAdminAction("purge", "ok")
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

type statsResponse struct {
	Total  int `json:"total"`
	Used   int `json:"used"`
	Unused int `json:"unused"`
}

func (s *Server) handleCodeStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.issuer.Stats(r.Context())
	if err != nil {
		s.fail(w, r, "code_stats", err)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{Total: st.Total, Used: st.Used, Unused: st.Unused})
}

func (s *Server) handleCoupon(w http.ResponseWriter, r *http.Request) {
	c, err := s.issuer.Lookup(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		s.fail(w, r, "coupon", err)
		return
	}
	var buf bytes.Buffer
	if err := s.coupons.Render(&buf, c.Value, c.CreatedAt); err != nil {
		s.fail(w, r, "coupon", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleQR(w http.ResponseWriter, r *http.Request) {
	c, err := s.issuer.Lookup(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		s.fail(w, r, "coupon_qr", err)
		return
	}
	png, err := s.coupons.QRPNG(c.Value)
	if err != nil {
		s.fail(w, r, "coupon_qr", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// ===== participants =====

type participantDTO struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Instagram string    `json:"instagram"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
}

type participantsResponse struct {
	Total        int              `json:"total"`
	Participants []participantDTO `json:"participants"`
}

func (s *Server) handleParticipants(w http.ResponseWriter, r *http.Request) {
	list, err := s.participants.List(r.Context())
	if err != nil {
		s.fail(w, r, "list_participants", err)
		return
	}
	total, err := s.participants.Count(r.Context())
	if err != nil {
		s.fail(w, r, "count_participants", err)
		return
	}
	out := make([]participantDTO, 0, len(list))
	for _, p := range list {
		out = append(out, participantDTO{
			ID:        p.ID,
			FullName:  p.FullName,
			Email:     p.Email,
			Phone:     p.Phone,
			Instagram: p.Instagram,
			Code:      p.Code,
			CreatedAt: p.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, participantsResponse{Total: total, Participants: out})
}

func (s *Server) handleParticipantsCSV(w http.ResponseWriter, r *http.Request) {
	list, err := s.participants.List(r.Context())
	if err != nil {
		s.fail(w, r, "export_participants", err)
		return
	}
	loc := s.location(r)
	var buf bytes.Buffer
	if err := export.WriteParticipants(&buf, list, loc); err != nil {
		s.fail(w, r, "export_participants", err)
		return
	}
	metrics.IncAdminAction("export_participants", "ok")
	writeCSV(w, export.ParticipantsFilename(s.clock.Now(), loc), buf.Bytes())
}

func (s *Server) location(r *http.Request) *time.Location {
	if loc := s.redemption.Status(r.Context()).Campaign.Location; loc != nil {
		return loc
	}
	return time.UTC
}

func writeCSV(w http.ResponseWriter, filename string, body []byte) {
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
