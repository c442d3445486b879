package web

import (
	"net/http"
	"time"

	"promo-raffle/internal/domain/model"
)

type campaignResponse struct {
	Brand            string     `json:"brand"`
	Instagram        string     `json:"instagram"`
	DrawAt           *time.Time `json:"draw_at,omitempty"`
	SecondsRemaining int64      `json:"seconds_remaining"`
	Closed           bool       `json:"closed"`
}

func (s *Server) handleCampaign(w http.ResponseWriter, r *http.Request) {
	st := s.redemption.Status(r.Context())
	var drawAt *time.Time
	if !st.Campaign.DrawAt.IsZero() {
		drawAt = &st.Campaign.DrawAt
	}
	writeJSON(w, http.StatusOK, campaignResponse{
		Brand:            st.Campaign.Brand,
		Instagram:        st.Campaign.Instagram,
		DrawAt:           drawAt,
		SecondsRemaining: int64(st.Remaining / time.Second),
		Closed:           st.Closed,
	})
}

type registerRequest struct {
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Instagram   string `json:"instagram"`
	Code        string `json:"code"`
	IsFollowing bool   `json:"is_following"`
	HasTagged   bool   `json:"has_tagged"`
	HasShared   bool   `json:"has_shared"`
}

func (req registerRequest) toRegistration() model.Registration {
	return model.Registration{
		FullName:    req.FullName,
		Email:       req.Email,
		Phone:       req.Phone,
		Instagram:   req.Instagram,
		Code:        req.Code,
		IsFollowing: req.IsFollowing,
		HasTagged:   req.HasTagged,
		HasShared:   req.HasShared,
	}
}

type registerResponse struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
	Message   string    `json:"message"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, s.msgs.T("error.invalid_body"))
		return
	}

	p, err := s.redemption.Redeem(r.Context(), req.toRegistration())
	if err != nil {
		s.fail(w, r, "register", err)
		return
	}
	writeJSON(w, http.StatusCreated, registerResponse{
		ID:        p.ID,
		Code:      p.Code,
		CreatedAt: p.CreatedAt,
		Message:   s.msgs.T("register.confirmed"),
	})
}
