// Package export renders admin downloads as CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"promo-raffle/internal/domain/model"
)

// DateLayout is the pt-BR timestamp format used in every export.
const DateLayout = "02/01/2006 15:04:05"

// ContentType is sent with every CSV download.
const ContentType = "text/csv; charset=utf-8"

var (
	participantHeader = []string{"Nome", "Email", "WhatsApp", "Instagram", "Código", "Data de Registro"}
	codeHeader        = []string{"Código", "Data de Geração"}
)

// WriteParticipants writes one row per participant in the given order.
func WriteParticipants(w io.Writer, list []*model.Participant, loc *time.Location) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(participantHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, p := range list {
		row := []string{p.FullName, p.Email, p.Phone, p.Instagram, p.Code, formatTime(p.CreatedAt, loc)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write participant %s: %w", p.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCodes writes a freshly issued batch.
func WriteCodes(w io.Writer, codes []*model.Code, loc *time.Location) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(codeHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, c := range codes {
		if err := cw.Write([]string{c.Value, formatTime(c.CreatedAt, loc)}); err != nil {
			return fmt.Errorf("write code %s: %w", c.Value, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ParticipantsFilename is participantes_YYYY-MM-DD.csv for the local date of now.
func ParticipantsFilename(now time.Time, loc *time.Location) string {
	return "participantes_" + localDate(now, loc) + ".csv"
}

// CodesFilename is codigos_YYYY-MM-DD.csv for the local date of now.
func CodesFilename(now time.Time, loc *time.Location) string {
	return "codigos_" + localDate(now, loc) + ".csv"
}

func formatTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateLayout)
}

func localDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("2006-01-02")
}
