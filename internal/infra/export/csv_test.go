//go:build !integration

package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"
	_ "time/tzdata"

	"promo-raffle/internal/domain/model"
)

func saoPaulo(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func TestWriteParticipants(t *testing.T) {
	loc := saoPaulo(t)
	list := []*model.Participant{
		{ID: "2", FullName: "Silva, Maria", Email: "maria@example.com", Phone: "+55 11 91234-5678", Instagram: "@maria", Code: "AB12CD34", CreatedAt: time.Date(2024, 12, 1, 13, 5, 9, 0, time.UTC)},
		{ID: "1", FullName: `João "JJ" Souza`, Email: "joao@example.com", Phone: "11", Instagram: "@jj", Code: "ZZ99YY88", CreatedAt: time.Date(2024, 11, 30, 2, 0, 0, 0, time.UTC)},
	}

	var buf bytes.Buffer
	if err := WriteParticipants(&buf, list, loc); err != nil {
		t.Fatalf("WriteParticipants returned error: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	wantHeader := []string{"Nome", "Email", "WhatsApp", "Instagram", "Código", "Data de Registro"}
	for i, h := range wantHeader {
		if rows[0][i] != h {
			t.Fatalf("header[%d]: expected %q, got %q", i, h, rows[0][i])
		}
	}
	if rows[1][0] != "Silva, Maria" || rows[2][0] != `João "JJ" Souza` {
		t.Fatalf("names did not round-trip: %q / %q", rows[1][0], rows[2][0])
	}
	// 13:05:09 UTC is 10:05:09 in São Paulo (UTC-3).
	if rows[1][5] != "01/12/2024 10:05:09" {
		t.Fatalf("unexpected registration date %q", rows[1][5])
	}
	// Crosses midnight backwards into the previous day.
	if rows[2][5] != "29/11/2024 23:00:00" {
		t.Fatalf("unexpected registration date %q", rows[2][5])
	}
}

func TestWriteCodes(t *testing.T) {
	codes := []*model.Code{
		{Value: "AAAA1111", CreatedAt: time.Date(2024, 12, 20, 18, 30, 0, 0, time.UTC)},
		{Value: "BBBB2222", CreatedAt: time.Date(2024, 12, 20, 18, 30, 1, 0, time.UTC)},
	}
	var buf bytes.Buffer
	if err := WriteCodes(&buf, codes, nil); err != nil {
		t.Fatalf("WriteCodes returned error: %v", err)
	}
	want := "Código,Data de Geração\nAAAA1111,20/12/2024 18:30:00\nBBBB2222,20/12/2024 18:30:01\n"
	if buf.String() != want {
		t.Fatalf("unexpected CSV:\n%s", buf.String())
	}
}

func TestFilenames(t *testing.T) {
	loc := saoPaulo(t)
	// 01:30 UTC on Jan 1st is still Dec 31st locally.
	now := time.Date(2025, 1, 1, 1, 30, 0, 0, time.UTC)
	if got := ParticipantsFilename(now, loc); got != "participantes_2024-12-31.csv" {
		t.Fatalf("unexpected participants filename %q", got)
	}
	if got := CodesFilename(now, nil); got != "codigos_2025-01-01.csv" {
		t.Fatalf("unexpected codes filename %q", got)
	}
}
