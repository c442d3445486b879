// Package coupon renders the printable 80mm entry coupon and its QR code.
package coupon

import (
	"bytes"
	_ "embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/skip2/go-qrcode"

	"promo-raffle/internal/domain/model"
)

// QRSize is the PNG edge in pixels; the coupon scales it to fit the paper.
const QRSize = 256

//go:embed coupon.html.tmpl
var couponHTML string

var couponTmpl = template.Must(template.New("coupon").Parse(couponHTML))

// Coupon is everything printed on one slip.
type Coupon struct {
	Brand       string
	Instagram   string
	Code        string
	RegisterURL string
	SiteHost    string
	QRDataURI   template.URL
	IssuedAt    string
	DrawDate    string
}

// Renderer builds coupons for one campaign.
type Renderer struct {
	campaign model.Campaign
}

func NewRenderer(campaign model.Campaign) *Renderer {
	return &Renderer{campaign: campaign}
}

// QRPNG encodes the registration link for code as a PNG.
func (r *Renderer) QRPNG(code string) ([]byte, error) {
	png, err := qrcode.Encode(r.campaign.RegisterURL(code), qrcode.Medium, QRSize)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}

// Build assembles the printable data for code as of now.
func (r *Renderer) Build(code string, now time.Time) (*Coupon, error) {
	png, err := r.QRPNG(code)
	if err != nil {
		return nil, err
	}
	drawDate := ""
	if !r.campaign.DrawAt.IsZero() {
		drawDate = r.campaign.Local(r.campaign.DrawAt).Format("02/01/2006")
	}
	return &Coupon{
		Brand:       r.campaign.Brand,
		Instagram:   r.campaign.Instagram,
		Code:        code,
		RegisterURL: r.campaign.RegisterURL(code),
		SiteHost:    siteHost(r.campaign.BaseURL),
		QRDataURI:   template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png)),
		IssuedAt:    r.campaign.Local(now).Format("02/01/2006 15:04:05"),
		DrawDate:    drawDate,
	}, nil
}

// Render writes the coupon HTML for code.
func (r *Renderer) Render(w io.Writer, code string, now time.Time) error {
	c, err := r.Build(code, now)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := couponTmpl.Execute(&buf, c); err != nil {
		return fmt.Errorf("render coupon: %w", err)
	}
	_, err = buf.WriteTo(w)
	return err
}

func siteHost(baseURL string) string {
	h := strings.TrimPrefix(strings.TrimPrefix(baseURL, "https://"), "http://")
	return strings.TrimRight(h, "/")
}
