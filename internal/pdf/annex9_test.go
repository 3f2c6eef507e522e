package pdf

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"annexe9-backend/internal/domain"
)

func renderableOrder() domain.Order {
	d := time.Date(2024, 6, 1, 0, 0, 0, 0, time.Local)
	h := time.Date(0, 1, 1, 8, 30, 0, 0, time.UTC)
	price := 45.5
	return domain.Order{
		Reference:       "TC-2024-000042",
		Status:          domain.StatusDraft,
		ReservationDate: &d,
		Operator: domain.OperatorBlock{
			Title:               domain.TitleSociete,
			Name:                "Taxis Mosan SRL",
			Address:             "Rue de Fer",
			AddressNumber:       "12",
			PostalCode:          "5000",
			Locality:            "Namur",
			BCENumber:           "0123.456.789",
			AuthorizationNumber: "W-2024-77",
		},
		Client: domain.ClientBlock{
			Title:      domain.TitleMonsieur,
			Name:       "Dupont",
			Address:    "Avenue des Célestines",
			PostalCode: "4000",
			Locality:   "Liège",
			Phone:      "04 123 45 67",
		},
		PassengersAdult: 2,
		PassengersChild: 1,
		ServiceType:     domain.ServiceRoundTrip,
		Outbound: domain.TripLeg{
			Date:        &d,
			Time:        &h,
			Departure:   "Namur",
			Destination: "Liège",
			Price:       &price,
		},
		Return: domain.TripLeg{
			Departure:   "Liège",
			Destination: "Namur",
		},
	}
}

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 4))
	for x := 0; x < 8; x++ {
		img.Set(x, 2, color.Black)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

func TestBuildOrderFormProducesPDF(t *testing.T) {
	out, err := BuildOrderForm(renderableOrder(), nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatalf("output does not start with a PDF header")
	}
}

func TestBuildOrderFormDeterministicSize(t *testing.T) {
	o := renderableOrder()
	a, err := BuildOrderForm(o, nil)
	if err != nil {
		t.Fatalf("first render: %v", err)
	}
	b, err := BuildOrderForm(o, nil)
	if err != nil {
		t.Fatalf("second render: %v", err)
	}
	// gofpdf stamps CreationDate, so bytes differ; the layout must not.
	if len(a) != len(b) {
		t.Fatalf("same order rendered to different sizes: %d vs %d", len(a), len(b))
	}
}

func TestBuildOrderFormRejectsInvalidOrder(t *testing.T) {
	o := renderableOrder()
	o.Client.Name = ""
	if _, err := BuildOrderForm(o, nil); !domain.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestBuildOrderFormWithSignature(t *testing.T) {
	sig := tinyPNG(t)
	signed, err := BuildOrderForm(renderableOrder(), sig)
	if err != nil {
		t.Fatalf("render with signature: %v", err)
	}
	unsigned, err := BuildOrderForm(renderableOrder(), nil)
	if err != nil {
		t.Fatalf("render without signature: %v", err)
	}
	if len(signed) <= len(unsigned) {
		t.Fatalf("embedding an image should grow the document: %d vs %d", len(signed), len(unsigned))
	}
}

func TestBuildOrderFormCorruptSignatureTolerated(t *testing.T) {
	out, err := BuildOrderForm(renderableOrder(), []byte("definitely not an image"))
	if err != nil {
		t.Fatalf("corrupt signature must not fail the render: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatalf("output is not a PDF")
	}
}

func TestBuildOrderFormAcceptsMinimalOrder(t *testing.T) {
	o := domain.Order{
		Reference:   "TC-2024-000001",
		Operator:    domain.OperatorBlock{Title: domain.TitleSociete, Name: "Op"},
		Client:      domain.ClientBlock{Title: domain.TitleMonsieur, Name: "C"},
		ServiceType: domain.ServiceOutbound,
	}
	out, err := BuildOrderForm(o, nil)
	if err != nil {
		t.Fatalf("minimal order render: %v", err)
	}
	if len(out) == 0 {
		t.Fatalf("empty output")
	}
}

func TestTitleOptionLayout(t *testing.T) {
	// Fixed-width measure keeps the expectations readable.
	measure := func(s string) float64 { return float64(len(s)) }

	opts := titleOptionLayout(measure, domain.TitleMonsieur)
	if len(opts) != 3 {
		t.Fatalf("expected 3 options, got %d", len(opts))
	}

	if opts[0].Label != "Madame" || !opts[0].Struck {
		t.Fatalf("Madame should be struck when Monsieur is selected")
	}
	if opts[1].Label != "Monsieur" || opts[1].Struck {
		t.Fatalf("selected Monsieur must not be struck")
	}
	if opts[2].Label != "Société" || !opts[2].Struck {
		t.Fatalf("Société should be struck when Monsieur is selected")
	}

	// Offsets accumulate label and separator widths.
	if opts[0].Offset != 0 {
		t.Fatalf("first offset must be 0, got %f", opts[0].Offset)
	}
	wantSecond := measure("Madame") + measure(" / ")
	if opts[1].Offset != wantSecond {
		t.Fatalf("second offset = %f, want %f", opts[1].Offset, wantSecond)
	}
	wantThird := wantSecond + measure("Monsieur") + measure(" / ")
	if opts[2].Offset != wantThird {
		t.Fatalf("third offset = %f, want %f", opts[2].Offset, wantThird)
	}

	// Strike width equals the label's own width, separators excluded.
	if opts[0].Width != measure("Madame") {
		t.Fatalf("strike width must match label width")
	}
	if opts[2].Separator != "" {
		t.Fatalf("last option carries no separator")
	}
}
