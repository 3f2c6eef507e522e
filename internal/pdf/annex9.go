// Package pdf renders the Annexe 9 "Bon de commande d'un service de taxis
// collectifs" page. The layout is fixed by the Walloon Government model:
// every element sits at a fixed offset from the page margin or the previous
// element, so rendering is a deterministic sequence of draw calls.
package pdf

import (
	"bytes"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strconv"
	"strings"

	"github.com/phpdave11/gofpdf"

	"annexe9-backend/internal/domain"
	"annexe9-backend/internal/utils"
)

const mm = 72.0 / 25.4

// BuildOrderForm renders the single-page A4 form for an order snapshot.
// signature holds decrypted raster image bytes, nil when the client has not
// signed. Missing optional fields render as empty strings; a corrupt
// signature image is skipped, never fatal.
func BuildOrderForm(o domain.Order, signature []byte) ([]byte, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "pt", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pageW, _ := pdf.GetPageSize()

	pdf.SetTitle(tr("Bon de commande - "+o.Reference), false)
	pdf.SetAuthor("Annexe 9 Generator", false)
	pdf.SetSubject(tr("Bon de commande d'un service de taxis collectifs"), false)
	pdf.SetCreator("Annexe 9 Generator v1.0", false)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	left := 20 * mm
	right := pageW - 20*mm
	y := 15 * mm

	text := func(x, yy float64, s string) {
		pdf.Text(x, yy, tr(s))
	}
	centred := func(x, yy float64, s string) {
		pdf.Text(x-pdf.GetStringWidth(tr(s))/2, yy, tr(s))
	}

	// Header
	pdf.SetFont("Helvetica", "B", 10)
	centred(pageW/2, y, "Annexe 9")
	y += 12

	pdf.SetFont("Helvetica", "", 8)
	centred(pageW/2, y, "Annexe 9 de l'arrêté du Gouvernement wallon du 3 juin 2009 portant exécution du décret du 18 octobre 2007 relatif aux services de ")
	y += 10
	centred(pageW/2, y, "taxis et aux services de location de voitures avec chauffeur")
	y += 20

	pdf.SetFont("Helvetica", "B", 14)
	centred(pageW/2, y, "Bon de commande d'un service de taxis collectifs")
	y += 25

	pdf.SetFont("Helvetica", "B", 9)
	text(left, y, "(CACHET DE L'EXPLOITANT)")
	y += 35

	// Reservation box
	pdf.Rect(left, y-5, right-left, 20, "D")
	pdf.SetFont("Helvetica", "B", 9)
	text(left+5, y+5, "Date de réservation :")
	pdf.SetFont("Helvetica", "", 9)
	text(left+55*mm, y+5, utils.FormatDate(o.ReservationDate))
	pdf.SetFont("Helvetica", "B", 9)
	text(pageW/2+10, y+5, "N° de réservation :")
	pdf.SetFont("Helvetica", "", 9)
	reservation := o.ReservationNumber
	if reservation == "" {
		reservation = o.Reference
	}
	text(pageW/2+50*mm, y+5, reservation)
	y += 35

	// Exploitant
	pdf.SetFont("Helvetica", "B", 10)
	text(left, y, "Exploitant:")
	pdf.Line(left, y+2, left+25*mm, y+2)
	y += 20

	pdf.SetFont("Helvetica", "", 9)
	text(left, y, "Nom : ")
	operatorTitle := o.Operator.Title
	if operatorTitle == "" {
		operatorTitle = domain.TitleSociete
	}
	drawTitleOptions(pdf, tr, left+pdf.GetStringWidth(tr("Nom : ")), y, operatorTitle)
	pdf.SetFont("Helvetica", "", 9)
	text(left+55*mm, y, o.Operator.Name)
	pdf.Line(left+55*mm, y+2, right, y+2)
	y += 16

	text(left, y, "Adresse : domicile/siège social situé")
	text(left+55*mm, y, o.Operator.Address)
	pdf.Line(left+55*mm, y+2, right-30*mm, y+2)
	text(right-25*mm, y, "n°")
	text(right-18*mm, y, o.Operator.AddressNumber)
	pdf.Line(right-18*mm, y+2, right, y+2)
	y += 16

	text(left+15*mm, y, "code postal :")
	text(left+40*mm, y, o.Operator.PostalCode)
	pdf.Line(left+40*mm, y+2, left+60*mm, y+2)
	text(left+65*mm, y, "localité :")
	text(left+82*mm, y, o.Operator.Locality)
	pdf.Line(left+82*mm, y+2, right, y+2)
	y += 16

	text(left, y, "inscrit(e) à la banque carrefour des entreprises sous le numéro")
	text(left+95*mm, y, o.Operator.BCENumber)
	pdf.Line(left+95*mm, y+2, right, y+2)
	y += 16

	text(left, y, "exploitant un service de taxis collectifs en vertu d'une autorisation portant le n°")
	text(left+115*mm, y, o.Operator.AuthorizationNumber)
	pdf.Line(left+115*mm, y+2, right, y+2)
	y += 16

	text(left, y, "délivrée par les services du Gouvernement wallon en date du")
	text(left+90*mm, y, utils.FormatDate(o.Operator.AuthorizationDate))
	pdf.Line(left+90*mm, y+2, right, y+2)
	y += 28

	// Client (boxed)
	pdf.Rect(left, y-8, right-left, 85, "D")
	pdf.SetFont("Helvetica", "B", 10)
	text(left+3, y, "Client :")
	pdf.Line(left+3, y+2, left+20*mm, y+2)
	y += 20

	pdf.SetFont("Helvetica", "", 9)
	text(left+3, y, "Nom : ")
	clientTitle := o.Client.Title
	if clientTitle == "" {
		clientTitle = domain.TitleMonsieur
	}
	drawTitleOptions(pdf, tr, left+3+pdf.GetStringWidth(tr("Nom : ")), y, clientTitle)
	pdf.SetFont("Helvetica", "", 9)
	text(left+55*mm, y, o.Client.Name)
	pdf.Line(left+55*mm, y+2, right-3, y+2)
	y += 16

	text(left+3, y, "Adresse : domicile / siège social situé")
	text(left+58*mm, y, o.Client.Address)
	pdf.Line(left+58*mm, y+2, right-30*mm, y+2)
	text(right-25*mm, y, "n°")
	text(right-18*mm, y, o.Client.AddressNumber)
	pdf.Line(right-18*mm, y+2, right-3, y+2)
	y += 16

	text(left+15*mm, y, "code postal :")
	text(left+40*mm, y, o.Client.PostalCode)
	pdf.Line(left+40*mm, y+2, left+60*mm, y+2)
	text(left+65*mm, y, "localité :")
	text(left+82*mm, y, o.Client.Locality)
	pdf.Line(left+82*mm, y+2, right-3, y+2)
	y += 16

	text(left+3, y, "Tél :")
	text(left+18*mm, y, o.Client.Phone)
	pdf.Line(left+18*mm, y+2, left+55*mm, y+2)
	text(left+60*mm, y, "GSM :")
	text(left+75*mm, y, o.Client.GSM)
	pdf.Line(left+75*mm, y+2, right-3, y+2)
	y += 16

	text(left+3, y, "Nombre de passagers : adulte :")
	text(left+55*mm, y, strconv.Itoa(o.PassengersAdult))
	pdf.Line(left+55*mm, y+2, left+70*mm, y+2)
	text(left+75*mm, y, "enfant(s) - 12 ans :")
	text(left+110*mm, y, strconv.Itoa(o.PassengersChild))
	pdf.Line(left+110*mm, y+2, right-3, y+2)
	y += 32

	// Service type selector, exactly one option checked
	pdf.SetFont("Helvetica", "B", 10)
	text(left, y, "Service :")
	pdf.Line(left, y+2, left+20*mm, y+2)

	pdf.SetFont("Helvetica", "", 9)
	drawCheckbox(pdf, left+30*mm, y+1, o.ServiceType == domain.ServiceOutbound)
	text(left+30*mm+5*mm, y, "Aller")
	drawCheckbox(pdf, left+55*mm, y+1, o.ServiceType == domain.ServiceReturn)
	text(left+55*mm+5*mm, y, "Retour")
	drawCheckbox(pdf, left+85*mm, y+1, o.ServiceType == domain.ServiceRoundTrip)
	text(left+85*mm+5*mm, y, "Aller/Retour")
	y += 28

	// Trip table: both columns always render, whatever the service type
	tableW := right - left
	col1 := 45 * mm
	col2 := (tableW - col1) / 2
	rowH := 14.0

	pdf.SetFillColor(230, 230, 230)
	pdf.Rect(left, y, tableW, rowH, "F")
	pdf.SetFillColor(0, 0, 0)

	pdf.SetFont("Helvetica", "B", 9)
	centred(left+col1+col2/2, y+10, "Aller")
	centred(left+col1+col2+col2/2, y+10, "Retour")
	drawRowBorders(pdf, left, y, col1, col2, tableW, rowH)
	y += rowH

	rows := [][3]string{
		{"Date :", utils.FormatDate(o.Outbound.Date), utils.FormatDate(o.Return.Date)},
		{"Heure", utils.FormatTime(o.Outbound.Time), utils.FormatTime(o.Return.Time)},
		{"Lieu de départ :", o.Outbound.Departure, o.Return.Departure},
		{"Destination :", o.Outbound.Destination, o.Return.Destination},
		{"Prix convenu par personne :", utils.FormatPrice(o.Outbound.Price), utils.FormatPrice(o.Return.Price)},
	}

	pdf.SetFont("Helvetica", "", 9)
	for _, row := range rows {
		text(left+3, y+10, row[0])
		centred(left+col1+col2/2, y+10, row[1])
		centred(left+col1+col2+col2/2, y+10, row[2])
		drawRowBorders(pdf, left, y, col1, col2, tableW, rowH)
		y += rowH
	}
	y += 20

	// Signature boxes
	sigW := 55 * mm
	sigH := 25 * mm

	pdf.SetFont("Helvetica", "", 9)
	text(left, y, "Signature de l'exploitant :")
	boxTop := y + 5
	pdf.Rect(left, boxTop, sigW, sigH, "D")

	clientBoxX := pageW/2 + 10*mm
	text(clientBoxX, y, "Signature du client")
	y += 10
	pdf.SetFont("Helvetica", "", 7)
	text(clientBoxX, y, "(au plus tard au moment de la prise en charge) :")
	pdf.Rect(clientBoxX, boxTop, sigW, sigH, "D")

	if len(signature) > 0 {
		embedSignature(pdf, signature, clientBoxX, boxTop, sigW, sigH)
	}

	y = boxTop + sigH + 15

	// Footer legal text
	pdf.SetFont("Helvetica", "", 7)
	text(left, y, "Vu pour être annexé à l'arrêté du Gouvernement wallon du 11 juillet 2013 modifiant l'arrêté du Gouvernement wallon")
	y += 9
	text(left, y, "du 3 juin 2009 portant exécution du décret du 18 octobre 2007 relatif aux services de taxis et aux services de location")
	y += 9
	text(left, y, "de voitures avec chauffeur")
	y += 14

	text(left, y, "Namur, le 11 juillet 2013.")
	y += 14

	pdf.SetFont("Helvetica", "", 8)
	centred(left+40*mm, y, "Le Ministre-Président,")
	centred(right-45*mm, y, "Le Ministre de l'Environnement, de l'Aménagement")
	y += 9
	centred(left+40*mm, y, "R. DEMOTTE,")
	centred(right-45*mm, y, "du Territoire et de la Mobilité,")
	y += 9
	centred(right-45*mm, y, "P. HENRY")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// titleOption describes one civility option on the "Nom :" line.
type titleOption struct {
	Label     string
	Separator string
	Offset    float64
	Width     float64
	Struck    bool
}

// titleOptionLayout computes, per option, its offset from the group start and
// its rendered width at the active font. Every option except the selected one
// carries a strikethrough spanning exactly its own measured width.
func titleOptionLayout(measure func(string) float64, selected domain.Title) []titleOption {
	labels := []domain.Title{domain.TitleMadame, domain.TitleMonsieur, domain.TitleSociete}
	separators := []string{" / ", " / ", ""}

	out := make([]titleOption, 0, len(labels))
	x := 0.0
	for i, label := range labels {
		w := measure(string(label))
		out = append(out, titleOption{
			Label:     string(label),
			Separator: separators[i],
			Offset:    x,
			Width:     w,
			Struck:    label != selected,
		})
		x += w
		if separators[i] != "" {
			x += measure(separators[i])
		}
	}
	return out
}

func drawTitleOptions(pdf *gofpdf.Fpdf, tr func(string) string, x, y float64, selected domain.Title) {
	const size = 9.0
	pdf.SetFont("Helvetica", "", size)
	measure := func(s string) float64 { return pdf.GetStringWidth(tr(s)) }

	for _, opt := range titleOptionLayout(measure, selected) {
		pdf.Text(x+opt.Offset, y, tr(opt.Label))
		if opt.Struck {
			// through the middle of the text, slightly above baseline
			lineY := y - size*0.3
			pdf.Line(x+opt.Offset, lineY, x+opt.Offset+opt.Width, lineY)
		}
		if opt.Separator != "" {
			pdf.Text(x+opt.Offset+opt.Width, y, tr(opt.Separator))
		}
	}
}

// drawCheckbox renders a circle outline; checked adds a filled inner circle
// at 2/3 of the radius with the same center.
func drawCheckbox(pdf *gofpdf.Fpdf, x, y float64, checked bool) {
	const size = 3 * mm
	cx := x + size/2
	cy := y - size/2
	pdf.Circle(cx, cy, size/2, "D")
	if checked {
		pdf.Circle(cx, cy, size/3, "F")
	}
}

func drawRowBorders(pdf *gofpdf.Fpdf, left, y, col1, col2, tableW, rowH float64) {
	pdf.Line(left, y, left+tableW, y)
	pdf.Line(left, y+rowH, left+tableW, y+rowH)
	pdf.Line(left, y, left, y+rowH)
	pdf.Line(left+col1, y, left+col1, y+rowH)
	pdf.Line(left+col1+col2, y, left+col1+col2, y+rowH)
	pdf.Line(left+tableW, y, left+tableW, y+rowH)
}

// embedSignature draws the decrypted signature image inside the client box
// with fixed padding, preserving aspect ratio. Corrupt bytes only cost the
// image, never the document.
func embedSignature(pdf *gofpdf.Fpdf, img []byte, boxX, boxY, boxW, boxH float64) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(img))
	if err != nil || cfg.Width <= 0 || cfg.Height <= 0 {
		utils.LogEvent("", "pdf", "signature_image_skipped", "image illisible, case laissée vide")
		return
	}

	imageType := strings.ToUpper(format)
	if imageType == "JPEG" {
		imageType = "JPG"
	}

	padding := 2 * mm
	maxW := boxW - 2*padding
	maxH := boxH - 2*padding

	scale := maxW / float64(cfg.Width)
	if h := maxH / float64(cfg.Height); h < scale {
		scale = h
	}
	w := float64(cfg.Width) * scale
	h := float64(cfg.Height) * scale
	x := boxX + padding + (maxW-w)/2
	yy := boxY + padding + (maxH-h)/2

	opts := gofpdf.ImageOptions{ImageType: imageType, ReadDpi: false}
	pdf.RegisterImageOptionsReader("client-signature", opts, bytes.NewReader(img))
	if !pdf.Ok() {
		// gofpdf rejected what the stdlib accepted; drop the image, keep the page
		pdf.ClearError()
		utils.LogEvent("", "pdf", "signature_image_skipped", "image non supportée par le moteur PDF")
		return
	}
	pdf.ImageOptions("client-signature", x, yy, w, h, false, opts, 0, "")
}

