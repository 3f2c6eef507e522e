package domain

import (
	"testing"
	"time"
)

func validOrder() Order {
	return Order{
		Operator:    OperatorBlock{Title: TitleSociete, Name: "Taxis Wallonie SRL", PostalCode: "5000"},
		Client:      ClientBlock{Title: TitleMonsieur, Name: "Dupont", PostalCode: "4000"},
		ServiceType: ServiceRoundTrip,
	}
}

func TestValidateOK(t *testing.T) {
	if err := validOrder().Validate(); err != nil {
		t.Fatalf("expected valid order, got %v", err)
	}
}

func TestValidateMissingNames(t *testing.T) {
	o := validOrder()
	o.Operator.Name = "  "
	if err := o.Validate(); !IsValidation(err) {
		t.Fatalf("expected validation error on operator name, got %v", err)
	}

	o = validOrder()
	o.Client.Name = ""
	if err := o.Validate(); !IsValidation(err) {
		t.Fatalf("expected validation error on client name, got %v", err)
	}
}

func TestValidatePostalCode(t *testing.T) {
	o := validOrder()
	o.Client.PostalCode = "12"
	if err := o.Validate(); !IsValidation(err) {
		t.Fatalf("expected validation error on short postal code, got %v", err)
	}

	o.Client.PostalCode = "12345"
	if err := o.Validate(); err != nil {
		t.Fatalf("5-digit postal code should pass, got %v", err)
	}

	o.Client.PostalCode = ""
	if err := o.Validate(); err != nil {
		t.Fatalf("empty postal code is allowed, got %v", err)
	}
}

func TestValidateEnums(t *testing.T) {
	o := validOrder()
	o.ServiceType = "both_ways"
	if err := o.Validate(); !IsValidation(err) {
		t.Fatalf("expected validation error on service type, got %v", err)
	}

	o = validOrder()
	o.Client.Title = "Dr"
	if err := o.Validate(); !IsValidation(err) {
		t.Fatalf("expected validation error on title, got %v", err)
	}
}

func TestValidateNegatives(t *testing.T) {
	o := validOrder()
	o.PassengersAdult = -1
	if err := o.Validate(); !IsValidation(err) {
		t.Fatalf("expected validation error on negative adults, got %v", err)
	}

	o = validOrder()
	neg := -5.0
	o.Outbound.Price = &neg
	if err := o.Validate(); !IsValidation(err) {
		t.Fatalf("expected validation error on negative price, got %v", err)
	}
}

func TestSameSignedContent(t *testing.T) {
	a := validOrder()
	a.PassengersAdult = 1
	b := a

	if !SameSignedContent(a, b) {
		t.Fatalf("identical orders reported as different")
	}

	b.PassengersAdult = 2
	if SameSignedContent(a, b) {
		t.Fatalf("passenger change must count as signed-content change")
	}

	// Non-signed fields do not matter.
	b = a
	b.ReservationNumber = "R-99"
	b.Client.Phone = "081 00 00 00"
	b.Status = StatusSent
	if !SameSignedContent(a, b) {
		t.Fatalf("reservation number, phone and status are outside the signed content")
	}
}

func TestSameSignedContentLegFields(t *testing.T) {
	a := validOrder()
	d1 := time.Date(2024, 6, 1, 0, 0, 0, 0, time.Local)
	a.Outbound.Date = &d1

	b := a
	d2 := d1.AddDate(0, 0, 1)
	b.Outbound.Date = &d2
	if SameSignedContent(a, b) {
		t.Fatalf("outbound date change must invalidate")
	}

	b = a
	b.Outbound.Date = nil
	if SameSignedContent(a, b) {
		t.Fatalf("clearing a date must invalidate")
	}

	b = a
	p := 42.0
	b.Return.Price = &p
	if SameSignedContent(a, b) {
		t.Fatalf("return price change must invalidate")
	}

	b = a
	b.Return.Destination = "Namur"
	if SameSignedContent(a, b) {
		t.Fatalf("destination change must invalidate")
	}
}

func TestHasSignature(t *testing.T) {
	o := validOrder()
	if o.HasSignature() {
		t.Fatalf("no signature expected")
	}
	o.ClientSignature = []byte{1}
	if !o.HasSignature() {
		t.Fatalf("signature expected")
	}
}

func TestToPublicView(t *testing.T) {
	o := validOrder()
	o.Reference = "TC-2024-000007"
	o.ClientSignature = []byte{1, 2, 3}

	v := ToPublicView(o)
	if v.Reference != o.Reference {
		t.Fatalf("reference missing from public view")
	}
	if !v.HasSignature {
		t.Fatalf("hasSignature flag not carried")
	}
}
