// Package checkout validates the checkout form and prices an order.
package checkout

import "shopmart/internal/domain"

// Field names as they appear in the form and in Errors.
const (
	FieldFirstName  = "firstName"
	FieldLastName   = "lastName"
	FieldEmail      = "email"
	FieldPhone      = "phone"
	FieldAddress    = "address"
	FieldCity       = "city"
	FieldState      = "state"
	FieldZip        = "zip"
	FieldCardName   = "cardName"
	FieldCardNumber = "cardNumber"
	FieldExpDate    = "expDate"
	FieldCVV        = "cvv"
)

// Fields lists every form field in display order.
var Fields = []string{
	FieldFirstName, FieldLastName, FieldEmail, FieldPhone,
	FieldAddress, FieldCity, FieldState, FieldZip,
	FieldCardName, FieldCardNumber, FieldExpDate, FieldCVV,
}

type Form struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`

	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`

	CardName   string `json:"cardName"`
	CardNumber string `json:"cardNumber"`
	ExpDate    string `json:"expDate"`
	CVV        string `json:"cvv"`
}

// FormFromValues builds a Form from a lookup such as fiber.Ctx.FormValue.
func FormFromValues(get func(key string, def ...string) string) Form {
	return Form{
		FirstName:  get(FieldFirstName),
		LastName:   get(FieldLastName),
		Email:      get(FieldEmail),
		Phone:      get(FieldPhone),
		Address:    get(FieldAddress),
		City:       get(FieldCity),
		State:      get(FieldState),
		Zip:        get(FieldZip),
		CardName:   get(FieldCardName),
		CardNumber: get(FieldCardNumber),
		ExpDate:    get(FieldExpDate),
		CVV:        get(FieldCVV),
	}
}

// FormFromMap is FormFromValues over a plain map.
func FormFromMap(m map[string]string) Form {
	return FormFromValues(func(key string, _ ...string) string { return m[key] })
}

func (f Form) Customer() domain.Customer {
	return domain.Customer{FirstName: f.FirstName, LastName: f.LastName, Email: f.Email, Phone: f.Phone}
}

func (f Form) Shipping() domain.Shipping {
	return domain.Shipping{Address: f.Address, City: f.City, State: f.State, Zip: f.Zip}
}

// WithoutPayment blanks the payment fields, e.g. before re-rendering the form.
func (f Form) WithoutPayment() Form {
	f.CardName, f.CardNumber, f.ExpDate, f.CVV = "", "", "", ""
	return f
}
