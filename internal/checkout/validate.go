package checkout

import (
	"sort"
	"strings"

	"shopmart/internal/validate"
)

// Errors maps a field name to its message. Empty means the form is valid.
type Errors map[string]string

func (e Errors) Valid() bool { return len(e) == 0 }

// ValidationError carries the per-field errors of a rejected form.
type ValidationError struct {
	Fields Errors
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return "checkout form invalid: " + strings.Join(names, ", ")
}

type rule struct {
	ok  func(string) bool
	msg string
}

func required(msg string) rule { return rule{ok: validate.Required, msg: msg} }

// first failing rule wins
func check(errs Errors, field, value string, rules ...rule) {
	for _, r := range rules {
		if !r.ok(value) {
			errs[field] = r.msg
			return
		}
	}
}

// Validate applies every field rule to f. It touches nothing but f.
func Validate(f Form) Errors {
	errs := Errors{}

	check(errs, FieldFirstName, f.FirstName, required("First name is required"))
	check(errs, FieldLastName, f.LastName, required("Last name is required"))
	check(errs, FieldEmail, f.Email,
		required("Email is required"),
		rule{validate.Email, "Email is invalid"})
	if f.Phone != "" {
		check(errs, FieldPhone, f.Phone, rule{validate.Phone, "Phone number is invalid"})
	}

	check(errs, FieldAddress, f.Address, required("Address is required"))
	check(errs, FieldCity, f.City, required("City is required"))
	check(errs, FieldState, f.State, required("State is required"))
	check(errs, FieldZip, f.Zip,
		required("ZIP code is required"),
		rule{validate.ZIP, "ZIP code is invalid"})

	check(errs, FieldCardName, f.CardName, required("Name on card is required"))
	check(errs, FieldCardNumber, f.CardNumber,
		required("Card number is required"),
		rule{validate.CardNumber, "Card number is invalid"})
	check(errs, FieldExpDate, f.ExpDate,
		required("Expiration date is required"),
		rule{validate.ExpDate, "Format must be MM/YY"})
	check(errs, FieldCVV, f.CVV,
		required("CVV is required"),
		rule{validate.CVV, "CVV is invalid"})

	return errs
}
