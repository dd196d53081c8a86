package eclipse

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// emailPattern mirrors `^[^\s@]+@[^\s@]+\.[^\s@]+$` with the wider whitespace
// class browsers use (Unicode space separators, BOM, vertical tab).
var emailPattern = regexp.MustCompile(`^[^\s\p{Z}\x{0B}\x{FEFF}\x{2028}\x{2029}@]+@[^\s\p{Z}\x{0B}\x{FEFF}\x{2028}\x{2029}@]+\.[^\s\p{Z}\x{0B}\x{FEFF}\x{2028}\x{2029}@]+$`)

// isBlank reports whether r is in the whitespace class of emailPattern.
func isBlank(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ', '\uFEFF':
		return true
	}
	return unicode.Is(unicode.Z, r)
}

// isBlankText reports whether s is empty once trimmed of isBlank runes.
func isBlankText(s string) bool {
	return strings.TrimFunc(s, isBlank) == ""
}

const (
	// InvalidEmailMessage is rendered under the input when validation fails.
	InvalidEmailMessage = "Please enter a valid email address"
	// ValidEmailMessage is rendered under the input when validation passes.
	ValidEmailMessage = "✓ Valid email address"
)

// ValidateEmail reports whether s has the local@domain.tld shape.
func ValidateEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// Validity is the tri-state result of the landing form validation.
type Validity int

const (
	ValidityUnknown Validity = iota
	ValidityValid
	ValidityInvalid
)

// Bool returns nil while unknown, otherwise the validation result.
func (v Validity) Bool() *bool {
	switch v {
	case ValidityValid:
		b := true
		return &b
	case ValidityInvalid:
		b := false
		return &b
	}
	return nil
}

// EmailGate is the landing form: it collects an email and hands it upward once.
type EmailGate struct {
	email      string
	validity   Validity
	submitting bool
}

// Input records a keystroke and recomputes validity from the current value.
func (g *EmailGate) Input(value string) Validity {
	g.email = value
	if isBlankText(value) {
		g.validity = ValidityUnknown
	} else if ValidateEmail(value) {
		g.validity = ValidityValid
	} else {
		g.validity = ValidityInvalid
	}
	return g.validity
}

// CanSubmit applies the button guard. Unknown validity does not block by
// itself; it only coexists with empty input under the current rule.
func (g *EmailGate) CanSubmit() bool {
	return !g.submitting && !isBlankText(g.email) && g.validity != ValidityInvalid
}

// Submit reports the email and invokes onSubmit exactly when the guard passes.
// A failing or panicking report never blocks the callback.
func (g *EmailGate) Submit(report func(email string) error, onSubmit func(email string)) (submitted bool, reportErr error) {
	if !g.CanSubmit() || !ValidateEmail(g.email) {
		return false, nil
	}
	g.submitting = true
	defer func() { g.submitting = false }()

	email := g.email
	reportErr = safeReport(report, email)
	onSubmit(email)
	return true, reportErr
}

// State returns the observable form state.
func (g *EmailGate) State() GateState {
	return GateState{
		Email:        g.email,
		EmailValid:   g.validity.Bool(),
		IsSubmitting: g.submitting,
		CanSubmit:    g.CanSubmit(),
	}
}

func safeReport(report func(string) error, email string) (err error) {
	if report == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("eclipse: email report panicked: %v", r)
		}
	}()
	return report(email)
}
