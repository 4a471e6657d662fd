package business

import (
	"fmt"
	"strings"
)

// MissingFieldsError reports which booking fields were absent.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// ConfirmBooking validates the five booking fields and returns the
// confirmation text. No booking is persisted; the confirmation message is
// the whole contract.
func ConfirmBooking(name, contact, service, date, timeOfDay string) (string, error) {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"name", name},
		{"contact", contact},
		{"service", service},
		{"date", date},
		{"time", timeOfDay},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return "", &MissingFieldsError{Fields: missing}
	}

	return fmt.Sprintf(
		"Thank you, %s. Your appointment for %s is booked on %s at %s. We will contact you at %s for any updates.",
		name, service, date, timeOfDay, contact,
	), nil
}
