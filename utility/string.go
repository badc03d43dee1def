package utility

import (
	"strconv"

	"github.com/google/uuid"
)

// ToFloat converts a reported meter reading to a number; charge points send
// registers as strings, sometimes with a decimal part even for Wh units.
func ToFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// ToInt converts a string to an integer, tolerating decimal input
func ToInt(s string) int {
	return int(ToFloat(s))
}

// WattsAsKw converts a Wh value to a display string like 1234 to 1.2
func WattsAsKw(i int) string {
	if i < 100 {
		return "0.0"
	}
	return strconv.Itoa(i/1000) + "." + strconv.Itoa((i%1000)/100)
}

// CentsAsPrice converts an amount in cents to a string like 10234 to 102.34
func CentsAsPrice(i int) string {
	return strconv.FormatFloat(float64(i)/100.0, 'f', 2, 64)
}

func NewUUID() string {
	return uuid.New().String()
}
