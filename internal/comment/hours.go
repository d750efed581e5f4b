package comment

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	hoursAndMinutes = regexp.MustCompile(`(?i)(\d+)h[ ]*(\d+)m`)
	clockTime       = regexp.MustCompile(`(\d+):(\d+)`)
	minutesOnly     = regexp.MustCompile(`(?i)(\d+)m`)
	hoursOnly       = regexp.MustCompile(`(?i)(\d+)h`)
	leadingNumber   = regexp.MustCompile(`^\s*[-+]?(\d+(\.\d+)?|\.\d+)([eE][-+]?\d+)?`)
)

// ParseHours converts a duration typed by a person into hours. It accepts
//
//	7       hours
//	7.5     hours with decimals
//	7h      hours
//	30m     minutes
//	2h 30m  hours and minutes
//	2:30    hours and minutes
//
// Blank input returns nil. Anything else is read as a number; text with no
// leading number reads as 0.
func ParseHours(duration string) *float64 {
	if blank(duration) {
		return nil
	}

	var hours float64
	if m := hoursAndMinutes.FindStringSubmatch(duration); m != nil {
		hours = number(m[1]) + number(m[2])/60
	} else if m := clockTime.FindStringSubmatch(duration); m != nil {
		hours = number(m[1]) + number(m[2])/60.0
	} else if m := minutesOnly.FindStringSubmatch(duration); m != nil {
		hours = number(m[1]) / 60.0
	} else if m := hoursOnly.FindStringSubmatch(duration); m != nil {
		hours = number(m[1])
	} else {
		hours = number(leadingNumber.FindString(duration))
	}
	return &hours
}

// number parses s as a float, reading unparsable text as 0.
func number(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}
