package models

import (
	// Go Internal Packages
	"fmt"
	"regexp"
	"strings"
)

// CardEntry is card data typed or swiped by an operator. It lives only for the
// duration of the operation that needs it and must be cleared afterwards.
type CardEntry struct {
	CardPresent bool   `json:"card_present"`
	SwipeData   string `json:"swipe_data,omitempty"`
	Owner       string `json:"owner"`
	Number      string `json:"number"`
	ExpiryMonth string `json:"expiry_month"`
	ExpiryYear  string `json:"expiry_year"`
	CSC         string `json:"csc"`
}

var track1Re = regexp.MustCompile(
	`^%(?P<FC>\w)(?P<PAN>\d+)\^(?P<NAME>.{2,26})\^(?P<YY>\d{2})(?P<MM>\d{2})(?P<SC>\d{0,3}|\^)(?P<DD>.*)\?$`,
)

// ParseSwipe fills owner, number and expiry from magnetic stripe data of the
// form "track1;track2". Only track 1 is decoded.
func (c *CardEntry) ParseSwipe() error {
	track1, _, ok := strings.Cut(c.SwipeData, ";")
	if !ok {
		c.Owner, c.Number, c.ExpiryMonth, c.ExpiryYear = "", "", "", ""
		return fmt.Errorf("swipe data has no track separator")
	}

	m := track1Re.FindStringSubmatch(track1)
	if m == nil {
		return nil
	}
	group := func(name string) string {
		return m[track1Re.SubexpIndex(name)]
	}
	if strings.ToUpper(group("FC")) != "B" {
		return fmt.Errorf("unknown card format code %q", group("FC"))
	}

	c.Owner = group("NAME")
	c.Number = group("PAN")
	c.ExpiryMonth = group("MM")
	c.ExpiryYear = "20" + group("YY")
	return nil
}

// LastFour returns the last four digits of the card number.
func (c *CardEntry) LastFour() string {
	if len(c.Number) < 4 {
		return c.Number
	}
	return c.Number[len(c.Number)-4:]
}

// Clear wipes the sensitive fields.
func (c *CardEntry) Clear() {
	c.Number = ""
	c.CSC = ""
	c.SwipeData = ""
}
