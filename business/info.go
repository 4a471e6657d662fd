// Package business holds The Color Bar Salon's static knowledge and the
// rule-based handlers built on top of it. Everything here is read-only and
// safe to share across sessions.
package business

import (
	"fmt"
	"sort"
	"strings"
)

// Service is one offered service with its price in PHP.
type Service struct {
	Name  string
	Price int
}

// Location is one salon branch.
type Location struct {
	City    string
	Address string
}

// Info is the salon's static knowledge base.
type Info struct {
	Services  []Service
	Locations []Location
	Hours     map[string]string // day range -> opening hours
}

// Default is the knowledge base for The Color Bar Salon.
var Default = &Info{
	Services: []Service{
		{Name: "Haircut", Price: 500},
		{Name: "Full Color", Price: 1500},
		{Name: "Highlights", Price: 2000},
		{Name: "Balayage", Price: 2500},
		{Name: "Keratin Treatment", Price: 3000},
	},
	Locations: []Location{
		{City: "Makati", Address: "123 Ayala Ave, Makati, Metro Manila"},
		{City: "Quezon City", Address: "456 Timog Ave, Quezon City, Metro Manila"},
		{City: "Taguig", Address: "789 BGC, Taguig, Metro Manila"},
	},
	Hours: map[string]string{
		"Monday-Friday":   "9 AM to 7 PM",
		"Saturday-Sunday": "10 AM to 6 PM",
	},
}

// ServiceNames returns the offered service names in listing order.
func (i *Info) ServiceNames() []string {
	names := make([]string, 0, len(i.Services))
	for _, s := range i.Services {
		names = append(names, s.Name)
	}
	return names
}

// ServicesSummary is a one-line description of the offered services.
func (i *Info) ServicesSummary() string {
	return fmt.Sprintf("We offer the following services: %s.", strings.Join(i.ServiceNames(), ", "))
}

// PricingSummary lists each service with its price.
func (i *Info) PricingSummary() string {
	parts := make([]string, 0, len(i.Services))
	for _, s := range i.Services {
		parts = append(parts, fmt.Sprintf("%s - PHP %d", s.Name, s.Price))
	}
	return "Pricing: " + strings.Join(parts, ", ") + "."
}

// LocationsSummary lists the salon branches.
func (i *Info) LocationsSummary() string {
	parts := make([]string, 0, len(i.Locations))
	for n, l := range i.Locations {
		parts = append(parts, fmt.Sprintf("%d. %s - %s", n+1, l.City, l.Address))
	}
	return "Locations:\n" + strings.Join(parts, "\n")
}

// HoursSummary describes the opening hours.
func (i *Info) HoursSummary() string {
	days := make([]string, 0, len(i.Hours))
	for d := range i.Hours {
		days = append(days, d)
	}
	sort.Strings(days)
	parts := make([]string, 0, len(days))
	for _, d := range days {
		parts = append(parts, fmt.Sprintf("%s: %s", d, i.Hours[d]))
	}
	return "Hours of Operation: " + strings.Join(parts, ", ") + "."
}

// faqRule maps a trigger keyword to its canned answer.
type faqRule struct {
	keyword string
	answer  func(i *Info) string
}

// faqRules is evaluated in order; the first keyword contained in the
// message wins, even when several keywords are present.
var faqRules = []faqRule{
	{keyword: "services", answer: (*Info).ServicesSummary},
	{keyword: "location", answer: func(i *Info) string {
		parts := make([]string, 0, len(i.Locations))
		for _, l := range i.Locations {
			parts = append(parts, fmt.Sprintf("%s - %s", l.City, l.Address))
		}
		return fmt.Sprintf("Our salon is located at: %s.", strings.Join(parts, "; "))
	}},
	{keyword: "hours", answer: func(i *Info) string {
		days := make([]string, 0, len(i.Hours))
		for d := range i.Hours {
			days = append(days, d)
		}
		sort.Strings(days)
		parts := make([]string, 0, len(days))
		for _, d := range days {
			parts = append(parts, fmt.Sprintf("%s: %s", d, i.Hours[d]))
		}
		return fmt.Sprintf("Our hours are: %s.", strings.Join(parts, ", "))
	}},
}

// AnswerFAQ returns a canned answer when the message contains one of the
// recognized FAQ keywords (case-insensitive). The boolean reports whether
// a rule matched; unmatched messages fall through to the language model.
func AnswerFAQ(message string) (string, bool) {
	lowered := strings.ToLower(message)
	for _, rule := range faqRules {
		if strings.Contains(lowered, rule.keyword) {
			return rule.answer(Default), true
		}
	}
	return "", false
}
