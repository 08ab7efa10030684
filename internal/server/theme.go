package server

import "github.com/rcliao/mindvault/internal/persona"

// Theme is the page colour scheme for a persona.
type Theme struct {
	Background string
	Header     string
	Subheader  string
	Button     string
	Hover      string
}

var themes = map[persona.Persona]Theme{
	persona.Coach: {
		Background: "#EEEFE0",
		Header:     "#819A91",
		Subheader:  "#A7C1A8",
		Button:     "#D1D8BE",
		Hover:      "#A7C1A8",
	},
	persona.Listener: {
		Background: "#DCD7C9",
		Header:     "#2C3930",
		Subheader:  "#3F4F44",
		Button:     "#A27B5C",
		Hover:      "#3F4F44",
	},
	persona.Cheerleader: {
		Background: "#F4F8D3",
		Header:     "#F7CFD8",
		Subheader:  "#8E7DBE",
		Button:     "#A6D6D6",
		Hover:      "#F7CFD8",
	},
}

func themeFor(p persona.Persona) Theme {
	if t, ok := themes[p]; ok {
		return t
	}
	return themes[persona.Default]
}
