package party

import "escrutinio/internal/models"

// Ideology runs from 0 (left) to 7 (right); models.NeutralIdeology is the midpoint.
var staticParties = map[string]models.PartyMeta{
	"IU":      {Color: "#D8232A", Ideology: 0.8},
	"PODEMOS": {Color: "#6B1F5F", Ideology: 1.2},
	"UP":      {Color: "#6B1F5F", Ideology: 1.2},
	"PSOE":    {Color: "#E30613", Ideology: 2.5},
	"SY":      {Color: "#00A19A", Ideology: 3.3},
	"UPL":     {Color: "#B5121B", Ideology: 3.8},
	"CS":      {Color: "#EB6109", Ideology: 4.2},
	"XAV":     {Color: "#2D9D46", Ideology: 4.5},
	"PP":      {Color: "#1D84CE", Ideology: 5.0},
	"VOX":     {Color: "#63BE21", Ideology: 6.5},
}

// StaticTable returns a copy of the built-in party table
func StaticTable() map[string]models.PartyMeta {
	out := make(map[string]models.PartyMeta, len(staticParties))
	for k, v := range staticParties {
		out[k] = v
	}
	return out
}
