package referral

import "strconv"

// Level maps accumulated points to a reward tier.
func Level(points int) int {
	switch {
	case points >= 100:
		return 3
	case points >= 50:
		return 2
	case points >= 20:
		return 1
	}
	return 0
}

func Reward(level int) string {
	switch level {
	case 1:
		return "Una bolsa de gomas gratis"
	case 2:
		return "Un vaso gratis"
	case 3:
		return "A elegir: alfajor, frappe, sandwich o perro caliente"
	}
	return "Aún no has alcanzado ningún nivel"
}

// Summary is the public view of a referrer's points. Counters are numeric
// strings, as the stored documents always were.
type Summary struct {
	NumReferido     string `json:"NumReferido"`
	PuntosTotal     string `json:"PuntosTotal"`
	VasosComprados  string `json:"Vasos_comprados"`
	BolsasCompradas string `json:"bolsas_compradas"`
	Nivel           int    `json:"nivel"`
	Premio          string `json:"premio"`
}

func Summarize(r Referrer) Summary {
	lvl := Level(r.PuntosTotal)
	return Summary{
		NumReferido:     r.NumReferido,
		PuntosTotal:     strconv.Itoa(r.PuntosTotal),
		VasosComprados:  strconv.Itoa(r.VasosComprados),
		BolsasCompradas: strconv.Itoa(r.BolsasCompradas),
		Nivel:           lvl,
		Premio:          Reward(lvl),
	}
}
