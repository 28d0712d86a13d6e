package scoring

import "leadflow-workers/internal/models"

var recommendations = map[models.Industry]map[models.LeadLevel][]string{
	models.IndustryCoaching: {
		models.LevelHot: {
			"Sună lead-ul în următoarele 2 ore pentru o sesiune de descoperire",
			"Trimite oferta pentru programul de coaching 1:1",
		},
		models.LevelWarm: {
			"Trimite un studiu de caz relevant pentru obiectivul declarat",
			"Invită lead-ul la următorul webinar gratuit",
		},
		models.LevelCold: {
			"Adaugă lead-ul în secvența de nurturing prin email",
			"Trimite ghidul gratuit de introducere",
		},
	},
	models.IndustryClinics: {
		models.LevelHot: {
			"Contactează pacientul telefonic pentru confirmarea programării",
			"Prioritizează primul interval disponibil",
		},
		models.LevelWarm: {
			"Trimite reminder de programare cu 24h înainte",
			"Oferă informații despre serviciile conexe",
		},
		models.LevelCold: {
			"Trimite newsletter-ul lunar cu sfaturi de sănătate",
			"Propune un control periodic la reducere",
		},
	},
	models.IndustryEcommerce: {
		models.LevelHot: {
			"Oferă livrare gratuită pentru finalizarea comenzii azi",
			"Trimite reminder de coș abandonat după 1 oră",
		},
		models.LevelWarm: {
			"Trimite o reducere de 10% valabilă 48h",
			"Recomandă produse similare din aceeași categorie",
		},
		models.LevelCold: {
			"Adaugă lead-ul în campania de retargeting",
			"Trimite noutățile săptămânale din categoria preferată",
		},
	},
}

// Recommendations returns a copy of the fixed advice for an industry and level.
func Recommendations(ind models.Industry, level models.LeadLevel) []string {
	src := recommendations[ind][level]
	out := make([]string, len(src))
	copy(out, src)
	return out
}
