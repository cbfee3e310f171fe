// Package main provides localization for the eventshot CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Norwegian translations for CLI messages.
	l10n.Register("nb", l10n.LexiconMap{
		// Flag categories
		"Output":      "Utdata",
		"Browser":     "Nettleser",
		"Capture":     "Skjermbilde",
		"Region":      "Område",
		"Compression": "Komprimering",
		"Debug":       "Feilsøking",
		"Logging":     "Logging",

		// Root command
		"Capture an event listing as a size-bounded JPEG":                                                               "Ta bilde av en arrangementsliste som en JPEG med begrenset størrelse",
		"eventshot screenshots a web page, crops it to the event cards and compresses the result to fit a byte budget.": "eventshot tar skjermbilde av en nettside, beskjærer det til arrangementskortene og komprimerer resultatet til en gitt størrelse.",

		// Commands
		"Capture a page and write a JPEG within the byte budget": "Ta bilde av en side og skriv en JPEG innenfor størrelsesgrensen",
		"Compress an existing image to fit the byte budget":      "Komprimer et eksisterende bilde til størrelsesgrensen",
		"Show version information":                               "Vis versjonsinformasjon",
		"eventshot version %s":                                   "eventshot versjon %s",

		// Output flags
		"URL of the event listing (default from preset)": "URL til arrangementslisten (standard fra forhåndsvalg)",
		"Preset configuration (%s)":                      "Forhåndsvalg (%s)",
		"Output JPEG file path":                          "Sti til JPEG-filen",
		"YAML configuration file":                        "YAML-konfigurasjonsfil",

		// Browser flags
		"Browser engine (chromedp, playwright)":          "Nettlesermotor (chromedp, playwright)",
		"Run browser in non-headless mode":               "Kjør nettleseren synlig",
		"Path to Chrome executable":                      "Sti til Chrome",
		"Download the Playwright browser if missing":     "Last ned Playwright-nettleseren om den mangler",
		"User agent override":                            "Overstyr user agent",
		"Extra request header (Name: value), repeatable": "Ekstra forespørselshode (Navn: verdi), kan gjentas",
		"Ignore HTTPS certificate errors":                "Ignorer feil i HTTPS-sertifikater",
		"HTTP proxy server (e.g., http://proxy:8080)":    "HTTP-proxy (f.eks. http://proxy:8080)",

		// Capture flags
		"Browser viewport width (min: %d)":                "Bredde på visningsområdet (min: %d)",
		"Browser viewport height (min: %d)":               "Høyde på visningsområdet (min: %d)",
		"Capture the whole page instead of the viewport":  "Ta bilde av hele siden i stedet for visningsområdet",
		"Maximum wait for network idle":                   "Lengste ventetid på rolig nettverk",
		"Extra wait after network idle":                   "Ekstra ventetid etter rolig nettverk",
		"Leave cookie banners alone":                      "Ikke lukk informasjonskapsel-bannere",
		"Scroll steps to trigger lazy loading (0 = none)": "Rullesteg for lat innlasting (0 = ingen)",
		"Pixels per scroll step":                          "Piksler per rullesteg",
		"Pause after each scroll step":                    "Pause etter hvert rullesteg",

		// Region flags
		"CSS selector of event cards":                                     "CSS-velger for arrangementskort",
		"Maximum number of cards in the crop (0 = all)":                   "Største antall kort i utsnittet (0 = alle)",
		"Padding around the cards in pixels":                              "Luft rundt kortene i piksler",
		"Keep the full screenshot width":                                  "Behold hele bredden på skjermbildet",
		"Crop used when no card is found (left,top,right,bottom or none)": "Utsnitt når ingen kort finnes (venstre,topp,høyre,bunn eller none)",
		"Fail when no card is found":                                      "Feil når ingen kort finnes",
		"Crop region (left,top,right,bottom)":                             "Utsnitt (venstre,topp,høyre,bunn)",

		// Compression flags
		"Maximum JPEG size in bytes":                "Største JPEG-størrelse i byte",
		"Starting JPEG quality (1-100)":             "Første JPEG-kvalitet (1-100)",
		"Lowest JPEG quality before downscaling":    "Laveste JPEG-kvalitet før nedskalering",
		"Smallest scale factor tried":               "Minste skaleringsfaktor som prøves",
		"Multiplicative step for quality and scale": "Multiplikativt steg for kvalitet og skala",

		// Debug flags
		"Enable debug output":                                "Slå på feilsøkingsdata",
		"Directory for debug output":                         "Mappe for feilsøkingsdata",
		"Output execution summary to file (Markdown format)": "Skriv sammendrag til fil (Markdown)",

		// Logging flags
		"Log level (debug, info, warn, error)": "Loggnivå (debug, info, warn, error)",
		"Suppress all log output":              "Skjul all logging",

		// Errors
		"Error: %s":                              "Feil: %s",
		"Exactly one image argument is required": "Nøyaktig ett bilde må oppgis",

		// Summary content
		"Capture Summary":              "Sammendrag",
		"Page":                         "Side",
		"Item":                         "Felt",
		"Value":                        "Verdi",
		"Page Title":                   "Sidetittel",
		"URL":                          "URL",
		"Viewport":                     "Visningsområde",
		"Cookie Banner Dismissed":      "Informasjonskapsel-banner lukket",
		"Network Idle Timeout":         "Tidsavbrudd for rolig nettverk",
		"Source":                       "Kilde",
		"Cards":                        "Kort",
		"Crop (left,top,right,bottom)": "Utsnitt (venstre,topp,høyre,bunn)",
		"Screenshot Size":              "Størrelse på skjermbilde",
		"File":                         "Fil",
		"File Size":                    "Filstørrelse",
		"bytes":                        "byte",
		"Budget":                       "Grense",
		"Within Budget":                "Innenfor grensen",
		"JPEG Quality":                 "JPEG-kvalitet",
		"Scale":                        "Skala",
		"Dimensions":                   "Mål",
		"Encode Attempts":              "Kodingsforsøk",
		"Quality":                      "Kvalitet",
		"Size":                         "Størrelse",
		"Generated at":                 "Laget",
		"Yes":                          "Ja",
		"No":                           "Nei",

		// Region sources
		"cards":    "kort",
		"fallback": "reserve",
		"full":     "hele bildet",
		"explicit": "angitt",
	})
}
