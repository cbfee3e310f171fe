package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("nb", l10n.LexiconMap{
		// Orchestration level messages (info)
		"Capturing %s":                    "Tar bilde av %s",
		"Compressing %s":                  "Komprimerer %s",
		"Pipeline completed successfully": "Kjøringen er fullført",
		"Interrupted, shutting down...":   "Avbrutt, avslutter...",
		"Debug output written to %s":      "Feilsøkingsdata skrevet til %s",
		"Summary written to %s":           "Sammendrag skrevet til %s",
		"Wrote %d bytes to %s":            "Skrev %d byte til %s",

		// Capture stage (browser component)
		"Launching browser in headless mode":            "Starter nettleser i hodeløs modus",
		"Launching browser in visible mode":             "Starter nettleser i synlig modus",
		"Navigating to %s":                              "Går til %s",
		"Network did not go idle within %s, continuing": "Nettverket ble ikke rolig innen %s, fortsetter",
		"Waiting %s for the page to settle":             "Venter %s på at siden skal roe seg",
		"Dismissed cookie banner":                       "Lukket informasjonskapsel-banner",
		"No cookie banner found":                        "Fant ikke noe informasjonskapsel-banner",
		"Scrolling %d steps of %d px":                   "Ruller %d steg på %d px",
		"Found %d elements matching %s":                 "Fant %d elementer som passer %s",
		"Browser closed":                                "Nettleseren er lukket",

		// Region stage
		"Cropping to %d card(s): %s":               "Beskjærer til %d kort: %s",
		"No cards found, using fallback region %s": "Fant ingen kort, bruker reserveområde %s",
		"No cards found, using full image":         "Fant ingen kort, bruker hele bildet",
		"Using explicit region %s":                 "Bruker angitt område %s",
		"Cropped to %dx%d":                         "Beskåret til %dx%d",

		// Compress stage
		"Compressing to at most %s":                     "Komprimerer til maks %s",
		"Attempt %d: quality %d, scale %.3f, %dx%d, %s": "Forsøk %d: kvalitet %d, skala %.3f, %dx%d, %s",
		"Encoded %s at quality %d, scale %.2f":          "Kodet %s med kvalitet %d, skala %.2f",

		// Warnings
		"Could not meet budget of %s, best effort is %s": "Klarte ikke grensen på %s, beste resultat er %s",

		// Errors
		"Failed to capture page: %s":  "Kunne ikke ta bilde av siden: %s",
		"Failed to write output: %s":  "Kunne ikke skrive resultatet: %s",
		"Failed to write summary: %s": "Kunne ikke skrive sammendraget: %s",
	})
}
