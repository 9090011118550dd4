package intent

import (
	"fmt"
	"strings"

	"wayfinder_backend/platform/geo"
)

// buildPrompt assembles the instruction for the intent model. The requested
// output shape matches the normalizer's canonical form, but the model is not
// guaranteed to honor it; alias shapes are reconciled downstream.
func buildPrompt(query string, origin *geo.Point, originAddress string) string {
	var b strings.Builder

	b.WriteString("You parse free-text map searches into structured intent.\n")
	b.WriteString("Respond with JSON only, using this shape:\n")
	b.WriteString(`{"parsedQuery":{"searchTerm":"...","areaHint":"...","typeHint":"...","filters":{"openNow":false,"priceRange":"","minRating":0}},`)
	b.WriteString(`"results":[{"id":"...","name":"...","description":"...","address":"...","latitude":0,"longitude":0,"rating":0,"priceRange":"","website":"","phone":"","sources":["Name | https://..."]}]}`)
	b.WriteString("\n\nSuggest real places matching the query. Include a street address for every place; ")
	b.WriteString("leave latitude/longitude at 0 when you are not certain of the exact coordinates.\n")

	if origin != nil {
		fmt.Fprintf(&b, "The user is located at latitude %.5f, longitude %.5f; prefer nearby places.\n", origin.Lat, origin.Lon)
	}
	if originAddress != "" {
		fmt.Fprintf(&b, "The user's approximate address is: %s\n", originAddress)
	}

	fmt.Fprintf(&b, "\nQuery: %s\n", query)

	return b.String()
}
