// Package bo4e provides the BO4E message types exchanged with transformer.bee.
//
// Only the envelope structure is modeled here; the business objects inside a
// transaction are owned by transformer.bee and passed through as raw JSON.
package bo4e

import "encoding/json"

// Marktnachricht is one decoded EDIFACT interchange, potentially containing
// multiple transactions.
type Marktnachricht struct {
	// UNH is the message reference number from the interchange's UNH segment.
	UNH string `json:"unh"`

	// Transaktionen are the business transactions contained in the message.
	Transaktionen []BOneyComb `json:"transaktionen"`
}

// BOneyComb is one BO4E transaction: a bundle of business objects
// ("Stammdaten") plus process-level key/value data ("Transaktionsdaten").
type BOneyComb struct {
	Stammdaten        []json.RawMessage `json:"stammdaten"`
	Transaktionsdaten map[string]string `json:"transaktionsdaten"`

	// Links relates transaction keys to lists of business-object IDs.
	Links map[string][]string `json:"links,omitempty"`
}
