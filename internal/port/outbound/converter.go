// Package outbound defines the outbound port interfaces for the upstream
// collaborators: the transformer.bee conversion service and the LLM endpoint.
package outbound

import (
	"context"

	"github.com/hochfrequenz/transformerbee-mcp/internal/domain/bo4e"
	"github.com/hochfrequenz/transformerbee-mcp/internal/domain/edifact"
)

// Converter is the outbound port for the EDIFACT⇄BO4E transformation service.
// Adapters implement this as either an authenticated (OAuth client
// credentials) or unauthenticated client; both are safe for concurrent use
// once constructed.
type Converter interface {
	// ConvertToBO4E converts a raw EDIFACT message to its BO4E equivalent.
	// One EDIFACT interchange may decode to multiple Marktnachrichten;
	// multiplicity constraints are the caller's concern, not the client's.
	ConvertToBO4E(ctx context.Context, edi string, formatVersion edifact.FormatVersion) ([]bo4e.Marktnachricht, error)

	// ConvertToEDIFACT converts a single BO4E transaction back to EDIFACT.
	ConvertToEDIFACT(ctx context.Context, transaktion bo4e.BOneyComb, formatVersion edifact.FormatVersion) (string, error)

	// Shutdown releases the client's session resources. Always present;
	// a no-op for variants with nothing to release.
	Shutdown()
}
