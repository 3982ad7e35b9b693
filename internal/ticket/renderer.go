package ticket

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Renderer is the external ticket-artifact collaborator. The engine only
// stores the opaque reference; the renderer turns it into something
// retrievable, typically a URL backing a QR code.
type Renderer interface {
	TicketURL(ctx context.Context, reference uuid.UUID) (string, error)
}

// URLRenderer derives ticket URLs from a fixed base.
type URLRenderer struct {
	BaseURL string
}

func (r URLRenderer) TicketURL(_ context.Context, reference uuid.UUID) (string, error) {
	return strings.TrimSuffix(r.BaseURL, "/") + "/tickets/" + reference.String(), nil
}
