package worker

// oferta_worker.go
// Processes oferta_final jobs from QueueOfertas: renders the binding offer
// PDF of a freshly closed catalogo and, when the approver has an email,
// chains an email job carrying the file.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/estebanSulcaInfante/envaperu-catalog/internal/dto"
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/infra"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// OfertaFinalPayload is enqueued after an aprobar commits.
type OfertaFinalPayload struct {
	CatalogoID string `json:"catalogo_id"`
	VersionID  string `json:"version_id"`
	ToEmail    string `json:"to_email,omitempty"`
}

// OfertaLoader reads the final offer of a catalogo.
type OfertaLoader interface {
	ObtenerFinal(ctx context.Context, catalogoID uuid.UUID) (*dto.OfertaFinalResponse, error)
}

// OfertaWorker renders and forwards final offers.
type OfertaWorker struct {
	loader         OfertaLoader
	dispatcher     *Dispatcher
	pdfStoragePath string
	render         func(*dto.OfertaFinalResponse, string) (string, error)
}

func NewOfertaWorker(loader OfertaLoader, dispatcher *Dispatcher, pdfStoragePath string) *OfertaWorker {
	return &OfertaWorker{
		loader:         loader,
		dispatcher:     dispatcher,
		pdfStoragePath: pdfStoragePath,
		render:         infra.GenerateOfertaPDF,
	}
}

func (w *OfertaWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload OfertaFinalPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("oferta_worker: invalid payload")
		return nil
	}
	catalogoID, err := uuid.Parse(payload.CatalogoID)
	if err != nil {
		log.Error().Str("catalogo_id", payload.CatalogoID).Msg("oferta_worker: invalid catalogo_id")
		return nil
	}

	oferta, err := w.loader.ObtenerFinal(ctx, catalogoID)
	if err != nil {
		return fmt.Errorf("oferta_worker: load final: %w", err)
	}
	if payload.VersionID != "" && oferta.Version.ID != payload.VersionID {
		// The final version of a catalogo never changes; a mismatch means a
		// stale or forged payload.
		log.Error().
			Str("catalogo_id", payload.CatalogoID).
			Str("version_id", payload.VersionID).
			Str("final_version_id", oferta.Version.ID).
			Msg("oferta_worker: version mismatch, dropping job")
		return nil
	}

	path, err := w.render(oferta, w.pdfStoragePath)
	if err != nil {
		return fmt.Errorf("oferta_worker: render: %w", err)
	}
	log.Info().Str("catalogo_id", payload.CatalogoID).Str("pdf", path).Msg("oferta_worker: PDF generated")

	if payload.ToEmail == "" {
		return nil
	}
	return w.dispatcher.EnqueueEmail(ctx, EmailJobPayload{
		ToEmail: payload.ToEmail,
		Subject: fmt.Sprintf("Oferta final: %s / %s", oferta.Catalogo.ClienteNombre, oferta.Catalogo.ProductoNombre),
		Body: fmt.Sprintf("Se aprobó la versión #%d del catálogo %s.\nSe adjunta la oferta en PDF.",
			oferta.Version.VersionNum, oferta.Catalogo.ID),
		PDFPath: path,
	})
}
