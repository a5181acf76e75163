package negociacion

import (
	"strings"
	"testing"

	"github.com/estebanSulcaInfante/envaperu-catalog/internal/apierror"
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var todosLosEstados = []string{
	model.VersionBorrador,
	model.VersionEnviada,
	model.VersionContraoferta,
	model.VersionAprobada,
	model.VersionRechazada,
}

func TestTransicion_TablaCompleta(t *testing.T) {
	legales := map[Accion]map[string]string{
		Enviar:       {model.VersionBorrador: model.VersionEnviada},
		Contraoferta: {model.VersionEnviada: model.VersionContraoferta},
		Rechazar:     {model.VersionEnviada: model.VersionRechazada, model.VersionContraoferta: model.VersionRechazada},
		Aprobar:      {model.VersionEnviada: model.VersionAprobada, model.VersionContraoferta: model.VersionAprobada},
	}

	for accion, destinos := range legales {
		for _, estado := range todosLosEstados {
			got, err := Transicion(estado, accion)
			if want, ok := destinos[estado]; ok {
				require.NoError(t, err, "%s desde %s", accion, estado)
				assert.Equal(t, want, got)
				continue
			}
			assert.True(t, apierror.Is(err, apierror.KindConflict), "%s desde %s debe fallar con Conflict", accion, estado)
			assert.Empty(t, got)
		}
	}
}

func TestTransicion_MensajeNombraOrigenes(t *testing.T) {
	_, err := Transicion(model.VersionBorrador, Aprobar)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ENVIADA/CONTRAOFERTA")

	_, err = Transicion(model.VersionEnviada, Enviar)
	assert.Contains(t, err.Error(), "solo BORRADOR")
}

func TestTerminalesNoTienenSalida(t *testing.T) {
	for _, estado := range []string{model.VersionAprobada, model.VersionRechazada} {
		assert.True(t, EsTerminal(estado))
		assert.False(t, EsEditable(estado))
		for a := range reglas {
			_, err := Transicion(estado, a)
			assert.True(t, apierror.Is(err, apierror.KindConflict))
			assert.Contains(t, err.Error(), estado+" es terminal")
			assert.Contains(t, err.Error(), strings.Join(a.Origenes(), "/"))
		}
	}
}

func TestParseAccion(t *testing.T) {
	a, err := ParseAccion(" Aprobar ")
	require.NoError(t, err)
	assert.Equal(t, Aprobar, a)

	_, err = ParseAccion("expirar")
	assert.True(t, apierror.Is(err, apierror.KindValidation))
}
