// Package negociacion holds the version state machine.
//
//	BORRADOR     --enviar-->       ENVIADA
//	ENVIADA      --contraoferta--> CONTRAOFERTA
//	ENVIADA      --rechazar-->     RECHAZADA*
//	CONTRAOFERTA --rechazar-->     RECHAZADA*
//	ENVIADA      --aprobar-->      APROBADA*
//	CONTRAOFERTA --aprobar-->      APROBADA*
//
// The package is pure: it validates a transition and names the target state.
// Flag and catalogo side effects of aprobar are applied by the service layer.
package negociacion

import (
	"strings"

	"github.com/estebanSulcaInfante/envaperu-catalog/internal/apierror"
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/model"
)

// Accion is a transition name as it appears in the API path.
type Accion string

const (
	Enviar       Accion = "enviar"
	Contraoferta Accion = "contraoferta"
	Rechazar     Accion = "rechazar"
	Aprobar      Accion = "aprobar"
)

// Acciones lists every transition, in workflow order.
var Acciones = []Accion{Enviar, Contraoferta, Rechazar, Aprobar}

type regla struct {
	origenes []string
	destino  string
	// verbo is the infinitive used in the conflict message.
	verbo string
}

var reglas = map[Accion]regla{
	Enviar:       {origenes: []string{model.VersionBorrador}, destino: model.VersionEnviada, verbo: "ENVIARSE"},
	Contraoferta: {origenes: []string{model.VersionEnviada}, destino: model.VersionContraoferta, verbo: "pasar a CONTRAOFERTA"},
	Rechazar:     {origenes: []string{model.VersionEnviada, model.VersionContraoferta}, destino: model.VersionRechazada, verbo: "RECHAZARSE"},
	Aprobar:      {origenes: []string{model.VersionEnviada, model.VersionContraoferta}, destino: model.VersionAprobada, verbo: "APROBARSE"},
}

// ParseAccion validates a raw action name.
func ParseAccion(s string) (Accion, error) {
	a := Accion(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := reglas[a]; !ok {
		return "", apierror.Validationf("accion desconocida: %q", s)
	}
	return a, nil
}

// Origenes lists the states a from which a is legal.
func (a Accion) Origenes() []string { return reglas[a].origenes }

// Transicion returns the state reached by applying a to estado, or a
// Conflict naming the required source state(s).
func Transicion(estado string, a Accion) (string, error) {
	r, ok := reglas[a]
	if !ok {
		return "", apierror.Validationf("accion desconocida: %q", string(a))
	}
	if EsTerminal(estado) {
		return "", apierror.Conflict("versión " + estado + " es terminal: solo " + strings.Join(a.Origenes(), "/") + " puede " + r.verbo)
	}
	for _, o := range a.Origenes() {
		if o == estado {
			return r.destino, nil
		}
	}
	return "", apierror.Conflict("solo " + strings.Join(a.Origenes(), "/") + " puede " + r.verbo)
}

// EsEditable reports whether a version in estado accepts snapshot edits.
func EsEditable(estado string) bool {
	switch estado {
	case model.VersionBorrador, model.VersionEnviada, model.VersionContraoferta:
		return true
	}
	return false
}

// EsTerminal reports whether no transition leaves estado.
func EsTerminal(estado string) bool {
	return estado == model.VersionAprobada || estado == model.VersionRechazada
}
