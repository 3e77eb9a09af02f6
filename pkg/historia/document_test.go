package historia

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyProposalsActiveSectionGating(t *testing.T) {
	doc := NewDocument()
	doc.Advance()
	doc.Advance() // active = revisionSistemas

	applied := doc.ApplyProposals([]Proposal{
		{Seccion: MotivoAtencion, Contenido: "cefalea"},
		{Seccion: RevisionSistemas, Contenido: "sin fiebre"},
		{Seccion: Antecedentes, Contenido: "migrana materna"},
	})

	assert.Equal(t, 1, applied)

	st, _ := doc.State(RevisionSistemas)
	assert.Equal(t, EstadoPropuesta, st.Estado)
	assert.Equal(t, "sin fiebre", st.PropuestaPendiente)
	assert.Empty(t, st.Contenido)

	for _, sec := range []Seccion{MotivoAtencion, Antecedentes} {
		st, _ := doc.State(sec)
		assert.Equal(t, EstadoVacia, st.Estado, "section %s should be untouched", sec)
		assert.Empty(t, st.PropuestaPendiente)
	}
}

func TestApplyProposalsLaterEntrySupersedes(t *testing.T) {
	doc := NewDocument()
	active := doc.ActiveSection()

	applied := doc.ApplyProposals([]Proposal{
		{Seccion: active, Contenido: "primera"},
		{Seccion: active, Contenido: "segunda"},
	})

	assert.Equal(t, 2, applied)
	st, _ := doc.State(active)
	assert.Equal(t, "segunda", st.PropuestaPendiente)
}

func TestApplyProposalsUnknownSection(t *testing.T) {
	doc := NewDocument()
	applied := doc.ApplyProposals([]Proposal{
		{Seccion: "notaEnfermeria", Contenido: "x"},
	})
	assert.Zero(t, applied)
}

func TestAcceptPromotesPendingProposal(t *testing.T) {
	doc := NewDocument()
	active := doc.ActiveSection()
	doc.ApplyProposals([]Proposal{{Seccion: active, Contenido: "paciente de 34 anios"}})

	action, ok := doc.Accept(active)
	assert.True(t, ok)
	assert.Equal(t, AccionAceptar, action.Accion)
	assert.Equal(t, "paciente de 34 anios", action.Contenido)

	st, _ := doc.State(active)
	assert.Equal(t, EstadoAceptada, st.Estado)
	assert.Equal(t, "paciente de 34 anios", st.Contenido)
	assert.Empty(t, st.PropuestaPendiente)
}

func TestAcceptWithoutProposalKeepsContent(t *testing.T) {
	doc := NewDocument()
	active := doc.ActiveSection()
	doc.ApplyProposals([]Proposal{{Seccion: active, Contenido: "contenido"}})
	doc.Accept(active)

	// Second accept with nothing pending must not clear the content.
	action, ok := doc.Accept(active)
	assert.True(t, ok)
	assert.Equal(t, "contenido", action.Contenido)

	st, _ := doc.State(active)
	assert.Equal(t, "contenido", st.Contenido)
	assert.Equal(t, EstadoAceptada, st.Estado)
}

func TestRejectPreservesExistingContent(t *testing.T) {
	doc := NewDocument()
	active := doc.ActiveSection()
	doc.ApplyProposals([]Proposal{{Seccion: active, Contenido: "v1"}})
	doc.Accept(active)

	doc.ApplyProposals([]Proposal{{Seccion: active, Contenido: "v2"}})
	action, ok := doc.Reject(active)
	assert.True(t, ok)
	assert.Equal(t, AccionRechazar, action.Accion)
	assert.Empty(t, action.Contenido)

	st, _ := doc.State(active)
	assert.Equal(t, EstadoRechazada, st.Estado)
	assert.Equal(t, "v1", st.Contenido)
	assert.Empty(t, st.PropuestaPendiente)
}

func TestEditFromAnyState(t *testing.T) {
	tests := []struct {
		name  string
		setup func(d *Document)
	}{
		{"from vacia", func(d *Document) {}},
		{"from propuesta", func(d *Document) {
			d.ApplyProposals([]Proposal{{Seccion: d.ActiveSection(), Contenido: "p"}})
		}},
		{"from aceptada", func(d *Document) {
			d.ApplyProposals([]Proposal{{Seccion: d.ActiveSection(), Contenido: "p"}})
			d.Accept(d.ActiveSection())
		}},
		{"from rechazada", func(d *Document) {
			d.ApplyProposals([]Proposal{{Seccion: d.ActiveSection(), Contenido: "p"}})
			d.Reject(d.ActiveSection())
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := NewDocument()
			tt.setup(doc)
			sec := doc.ActiveSection()

			action, ok := doc.Edit(sec, "texto manual")
			assert.True(t, ok)
			assert.Equal(t, AccionEditar, action.Accion)

			st, _ := doc.State(sec)
			assert.Equal(t, EstadoEditada, st.Estado)
			assert.Equal(t, "texto manual", st.Contenido)
			assert.Empty(t, st.PropuestaPendiente)
		})
	}
}

func TestAdvanceRetreatSaturate(t *testing.T) {
	doc := NewDocument()

	doc.Retreat()
	assert.Equal(t, 0, doc.ActiveIndex())
	assert.Equal(t, InformacionGeneral, doc.ActiveSection())

	for i := 0; i < len(Secciones)+3; i++ {
		doc.Advance()
	}
	assert.Equal(t, len(Secciones)-1, doc.ActiveIndex())
	assert.Equal(t, Recomendaciones, doc.ActiveSection())
}

func TestSnapshotOnlyNonEmpty(t *testing.T) {
	doc := NewDocument()

	doc.ApplyProposals([]Proposal{{Seccion: InformacionGeneral, Contenido: "datos"}})
	doc.Accept(InformacionGeneral)
	doc.Advance()
	doc.Edit(MotivoAtencion, "dolor abdominal")

	snap := doc.Snapshot()
	assert.Equal(t, map[string]string{
		"informacionGeneral": "datos",
		"motivoAtencion":     "dolor abdominal",
	}, snap)
}

func TestSeccionesOrderAndValidity(t *testing.T) {
	assert.Len(t, Secciones, 10)
	assert.Equal(t, InformacionGeneral, Secciones[0])
	assert.Equal(t, Recomendaciones, Secciones[9])

	for _, s := range Secciones {
		if !Valid(s) {
			t.Errorf("Valid(%q) = false, want true", s)
		}
	}
	if Valid("ordenesMedicas") {
		t.Error("Valid accepted an unknown section")
	}
}
